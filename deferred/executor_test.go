package deferred

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	pool, err := NewPool(4, nil)
	require.NoError(t, err)
	defer pool.Release()

	var calls atomic.Int32
	pending := make([]*Pending[int], 0, 16)
	for i := 0; i < 16; i++ {
		pending = append(pending, countingAction(&calls, WithExecutor(pool)).Start(context.Background()))
	}
	for _, p := range pending {
		_, err := p.Await(context.Background())
		require.NoError(t, err)
	}
	require.Equal(t, int32(16), calls.Load())
}

func TestPool_ReleasedPoolStillCompletesActions(t *testing.T) {
	pool, err := NewPool(1, nil)
	require.NoError(t, err)
	pool.Release()

	require.Error(t, pool.Submit(func() {}))

	v, err := New(func(context.Context) (string, error) { return "ok", nil }, WithExecutor(pool)).
		Start(context.Background()).
		Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", v)
}

func TestDefaultExecutor(t *testing.T) {
	require.IsType(t, GoExecutor{}, DefaultExecutor())

	pool, err := NewPool(0, nil)
	require.NoError(t, err)
	defer pool.Release()

	SetDefaultExecutor(pool)
	defer SetDefaultExecutor(nil)
	require.Same(t, pool, DefaultExecutor())

	SetDefaultExecutor(nil)
	require.IsType(t, GoExecutor{}, DefaultExecutor())
}
