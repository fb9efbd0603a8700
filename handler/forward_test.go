package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/keysub/types"
)

func TestForward(t *testing.T) {
	t.Run("drains until detached", func(t *testing.T) {
		consumer, ch := NewChannel(4)
		consumer(sample(0))
		consumer(sample(1))
		ch.Detach()

		var got []types.Sample
		err := Forward(context.Background(), ch, SinkFunc(func(_ context.Context, s types.Sample) error {
			got = append(got, s)
			return nil
		}))
		require.NoError(t, err)
		require.Equal(t, []types.Sample{sample(0), sample(1)}, got)
	})

	t.Run("stops on sink error", func(t *testing.T) {
		consumer, ch := NewChannel(4)
		consumer(sample(0))
		consumer(sample(1))
		boom := errors.New("boom")

		calls := 0
		err := Forward(context.Background(), ch, SinkFunc(func(context.Context, types.Sample) error {
			calls++
			return boom
		}))
		require.ErrorIs(t, err, boom)
		require.Equal(t, 1, calls)
		require.Equal(t, 1, ch.Len())
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		_, r := NewRing(4)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := Forward(ctx, r, SinkFunc(func(context.Context, types.Sample) error { return nil }))
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("restartable per call", func(t *testing.T) {
		consumer, ch := NewChannel(4)
		consumer(sample(0))

		first, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		var n int
		sink := SinkFunc(func(context.Context, types.Sample) error {
			n++
			return nil
		})
		require.ErrorIs(t, Forward(first, ch, sink), context.DeadlineExceeded)
		require.Equal(t, 1, n)

		consumer(sample(1))
		ch.Detach()
		require.NoError(t, Forward(context.Background(), ch, sink))
		require.Equal(t, 2, n)
	})
}

func TestStream_EarlyBreak(t *testing.T) {
	consumer, ch := NewChannel(4)
	for i := 0; i < 4; i++ {
		consumer(sample(i))
	}

	for s := range Stream(context.Background(), ch) {
		require.Equal(t, sample(0), s)
		break
	}
	require.Equal(t, 3, ch.Len())
}
