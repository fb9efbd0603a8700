package natsession

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/keysub/internal/logging"
)

func TestJitterBackoff_Bounds(t *testing.T) {
	base := 200 * time.Millisecond
	capDur := 500 * time.Millisecond
	rng := newRetryRNG(42)

	prev := time.Duration(0)
	for i := 0; i < 10; i++ {
		next := jitterBackoff(prev, base, 1.6, capDur, rng)
		require.GreaterOrEqual(t, next, base)
		require.LessOrEqual(t, next, capDur)
		prev = next
	}
}

func TestJitterBackoff_CapLessThanBase(t *testing.T) {
	base := 200 * time.Millisecond
	capDur := 100 * time.Millisecond
	rng := newRetryRNG(1)

	require.Equal(t, capDur, jitterBackoff(0, base, 1.6, capDur, rng))
	require.Equal(t, capDur, jitterBackoff(base, base, 1.6, capDur, rng))
}

func TestJitterBackoff_Deterministic(t *testing.T) {
	run := func(seed int64) []time.Duration {
		rng := newRetryRNG(seed)
		out := make([]time.Duration, 0, 6)
		prev := time.Duration(0)
		for i := 0; i < 6; i++ {
			prev = jitterBackoff(prev, 50*time.Millisecond, 2, time.Second, rng)
			out = append(out, prev)
		}

		return out
	}

	require.Equal(t, run(7), run(7))
	require.Nil(t, newRetryRNG(0))
}

func TestRetry(t *testing.T) {
	cfg := Config{MaxRetries: 2, RetryBackoff: time.Millisecond, RetryMaxBackoff: 2 * time.Millisecond, RetrySeed: 3}
	cfg.applyDefaults()
	cfg.Logger = logging.NewNop()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		v, err := retry(context.Background(), &cfg, "op", func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, nats.ErrTimeout
			}
			return 7, nil
		})
		require.NoError(t, err)
		require.Equal(t, 7, v)
		require.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		_, err := retry(context.Background(), &cfg, "op", func(context.Context) (int, error) {
			calls++
			return 0, nats.ErrNoResponders
		})
		require.ErrorIs(t, err, nats.ErrNoResponders)
		require.Equal(t, 3, calls)
	})

	t.Run("fails fast on permanent errors", func(t *testing.T) {
		calls := 0
		_, err := retry(context.Background(), &cfg, "op", func(context.Context) (int, error) {
			calls++
			return 0, jetstream.ErrStreamNotFound
		})
		require.ErrorIs(t, err, jetstream.ErrStreamNotFound)
		require.Equal(t, 1, calls)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		slow := cfg
		slow.RetryBackoff = time.Hour
		slow.RetryMaxBackoff = time.Hour
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := retry(ctx, &slow, "op", func(context.Context) (int, error) {
			return 0, nats.ErrTimeout
		})
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestIsTransient(t *testing.T) {
	require.False(t, isTransient(nil))
	require.True(t, isTransient(nats.ErrTimeout))
	require.True(t, isTransient(fmt.Errorf("wrapped: %w", nats.ErrNoServers)))
	require.True(t, isTransient(errors.New("dial tcp: connection refused")))
	require.False(t, isTransient(jetstream.ErrStreamNotFound))
	require.False(t, isTransient(errors.New("bad config")))
}
