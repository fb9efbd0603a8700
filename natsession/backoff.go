package natsession

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"time"
)

// jitterBackoff computes the next retry delay using decorrelated jitter with a cap.
// See: https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
//
//	next = min(cap, base + rand[0, prev*mult - base))
//
// A prev <= 0 starts from base, mult < 1 is treated as 1 and a cap below base wins.
func jitterBackoff(prev, base time.Duration, mult float64, capDur time.Duration, rng *rand.Rand) time.Duration {
	if base <= 0 {
		base = DefaultRetryBackoff
	}
	if mult < 1.0 {
		mult = 1.0
	}
	if capDur > 0 && capDur < base {
		return capDur
	}
	if prev <= 0 {
		return base
	}

	spread := time.Duration(float64(prev)*mult) - base
	if spread <= 0 {
		spread = base
	}
	var jitter int64
	if rng != nil {
		jitter = rng.Int64N(int64(spread))
	} else {
		jitter = rand.Int64N(int64(spread)) //nolint:gosec // non-crypto backoff jitter
	}

	next := base + time.Duration(jitter)
	if capDur > 0 && next > capDur {
		return capDur
	}

	return next
}

// newRetryRNG returns a deterministic RNG for a non-zero seed, nil otherwise so the
// package-level PRNG is used.
//
//nolint:gosec
func newRetryRNG(seed int64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	s1 := uint64(seed)

	return rand.New(rand.NewPCG(s1, s1^0x9e3779b97f4a7c15))
}

// retry runs op until it succeeds, fails with a non-transient error, ctx is done or
// cfg.MaxRetries retries failed.
func retry[T any](ctx context.Context, cfg *Config, what string, op func(context.Context) (T, error)) (T, error) {
	rng := newRetryRNG(cfg.RetrySeed)
	var (
		zero  T
		delay time.Duration
	)
	for attempt := 0; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if !isTransient(err) {
			return zero, fmt.Errorf("%s failed: %w", what, err)
		}
		if attempt >= cfg.MaxRetries {
			return zero, fmt.Errorf("%s failed after %d attempts: %w", what, attempt+1, err)
		}

		delay = jitterBackoff(delay, cfg.RetryBackoff, cfg.RetryMultiplier, cfg.RetryMaxBackoff, rng)
		cfg.Logger.Debug("retrying", "operation", what, "attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
}
