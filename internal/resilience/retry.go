// Package resilience provides fault-tolerance primitives for the
// remote model client: bounded exponential backoff and a circuit
// breaker, adapted from the teacher's infrastructure/resilience
// package.
package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffConfig configures the model client's retry policy. Defaults
// match spec.md §4.2: base 0.5s, 2^attempt, 2 retries.
type BackoffConfig struct {
	MaxAttempts  int
	BaseDelay    time.Duration
	JitterFactor float64 // 0-1, fraction of base delay added as jitter
}

// DefaultBackoffConfig returns the spec-mandated retry policy.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		MaxAttempts:  2,
		BaseDelay:    500 * time.Millisecond,
		JitterFactor: 0.1,
	}
}

// Delay returns the backoff delay before retry attempt (0-indexed).
func (c BackoffConfig) Delay(attempt int, rnd *rand.Rand) time.Duration {
	base := float64(c.BaseDelay) * math.Pow(2, float64(attempt))
	if rnd == nil {
		return time.Duration(base)
	}
	jitter := base * c.JitterFactor * rnd.Float64()
	return time.Duration(base + jitter)
}

// Retry executes fn up to cfg.MaxAttempts+1 times total, sleeping with
// exponential backoff between attempts, stopping early on success or
// on a non-retryable error reported via shouldRetry.
func Retry(ctx context.Context, cfg BackoffConfig, shouldRetry func(error) bool, fn func(attempt int) error) error {
	rnd := rand.New(rand.NewSource(1))
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts || !shouldRetry(lastErr) {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Delay(attempt, rnd)):
		}
	}
	return lastErr
}
