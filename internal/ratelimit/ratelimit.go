// Package ratelimit bounds outbound remote-model calls, adapted from
// the teacher's infrastructure/ratelimit package (golang.org/x/time/rate).
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Config controls the limiter.
type Config struct {
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns a conservative default for a single-process
// benchmark run.
func DefaultConfig() Config {
	return Config{RequestsPerSecond: 5, Burst: 5}
}

// Limiter wraps rate.Limiter.
type Limiter struct {
	limiter *rate.Limiter
}

// New builds a Limiter from cfg.
func New(cfg Config) *Limiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.RequestsPerSecond)
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)}
}

// Wait blocks until a token is available or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a call may proceed immediately.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
