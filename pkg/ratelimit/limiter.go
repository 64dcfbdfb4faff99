package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between operations. Burst is pinned
// to 1 so two acquisitions can never be closer than the interval.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerSecond operations per second.
// Non-positive rates fall back to one per second.
func New(requestsPerSecond float64) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	interval := time.Duration(float64(time.Second) / requestsPerSecond)
	return &Limiter{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// NewWithInterval creates a limiter with an explicit minimum interval
func NewWithInterval(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = time.Second
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Acquire blocks until the next operation is allowed or the context is
// cancelled. The only error it returns is the context's.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether an operation may proceed right now without blocking
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
