// Package server throttles inbound client events per connection so one
// client cannot flood the hub loop.
package server

import (
	"time"

	"golang.org/x/time/rate"
)

type rateLimiter struct {
	limiter *rate.Limiter
}

// newRateLimiter allows capacity events at once, refilled evenly over interval.
func newRateLimiter(capacity int, interval time.Duration) *rateLimiter {
	if capacity <= 0 {
		capacity = 1
	}
	if interval <= 0 {
		interval = time.Second
	}

	limit := rate.Limit(float64(capacity) / interval.Seconds())
	return &rateLimiter{limiter: rate.NewLimiter(limit, capacity)}
}

func (rl *rateLimiter) allow() bool {
	return rl.limiter.Allow()
}
