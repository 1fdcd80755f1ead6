// Package ratelimit provides the rate limiting primitives used on both
// sides of the service: a token bucket (Limiter) that paces outbound
// calls to the academic API and gates the inbound HTTP surface, a
// SlidingWindowCounter for per-session chat quotas, and a KeyedLimiter
// that combines both per key.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token bucket. Tokens refill at a constant per-second rate
// up to the bucket capacity, and each request consumes one token.
// Safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // tokens per second
	last     time.Time
}

// New creates a token bucket with the given capacity (burst) and
// per-second refill rate. The bucket starts full.
func New(capacity, rate float64) *Limiter {
	return &Limiter{
		tokens:   capacity,
		capacity: capacity,
		rate:     rate,
		last:     time.Now(),
	}
}

// NewPerMinute creates a token bucket from a requests-per-minute budget.
// The capacity is two seconds worth of tokens, so short bursts pass but
// the sustained rate holds, and the bucket starts with one second worth.
func NewPerMinute(requestsPerMinute float64) *Limiter {
	perSecond := requestsPerMinute / 60
	return &Limiter{
		tokens:   perSecond,
		capacity: perSecond * 2,
		rate:     perSecond,
		last:     time.Now(),
	}
}

// refill credits tokens for the time elapsed since the last refill.
// Must be called with mu held.
func (l *Limiter) refill() {
	now := time.Now()
	elapsed := now.Sub(l.last).Seconds()

	l.tokens += elapsed * l.rate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
	l.last = now
}

// Allow consumes a token if one is available. It never blocks.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()

	if l.tokens >= 1.0 {
		l.tokens -= 1.0
		return true
	}

	return false
}

// Check reports whether a token is available without consuming one.
//
// Check followed by Consume is only atomic when the caller holds its own
// lock across both calls. KeyedLimiter does this to combine the bucket
// with a sliding window; do not use the pair bare under concurrency.
func (l *Limiter) Check() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens >= 1.0
}

// Consume takes one token after a passing Check. See the locking note on
// Check.
func (l *Limiter) Consume() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens >= 1.0 {
		l.tokens -= 1.0
	}
}

// Wait blocks until a token is available or the context is done. It
// computes the exact refill time instead of polling, so the goroutine
// sleeps once per attempt.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		l.refill()

		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}

		// Time until the deficit refills
		wait := time.Duration((1 - l.tokens) / l.rate * float64(time.Second))
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			// Another waiter may have taken the token, so loop
		}
	}
}

// Available returns the current token count, for monitoring.
func (l *Limiter) Available() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens
}

// IsFull reports whether the bucket is back at capacity. KeyedLimiter
// uses this to spot idle entries during cleanup.
func (l *Limiter) IsFull() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens >= l.capacity
}

// Reset refills the bucket to capacity.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tokens = l.capacity
	l.last = time.Now()
}
