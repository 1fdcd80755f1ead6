package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindowCounter enforces a request limit over a rolling window
// using two fixed windows and a weighted average. The effective count is
// the current window's count plus the previous window's count scaled by
// how much of the previous window still overlaps the rolling one:
//
//	effective = current + previous * (window - elapsed) / window
//
// That smooths the boundary without storing per-request timestamps, so a
// counter costs a few dozen bytes no matter how busy the session is. It
// backs both the per-minute chat quota and the daily LLM cap.
type SlidingWindowCounter struct {
	mu          sync.Mutex
	current     int
	previous    int
	windowStart time.Time
	window      time.Duration
	limit       int
}

// NewSlidingWindowCounter creates a counter allowing limit requests per
// window. Returns nil when limit <= 0; the nil counter allows everything,
// which is how callers disable a layer.
func NewSlidingWindowCounter(limit int, window time.Duration) *SlidingWindowCounter {
	if limit <= 0 {
		return nil
	}
	return &SlidingWindowCounter{
		windowStart: time.Now(),
		window:      window,
		limit:       limit,
	}
}

// Allow records a request if the rolling count is under the limit.
func (swc *SlidingWindowCounter) Allow() bool {
	if swc == nil {
		return true
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.rotate()

	if swc.weighted() >= float64(swc.limit) {
		return false
	}

	swc.current++
	return true
}

// Check reports whether a request would be allowed without recording it.
// Atomic only under an external lock held across Check and Consume, same
// as Limiter.Check.
func (swc *SlidingWindowCounter) Check() bool {
	if swc == nil {
		return true
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.rotate()
	return swc.weighted() < float64(swc.limit)
}

// Consume records a request after a passing Check.
func (swc *SlidingWindowCounter) Consume() {
	if swc == nil {
		return
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.rotate()

	if swc.weighted() < float64(swc.limit) {
		swc.current++
	}
}

// rotate shifts the fixed windows forward when the current one has
// expired. Must be called with mu held.
func (swc *SlidingWindowCounter) rotate() {
	elapsed := time.Since(swc.windowStart)
	if elapsed < swc.window {
		return
	}

	passed := int(elapsed / swc.window)
	if passed == 1 {
		swc.previous = swc.current
	} else {
		// A gap longer than one window leaves nothing to carry over
		swc.previous = 0
	}

	swc.current = 0
	swc.windowStart = swc.windowStart.Add(time.Duration(passed) * swc.window)
}

// weighted returns the rolling count. Must be called with mu held.
func (swc *SlidingWindowCounter) weighted() float64 {
	elapsed := time.Since(swc.windowStart)

	overlap := float64(swc.window-elapsed) / float64(swc.window)
	if overlap < 0 {
		overlap = 0
	}
	if overlap > 1 {
		overlap = 1
	}

	return float64(swc.current) + float64(swc.previous)*overlap
}

// EffectiveCount returns the current rolling count, for monitoring.
func (swc *SlidingWindowCounter) EffectiveCount() float64 {
	if swc == nil {
		return 0
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.rotate()
	return swc.weighted()
}

// Remaining returns the approximate quota left in the rolling window.
// Returns -1 for a nil (disabled) counter.
func (swc *SlidingWindowCounter) Remaining() int {
	if swc == nil {
		return -1
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.rotate()
	left := float64(swc.limit) - swc.weighted()
	if left < 0 {
		return 0
	}
	return int(left)
}

// IsFull reports whether the rolling count has reached the limit.
func (swc *SlidingWindowCounter) IsFull() bool {
	if swc == nil {
		return false
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.rotate()
	return swc.weighted() >= float64(swc.limit)
}
