package warmup

import (
	"sync/atomic"
	"time"
)

// ReadinessState gates the /ready endpoint during initial warmup. The
// service reports not ready until the first warmup run finishes or the
// startup timeout elapses, whichever comes first. The timeout keeps a
// broken upstream from wedging a deploy: after it passes the service
// serves whatever the cache holds.
type ReadinessState struct {
	ready     atomic.Bool
	startTime time.Time     // Immutable after construction
	timeout   time.Duration // Immutable after construction
}

// ReadinessStatus is the JSON body the readiness endpoint returns.
type ReadinessStatus struct {
	Ready          bool   `json:"ready"`
	Reason         string `json:"reason,omitempty"`
	ElapsedSeconds int    `json:"elapsed_seconds,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// NewReadinessState creates a gate that opens on MarkReady or after timeout.
func NewReadinessState(timeout time.Duration) *ReadinessState {
	return &ReadinessState{
		startTime: time.Now(),
		timeout:   timeout,
	}
}

// IsReady reports whether the service should accept traffic.
func (s *ReadinessState) IsReady() bool {
	if s.ready.Load() {
		return true
	}
	return time.Since(s.startTime) >= s.timeout
}

// MarkReady opens the gate. Called when the initial warmup run finishes.
func (s *ReadinessState) MarkReady() {
	s.ready.Store(true)
}

// Completed reports whether MarkReady was called. Unlike IsReady it stays
// false when the gate opened only because the timeout passed.
func (s *ReadinessState) Completed() bool {
	return s.ready.Load()
}

// Status returns the current state for the readiness endpoint.
func (s *ReadinessState) Status() ReadinessStatus {
	elapsed := time.Since(s.startTime)
	isReady := s.IsReady()

	status := ReadinessStatus{
		Ready:          isReady,
		ElapsedSeconds: int(elapsed.Seconds()),
		TimeoutSeconds: int(s.timeout.Seconds()),
	}

	if !isReady {
		status.Reason = "warmup in progress"
	} else if !s.ready.Load() {
		status.Reason = "startup timeout reached, warmup may still be running"
	}

	return status
}
