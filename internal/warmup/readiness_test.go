package warmup

import (
	"sync"
	"testing"
	"time"
)

func TestReadinessStateInitial(t *testing.T) {
	t.Parallel()
	state := NewReadinessState(10 * time.Minute)

	if state.IsReady() {
		t.Error("Expected IsReady() to return false initially")
	}
	if state.Completed() {
		t.Error("Expected Completed() to return false initially")
	}

	status := state.Status()
	if status.Ready {
		t.Error("Expected status.Ready to be false initially")
	}
	if status.Reason != "warmup in progress" {
		t.Errorf("Expected reason 'warmup in progress', got %q", status.Reason)
	}
}

func TestReadinessStateMarkReady(t *testing.T) {
	t.Parallel()
	state := NewReadinessState(10 * time.Minute)

	state.MarkReady()

	if !state.IsReady() {
		t.Error("Expected IsReady() to return true after MarkReady()")
	}
	if !state.Completed() {
		t.Error("Expected Completed() to return true after MarkReady()")
	}

	status := state.Status()
	if !status.Ready {
		t.Error("Expected status.Ready to be true after MarkReady()")
	}
	if status.Reason != "" {
		t.Errorf("Expected empty reason after MarkReady(), got %q", status.Reason)
	}
}

func TestReadinessStateTimeout(t *testing.T) {
	t.Parallel()
	state := NewReadinessState(50 * time.Millisecond)

	if state.IsReady() {
		t.Error("Expected IsReady() to return false before timeout")
	}

	time.Sleep(60 * time.Millisecond)

	if !state.IsReady() {
		t.Error("Expected IsReady() to return true after timeout")
	}
	// The gate opened on timeout, not because warmup finished.
	if state.Completed() {
		t.Error("Expected Completed() to return false after timeout alone")
	}

	status := state.Status()
	if !status.Ready {
		t.Error("Expected status.Ready to be true after timeout")
	}
	if status.Reason != "startup timeout reached, warmup may still be running" {
		t.Errorf("Expected timeout reason, got %q", status.Reason)
	}
}

func TestReadinessStateStatusFields(t *testing.T) {
	t.Parallel()
	timeout := 10 * time.Minute
	state := NewReadinessState(timeout)

	time.Sleep(100 * time.Millisecond)

	status := state.Status()
	if status.TimeoutSeconds != int(timeout.Seconds()) {
		t.Errorf("Expected TimeoutSeconds=%d, got %d", int(timeout.Seconds()), status.TimeoutSeconds)
	}
	if status.ElapsedSeconds < 0 {
		t.Errorf("Expected ElapsedSeconds >= 0, got %d", status.ElapsedSeconds)
	}
}

func TestReadinessStateConcurrent(t *testing.T) {
	t.Parallel()
	state := NewReadinessState(10 * time.Minute)

	const goroutines = 100
	var wg sync.WaitGroup
	wg.Add(goroutines * 2)

	for range goroutines {
		go func() {
			defer wg.Done()
			for range 100 {
				_ = state.IsReady()
				_ = state.Status()
				_ = state.Completed()
			}
		}()
	}

	for range goroutines {
		go func() {
			defer wg.Done()
			for range 100 {
				state.MarkReady()
			}
		}()
	}

	wg.Wait()

	if !state.IsReady() {
		t.Error("Expected IsReady() to return true after concurrent MarkReady calls")
	}
}

func TestReadinessStateMarkReadyIdempotent(t *testing.T) {
	t.Parallel()
	state := NewReadinessState(10 * time.Minute)

	state.MarkReady()
	state.MarkReady()
	state.MarkReady()

	if !state.IsReady() {
		t.Error("Expected IsReady() to return true")
	}
	if !state.Completed() {
		t.Error("Expected Completed() to return true")
	}
}
