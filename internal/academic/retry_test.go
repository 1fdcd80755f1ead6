package academic

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestRetryWithBackoff_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	attempts := 0

	fn := func() error {
		attempts++
		if attempts == 3 {
			return nil // Success on 3rd attempt
		}
		return &testError{"temporary error"}
	}

	err := RetryWithBackoff(ctx, 5, 10*time.Millisecond, 50*time.Millisecond, fn)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}

	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	attempts := 0
	wantErr := &testError{"always fails"}

	err := RetryWithBackoff(ctx, 2, time.Millisecond, 5*time.Millisecond, func() error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Expected last error to surface, got %v", err)
	}

	// maxRetries=2 means 3 total attempts
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithBackoff_PermanentErrorStopsRetrying(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	attempts := 0
	inner := &testError{"not found"}

	err := RetryWithBackoff(ctx, 5, time.Millisecond, 5*time.Millisecond, func() error {
		attempts++
		return &permanentError{err: inner}
	})

	if attempts != 1 {
		t.Errorf("Expected 1 attempt for permanent error, got %d", attempts)
	}

	// The wrapper is stripped; callers see the underlying error
	if !errors.Is(err, inner) {
		t.Fatalf("Expected underlying error, got %v", err)
	}
	var perm *permanentError
	if errors.As(err, &perm) {
		t.Error("Expected permanentError wrapper to be removed from the result")
	}
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := RetryWithBackoff(ctx, 10, 100*time.Millisecond, time.Second, func() error {
		attempts++
		return &testError{"temporary"}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	if attempts == 0 {
		t.Error("Expected at least one attempt before cancellation")
	}
}

func TestSleepRespectsContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Sleep(ctx, time.Second)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline error, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Sleep did not return promptly on context cancellation")
	}
}
