package genai

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

// CalculateBackoff returns the delay before the given retry attempt using
// exponential backoff with full jitter. Attempt numbering starts at 1.
func CalculateBackoff(attempt int, cfg RetryConfig) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	// Exponential: initial * 2^(attempt-1), capped at max
	backoff := cfg.InitialDelay << (attempt - 1)
	if backoff > cfg.MaxDelay || backoff <= 0 {
		backoff = cfg.MaxDelay
	}

	// Full jitter: uniform random in [0, backoff)
	n, err := rand.Int(rand.Reader, big.NewInt(int64(backoff)))
	if err != nil {
		return backoff / 2
	}
	return time.Duration(n.Int64())
}

// Sleep waits for the given duration or until the context is done,
// whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RemainingBudget returns how much time is left before the context deadline.
// Returns a large duration when the context has no deadline.
func RemainingBudget(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return time.Hour
	}
	return time.Until(deadline)
}

// HasSufficientBudget reports whether the context has at least the required
// time left. Sleeping through the entire deadline wastes the attempt the
// caller was saving the budget for.
func HasSufficientBudget(ctx context.Context, required time.Duration) bool {
	return RemainingBudget(ctx) > required
}

// WithRetry runs fn up to cfg.MaxAttempts times, sleeping a jittered backoff
// between attempts. Permanent errors short-circuit the loop. onRetry, when
// non-nil, is called before each sleep with the upcoming attempt number and
// the error that caused the retry.
func WithRetry(ctx context.Context, cfg RetryConfig, onRetry func(attempt int, err error), fn func() error) error {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if IsPermanent(lastErr) || ShouldFallback(lastErr) {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}

		backoff := CalculateBackoff(attempt, cfg)
		if !HasSufficientBudget(ctx, backoff) {
			return lastErr
		}
		if onRetry != nil {
			onRetry(attempt+1, lastErr)
		}
		if err := Sleep(ctx, backoff); err != nil {
			return err
		}
	}
	return lastErr
}
