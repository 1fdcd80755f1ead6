package ratelimit

import (
	"context"
	"time"

	"github.com/admibot/admibot-go/internal/metrics"
)

// APILimiter gates the whole inbound HTTP surface with one shared token
// bucket. Unlike the keyed limiters it smooths bursts by waiting instead
// of dropping, so short spikes queue briefly and only sustained overload
// turns into errors.
type APILimiter struct {
	bucket  *Limiter
	metrics *metrics.Metrics
}

// NewAPILimiter creates a global limiter sustaining rps requests per
// second with a two second burst. Metrics may be nil.
func NewAPILimiter(rps float64, m *metrics.Metrics) *APILimiter {
	return &APILimiter{
		bucket:  New(rps*2, rps),
		metrics: m,
	}
}

// Acquire blocks until a token is available or ctx is done. The wait is
// recorded either way, so saturation shows up on dashboards before
// requests start failing.
func (al *APILimiter) Acquire(ctx context.Context) error {
	start := time.Now()
	err := al.bucket.Wait(ctx)

	if al.metrics != nil {
		al.metrics.RecordRateLimiterWait("global", time.Since(start).Seconds())
		if err != nil {
			al.metrics.RecordRateLimiterDrop("global")
		}
	}

	return err
}

// Available returns the current token count, for monitoring.
func (al *APILimiter) Available() float64 {
	return al.bucket.Available()
}
