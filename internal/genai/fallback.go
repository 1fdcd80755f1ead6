// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains the fallback wrappers for cross-provider failover.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/admibot/admibot-go/internal/metrics"
)

// FallbackExtractor tries a chain of extractors in order.
// It implements three-layer fallback:
// 1. Model retry with backoff (same instance)
// 2. Chain fallback (next model, then next provider)
// 3. The caller degrades to the rule result when the whole chain fails
type FallbackExtractor struct {
	chain       []EntityExtractor
	retryConfig RetryConfig
	metrics     *metrics.Metrics
}

// NewFallbackExtractor creates a fallback-enabled entity extractor.
// Disabled chain entries are dropped; m may be nil to skip metrics.
func NewFallbackExtractor(cfg RetryConfig, m *metrics.Metrics, chain ...EntityExtractor) *FallbackExtractor {
	kept := make([]EntityExtractor, 0, len(chain))
	for _, e := range chain {
		if e != nil && e.IsEnabled() {
			kept = append(kept, e)
		}
	}
	return &FallbackExtractor{
		chain:       kept,
		retryConfig: cfg,
		metrics:     m,
	}
}

// ExtractEntities walks the chain until one extractor succeeds. Permanent
// errors stop the walk immediately; everything else moves to the next entry.
func (f *FallbackExtractor) ExtractEntities(ctx context.Context, utterance string) (*ExtractionResult, error) {
	if f == nil || len(f.chain) == 0 {
		return nil, errors.New("entity extractor not configured")
	}

	var lastErr error
	for i, extractor := range f.chain {
		provider := extractor.Provider()

		start := time.Now()
		result, err := f.extractWithRetry(ctx, extractor, utterance)
		duration := time.Since(start)

		if err == nil {
			f.recordRequest(provider, "success", duration)
			return result, nil
		}

		lastErr = err
		f.recordRequest(provider, classifyErrorType(err), duration)

		action := ClassifyError(err)
		slog.WarnContext(ctx, "entity extractor failed",
			"provider", provider,
			"error", err,
			"action", action,
			"duration", duration)

		if action == ActionFail {
			return nil, err
		}

		if i < len(f.chain)-1 {
			next := f.chain[i+1].Provider()
			slog.InfoContext(ctx, "falling back to next extractor",
				"from", provider,
				"to", next)
			f.recordFallback(provider, next)
		}
	}

	slog.ErrorContext(ctx, "all entity extractors failed",
		"chain_length", len(f.chain),
		"error", lastErr)
	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}

// extractWithRetry attempts extraction with retry logic.
func (f *FallbackExtractor) extractWithRetry(ctx context.Context, extractor EntityExtractor, utterance string) (*ExtractionResult, error) {
	var result *ExtractionResult
	err := WithRetry(ctx, f.retryConfig, func(attempt int, retryErr error) {
		slog.DebugContext(ctx, "retrying entity extraction",
			"provider", extractor.Provider(),
			"attempt", attempt,
			"error", retryErr)
	}, func() error {
		var callErr error
		result, callErr = extractor.ExtractEntities(ctx, utterance)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (f *FallbackExtractor) recordRequest(provider Provider, status string, duration time.Duration) {
	if f.metrics == nil {
		return
	}
	f.metrics.RecordLLMRequest(provider.String(), "extract", status, duration.Seconds())
}

func (f *FallbackExtractor) recordFallback(from, to Provider) {
	if f.metrics == nil {
		return
	}
	f.metrics.RecordLLMFallback(from.String(), to.String(), "extract")
}

// IsEnabled returns true if at least one extractor is enabled.
func (f *FallbackExtractor) IsEnabled() bool {
	return f != nil && len(f.chain) > 0
}

// Provider returns the first chain entry's provider type.
func (f *FallbackExtractor) Provider() Provider {
	if f == nil || len(f.chain) == 0 {
		return ""
	}
	return f.chain[0].Provider()
}

// Close closes every extractor in the chain.
func (f *FallbackExtractor) Close() error {
	if f == nil {
		return nil
	}

	var errs []error
	for _, e := range f.chain {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// FallbackOptimizer tries a chain of plan optimizers in order.
// The planner keeps its rule plan when the whole chain fails.
type FallbackOptimizer struct {
	chain       []PlanOptimizer
	retryConfig RetryConfig
	metrics     *metrics.Metrics
}

// NewFallbackOptimizer creates a fallback-enabled plan optimizer.
// Disabled chain entries are dropped; m may be nil to skip metrics.
func NewFallbackOptimizer(cfg RetryConfig, m *metrics.Metrics, chain ...PlanOptimizer) *FallbackOptimizer {
	kept := make([]PlanOptimizer, 0, len(chain))
	for _, o := range chain {
		if o != nil && o.IsEnabled() {
			kept = append(kept, o)
		}
	}
	return &FallbackOptimizer{
		chain:       kept,
		retryConfig: cfg,
		metrics:     m,
	}
}

// OptimizePlan walks the chain until one optimizer succeeds.
func (f *FallbackOptimizer) OptimizePlan(ctx context.Context, req *PlanRequest) (*PlanSuggestion, error) {
	if f == nil || len(f.chain) == 0 {
		return nil, errors.New("plan optimizer not configured")
	}

	var lastErr error
	for i, optimizer := range f.chain {
		provider := optimizer.Provider()

		start := time.Now()
		suggestion, err := f.optimizeWithRetry(ctx, optimizer, req)
		duration := time.Since(start)

		if err == nil {
			f.recordRequest(provider, "success", duration)
			return suggestion, nil
		}

		lastErr = err
		f.recordRequest(provider, classifyErrorType(err), duration)

		action := ClassifyError(err)
		slog.WarnContext(ctx, "plan optimizer failed",
			"provider", provider,
			"error", err,
			"action", action,
			"duration", duration)

		if action == ActionFail {
			return nil, err
		}

		if i < len(f.chain)-1 {
			next := f.chain[i+1].Provider()
			slog.InfoContext(ctx, "falling back to next optimizer",
				"from", provider,
				"to", next)
			f.recordFallback(provider, next)
		}
	}

	slog.WarnContext(ctx, "all plan optimizers failed",
		"chain_length", len(f.chain),
		"error", lastErr)
	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}

// optimizeWithRetry attempts plan review with retry logic.
func (f *FallbackOptimizer) optimizeWithRetry(ctx context.Context, optimizer PlanOptimizer, req *PlanRequest) (*PlanSuggestion, error) {
	var suggestion *PlanSuggestion
	err := WithRetry(ctx, f.retryConfig, func(attempt int, retryErr error) {
		slog.DebugContext(ctx, "retrying plan review",
			"provider", optimizer.Provider(),
			"attempt", attempt,
			"error", retryErr)
	}, func() error {
		var callErr error
		suggestion, callErr = optimizer.OptimizePlan(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return suggestion, nil
}

func (f *FallbackOptimizer) recordRequest(provider Provider, status string, duration time.Duration) {
	if f.metrics == nil {
		return
	}
	f.metrics.RecordLLMRequest(provider.String(), "plan", status, duration.Seconds())
}

func (f *FallbackOptimizer) recordFallback(from, to Provider) {
	if f.metrics == nil {
		return
	}
	f.metrics.RecordLLMFallback(from.String(), to.String(), "plan")
}

// IsEnabled returns true if at least one optimizer is enabled.
func (f *FallbackOptimizer) IsEnabled() bool {
	return f != nil && len(f.chain) > 0
}

// Provider returns the first chain entry's provider type.
func (f *FallbackOptimizer) Provider() Provider {
	if f == nil || len(f.chain) == 0 {
		return ""
	}
	return f.chain[0].Provider()
}

// Close closes every optimizer in the chain.
func (f *FallbackOptimizer) Close() error {
	if f == nil {
		return nil
	}

	var errs []error
	for _, o := range f.chain {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// FallbackResponder tries a chain of responders in order.
// The engine falls back to canned replies when the whole chain fails.
type FallbackResponder struct {
	chain       []Responder
	retryConfig RetryConfig
	metrics     *metrics.Metrics
}

// NewFallbackResponder creates a fallback-enabled responder.
// Disabled chain entries are dropped; m may be nil to skip metrics.
func NewFallbackResponder(cfg RetryConfig, m *metrics.Metrics, chain ...Responder) *FallbackResponder {
	kept := make([]Responder, 0, len(chain))
	for _, r := range chain {
		if r != nil && r.IsEnabled() {
			kept = append(kept, r)
		}
	}
	return &FallbackResponder{
		chain:       kept,
		retryConfig: cfg,
		metrics:     m,
	}
}

// Respond walks the chain until one responder succeeds.
func (f *FallbackResponder) Respond(ctx context.Context, req *ResponseRequest) (string, error) {
	if f == nil || len(f.chain) == 0 {
		return "", errors.New("responder not configured")
	}

	var lastErr error
	for i, responder := range f.chain {
		provider := responder.Provider()

		start := time.Now()
		answer, err := f.respondWithRetry(ctx, responder, req)
		duration := time.Since(start)

		if err == nil {
			f.recordRequest(provider, "success", duration)
			return answer, nil
		}

		lastErr = err
		f.recordRequest(provider, classifyErrorType(err), duration)

		action := ClassifyError(err)
		slog.WarnContext(ctx, "responder failed",
			"provider", provider,
			"error", err,
			"action", action,
			"duration", duration)

		if action == ActionFail {
			return "", err
		}

		if i < len(f.chain)-1 {
			next := f.chain[i+1].Provider()
			slog.InfoContext(ctx, "falling back to next responder",
				"from", provider,
				"to", next)
			f.recordFallback(provider, next)
		}
	}

	slog.ErrorContext(ctx, "all responders failed",
		"chain_length", len(f.chain),
		"error", lastErr)
	return "", fmt.Errorf("all providers failed: %w", lastErr)
}

// respondWithRetry attempts answer generation with retry logic.
func (f *FallbackResponder) respondWithRetry(ctx context.Context, responder Responder, req *ResponseRequest) (string, error) {
	var answer string
	err := WithRetry(ctx, f.retryConfig, func(attempt int, retryErr error) {
		slog.DebugContext(ctx, "retrying answer generation",
			"provider", responder.Provider(),
			"attempt", attempt,
			"error", retryErr)
	}, func() error {
		var callErr error
		answer, callErr = responder.Respond(ctx, req)
		return callErr
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (f *FallbackResponder) recordRequest(provider Provider, status string, duration time.Duration) {
	if f.metrics == nil {
		return
	}
	f.metrics.RecordLLMRequest(provider.String(), "respond", status, duration.Seconds())
}

func (f *FallbackResponder) recordFallback(from, to Provider) {
	if f.metrics == nil {
		return
	}
	f.metrics.RecordLLMFallback(from.String(), to.String(), "respond")
}

// IsEnabled returns true if at least one responder is enabled.
func (f *FallbackResponder) IsEnabled() bool {
	return f != nil && len(f.chain) > 0
}

// Provider returns the first chain entry's provider type.
func (f *FallbackResponder) Provider() Provider {
	if f == nil || len(f.chain) == 0 {
		return ""
	}
	return f.chain[0].Provider()
}

// Close closes every responder in the chain.
func (f *FallbackResponder) Close() error {
	if f == nil {
		return nil
	}

	var errs []error
	for _, r := range f.chain {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// classifyErrorType maps error to a metric status label.
// Provides fine-grained error classification for better observability.
func classifyErrorType(err error) string {
	if err == nil {
		return "success"
	}

	// Check for context errors first
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}

	// Check for wrapped LLMError with status code
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		switch {
		case llmErr.StatusCode == http.StatusTooManyRequests:
			return "rate_limit"
		case llmErr.StatusCode >= 500:
			return "server_error"
		case llmErr.StatusCode == http.StatusUnauthorized || llmErr.StatusCode == http.StatusForbidden:
			return "auth_error"
		case llmErr.StatusCode == http.StatusBadRequest:
			return "invalid_request"
		}
	}

	// Fall back to action-based classification
	switch ClassifyError(err) {
	case ActionFallback:
		return "quota_exhausted"
	case ActionRetry:
		return "transient_error"
	default:
		return "error"
	}
}
