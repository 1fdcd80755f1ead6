// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains shared types, interfaces, and configuration for entity
// extraction, query-plan optimization, and answer generation with
// multi-provider fallback support.
//
// Architecture:
// - Gemini: Uses google.golang.org/genai (official SDK)
// - Groq/Cerebras: Uses github.com/openai/openai-go/v3 (OpenAI-compatible API)
//
// Fallback Strategy (3-layer):
// 1. Model Retry: Same model retried with exponential backoff
// 2. Model Chain: Next model in same provider's model list
// 3. Provider Chain: Next provider in LLM_PROVIDERS list
package genai

import (
	"context"
	"time"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
	// ProviderGroq represents Groq's API (OpenAI-compatible, fast inference).
	ProviderGroq Provider = "groq"
	// ProviderCerebras represents Cerebras's API (OpenAI-compatible, ultra-fast inference).
	ProviderCerebras Provider = "cerebras"
)

// ProviderEndpoint defines the base URL for OpenAI-compatible providers.
// Gemini is not included as it uses a different SDK.
var ProviderEndpoint = map[Provider]string{
	ProviderGroq:     "https://api.groq.com/openai/v1/",
	ProviderCerebras: "https://api.cerebras.ai/v1/",
}

// IsOpenAICompatible returns true if the provider uses OpenAI-compatible API.
func (p Provider) IsOpenAICompatible() bool {
	_, ok := ProviderEndpoint[p]
	return ok
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// EntityExtractor defines the interface for LLM-backed entity extraction.
// It backs up the rule tables when they find nothing concrete in an
// utterance. Uses forced function calling mode (ANY/required) to ensure
// consistent responses.
type EntityExtractor interface {
	// ExtractEntities analyzes an utterance and returns the entities it mentions.
	ExtractEntities(ctx context.Context, utterance string) (*ExtractionResult, error)
	// IsEnabled returns true if the extractor is properly initialized.
	IsEnabled() bool
	// Close releases any resources held by the extractor.
	Close() error
	// Provider returns the provider type for metrics.
	Provider() Provider
}

// PlanOptimizer defines the interface for LLM-backed query plan refinement.
// Implementations may reorder or drop planned retrieval calls but never
// invent new ones.
type PlanOptimizer interface {
	// OptimizePlan reviews a drafted plan and returns a refined suggestion.
	OptimizePlan(ctx context.Context, req *PlanRequest) (*PlanSuggestion, error)
	// IsEnabled returns true if the optimizer is properly initialized.
	IsEnabled() bool
	// Close releases any resources held by the optimizer.
	Close() error
	// Provider returns the provider type for metrics.
	Provider() Provider
}

// Responder defines the interface for grounded answer generation.
type Responder interface {
	// Respond generates an answer to the utterance from the assembled context.
	Respond(ctx context.Context, req *ResponseRequest) (string, error)
	// IsEnabled returns true if the responder is properly initialized.
	IsEnabled() bool
	// Close releases any resources held by the responder.
	Close() error
	// Provider returns the provider type for metrics.
	Provider() Provider
}

// ExtractionResult represents the entities an LLM found in an utterance.
// Fields mirror the rule-based extraction output so the two can be merged
// by set union. Intents are raw strings and validated by the caller.
type ExtractionResult struct {
	Faculties      []string
	Programs       []string
	Courses        []string
	Semesters      []string
	ScheduleTracks []string
	Intents        []string
}

// PlanRequest carries a drafted query plan for LLM review.
type PlanRequest struct {
	// Utterance is the user message the plan was drafted for.
	Utterance string

	// Calls is the drafted call list, each rendered as "endpoint?key=value".
	Calls []string

	// Strategy is the drafted execution strategy (SEQUENTIAL, PARALLEL).
	Strategy string
}

// PlanSuggestion is the LLM's refined version of a drafted plan.
type PlanSuggestion struct {
	// Calls is the refined call list, a subset or reordering of the draft.
	Calls []string

	// Strategy is the suggested execution strategy.
	Strategy string

	// ResultCap is the suggested per-call result limit, 0 when unset.
	ResultCap int
}

// ResponseRequest carries everything a Responder needs for one answer.
type ResponseRequest struct {
	// Utterance is the user message to answer.
	Utterance string

	// Context is the assembled grounding text, empty when retrieval found nothing.
	Context string

	// History holds prior turns, oldest first, rendered as "role: text".
	History []string
}

// RetryConfig defines retry behavior for LLM API calls.
// Uses AWS-recommended Full Jitter exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 2 (1 initial + 1 retry)
	MaxAttempts int

	// InitialDelay is the base delay before first retry.
	// Default: 500ms
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	// Default: 3s
	MaxDelay time.Duration
}

// ProviderConfig holds configuration for a single LLM provider.
type ProviderConfig struct {
	// APIKey is the API key for the provider.
	APIKey string

	// ExtractModels is the ordered list of models for entity extraction.
	// First model is primary, rest are fallbacks tried in order.
	ExtractModels []string

	// PlanModels is the ordered list of models for plan optimization.
	// First model is primary, rest are fallbacks tried in order.
	PlanModels []string

	// ResponseModels is the ordered list of models for answer generation.
	// First model is primary, rest are fallbacks tried in order.
	ResponseModels []string
}

// LLMConfig holds configuration for all LLM providers.
type LLMConfig struct {
	// Providers is the ordered list of providers to try.
	// Fallback happens in order: first provider's models, then second, etc.
	// Default: ["gemini", "groq", "cerebras"] (only those with API keys)
	Providers []Provider

	// Gemini configuration
	Gemini ProviderConfig

	// Groq configuration (OpenAI-compatible)
	Groq ProviderConfig

	// Cerebras configuration (OpenAI-compatible)
	Cerebras ProviderConfig

	// RetryConfig for retry behavior
	RetryConfig RetryConfig
}

// Default model configurations.
// First element is primary model, subsequent elements are fallbacks.
var (
	// DefaultGeminiExtractModels is the default model chain for Gemini entity extraction.
	// gemini-2.5-flash offers excellent function calling with fast inference.
	// gemini-2.5-flash-lite provides faster, cost-efficient fallback.
	DefaultGeminiExtractModels = []string{"gemini-2.5-flash", "gemini-2.5-flash-lite"}

	// DefaultGeminiPlanModels is the default model chain for Gemini plan optimization.
	DefaultGeminiPlanModels = []string{"gemini-2.5-flash-lite", "gemini-2.5-flash"}

	// DefaultGeminiResponseModels is the default model chain for Gemini answer generation.
	DefaultGeminiResponseModels = []string{"gemini-2.5-flash", "gemini-2.5-flash-lite"}

	// DefaultGroqExtractModels is the default model chain for Groq entity extraction.
	// Llama 4 Maverick (Preview) offers excellent function calling with fast inference (~900 TPS).
	// llama-3.3-70b-versatile is Production-grade fallback with strong accuracy.
	DefaultGroqExtractModels = []string{"meta-llama/llama-4-maverick-17b-128e-instruct", "llama-3.3-70b-versatile"}

	// DefaultGroqPlanModels is the default model chain for Groq plan optimization.
	// Llama 4 Scout (Preview) is enough for the small review task (~750 TPS).
	DefaultGroqPlanModels = []string{"meta-llama/llama-4-scout-17b-16e-instruct", "llama-3.1-8b-instant"}

	// DefaultGroqResponseModels is the default model chain for Groq answer generation.
	DefaultGroqResponseModels = []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"}

	// DefaultCerebrasExtractModels is the default model chain for Cerebras entity extraction.
	// llama-3.3-70b offers strong function calling with ultra-fast inference.
	// llama-3.1-8b provides fast fallback.
	DefaultCerebrasExtractModels = []string{"llama-3.3-70b", "llama-3.1-8b"}

	// DefaultCerebrasPlanModels is the default model chain for Cerebras plan optimization.
	DefaultCerebrasPlanModels = []string{"llama-3.1-8b", "llama-3.3-70b"}

	// DefaultCerebrasResponseModels is the default model chain for Cerebras answer generation.
	DefaultCerebrasResponseModels = []string{"llama-3.3-70b", "llama-3.1-8b"}

	// DefaultProviders is the default provider order for fallback.
	DefaultProviders = []Provider{ProviderGemini, ProviderGroq, ProviderCerebras}
)

// Retry configuration defaults
const (
	DefaultMaxRetryAttempts  = 2
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

// HasAnyProvider returns true if at least one provider is configured.
func (c *LLMConfig) HasAnyProvider() bool {
	return c.Gemini.APIKey != "" || c.Groq.APIKey != "" || c.Cerebras.APIKey != ""
}

// HasProvider returns true if the specified provider is configured with an API key.
func (c *LLMConfig) HasProvider(p Provider) bool {
	switch p {
	case ProviderGemini:
		return c.Gemini.APIKey != ""
	case ProviderGroq:
		return c.Groq.APIKey != ""
	case ProviderCerebras:
		return c.Cerebras.APIKey != ""
	default:
		return false
	}
}

// GetProviderConfig returns the configuration for a specific provider.
func (c *LLMConfig) GetProviderConfig(p Provider) *ProviderConfig {
	switch p {
	case ProviderGemini:
		return &c.Gemini
	case ProviderGroq:
		return &c.Groq
	case ProviderCerebras:
		return &c.Cerebras
	default:
		return nil
	}
}

// ConfiguredProviders returns the list of providers with configured API keys,
// in the order specified by c.Providers.
func (c *LLMConfig) ConfiguredProviders() []Provider {
	result := make([]Provider, 0, len(c.Providers))
	for _, p := range c.Providers {
		if c.HasProvider(p) {
			result = append(result, p)
		}
	}
	return result
}
