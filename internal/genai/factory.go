// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains factory functions for creating LLM providers.
package genai

import (
	"context"
	"log/slog"

	"github.com/admibot/admibot-go/internal/metrics"
)

// CreateExtractor creates an EntityExtractor based on the provided configuration.
// It returns a FallbackExtractor walking every configured provider's model chain.
//
// Chain construction:
//  1. Providers are visited in cfg.Providers order (defaults when unset).
//  2. Each provider contributes its ExtractModels in the listed order.
//  3. Each instance is tried with retry logic (configured in RetryConfig).
//  4. Returns nil if no providers/models are configured (extraction disabled).
func CreateExtractor(ctx context.Context, cfg LLMConfig, m *metrics.Metrics) (EntityExtractor, error) {
	extractors := []EntityExtractor{}

	for _, provider := range providerOrder(cfg) {
		pc := cfg.GetProviderConfig(provider)
		if pc == nil || pc.APIKey == "" {
			continue
		}
		for _, model := range pc.ExtractModels {
			switch provider {
			case ProviderGemini:
				e, err := newGeminiExtractor(ctx, pc.APIKey, model)
				if err != nil {
					slog.WarnContext(ctx, "failed to create gemini extractor", "model", model, "error", err)
					continue
				}
				extractors = append(extractors, e)
			case ProviderGroq, ProviderCerebras:
				e, err := newOpenAIExtractor(ctx, provider, pc.APIKey, model)
				if err != nil {
					slog.WarnContext(ctx, "failed to create extractor", "provider", provider, "model", model, "error", err)
					continue
				}
				extractors = append(extractors, e)
			}
		}
	}

	if len(extractors) == 0 {
		slog.InfoContext(ctx, "no LLM provider configured for entity extraction")
		return nil, nil
	}

	slog.InfoContext(ctx, "entity extractor configured",
		"primary", extractors[0].Provider(),
		"chain_size", len(extractors))

	return NewFallbackExtractor(cfg.RetryConfig, m, extractors...), nil
}

// CreateOptimizer creates a PlanOptimizer based on the provided configuration.
// Chain construction mirrors CreateExtractor using each provider's PlanModels.
func CreateOptimizer(ctx context.Context, cfg LLMConfig, m *metrics.Metrics) (PlanOptimizer, error) {
	optimizers := []PlanOptimizer{}

	for _, provider := range providerOrder(cfg) {
		pc := cfg.GetProviderConfig(provider)
		if pc == nil || pc.APIKey == "" {
			continue
		}
		for _, model := range pc.PlanModels {
			switch provider {
			case ProviderGemini:
				o, err := newGeminiOptimizer(ctx, pc.APIKey, model)
				if err != nil {
					slog.WarnContext(ctx, "failed to create gemini optimizer", "model", model, "error", err)
					continue
				}
				optimizers = append(optimizers, o)
			case ProviderGroq, ProviderCerebras:
				o, err := newOpenAIOptimizer(ctx, provider, pc.APIKey, model)
				if err != nil {
					slog.WarnContext(ctx, "failed to create optimizer", "provider", provider, "model", model, "error", err)
					continue
				}
				optimizers = append(optimizers, o)
			}
		}
	}

	if len(optimizers) == 0 {
		slog.InfoContext(ctx, "no LLM provider configured for plan review")
		return nil, nil
	}

	slog.InfoContext(ctx, "plan optimizer configured",
		"primary", optimizers[0].Provider(),
		"chain_size", len(optimizers))

	return NewFallbackOptimizer(cfg.RetryConfig, m, optimizers...), nil
}

// CreateResponder creates a Responder based on the provided configuration.
// Chain construction mirrors CreateExtractor using each provider's ResponseModels.
func CreateResponder(ctx context.Context, cfg LLMConfig, m *metrics.Metrics) (Responder, error) {
	responders := []Responder{}

	for _, provider := range providerOrder(cfg) {
		pc := cfg.GetProviderConfig(provider)
		if pc == nil || pc.APIKey == "" {
			continue
		}
		for _, model := range pc.ResponseModels {
			switch provider {
			case ProviderGemini:
				r, err := newGeminiResponder(ctx, pc.APIKey, model)
				if err != nil {
					slog.WarnContext(ctx, "failed to create gemini responder", "model", model, "error", err)
					continue
				}
				responders = append(responders, r)
			case ProviderGroq, ProviderCerebras:
				r, err := newOpenAIResponder(ctx, provider, pc.APIKey, model)
				if err != nil {
					slog.WarnContext(ctx, "failed to create responder", "provider", provider, "model", model, "error", err)
					continue
				}
				responders = append(responders, r)
			}
		}
	}

	if len(responders) == 0 {
		slog.InfoContext(ctx, "no LLM provider configured for answer generation")
		return nil, nil
	}

	slog.InfoContext(ctx, "responder configured",
		"primary", responders[0].Provider(),
		"chain_size", len(responders))

	return NewFallbackResponder(cfg.RetryConfig, m, responders...), nil
}

// providerOrder returns the configured provider order with duplicates removed,
// defaulting when unset.
func providerOrder(cfg LLMConfig) []Provider {
	order := cfg.Providers
	if len(order) == 0 {
		order = DefaultProviders
	}

	seen := make(map[Provider]bool, len(order))
	result := make([]Provider, 0, len(order))
	for _, p := range order {
		if seen[p] {
			continue
		}
		seen[p] = true
		result = append(result, p)
	}
	return result
}

// DefaultLLMConfig returns a default LLM configuration.
// API keys must be provided separately.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Providers: DefaultProviders,
		Gemini: ProviderConfig{
			ExtractModels:  DefaultGeminiExtractModels,
			PlanModels:     DefaultGeminiPlanModels,
			ResponseModels: DefaultGeminiResponseModels,
		},
		Groq: ProviderConfig{
			ExtractModels:  DefaultGroqExtractModels,
			PlanModels:     DefaultGroqPlanModels,
			ResponseModels: DefaultGroqResponseModels,
		},
		Cerebras: ProviderConfig{
			ExtractModels:  DefaultCerebrasExtractModels,
			PlanModels:     DefaultCerebrasPlanModels,
			ResponseModels: DefaultCerebrasResponseModels,
		},
		RetryConfig: DefaultRetryConfig(),
	}
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxRetryAttempts,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}
