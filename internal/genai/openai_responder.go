// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains the unified OpenAI-compatible implementation of grounded
// answer generation for Groq and Cerebras.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiResponder generates grounded answers using OpenAI-compatible API.
// It implements the Responder interface.
type openaiResponder struct {
	client     openai.Client
	model      string
	systemInst string
	provider   Provider
}

// newOpenAIResponder creates a new OpenAI-compatible responder.
// Returns nil if apiKey is empty (generation disabled).
func newOpenAIResponder(_ context.Context, provider Provider, apiKey, model string) (*openaiResponder, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: generation disabled when no API key
	}

	baseURL, ok := ProviderEndpoint[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
	}

	if model == "" {
		switch provider {
		case ProviderGroq:
			model = DefaultGroqResponseModels[0]
		case ProviderCerebras:
			model = DefaultCerebrasResponseModels[0]
		default:
			return nil, fmt.Errorf("no default model for provider: %s", provider)
		}
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &openaiResponder{
		client:     client,
		model:      model,
		systemInst: ResponderSystemPrompt,
		provider:   provider,
	}, nil
}

// Respond generates an answer to the utterance from the assembled context.
func (r *openaiResponder) Respond(ctx context.Context, req *ResponseRequest) (string, error) {
	if r == nil {
		return "", errors.New("responder is nil")
	}
	if req == nil || strings.TrimSpace(req.Utterance) == "" {
		return "", errors.New("empty response request")
	}

	params := openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(r.systemInst),
			openai.UserMessage(ResponsePrompt(req)),
		},
		Temperature: openai.Float(0.3), // Low temperature keeps answers close to the context
		MaxTokens:   openai.Int(512),
	}

	start := time.Now()
	resp, err := r.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "answer generation API call failed",
			"provider", r.provider,
			"model", r.model,
			"context_length", len(req.Context),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("empty response from model")
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", errors.New("empty text in response")
	}

	// Log success with token usage
	if resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "answer generation completed",
			"provider", r.provider,
			"model", r.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"total_tokens", resp.Usage.TotalTokens,
			"duration_ms", duration.Milliseconds(),
			"answer_length", len(result))
	}

	return result, nil
}

// IsEnabled returns true if the responder is enabled.
func (r *openaiResponder) IsEnabled() bool {
	return r != nil
}

// Provider returns the provider type for this responder.
func (r *openaiResponder) Provider() Provider {
	if r == nil {
		return ""
	}
	return r.provider
}

// Close releases resources held by the openaiResponder.
// Safe to call on nil receiver.
func (r *openaiResponder) Close() error {
	if r == nil {
		return nil
	}
	// openai-go client doesn't require cleanup
	return nil
}
