// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains the Gemini implementation of grounded answer generation.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiResponder generates grounded answers from assembled context.
// It implements the Responder interface.
type geminiResponder struct {
	client     *genai.Client
	model      string
	systemInst string
}

// newGeminiResponder creates a new Gemini-based responder.
// Returns nil if apiKey is empty (generation disabled).
func newGeminiResponder(ctx context.Context, apiKey, model string) (*geminiResponder, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: generation disabled when no API key
	}

	if model == "" {
		model = DefaultGeminiResponseModels[0]
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiResponder{
		client:     client,
		model:      model,
		systemInst: ResponderSystemPrompt,
	}, nil
}

// Respond generates an answer to the utterance from the assembled context.
func (r *geminiResponder) Respond(ctx context.Context, req *ResponseRequest) (string, error) {
	if r == nil || r.client == nil {
		return "", errors.New("responder is nil")
	}
	if req == nil || strings.TrimSpace(req.Utterance) == "" {
		return "", errors.New("empty response request")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(r.systemInst, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.3), // Low temperature keeps answers close to the context
		MaxOutputTokens:   512,
	}

	start := time.Now()
	resp, err := r.client.Models.GenerateContent(ctx, r.model, genai.Text(ResponsePrompt(req)), config)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "answer generation API call failed",
			"provider", "gemini",
			"model", r.model,
			"context_length", len(req.Context),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from model")
	}

	var answer strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			answer.WriteString(part.Text)
		}
	}

	result := strings.TrimSpace(answer.String())
	if result == "" {
		return "", errors.New("empty text in response")
	}

	// Log success with token usage
	if resp.UsageMetadata != nil {
		slog.DebugContext(ctx, "answer generation completed",
			"provider", "gemini",
			"model", r.model,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens", resp.UsageMetadata.TotalTokenCount,
			"duration_ms", duration.Milliseconds(),
			"answer_length", len(result))
	}

	return result, nil
}

// IsEnabled returns true if the responder is enabled.
func (r *geminiResponder) IsEnabled() bool {
	return r != nil && r.client != nil
}

// Provider returns the provider type for this responder.
func (r *geminiResponder) Provider() Provider {
	return ProviderGemini
}

// Close releases resources held by the geminiResponder.
// Safe to call on nil receiver.
func (r *geminiResponder) Close() error {
	if r == nil {
		return nil
	}
	// Note: genai.Client does not require explicit cleanup in current SDK version
	return nil
}
