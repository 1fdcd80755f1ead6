// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains the Gemini implementation of entity extraction.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// geminiExtractor provides entity extraction using Gemini function calling.
// It implements the EntityExtractor interface.
type geminiExtractor struct {
	client     *genai.Client
	model      string
	tools      []*genai.Tool
	systemInst string
}

// newGeminiExtractor creates a new Gemini-based entity extractor.
// Returns nil if apiKey is empty (extraction disabled).
func newGeminiExtractor(ctx context.Context, apiKey, model string) (*geminiExtractor, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: extraction disabled when no API key
	}

	if model == "" {
		model = DefaultGeminiExtractModels[0]
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiExtractor{
		client: client,
		model:  model,
		tools: []*genai.Tool{{
			FunctionDeclarations: BuildExtractionFunctions(),
		}},
		systemInst: ExtractorSystemPrompt,
	}, nil
}

// ExtractEntities analyzes the utterance and returns the entities it mentions.
// The model uses ANY mode, requiring it to always call extraer_entidades.
func (e *geminiExtractor) ExtractEntities(ctx context.Context, utterance string) (*ExtractionResult, error) {
	if e == nil {
		return nil, errors.New("entity extractor is nil")
	}

	// Configure generation with tools in ANY mode (forces function calling)
	config := &genai.GenerateContentConfig{
		Tools:             e.tools,
		SystemInstruction: genai.NewContentFromText(e.systemInst, genai.RoleUser),
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAny, // Force function calling
			},
		},
		Temperature:     genai.Ptr[float32](0.1), // Low temperature for consistent extraction
		MaxOutputTokens: 512,
	}

	start := time.Now()
	result, err := e.client.Models.GenerateContent(
		ctx,
		e.model,
		genai.Text(utterance),
		config,
	)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "entity extraction API call failed",
			"provider", "gemini",
			"model", e.model,
			"input_length", len(utterance),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, fmt.Errorf("generate content failed: %w", err)
	}

	extracted, parseErr := e.parseResult(result)

	// Log success with token usage
	if parseErr == nil && result.UsageMetadata != nil {
		slog.DebugContext(ctx, "entity extraction completed",
			"provider", "gemini",
			"model", e.model,
			"input_tokens", result.UsageMetadata.PromptTokenCount,
			"output_tokens", result.UsageMetadata.CandidatesTokenCount,
			"total_tokens", result.UsageMetadata.TotalTokenCount,
			"duration_ms", duration.Milliseconds(),
			"intents", len(extracted.Intents))
	}

	return extracted, parseErr
}

// parseResult extracts the function call from the generation result.
func (e *geminiExtractor) parseResult(result *genai.GenerateContentResponse) (*ExtractionResult, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, errors.New("empty response from model")
	}

	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, errors.New("no content in response")
	}

	// Check each part for function call (ANY mode forces function calling)
	for _, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			if part.FunctionCall.Name != ExtractFunctionName {
				return nil, fmt.Errorf("unknown function: %s", part.FunctionCall.Name)
			}
			return decodeExtractionArgs(part.FunctionCall.Args)
		}
	}

	return nil, errors.New("no function call in response (expected with ANY mode)")
}

// IsEnabled returns true if the extractor is enabled.
func (e *geminiExtractor) IsEnabled() bool {
	return e != nil && e.client != nil
}

// Provider returns the provider type for this extractor.
func (e *geminiExtractor) Provider() Provider {
	return ProviderGemini
}

// Close releases resources held by the geminiExtractor.
// Safe to call on nil receiver.
func (e *geminiExtractor) Close() error {
	if e == nil {
		return nil
	}
	// Note: genai.Client does not require explicit cleanup in current SDK version
	return nil
}
