// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains the Gemini implementation of query-plan review.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// geminiOptimizer reviews drafted query plans using Gemini function calling.
// It implements the PlanOptimizer interface.
type geminiOptimizer struct {
	client     *genai.Client
	model      string
	tools      []*genai.Tool
	systemInst string
}

// newGeminiOptimizer creates a new Gemini-based plan optimizer.
// Returns nil if apiKey is empty (plan review disabled).
func newGeminiOptimizer(ctx context.Context, apiKey, model string) (*geminiOptimizer, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: plan review disabled when no API key
	}

	if model == "" {
		model = DefaultGeminiPlanModels[0]
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiOptimizer{
		client: client,
		model:  model,
		tools: []*genai.Tool{{
			FunctionDeclarations: BuildPlanFunctions(),
		}},
		systemInst: PlanOptimizerSystemPrompt,
	}, nil
}

// OptimizePlan reviews a drafted plan and returns a refined suggestion.
// The model uses ANY mode, requiring it to always call refinar_plan.
func (o *geminiOptimizer) OptimizePlan(ctx context.Context, req *PlanRequest) (*PlanSuggestion, error) {
	if o == nil {
		return nil, errors.New("plan optimizer is nil")
	}
	if req == nil || len(req.Calls) == 0 {
		return nil, errors.New("empty plan request")
	}

	config := &genai.GenerateContentConfig{
		Tools:             o.tools,
		SystemInstruction: genai.NewContentFromText(o.systemInst, genai.RoleUser),
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAny, // Force function calling
			},
		},
		Temperature:     genai.Ptr[float32](0.1), // Low temperature for consistent review
		MaxOutputTokens: 256,
	}

	start := time.Now()
	result, err := o.client.Models.GenerateContent(
		ctx,
		o.model,
		genai.Text(PlanReviewPrompt(req)),
		config,
	)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "plan review API call failed",
			"provider", "gemini",
			"model", o.model,
			"draft_calls", len(req.Calls),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, fmt.Errorf("generate content failed: %w", err)
	}

	suggestion, parseErr := o.parseResult(result)

	if parseErr == nil && result.UsageMetadata != nil {
		slog.DebugContext(ctx, "plan review completed",
			"provider", "gemini",
			"model", o.model,
			"input_tokens", result.UsageMetadata.PromptTokenCount,
			"output_tokens", result.UsageMetadata.CandidatesTokenCount,
			"total_tokens", result.UsageMetadata.TotalTokenCount,
			"duration_ms", duration.Milliseconds(),
			"suggested_calls", len(suggestion.Calls))
	}

	return suggestion, parseErr
}

// parseResult extracts the function call from the generation result.
func (o *geminiOptimizer) parseResult(result *genai.GenerateContentResponse) (*PlanSuggestion, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, errors.New("empty response from model")
	}

	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, errors.New("no content in response")
	}

	for _, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			if part.FunctionCall.Name != PlanFunctionName {
				return nil, fmt.Errorf("unknown function: %s", part.FunctionCall.Name)
			}
			return decodePlanArgs(part.FunctionCall.Args)
		}
	}

	return nil, errors.New("no function call in response (expected with ANY mode)")
}

// IsEnabled returns true if the optimizer is enabled.
func (o *geminiOptimizer) IsEnabled() bool {
	return o != nil && o.client != nil
}

// Provider returns the provider type for this optimizer.
func (o *geminiOptimizer) Provider() Provider {
	return ProviderGemini
}

// Close releases resources held by the geminiOptimizer.
// Safe to call on nil receiver.
func (o *geminiOptimizer) Close() error {
	if o == nil {
		return nil
	}
	// Note: genai.Client does not require explicit cleanup in current SDK version
	return nil
}
