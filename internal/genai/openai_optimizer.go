// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains the unified OpenAI-compatible implementation of query-plan
// review for Groq and Cerebras.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiOptimizer reviews drafted query plans using OpenAI-compatible API.
// It implements the PlanOptimizer interface.
type openaiOptimizer struct {
	client     openai.Client
	model      string
	tools      []openai.ChatCompletionToolUnionParam
	systemInst string
	provider   Provider
}

// newOpenAIOptimizer creates a new OpenAI-compatible plan optimizer.
// Returns nil if apiKey is empty (plan review disabled).
func newOpenAIOptimizer(_ context.Context, provider Provider, apiKey, model string) (*openaiOptimizer, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: plan review disabled when no API key
	}

	baseURL, ok := ProviderEndpoint[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
	}

	if model == "" {
		switch provider {
		case ProviderGroq:
			model = DefaultGroqPlanModels[0]
		case ProviderCerebras:
			model = DefaultCerebrasPlanModels[0]
		default:
			return nil, fmt.Errorf("no default model for provider: %s", provider)
		}
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &openaiOptimizer{
		client:     client,
		model:      model,
		tools:      buildOpenAITools(BuildPlanFunctions()),
		systemInst: PlanOptimizerSystemPrompt,
		provider:   provider,
	}, nil
}

// OptimizePlan reviews a drafted plan and returns a refined suggestion.
// The model uses required mode, forcing it to always call refinar_plan.
func (o *openaiOptimizer) OptimizePlan(ctx context.Context, req *PlanRequest) (*PlanSuggestion, error) {
	if o == nil {
		return nil, errors.New("plan optimizer is nil")
	}
	if req == nil || len(req.Calls) == 0 {
		return nil, errors.New("empty plan request")
	}

	params := openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(o.systemInst),
			openai.UserMessage(PlanReviewPrompt(req)),
		},
		Tools: o.tools,
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String(string(openai.ChatCompletionToolChoiceOptionAutoRequired)),
		},
		Temperature: openai.Float(0.1), // Low temperature for consistent review
		MaxTokens:   openai.Int(256),
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "plan review API call failed",
			"provider", o.provider,
			"model", o.model,
			"draft_calls", len(req.Calls),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	suggestion, parseErr := o.parseResult(resp)

	if parseErr == nil && resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "plan review completed",
			"provider", o.provider,
			"model", o.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"total_tokens", resp.Usage.TotalTokens,
			"duration_ms", duration.Milliseconds(),
			"suggested_calls", len(suggestion.Calls))
	}

	return suggestion, parseErr
}

// parseResult extracts the tool call from the OpenAI response.
func (o *openaiOptimizer) parseResult(resp *openai.ChatCompletion) (*PlanSuggestion, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("empty response from model")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, errors.New("no tool call in response (expected with required mode)")
	}

	return o.parseToolCall(choice.Message.ToolCalls[0])
}

// parseToolCall decodes the JSON arguments of an OpenAI tool call.
func (o *openaiOptimizer) parseToolCall(tc openai.ChatCompletionMessageToolCallUnion) (*PlanSuggestion, error) {
	if tc.Type != "function" {
		return nil, fmt.Errorf("unexpected tool type: %s", tc.Type)
	}
	if tc.Function.Name != PlanFunctionName {
		return nil, fmt.Errorf("unknown function: %s", tc.Function.Name)
	}

	var args map[string]any
	if tc.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("failed to parse function arguments: %w", err)
		}
	}

	return decodePlanArgs(args)
}

// IsEnabled returns true if the optimizer is enabled.
func (o *openaiOptimizer) IsEnabled() bool {
	return o != nil
}

// Provider returns the provider type for this optimizer.
func (o *openaiOptimizer) Provider() Provider {
	if o == nil {
		return ""
	}
	return o.provider
}

// Close releases resources held by the openaiOptimizer.
// Safe to call on nil receiver.
func (o *openaiOptimizer) Close() error {
	if o == nil {
		return nil
	}
	// openai-go client doesn't require cleanup
	return nil
}
