// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains the unified OpenAI-compatible implementation of entity
// extraction. It works with any OpenAI-compatible provider (Groq, Cerebras)
// via custom BaseURL.
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

// openaiExtractor provides entity extraction using OpenAI-compatible API.
// It implements the EntityExtractor interface.
type openaiExtractor struct {
	client     openai.Client
	model      string
	tools      []openai.ChatCompletionToolUnionParam
	systemInst string
	provider   Provider
}

// newOpenAIExtractor creates a new OpenAI-compatible entity extractor.
// Returns nil if apiKey is empty (extraction disabled).
func newOpenAIExtractor(_ context.Context, provider Provider, apiKey, model string) (*openaiExtractor, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: extraction disabled when no API key
	}

	baseURL, ok := ProviderEndpoint[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
	}

	if model == "" {
		switch provider {
		case ProviderGroq:
			model = DefaultGroqExtractModels[0]
		case ProviderCerebras:
			model = DefaultCerebrasExtractModels[0]
		default:
			return nil, fmt.Errorf("no default model for provider: %s", provider)
		}
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &openaiExtractor{
		client:     client,
		model:      model,
		tools:      buildOpenAITools(BuildExtractionFunctions()),
		systemInst: ExtractorSystemPrompt,
		provider:   provider,
	}, nil
}

// ExtractEntities analyzes the utterance and returns the entities it mentions.
// The model uses required mode, forcing it to always call extraer_entidades.
func (e *openaiExtractor) ExtractEntities(ctx context.Context, utterance string) (*ExtractionResult, error) {
	if e == nil {
		return nil, errors.New("entity extractor is nil")
	}

	params := openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(e.systemInst),
			openai.UserMessage(utterance),
		},
		Tools: e.tools,
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String(string(openai.ChatCompletionToolChoiceOptionAutoRequired)),
		},
		Temperature: openai.Float(0.1), // Low temperature for consistent extraction
		MaxTokens:   openai.Int(512),
	}

	start := time.Now()
	resp, err := e.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "entity extraction API call failed",
			"provider", e.provider,
			"model", e.model,
			"input_length", len(utterance),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	extracted, parseErr := e.parseResult(resp)

	// Log success with token usage
	if parseErr == nil && resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "entity extraction completed",
			"provider", e.provider,
			"model", e.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"total_tokens", resp.Usage.TotalTokens,
			"duration_ms", duration.Milliseconds(),
			"intents", len(extracted.Intents))
	}

	return extracted, parseErr
}

// parseResult extracts the tool call from the OpenAI response.
func (e *openaiExtractor) parseResult(resp *openai.ChatCompletion) (*ExtractionResult, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("empty response from model")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, errors.New("no tool call in response (expected with required mode)")
	}

	return e.parseToolCall(choice.Message.ToolCalls[0])
}

// parseToolCall decodes the JSON arguments of an OpenAI tool call.
func (e *openaiExtractor) parseToolCall(tc openai.ChatCompletionMessageToolCallUnion) (*ExtractionResult, error) {
	if tc.Type != "function" {
		return nil, fmt.Errorf("unexpected tool type: %s", tc.Type)
	}
	if tc.Function.Name != ExtractFunctionName {
		return nil, fmt.Errorf("unknown function: %s", tc.Function.Name)
	}

	var args map[string]any
	if tc.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("failed to parse function arguments: %w", err)
		}
	}

	return decodeExtractionArgs(args)
}

// IsEnabled returns true if the extractor is enabled.
func (e *openaiExtractor) IsEnabled() bool {
	return e != nil
}

// Provider returns the provider type for this extractor.
func (e *openaiExtractor) Provider() Provider {
	if e == nil {
		return ""
	}
	return e.provider
}

// Close releases resources held by the openaiExtractor.
// Safe to call on nil receiver.
func (e *openaiExtractor) Close() error {
	if e == nil {
		return nil
	}
	// openai-go client doesn't require cleanup
	return nil
}
