// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains decoding of function-call arguments, shared by the
// Gemini and OpenAI-compatible implementations.
package genai

import (
	"fmt"
	"strings"
)

// toStringSlice coerces a JSON-decoded array into a string slice, dropping
// non-string elements and blanks.
func toStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		result = append(result, s)
	}
	return result
}

// toInt coerces a JSON-decoded number into an int. JSON numbers arrive as
// float64 from both SDKs.
func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}

// decodeExtractionArgs maps extraer_entidades arguments onto an
// ExtractionResult. The intents parameter is required; the entity arrays
// default to empty.
func decodeExtractionArgs(args map[string]any) (*ExtractionResult, error) {
	intents := toStringSlice(args["intents"])
	if len(intents) == 0 {
		return nil, fmt.Errorf("missing required parameter %q for function %q", "intents", ExtractFunctionName)
	}
	return &ExtractionResult{
		Faculties:      toStringSlice(args["faculties"]),
		Programs:       toStringSlice(args["programs"]),
		Courses:        toStringSlice(args["courses"]),
		Semesters:      toStringSlice(args["semesters"]),
		ScheduleTracks: toStringSlice(args["schedule_tracks"]),
		Intents:        intents,
	}, nil
}

// decodePlanArgs maps refinar_plan arguments onto a PlanSuggestion. The
// calls parameter is required; strategy and result_cap are left for the
// caller to validate.
func decodePlanArgs(args map[string]any) (*PlanSuggestion, error) {
	calls := toStringSlice(args["calls"])
	if len(calls) == 0 {
		return nil, fmt.Errorf("missing required parameter %q for function %q", "calls", PlanFunctionName)
	}
	strategy, _ := args["strategy"].(string)
	return &PlanSuggestion{
		Calls:     calls,
		Strategy:  strings.TrimSpace(strategy),
		ResultCap: toInt(args["result_cap"]),
	}, nil
}
