// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file converts Gemini function declarations to the OpenAI v3 tool format
// shared by Groq and Cerebras.
package genai

import (
	"strings"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

// buildOpenAITools converts function declarations to OpenAI v3 tool format.
// OpenAI API uses lowercase JSON Schema types per Draft 2020-12 spec, so
// genai.Type* constants are lowercased ("STRING" → "string"). Array items
// and the declared required list are carried over.
func buildOpenAITools(funcDecls []*genai.FunctionDeclaration) []openai.ChatCompletionToolUnionParam {
	result := make([]openai.ChatCompletionToolUnionParam, 0, len(funcDecls))

	for _, fd := range funcDecls {
		properties := make(map[string]any, len(fd.Parameters.Properties))
		for name, schema := range fd.Parameters.Properties {
			properties[name] = convertSchema(schema)
		}

		tool := openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        fd.Name,
			Description: openai.String(fd.Description),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": properties,
				"required":   fd.Parameters.Required,
			},
		})
		result = append(result, tool)
	}

	return result
}

// convertSchema maps one genai parameter schema to JSON Schema form.
func convertSchema(schema *genai.Schema) map[string]any {
	converted := map[string]any{
		"type":        strings.ToLower(string(schema.Type)),
		"description": schema.Description,
	}
	if schema.Items != nil {
		converted["items"] = map[string]any{
			"type": strings.ToLower(string(schema.Items.Type)),
		}
	}
	return converted
}
