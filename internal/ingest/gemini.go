package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// defaultOCRModel is used when no model is configured. OCR needs a
// multimodal model; the lite variants trade away too much vision quality
// on scanned admission guides.
const defaultOCRModel = "gemini-2.5-flash"

// maxOCRTokens bounds the transcription length. Admission guides run long,
// so this is far above the response budgets used elsewhere.
const maxOCRTokens = 8192

// ocrPrompt instructs the model to transcribe, not summarize.
const ocrPrompt = `Extrae el texto completo del documento adjunto.
Conserva los títulos, las listas y el orden original del contenido.
Transcribe las tablas fila por fila, separando las celdas con " | ".
No resumas, no traduzcas y no agregues comentarios propios.
Separa las secciones con una línea en blanco.`

// TextExtractor turns raw document bytes into plain text. Implementations
// must be safe for concurrent use.
type TextExtractor interface {
	ExtractText(ctx context.Context, raw []byte, mimeType string) (string, error)
}

// GeminiExtractor extracts document text with a Gemini vision model. It
// implements the TextExtractor interface.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates a Gemini-based text extractor.
// Returns nil if apiKey is empty (PDF extraction disabled).
func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: OCR disabled when no API key
	}

	if model == "" {
		model = defaultOCRModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiExtractor{
		client: client,
		model:  model,
	}, nil
}

// ExtractText sends the document inline and returns the transcription.
func (x *GeminiExtractor) ExtractText(ctx context.Context, raw []byte, mimeType string) (string, error) {
	if x == nil {
		return "", errors.New("text extractor is nil")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(raw, mimeType),
			genai.NewPartFromText(ocrPrompt),
		}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0), // Transcription must not get creative
		MaxOutputTokens: maxOCRTokens,
	}

	start := time.Now()
	result, err := x.client.Models.GenerateContent(ctx, x.model, contents, config)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "document OCR call failed",
			"provider", "gemini",
			"model", x.model,
			"input_bytes", len(raw),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	text, parseErr := collectText(result)

	if parseErr == nil && result.UsageMetadata != nil {
		slog.DebugContext(ctx, "document OCR completed",
			"provider", "gemini",
			"model", x.model,
			"input_bytes", len(raw),
			"output_tokens", result.UsageMetadata.CandidatesTokenCount,
			"duration_ms", duration.Milliseconds())
	}

	return text, parseErr
}

// collectText concatenates the text parts of the first candidate.
func collectText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 {
		return "", errors.New("empty response from model")
	}

	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("no content in response")
	}

	var text string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	if text == "" {
		return "", errors.New("no text in response")
	}
	return text, nil
}

// IsEnabled returns true if the extractor is enabled.
func (x *GeminiExtractor) IsEnabled() bool {
	return x != nil && x.client != nil
}

// Close releases resources held by the extractor.
// Safe to call on nil receiver.
func (x *GeminiExtractor) Close() error {
	if x == nil {
		return nil
	}
	// Note: genai.Client does not require explicit cleanup in current SDK version
	return nil
}
