package genai

import (
	"context"
	"testing"
)

func TestNewGeminiExtractor_NilWithEmptyKey(t *testing.T) {
	t.Parallel()
	extractor, err := newGeminiExtractor(context.Background(), "", "")
	if err != nil {
		t.Errorf("Expected nil error for empty key, got: %v", err)
	}
	if extractor != nil {
		t.Error("Expected nil extractor for empty key")
	}
}

func TestGeminiExtractor_NilReceiver(t *testing.T) {
	t.Parallel()
	var e *geminiExtractor

	if _, err := e.ExtractEntities(context.Background(), "hola"); err == nil {
		t.Error("Expected error for nil extractor")
	}
	if e.IsEnabled() {
		t.Error("IsEnabled() = true for nil extractor")
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}
