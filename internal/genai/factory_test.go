package genai

import (
	"context"
	"testing"
)

func TestDefaultLLMConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultLLMConfig()

	// Check default provider order
	if len(cfg.Providers) != len(DefaultProviders) {
		t.Fatalf("Providers length = %v, want %v", len(cfg.Providers), len(DefaultProviders))
	}
	for i, p := range cfg.Providers {
		if p != DefaultProviders[i] {
			t.Errorf("Providers[%d] = %v, want %v", i, p, DefaultProviders[i])
		}
	}

	// Check Gemini defaults (slice-based model chains)
	if len(cfg.Gemini.ExtractModels) != len(DefaultGeminiExtractModels) {
		t.Errorf("Gemini.ExtractModels length = %v, want %v", len(cfg.Gemini.ExtractModels), len(DefaultGeminiExtractModels))
	}
	for i, model := range cfg.Gemini.ExtractModels {
		if model != DefaultGeminiExtractModels[i] {
			t.Errorf("Gemini.ExtractModels[%d] = %v, want %v", i, model, DefaultGeminiExtractModels[i])
		}
	}
	if len(cfg.Gemini.PlanModels) != len(DefaultGeminiPlanModels) {
		t.Errorf("Gemini.PlanModels length = %v, want %v", len(cfg.Gemini.PlanModels), len(DefaultGeminiPlanModels))
	}
	if len(cfg.Gemini.ResponseModels) != len(DefaultGeminiResponseModels) {
		t.Errorf("Gemini.ResponseModels length = %v, want %v", len(cfg.Gemini.ResponseModels), len(DefaultGeminiResponseModels))
	}

	// Check Groq defaults
	if len(cfg.Groq.ExtractModels) != len(DefaultGroqExtractModels) {
		t.Errorf("Groq.ExtractModels length = %v, want %v", len(cfg.Groq.ExtractModels), len(DefaultGroqExtractModels))
	}
	if len(cfg.Groq.ResponseModels) != len(DefaultGroqResponseModels) {
		t.Errorf("Groq.ResponseModels length = %v, want %v", len(cfg.Groq.ResponseModels), len(DefaultGroqResponseModels))
	}

	// Check Cerebras defaults
	if len(cfg.Cerebras.ExtractModels) != len(DefaultCerebrasExtractModels) {
		t.Errorf("Cerebras.ExtractModels length = %v, want %v", len(cfg.Cerebras.ExtractModels), len(DefaultCerebrasExtractModels))
	}

	// Check retry config defaults
	if cfg.RetryConfig.MaxAttempts != DefaultMaxRetryAttempts {
		t.Errorf("RetryConfig.MaxAttempts = %v, want %v", cfg.RetryConfig.MaxAttempts, DefaultMaxRetryAttempts)
	}
	if cfg.RetryConfig.InitialDelay != DefaultInitialRetryDelay {
		t.Errorf("RetryConfig.InitialDelay = %v, want %v", cfg.RetryConfig.InitialDelay, DefaultInitialRetryDelay)
	}
	if cfg.RetryConfig.MaxDelay != DefaultMaxRetryDelay {
		t.Errorf("RetryConfig.MaxDelay = %v, want %v", cfg.RetryConfig.MaxDelay, DefaultMaxRetryDelay)
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultRetryConfig()

	if cfg.MaxAttempts != DefaultMaxRetryAttempts {
		t.Errorf("MaxAttempts = %v, want %v", cfg.MaxAttempts, DefaultMaxRetryAttempts)
	}
	if cfg.InitialDelay != DefaultInitialRetryDelay {
		t.Errorf("InitialDelay = %v, want %v", cfg.InitialDelay, DefaultInitialRetryDelay)
	}
	if cfg.MaxDelay != DefaultMaxRetryDelay {
		t.Errorf("MaxDelay = %v, want %v", cfg.MaxDelay, DefaultMaxRetryDelay)
	}
}

func TestLLMConfig_HasAnyProvider(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		cfg      LLMConfig
		expected bool
	}{
		{
			name:     "no providers",
			cfg:      LLMConfig{},
			expected: false,
		},
		{
			name: "gemini only",
			cfg: LLMConfig{
				Gemini: ProviderConfig{APIKey: "test-key"},
			},
			expected: true,
		},
		{
			name: "groq only",
			cfg: LLMConfig{
				Groq: ProviderConfig{APIKey: "test-key"},
			},
			expected: true,
		},
		{
			name: "cerebras only",
			cfg: LLMConfig{
				Cerebras: ProviderConfig{APIKey: "test-key"},
			},
			expected: true,
		},
		{
			name: "all providers",
			cfg: LLMConfig{
				Gemini:   ProviderConfig{APIKey: "gemini-key"},
				Groq:     ProviderConfig{APIKey: "groq-key"},
				Cerebras: ProviderConfig{APIKey: "cerebras-key"},
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.cfg.HasAnyProvider(); got != tt.expected {
				t.Errorf("HasAnyProvider() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLLMConfig_HasProvider(t *testing.T) {
	t.Parallel()
	cfg := LLMConfig{
		Gemini: ProviderConfig{APIKey: "gemini-key"},
	}

	if !cfg.HasProvider(ProviderGemini) {
		t.Error("HasProvider(Gemini) should return true")
	}
	if cfg.HasProvider(ProviderGroq) {
		t.Error("HasProvider(Groq) should return false")
	}
	if cfg.HasProvider("unknown") {
		t.Error("HasProvider(unknown) should return false")
	}
}

func TestLLMConfig_ConfiguredProviders(t *testing.T) {
	t.Parallel()
	cfg := LLMConfig{
		Providers: []Provider{ProviderGemini, ProviderGroq, ProviderCerebras},
		Groq:      ProviderConfig{APIKey: "groq-key"},
		Cerebras:  ProviderConfig{APIKey: "cerebras-key"},
	}

	got := cfg.ConfiguredProviders()
	want := []Provider{ProviderGroq, ProviderCerebras}
	if len(got) != len(want) {
		t.Fatalf("ConfiguredProviders() length = %v, want %v", len(got), len(want))
	}
	for i, p := range got {
		if p != want[i] {
			t.Errorf("ConfiguredProviders()[%d] = %v, want %v", i, p, want[i])
		}
	}
}

func TestProviderOrder(t *testing.T) {
	t.Parallel()

	// Empty config falls back to the default order
	got := providerOrder(LLMConfig{})
	if len(got) != len(DefaultProviders) {
		t.Fatalf("providerOrder(empty) length = %v, want %v", len(got), len(DefaultProviders))
	}
	for i, p := range got {
		if p != DefaultProviders[i] {
			t.Errorf("providerOrder(empty)[%d] = %v, want %v", i, p, DefaultProviders[i])
		}
	}

	// Duplicates are removed, first occurrence wins
	got = providerOrder(LLMConfig{
		Providers: []Provider{ProviderGroq, ProviderGemini, ProviderGroq},
	})
	want := []Provider{ProviderGroq, ProviderGemini}
	if len(got) != len(want) {
		t.Fatalf("providerOrder(dupes) length = %v, want %v", len(got), len(want))
	}
	for i, p := range got {
		if p != want[i] {
			t.Errorf("providerOrder(dupes)[%d] = %v, want %v", i, p, want[i])
		}
	}
}

func TestCreateExtractor_NoProviders(t *testing.T) {
	t.Parallel()
	cfg := DefaultLLMConfig()
	// No API keys set

	extractor, err := CreateExtractor(context.Background(), cfg, nil)
	if err != nil {
		t.Errorf("CreateExtractor() error = %v, want nil", err)
	}
	if extractor != nil {
		t.Error("CreateExtractor() should return nil when no providers configured")
	}
}

func TestCreateOptimizer_NoProviders(t *testing.T) {
	t.Parallel()
	cfg := DefaultLLMConfig()
	// No API keys set

	optimizer, err := CreateOptimizer(context.Background(), cfg, nil)
	if err != nil {
		t.Errorf("CreateOptimizer() error = %v, want nil", err)
	}
	if optimizer != nil {
		t.Error("CreateOptimizer() should return nil when no providers configured")
	}
}

func TestCreateResponder_NoProviders(t *testing.T) {
	t.Parallel()
	cfg := DefaultLLMConfig()
	// No API keys set

	responder, err := CreateResponder(context.Background(), cfg, nil)
	if err != nil {
		t.Errorf("CreateResponder() error = %v, want nil", err)
	}
	if responder != nil {
		t.Error("CreateResponder() should return nil when no providers configured")
	}
}

func TestCreateExtractor_GroqOnly(t *testing.T) {
	t.Parallel()
	cfg := DefaultLLMConfig()
	cfg.Providers = []Provider{ProviderGroq}
	cfg.Groq.APIKey = "test-key"

	extractor, err := CreateExtractor(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("CreateExtractor() error = %v, want nil", err)
	}
	if extractor == nil {
		t.Fatal("Expected non-nil extractor")
		return
	}
	if !extractor.IsEnabled() {
		t.Error("IsEnabled() = false, want true")
	}
	if extractor.Provider() != ProviderGroq {
		t.Errorf("Provider() = %v, want %v", extractor.Provider(), ProviderGroq)
	}
	if err := extractor.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestCreateOptimizer_GroqOnly(t *testing.T) {
	t.Parallel()
	cfg := DefaultLLMConfig()
	cfg.Providers = []Provider{ProviderGroq}
	cfg.Groq.APIKey = "test-key"

	optimizer, err := CreateOptimizer(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("CreateOptimizer() error = %v, want nil", err)
	}
	if optimizer == nil {
		t.Fatal("Expected non-nil optimizer")
		return
	}
	if optimizer.Provider() != ProviderGroq {
		t.Errorf("Provider() = %v, want %v", optimizer.Provider(), ProviderGroq)
	}
	if err := optimizer.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestCreateResponder_GroqOnly(t *testing.T) {
	t.Parallel()
	cfg := DefaultLLMConfig()
	cfg.Providers = []Provider{ProviderGroq}
	cfg.Groq.APIKey = "test-key"

	responder, err := CreateResponder(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("CreateResponder() error = %v, want nil", err)
	}
	if responder == nil {
		t.Fatal("Expected non-nil responder")
		return
	}
	if responder.Provider() != ProviderGroq {
		t.Errorf("Provider() = %v, want %v", responder.Provider(), ProviderGroq)
	}
	if err := responder.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestProviderString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		provider Provider
		expected string
	}{
		{ProviderGemini, "gemini"},
		{ProviderGroq, "groq"},
		{ProviderCerebras, "cerebras"},
		{Provider("custom"), "custom"},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			t.Parallel()
			if got := tt.provider.String(); got != tt.expected {
				t.Errorf("Provider.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}
