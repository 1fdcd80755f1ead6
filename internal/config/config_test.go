package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port '8080', got '%s'", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.CacheTTL != 168*time.Hour {
		t.Errorf("Expected default cache TTL 168h, got %v", cfg.CacheTTL)
	}
	if len(cfg.AcademicBaseURLs) == 0 {
		t.Error("Expected a default academic base URL")
	}
	if cfg.AcademicMaxRetries != 3 {
		t.Errorf("Expected default max retries 3, got %d", cfg.AcademicMaxRetries)
	}
	if cfg.Engine.MaxContextChars != 6000 {
		t.Errorf("Expected default max context chars 6000, got %d", cfg.Engine.MaxContextChars)
	}
	if !strings.HasSuffix(cfg.SQLitePath(), "admibot.db") {
		t.Errorf("Unexpected SQLite path: %s", cfg.SQLitePath())
	}
}

func TestLoadOverrides(t *testing.T) {
	overrides := map[string]string{
		EnvPort:             "9999",
		EnvCacheTTL:         "24h",
		EnvAcademicBaseURLs: "https://a.example.edu.co, https://b.example.edu.co",
		EnvMaxContextChars:  "2000",
		EnvLLMProviders:     "groq",
		EnvWarmupWait:       "true",
	}
	for key, value := range overrides {
		_ = os.Setenv(key, value)
	}
	defer func() {
		for key := range overrides {
			_ = os.Unsetenv(key)
		}
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("Expected port '9999', got '%s'", cfg.Port)
	}
	if cfg.CacheTTL != 24*time.Hour {
		t.Errorf("Expected cache TTL 24h, got %v", cfg.CacheTTL)
	}
	if len(cfg.AcademicBaseURLs) != 2 || cfg.AcademicBaseURLs[1] != "https://b.example.edu.co" {
		t.Errorf("Unexpected base URLs: %v", cfg.AcademicBaseURLs)
	}
	if cfg.Engine.MaxContextChars != 2000 {
		t.Errorf("Expected max context chars 2000, got %d", cfg.Engine.MaxContextChars)
	}
	if len(cfg.LLMProviders) != 1 || cfg.LLMProviders[0] != "groq" {
		t.Errorf("Unexpected LLM providers: %v", cfg.LLMProviders)
	}
	if !cfg.WaitForWarmup {
		t.Error("Expected WaitForWarmup true")
	}
}

func TestLoadForMode(t *testing.T) {
	tests := []struct {
		name        string
		mode        ValidationMode
		env         map[string]string
		wantErr     bool
		errContains string
	}{
		{
			name:    "server mode - defaults are valid",
			mode:    ServerMode,
			wantErr: false,
		},
		{
			name: "server mode - R2 enabled without credentials",
			mode: ServerMode,
			env: map[string]string{
				EnvR2Enabled: "true",
			},
			wantErr:     true,
			errContains: "R2",
		},
		{
			name: "warmup mode - R2 credentials not required",
			mode: WarmupMode,
			env: map[string]string{
				EnvR2Enabled: "true",
			},
			wantErr: false,
		},
		{
			name: "server mode - Sentry enabled without DSN",
			mode: ServerMode,
			env: map[string]string{
				EnvSentryEnabled: "true",
			},
			wantErr:     true,
			errContains: EnvSentryDSN,
		},
		{
			name: "negative retries rejected in any mode",
			mode: WarmupMode,
			env: map[string]string{
				EnvAcademicMaxRetries: "-1",
			},
			wantErr:     true,
			errContains: EnvAcademicMaxRetries,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				_ = os.Setenv(key, value)
			}
			defer func() {
				for key := range tt.env {
					_ = os.Unsetenv(key)
				}
			}()

			_, err := LoadForMode(tt.mode)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected validation error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Expected error containing %q, got %v", tt.errContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadForMode() failed: %v", err)
			}
		})
	}
}

func TestGetListEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback []string
		expected []string
	}{
		{"unset uses fallback", "", []string{"x"}, []string{"x"}},
		{"simple list", "a,b", nil, []string{"a", "b"}},
		{"trims and drops empties", " a , ,b ", nil, []string{"a", "b"}},
		{"only separators uses fallback", ",,", []string{"x"}, []string{"x"}},
	}

	const key = "ADMIBOT_TEST_LIST"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				_ = os.Setenv(key, tt.value)
				defer func() { _ = os.Unsetenv(key) }()
			}

			got := getListEnv(key, tt.fallback)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Item %d: expected %q, got %q", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestHasLLMProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected bool
	}{
		{"enabled with key", Config{LLMEnabled: true, GroqAPIKey: "k"}, true},
		{"enabled without keys", Config{LLMEnabled: true}, false},
		{"disabled with key", Config{LLMEnabled: false, GeminiAPIKey: "k"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.HasLLMProvider(); got != tt.expected {
				t.Errorf("HasLLMProvider() = %v, want %v", got, tt.expected)
			}
		})
	}
}
