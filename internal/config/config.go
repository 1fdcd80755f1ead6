// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, warmup mode, timeouts, and cache settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ValidationMode selects which parts of the configuration Load enforces.
type ValidationMode int

const (
	// ServerMode validates everything the chat server needs.
	ServerMode ValidationMode = iota

	// WarmupMode validates only what catalog warmup needs; feature
	// credentials (LLM, Sentry, metrics auth) are not required.
	WarmupMode
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	ServerName      string
	InstanceID      string

	// Data Configuration
	DataDir  string        // Data directory for the SQLite database
	CacheTTL time.Duration // Absolute expiration for cached catalog rows (default: 7 days)

	// Academic API Configuration
	AcademicBaseURLs          []string // Failover order, first URL is primary
	AcademicTimeout           time.Duration
	AcademicMaxRetries        int
	AcademicRequestsPerMinute float64

	// Background Tasks
	WaitForWarmup        bool          // Hold readiness until the catalog warmup finishes
	WarmupGracePeriod    time.Duration // Report ready anyway after this much waiting
	DataRefreshInterval  time.Duration
	DataCleanupInterval  time.Duration
	ChatRetention        time.Duration // How long chat transcripts are kept
	SnapshotPollInterval time.Duration

	// LLM Feature
	LLMEnabled             bool
	LLMProviders           []string // Ordered fallback chain, e.g. "gemini,groq"
	GeminiAPIKey           string
	GroqAPIKey             string
	CerebrasAPIKey         string
	GeminiExtractModels    []string
	GeminiPlanModels       []string
	GeminiResponseModels   []string
	GroqExtractModels      []string
	GroqPlanModels         []string
	GroqResponseModels     []string
	CerebrasExtractModels  []string
	CerebrasPlanModels     []string
	CerebrasResponseModels []string

	// R2 Snapshot Feature
	R2Enabled         bool
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2SnapshotKey     string
	R2LockKey         string
	R2LockTTL         time.Duration
	R2DocsPrefix      string // Key prefix for ingested source documents

	// Ingestion Feature
	IngestEnabled  bool
	IngestTimeout  time.Duration
	IngestOCRModel string // Empty selects the ingest package default
	IngestRetries  int

	// Sentry Feature
	SentryEnabled          bool
	SentryDSN              string
	SentryEnvironment      string
	SentryRelease          string
	SentrySampleRate       float64
	SentryTracesSampleRate float64

	// Better Stack Feature
	BetterStackToken    string
	BetterStackEndpoint string

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Engine Configuration (embedded)
	Engine EngineConfig
}

// Load reads configuration from environment variables with full server
// validation. It attempts to load a .env file first, then reads env vars.
func Load() (*Config, error) {
	return LoadForMode(ServerMode)
}

// LoadForMode reads configuration and validates it for the given mode.
func LoadForMode(mode ValidationMode) (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	engine := DefaultEngineConfig()
	engine.MaxContextChars = getIntEnv(EnvMaxContextChars, engine.MaxContextChars)
	engine.ExcerptBudget = getIntEnv(EnvExcerptBudget, engine.ExcerptBudget)
	engine.HistoryTurns = getIntEnv(EnvHistoryTurns, engine.HistoryTurns)
	engine.SessionTTL = getDurationEnv(EnvSessionTTL, engine.SessionTTL)
	engine.ChatRequestsPerMinute = getIntEnv(EnvChatRatePerMin, engine.ChatRequestsPerMinute)
	engine.GlobalRateLimitRPS = getFloatEnv(EnvGlobalRateRPS, engine.GlobalRateLimitRPS)
	engine.LLMRateBurst = getFloatEnv(EnvLLMRateBurst, engine.LLMRateBurst)
	engine.LLMRateRefillPerHour = getFloatEnv(EnvLLMRateRefill, engine.LLMRateRefillPerHour)
	engine.LLMRateDaily = getIntEnv(EnvLLMRateDaily, engine.LLMRateDaily)

	cfg := &Config{
		// Server Configuration
		Port:            getEnv(EnvPort, "8080"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),
		ServerName:      getEnv(EnvServerName, "admibot"),
		InstanceID:      getEnv(EnvInstanceID, ""),

		// Data Configuration
		DataDir:  getEnv(EnvDataDir, getDefaultDataDir()),
		CacheTTL: getDurationEnv(EnvCacheTTL, 168*time.Hour), // TTL: 7 days

		// Academic API Configuration
		AcademicBaseURLs:          getListEnv(EnvAcademicBaseURLs, []string{"https://api.ufps.edu.co"}),
		AcademicTimeout:           getDurationEnv(EnvAcademicTimeout, AcademicRequest),
		AcademicMaxRetries:        getIntEnv(EnvAcademicMaxRetries, 3),
		AcademicRequestsPerMinute: getFloatEnv(EnvAcademicRPM, 120.0),

		// Background Tasks
		WaitForWarmup:        getBoolEnv(EnvWarmupWait, false),
		WarmupGracePeriod:    getDurationEnv(EnvWarmupGracePeriod, 2*time.Minute),
		DataRefreshInterval:  getDurationEnv(EnvDataRefreshInterval, DataRefreshDefault),
		DataCleanupInterval:  getDurationEnv(EnvDataCleanupInterval, CacheCleanupInterval),
		ChatRetention:        getDurationEnv(EnvChatRetention, 720*time.Hour), // 30 days
		SnapshotPollInterval: getDurationEnv(EnvR2SnapshotPollInterval, 5*time.Minute),

		// LLM Feature (empty model lists = use defaults from genai package)
		LLMEnabled:             getBoolEnv(EnvLLMEnabled, true),
		LLMProviders:           getListEnv(EnvLLMProviders, nil),
		GeminiAPIKey:           getEnv(EnvGeminiAPIKey, ""),
		GroqAPIKey:             getEnv(EnvGroqAPIKey, ""),
		CerebrasAPIKey:         getEnv(EnvCerebrasAPIKey, ""),
		GeminiExtractModels:    getListEnv(EnvGeminiExtractModels, nil),
		GeminiPlanModels:       getListEnv(EnvGeminiPlanModels, nil),
		GeminiResponseModels:   getListEnv(EnvGeminiResponseModels, nil),
		GroqExtractModels:      getListEnv(EnvGroqExtractModels, nil),
		GroqPlanModels:         getListEnv(EnvGroqPlanModels, nil),
		GroqResponseModels:     getListEnv(EnvGroqResponseModels, nil),
		CerebrasExtractModels:  getListEnv(EnvCerebrasExtractModels, nil),
		CerebrasPlanModels:     getListEnv(EnvCerebrasPlanModels, nil),
		CerebrasResponseModels: getListEnv(EnvCerebrasResponseModels, nil),

		// R2 Snapshot Feature
		R2Enabled:         getBoolEnv(EnvR2Enabled, false),
		R2AccountID:       getEnv(EnvR2AccountID, ""),
		R2AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
		R2SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
		R2BucketName:      getEnv(EnvR2BucketName, ""),
		R2SnapshotKey:     getEnv(EnvR2SnapshotKey, "snapshots/admibot.db.zst"),
		R2LockKey:         getEnv(EnvR2LockKey, "locks/refresh"),
		R2LockTTL:         getDurationEnv(EnvR2LockTTL, 10*time.Minute),
		R2DocsPrefix:      getEnv(EnvR2DocsPrefix, "docs/"),

		// Ingestion Feature
		IngestEnabled:  getBoolEnv(EnvIngestEnabled, false),
		IngestTimeout:  getDurationEnv(EnvIngestTimeout, IngestFetch),
		IngestOCRModel: getEnv(EnvIngestOCRModel, ""),
		IngestRetries:  getIntEnv(EnvIngestRetries, 2),

		// Sentry Feature
		SentryEnabled:          getBoolEnv(EnvSentryEnabled, false),
		SentryDSN:              getEnv(EnvSentryDSN, ""),
		SentryEnvironment:      getEnv(EnvSentryEnvironment, "production"),
		SentryRelease:          getEnv(EnvSentryRelease, ""),
		SentrySampleRate:       getFloatEnv(EnvSentrySampleRate, 1.0),
		SentryTracesSampleRate: getFloatEnv(EnvSentryTracesSampleRate, 0.1),

		// Better Stack Feature
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		// Metrics Authentication
		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		// Engine Configuration
		Engine: *engine,
	}

	if err := cfg.Validate(mode); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for the given mode.
func (c *Config) Validate(mode ValidationMode) error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New(EnvDataDir+" is required"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvCacheTTL, c.CacheTTL))
	}
	if len(c.AcademicBaseURLs) == 0 {
		errs = append(errs, errors.New(EnvAcademicBaseURLs+" must list at least one URL"))
	}
	if c.AcademicTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvAcademicTimeout, c.AcademicTimeout))
	}
	if c.AcademicMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvAcademicMaxRetries, c.AcademicMaxRetries))
	}

	if mode == ServerMode {
		if err := c.Engine.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("engine config: %w", err))
		}
		if c.R2Enabled {
			if c.R2AccountID == "" || c.R2AccessKeyID == "" || c.R2SecretAccessKey == "" || c.R2BucketName == "" {
				errs = append(errs, errors.New("R2 is enabled but account, key pair, or bucket is missing"))
			}
		}
		if c.SentryEnabled && c.SentryDSN == "" {
			errs = append(errs, errors.New(EnvSentryDSN+" is required when Sentry is enabled"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getListEnv retrieves a comma-separated environment variable as a slice,
// with whitespace trimmed and empty items dropped.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "admibot.db")
}

// HasLLMProvider returns true if at least one LLM provider is configured.
func (c *Config) HasLLMProvider() bool {
	return c.LLMEnabled && (c.GeminiAPIKey != "" || c.GroqAPIKey != "" || c.CerebrasAPIKey != "")
}
