// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "ADMIBOT_PORT"
	EnvLogLevel        = "ADMIBOT_LOG_LEVEL"
	EnvShutdownTimeout = "ADMIBOT_SHUTDOWN_TIMEOUT"
	EnvServerName      = "ADMIBOT_SERVER_NAME"
	EnvInstanceID      = "ADMIBOT_INSTANCE_ID"

	// Data
	EnvDataDir  = "ADMIBOT_DATA_DIR"
	EnvCacheTTL = "ADMIBOT_CACHE_TTL"

	// Academic API
	EnvAcademicBaseURLs   = "ADMIBOT_ACADEMIC_BASE_URLS"
	EnvAcademicTimeout    = "ADMIBOT_ACADEMIC_TIMEOUT"
	EnvAcademicMaxRetries = "ADMIBOT_ACADEMIC_MAX_RETRIES"
	EnvAcademicRPM        = "ADMIBOT_ACADEMIC_RPM"

	// Engine
	EnvMaxContextChars = "ADMIBOT_MAX_CONTEXT_CHARS"
	EnvExcerptBudget   = "ADMIBOT_EXCERPT_BUDGET"
	EnvHistoryTurns    = "ADMIBOT_HISTORY_TURNS"
	EnvSessionTTL      = "ADMIBOT_SESSION_TTL"

	// Rate Limits
	EnvGlobalRateRPS  = "ADMIBOT_GLOBAL_RATE_RPS"
	EnvChatRatePerMin = "ADMIBOT_CHAT_RATE_PER_MINUTE"
	EnvLLMRateBurst   = "ADMIBOT_LLM_RATE_BURST"
	EnvLLMRateRefill  = "ADMIBOT_LLM_RATE_REFILL"
	EnvLLMRateDaily   = "ADMIBOT_LLM_RATE_DAILY"

	// Background Tasks
	EnvWarmupWait             = "ADMIBOT_WARMUP_WAIT"
	EnvWarmupGracePeriod      = "ADMIBOT_WARMUP_GRACE_PERIOD"
	EnvDataRefreshInterval    = "ADMIBOT_DATA_REFRESH_INTERVAL"
	EnvDataCleanupInterval    = "ADMIBOT_DATA_CLEANUP_INTERVAL"
	EnvChatRetention          = "ADMIBOT_CHAT_RETENTION"
	EnvR2SnapshotPollInterval = "ADMIBOT_R2_SNAPSHOT_POLL_INTERVAL"

	// LLM Feature
	EnvLLMEnabled             = "ADMIBOT_LLM_ENABLED"
	EnvLLMProviders           = "ADMIBOT_LLM_PROVIDERS"
	EnvGeminiAPIKey           = "ADMIBOT_GEMINI_API_KEY"
	EnvGroqAPIKey             = "ADMIBOT_GROQ_API_KEY"
	EnvCerebrasAPIKey         = "ADMIBOT_CEREBRAS_API_KEY"
	EnvGeminiExtractModels    = "ADMIBOT_GEMINI_EXTRACT_MODELS"
	EnvGeminiPlanModels       = "ADMIBOT_GEMINI_PLAN_MODELS"
	EnvGeminiResponseModels   = "ADMIBOT_GEMINI_RESPONSE_MODELS"
	EnvGroqExtractModels      = "ADMIBOT_GROQ_EXTRACT_MODELS"
	EnvGroqPlanModels         = "ADMIBOT_GROQ_PLAN_MODELS"
	EnvGroqResponseModels     = "ADMIBOT_GROQ_RESPONSE_MODELS"
	EnvCerebrasExtractModels  = "ADMIBOT_CEREBRAS_EXTRACT_MODELS"
	EnvCerebrasPlanModels     = "ADMIBOT_CEREBRAS_PLAN_MODELS"
	EnvCerebrasResponseModels = "ADMIBOT_CEREBRAS_RESPONSE_MODELS"

	// R2 Snapshot Feature
	EnvR2Enabled         = "ADMIBOT_R2_ENABLED"
	EnvR2AccountID       = "ADMIBOT_R2_ACCOUNT_ID"
	EnvR2AccessKeyID     = "ADMIBOT_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "ADMIBOT_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "ADMIBOT_R2_BUCKET_NAME"
	EnvR2SnapshotKey     = "ADMIBOT_R2_SNAPSHOT_KEY"
	EnvR2LockKey         = "ADMIBOT_R2_LOCK_KEY"
	EnvR2LockTTL         = "ADMIBOT_R2_LOCK_TTL"
	EnvR2DocsPrefix      = "ADMIBOT_R2_DOCS_PREFIX"

	// Ingestion Feature
	EnvIngestEnabled  = "ADMIBOT_INGEST_ENABLED"
	EnvIngestTimeout  = "ADMIBOT_INGEST_TIMEOUT"
	EnvIngestOCRModel = "ADMIBOT_INGEST_OCR_MODEL"
	EnvIngestRetries  = "ADMIBOT_INGEST_RETRIES"

	// Sentry Feature
	EnvSentryEnabled          = "ADMIBOT_SENTRY_ENABLED"
	EnvSentryDSN              = "ADMIBOT_SENTRY_DSN"
	EnvSentryEnvironment      = "ADMIBOT_SENTRY_ENVIRONMENT"
	EnvSentryRelease          = "ADMIBOT_SENTRY_RELEASE"
	EnvSentrySampleRate       = "ADMIBOT_SENTRY_SAMPLE_RATE"
	EnvSentryTracesSampleRate = "ADMIBOT_SENTRY_TRACES_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken    = "ADMIBOT_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "ADMIBOT_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsUsername = "ADMIBOT_METRICS_USERNAME"
	EnvMetricsPassword = "ADMIBOT_METRICS_PASSWORD"
)
