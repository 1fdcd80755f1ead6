// Package config provides centralized timeout constants for the application.
//
// These values are carefully tuned based on:
//   - Academic API response times (catalog queries, retry backoff)
//   - LLM API latency (extraction is quick, generation can be slow)
//   - SQLite performance characteristics (WAL mode, busy timeout)
//
// # Chat Turn Budget
//
// One chat turn may involve rule extraction, an LLM extraction call, up to
// three catalog fetches, chunk scoring over a long document, and answer
// generation. The 30s turn timeout leaves headroom for the slowest path
// (cold catalog cache plus generation) while keeping the HTTP client from
// waiting unreasonably long.
package config

import "time"

// Chat turn timeouts
const (
	// TurnProcessing is the timeout for processing a single chat turn.
	// This includes extraction, catalog fetches, and answer generation.
	TurnProcessing = 30 * time.Second

	// ChatHTTPRead is the HTTP server read timeout for chat requests.
	// Should be short since clients send small JSON payloads.
	ChatHTTPRead = 10 * time.Second

	// ChatHTTPWrite is the HTTP server write timeout.
	// Should accommodate TurnProcessing + response serialization.
	ChatHTTPWrite = 35 * time.Second

	// ChatHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	ChatHTTPIdle = 120 * time.Second
)

// Academic API timeouts
const (
	// AcademicRequest is the timeout for a single HTTP request to the
	// academic API. Catalog endpoints answer from a database and are
	// normally fast; slowness means congestion, not a bigger payload.
	AcademicRequest = 15 * time.Second

	// AcademicRetryInitial is the initial delay before retrying a failed
	// request. Uses exponential backoff: 1s -> 2s -> 4s -> 8s
	AcademicRetryInitial = 1 * time.Second

	// AcademicRetryMax caps the backoff delay between retries.
	AcademicRetryMax = 30 * time.Second
)

// LLM timeouts
const (
	// LLMExtractTimeout is the timeout for entity extraction calls.
	// Function calling with a small schema typically answers in 1-3s.
	LLMExtractTimeout = 10 * time.Second

	// LLMPlanTimeout is the timeout for query plan review calls.
	// The review task is small; a slow answer is worth less than the
	// rule-based plan we already hold.
	LLMPlanTimeout = 8 * time.Second

	// LLMResponseTimeout is the timeout for answer generation calls.
	LLMResponseTimeout = 30 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	// Handles concurrent write contention during catalog refresh.
	// Set to 30s to accommodate batch operations.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	// Prevents stale connections and allows connection pool refresh.
	DatabaseConnMaxLifetime = time.Hour
)

// Background job intervals
const (
	// CacheCleanupInterval is how often expired catalog rows are deleted.
	CacheCleanupInterval = 12 * time.Hour

	// CacheCleanupInitialDelay is the delay before first cache cleanup.
	// Allows server to stabilize before running cleanup.
	CacheCleanupInitialDelay = 5 * time.Minute

	// DataRefreshDefault is how often the catalog cache is re-fetched
	// from the academic API when no interval is configured.
	DataRefreshDefault = 6 * time.Hour

	// MetricsUpdateInterval is how often cache size metrics are updated.
	MetricsUpdateInterval = 5 * time.Minute

	// RateLimiterCleanupInterval is how often inactive session rate
	// limiters are cleaned.
	RateLimiterCleanupInterval = 5 * time.Minute
)

// Ingestion timeouts
const (
	// IngestFetch is the timeout for downloading one source document.
	IngestFetch = 60 * time.Second

	// IngestOCR is the timeout for extracting text from a PDF via the
	// LLM. Multi-page admissions brochures take a while.
	IngestOCR = 2 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
