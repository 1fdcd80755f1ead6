package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Turn metrics
	TurnsTotal          *prometheus.CounterVec
	TurnDurationSeconds prometheus.Histogram
	IntentsTotal        *prometheus.CounterVec

	// Query plan metrics
	PlanExecutionsTotal *prometheus.CounterVec
	PlanCallsTotal      *prometheus.CounterVec
	PlanCallDuration    *prometheus.HistogramVec

	// Catalog cache metrics
	CacheHitsTotal         *prometheus.CounterVec
	CacheMissesTotal       *prometheus.CounterVec
	SingleflightDedupTotal *prometheus.CounterVec
	CacheSizeRows          *prometheus.GaugeVec
	CacheStaleRows         *prometheus.GaugeVec

	// Relevance chunker metrics
	ChunkerRunsTotal *prometheus.CounterVec

	// LLM metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMDurationSeconds *prometheus.HistogramVec
	LLMFallbackTotal   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPDurationSeconds *prometheus.HistogramVec
	HTTPErrorsTotal     *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterWaitDuration *prometheus.HistogramVec
	RateLimiterDropped      *prometheus.CounterVec
	RateLimiterActiveKeys   *prometheus.GaugeVec

	// Ingestion metrics
	IngestDocumentsTotal  *prometheus.CounterVec
	IngestDurationSeconds *prometheus.HistogramVec

	// Warmup metrics
	WarmupTasksTotal *prometheus.CounterVec
	WarmupDuration   prometheus.Histogram

	// Background job metrics
	JobDurationSeconds *prometheus.HistogramVec
	IndexSizeDocs      *prometheus.GaugeVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Turn metrics
		TurnsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_turns_total",
				Help: "Total number of processed chat turns by status",
			},
			[]string{"status"}, // status: success, invalid_input, provider_error, error
		),

		TurnDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "admibot_turn_duration_seconds",
				Help:    "End-to-end turn processing duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}, // Matches 30s turn timeout
			},
		),

		IntentsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_intents_total",
				Help: "Total number of detected intents by kind",
			},
			[]string{"intent"}, // intent: GREETING, CURRICULUM_INFO, ...
		),

		// Query plan metrics
		PlanExecutionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_plan_executions_total",
				Help: "Total number of executed query plans by strategy",
			},
			[]string{"strategy"}, // strategy: SEQUENTIAL, PARALLEL, EMPTY
		),

		PlanCallsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_plan_calls_total",
				Help: "Total number of planned catalog fetches by endpoint and status",
			},
			[]string{"endpoint", "status"}, // endpoint: faculties, programs, curriculum
		),

		PlanCallDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admibot_plan_call_duration_seconds",
				Help:    "Catalog fetch duration in seconds by endpoint",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 15}, // Matches 15s request timeout
			},
			[]string{"endpoint"},
		),

		// Catalog cache metrics
		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_cache_hits_total",
				Help: "Total number of catalog cache hits by collection",
			},
			[]string{"collection"}, // collection: faculties, programs, curriculum
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_cache_misses_total",
				Help: "Total number of catalog cache misses by collection",
			},
			[]string{"collection"},
		),

		SingleflightDedupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_singleflight_dedup_total",
				Help: "Total number of catalog refreshes shared across concurrent callers",
			},
			[]string{"collection"},
		),

		CacheSizeRows: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "admibot_cache_size_rows",
				Help: "Current number of cached rows by table",
			},
			[]string{"table"}, // table: faculties, programs, curriculum, documents, chat_messages
		),

		CacheStaleRows: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "admibot_cache_stale_rows",
				Help: "Cached rows that missed a refresh cycle and will expire unless refreshed",
			},
			[]string{"table"}, // table: programs, curriculum
		),

		// Relevance chunker metrics
		ChunkerRunsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_chunker_runs_total",
				Help: "Total number of excerpt extractions by outcome",
			},
			[]string{"outcome"}, // outcome: verbatim, excerpt, fallback, empty
		),

		// LLM metrics
		LLMRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_llm_requests_total",
				Help: "Total number of LLM calls by provider, operation, and status",
			},
			[]string{"provider", "operation", "status"}, // operation: extract, plan, respond
		),

		LLMDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admibot_llm_duration_seconds",
				Help:    "LLM call duration in seconds by provider and operation",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30}, // Matches 30s generation timeout
			},
			[]string{"provider", "operation"},
		),

		LLMFallbackTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_llm_fallback_total",
				Help: "Total number of LLM fallbacks between chain entries",
			},
			[]string{"from_provider", "to_provider", "operation"},
		),

		// HTTP metrics
		HTTPRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		),

		HTTPDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admibot_http_duration_seconds",
				Help:    "HTTP request duration in seconds by route",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 35}, // Matches 35s write timeout
			},
			[]string{"route"},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: timeout, rate_limit, invalid_input, etc.
		),

		// Rate limiter metrics
		RateLimiterWaitDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admibot_rate_limiter_wait_duration_seconds",
				Help:    "Time spent waiting for rate limiter token by limiter type",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5}, // 1ms to 5s
			},
			[]string{"limiter_type"}, // limiter_type: academic, session, global, llm
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"},
		),

		RateLimiterActiveKeys: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "admibot_rate_limiter_active_keys",
				Help: "Current number of tracked keys by limiter type",
			},
			[]string{"limiter_type"}, // limiter_type: session, llm
		),

		// Ingestion metrics
		IngestDocumentsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_ingest_documents_total",
				Help: "Total number of ingested source documents by content type and status",
			},
			[]string{"content_type", "status"}, // content_type: html, pdf; status: success, unchanged, error
		),

		IngestDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admibot_ingest_duration_seconds",
				Help:    "Per-document ingestion duration in seconds by content type",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120}, // PDFs go through OCR
			},
			[]string{"content_type"},
		),

		// Warmup metrics
		WarmupTasksTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admibot_warmup_tasks_total",
				Help: "Total number of warmup tasks by collection and status",
			},
			[]string{"collection", "status"}, // status: success, error
		),

		WarmupDuration: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "admibot_warmup_duration_seconds",
				Help:    "Total duration of catalog warmup",
				Buckets: []float64{5, 10, 30, 60, 120, 300, 600}, // 5s to 10min
			},
		),

		// Background job metrics
		JobDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admibot_job_duration_seconds",
				Help:    "Background job run duration in seconds by job",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900}, // Cleanup is fast, re-ingest is not
			},
			[]string{"job"}, // job: cache_cleanup, catalog_refresh, snapshot, ingest
		),

		IndexSizeDocs: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "admibot_index_size_docs",
				Help: "Current number of documents held by a search index",
			},
			[]string{"index"}, // index: bm25
		),
	}

	return m
}

// RecordTurn records one processed turn with status
func (m *Metrics) RecordTurn(status string, duration float64) {
	m.TurnsTotal.WithLabelValues(status).Inc()
	m.TurnDurationSeconds.Observe(duration)
}

// RecordIntent records a detected intent
func (m *Metrics) RecordIntent(intent string) {
	m.IntentsTotal.WithLabelValues(intent).Inc()
}

// RecordPlanExecution records an executed query plan
func (m *Metrics) RecordPlanExecution(strategy string) {
	m.PlanExecutionsTotal.WithLabelValues(strategy).Inc()
}

// RecordPlanCall records one planned catalog fetch
func (m *Metrics) RecordPlanCall(endpoint, status string, duration float64) {
	m.PlanCallsTotal.WithLabelValues(endpoint, status).Inc()
	m.PlanCallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordCacheHit records a catalog cache hit
func (m *Metrics) RecordCacheHit(collection string) {
	m.CacheHitsTotal.WithLabelValues(collection).Inc()
}

// RecordCacheMiss records a catalog cache miss
func (m *Metrics) RecordCacheMiss(collection string) {
	m.CacheMissesTotal.WithLabelValues(collection).Inc()
}

// RecordSingleflightDedup records a deduplicated refresh
func (m *Metrics) RecordSingleflightDedup(collection string) {
	m.SingleflightDedupTotal.WithLabelValues(collection).Inc()
}

// SetCacheSize records the current row count of a cached table
func (m *Metrics) SetCacheSize(table string, rows int64) {
	m.CacheSizeRows.WithLabelValues(table).Set(float64(rows))
}

// SetStaleRows records how many cached rows are overdue for a refresh
func (m *Metrics) SetStaleRows(table string, rows int) {
	m.CacheStaleRows.WithLabelValues(table).Set(float64(rows))
}

// RecordChunkerRun records an excerpt extraction outcome
func (m *Metrics) RecordChunkerRun(outcome string) {
	m.ChunkerRunsTotal.WithLabelValues(outcome).Inc()
}

// RecordLLMRequest records an LLM call
func (m *Metrics) RecordLLMRequest(provider, operation, status string, duration float64) {
	m.LLMRequestsTotal.WithLabelValues(provider, operation, status).Inc()
	m.LLMDurationSeconds.WithLabelValues(provider, operation).Observe(duration)
}

// RecordLLMFallback records one fallback hop between LLM chain entries
func (m *Metrics) RecordLLMFallback(fromProvider, toProvider, operation string) {
	m.LLMFallbackTotal.WithLabelValues(fromProvider, toProvider, operation).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(route, status string, duration float64) {
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPDurationSeconds.WithLabelValues(route).Observe(duration)
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// RecordRateLimiterWait records time spent waiting for rate limiter
func (m *Metrics) RecordRateLimiterWait(limiterType string, duration float64) {
	m.RateLimiterWaitDuration.WithLabelValues(limiterType).Observe(duration)
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetRateLimiterActiveKeys records how many keys a keyed limiter is tracking
func (m *Metrics) SetRateLimiterActiveKeys(limiterType string, count int) {
	m.RateLimiterActiveKeys.WithLabelValues(limiterType).Set(float64(count))
}

// RecordIngest records one ingested document
func (m *Metrics) RecordIngest(contentType, status string, duration float64) {
	m.IngestDocumentsTotal.WithLabelValues(contentType, status).Inc()
	m.IngestDurationSeconds.WithLabelValues(contentType).Observe(duration)
}

// RecordWarmupTask records a warmup task completion
func (m *Metrics) RecordWarmupTask(collection, status string) {
	m.WarmupTasksTotal.WithLabelValues(collection, status).Inc()
}

// RecordWarmupDuration records total warmup duration
func (m *Metrics) RecordWarmupDuration(duration float64) {
	m.WarmupDuration.Observe(duration)
}

// RecordJob records one background job run
func (m *Metrics) RecordJob(job string, duration float64) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(duration)
}

// SetIndexSize records the current document count of a search index
func (m *Metrics) SetIndexSize(index string, count int) {
	m.IndexSizeDocs.WithLabelValues(index).Set(float64(count))
}
