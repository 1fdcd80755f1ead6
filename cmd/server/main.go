// Package main provides the admissions chatbot server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/admibot/admibot-go/internal/academic"
	"github.com/admibot/admibot-go/internal/buildinfo"
	"github.com/admibot/admibot-go/internal/config"
	"github.com/admibot/admibot-go/internal/docindex"
	"github.com/admibot/admibot-go/internal/engine"
	"github.com/admibot/admibot-go/internal/genai"
	"github.com/admibot/admibot-go/internal/httpapi"
	"github.com/admibot/admibot-go/internal/ingest"
	"github.com/admibot/admibot-go/internal/logger"
	"github.com/admibot/admibot-go/internal/maintenance"
	"github.com/admibot/admibot-go/internal/metrics"
	"github.com/admibot/admibot-go/internal/nlu"
	"github.com/admibot/admibot-go/internal/objstore"
	"github.com/admibot/admibot-go/internal/planner"
	"github.com/admibot/admibot-go/internal/ratelimit"
	"github.com/admibot/admibot-go/internal/sentry"
	"github.com/admibot/admibot-go/internal/session"
	"github.com/admibot/admibot-go/internal/snapshot"
	"github.com/admibot/admibot-go/internal/storage"
	"github.com/admibot/admibot-go/internal/warmup"
)

// maintenanceStateKey is the object key holding the shared background-job
// schedule. All replicas read and CAS-update the same object.
const maintenanceStateKey = "state/maintenance.json"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger, optionally shipping to Better Stack
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	slog.SetDefault(log.Logger)

	instanceID := cfg.InstanceID
	if instanceID == "" {
		if host, err := os.Hostname(); err == nil {
			instanceID = host
		} else {
			instanceID = "unknown"
		}
	}
	log = log.WithFields(map[string]any{
		"service":     cfg.ServerName,
		"instance_id": instanceID,
	})
	log.Info("Starting admissions chatbot server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit)

	// Initialize Sentry error reporting
	if cfg.SentryEnabled {
		if err := sentry.Initialize(sentry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			Release:          cfg.SentryRelease,
			SampleRate:       cfg.SentrySampleRate,
			TracesSampleRate: cfg.SentryTracesSampleRate,
		}); err != nil {
			log.WithError(err).Warn("Failed to initialize Sentry, error reporting disabled")
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fail(log, err, "Failed to create data directory")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Object storage, snapshot manager, and shared job schedule. All
	// optional: without R2 every replica keeps its own local cache.
	var (
		objClient *objstore.Client
		snapMgr   *snapshot.Manager
		schedule  *maintenance.ScheduleStore
	)
	if cfg.R2Enabled {
		objClient, err = objstore.New(ctx, objstore.Config{
			Endpoint:    fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID),
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretAccessKey,
			Bucket:      cfg.R2BucketName,
		})
		if err != nil {
			fail(log, err, "Failed to create object storage client")
		}
		snapMgr = snapshot.New(objClient, snapshot.Config{
			SnapshotKey:  cfg.R2SnapshotKey,
			LockKey:      cfg.R2LockKey,
			LockTTL:      cfg.R2LockTTL,
			PollInterval: cfg.SnapshotPollInterval,
			TempDir:      cfg.DataDir,
		}, log)
		schedule, err = maintenance.NewScheduleStore(objClient, maintenanceStateKey, 10*time.Second)
		if err != nil {
			fail(log, err, "Failed to create maintenance schedule store")
		}
		log.WithField("bucket", cfg.R2BucketName).Info("Object storage connected")

		// Seed the local database from the latest snapshot when this
		// replica starts without one.
		if _, err := os.Stat(cfg.SQLitePath()); errors.Is(err, os.ErrNotExist) {
			restoreFromSnapshot(ctx, snapMgr, cfg.DataDir, log)
		}
	}

	// Connect to database with configured TTL
	db, err := storage.NewHotSwapDB(ctx, cfg.SQLitePath(), cfg.CacheTTL)
	if err != nil {
		fail(log, err, "Failed to open database")
	}
	log.WithField("path", cfg.SQLitePath()).
		WithField("cache_ttl", cfg.CacheTTL).
		Info("Database connected")

	// Create Prometheus registry with Go and process collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())
	m := metrics.New(registry)

	// Academic API client with caching layer
	client, err := academic.NewClient(academic.ClientConfig{
		BaseURLs:          cfg.AcademicBaseURLs,
		Timeout:           cfg.AcademicTimeout,
		MaxRetries:        cfg.AcademicMaxRetries,
		InitialRetryDelay: config.AcademicRetryInitial,
		MaxRetryDelay:     config.AcademicRetryMax,
		RequestsPerMinute: cfg.AcademicRequestsPerMinute,
	})
	if err != nil {
		fail(log, err, "Failed to create academic API client")
	}
	catalog := academic.NewCachedProvider(db.DB(), client, log, m)

	// LLM-backed extraction, plan review, and answer generation. All
	// optional: without a provider the engine runs on rule tables and
	// data-built replies.
	var (
		entityAI    genai.EntityExtractor
		optimizerAI genai.PlanOptimizer
		responderAI genai.Responder
	)
	if cfg.HasLLMProvider() {
		llmCfg := buildLLMConfig(cfg)
		if entityAI, err = genai.CreateExtractor(ctx, llmCfg, m); err != nil {
			log.WithError(err).Warn("Failed to create entity extractor, rule tables only")
		}
		if optimizerAI, err = genai.CreateOptimizer(ctx, llmCfg, m); err != nil {
			log.WithError(err).Warn("Failed to create plan optimizer, heuristic plans only")
		}
		if responderAI, err = genai.CreateResponder(ctx, llmCfg, m); err != nil {
			log.WithError(err).Warn("Failed to create responder, data-built replies only")
		}
		log.WithField("providers", cfg.LLMProviders).Info("LLM features enabled")
	} else {
		log.Info("No LLM provider configured, serving data-built replies only")
	}

	extractor := nlu.NewExtractor(entityAI, config.LLMExtractTimeout, log)
	plan := planner.New(planner.Config{AITimeout: config.LLMPlanTimeout}, optimizerAI, log)

	// Document search index over ingested admissions material
	index := docindex.New(log)
	if docs, err := db.DB().GetAllDocuments(ctx); err != nil {
		log.WithError(err).Warn("Failed to load documents for the search index")
	} else {
		ptrs := make([]*storage.Document, 0, len(docs))
		for i := range docs {
			ptrs = append(ptrs, &docs[i])
		}
		if err := index.Initialize(ptrs); err != nil {
			log.WithError(err).Warn("Failed to initialize document index")
		} else if index.IsEnabled() {
			log.WithField("documents", index.Count()).Info("Document index initialized")
		}
	}

	// Rate limiters: one bucket over all traffic, a sliding window per
	// session, and the per-session LLM generation budget
	globalLimiter := ratelimit.NewAPILimiter(cfg.Engine.GlobalRateLimitRPS, m)
	sessionLimiter := ratelimit.NewSessionLimiter(cfg.Engine.ChatRequestsPerMinute, config.RateLimiterCleanupInterval, m)
	llmLimiter := ratelimit.NewLLMLimiter(
		cfg.Engine.LLMRateBurst,
		cfg.Engine.LLMRateRefillPerHour,
		cfg.Engine.LLMRateDaily,
		config.RateLimiterCleanupInterval,
		m,
	)

	// Document ingestion pipeline (needs object storage for PDF archival
	// and a Gemini key for OCR)
	var (
		ocr           *ingest.GeminiExtractor
		ingestor      *ingest.Pipeline
		ingestSources []ingest.Source
	)
	if cfg.IngestEnabled && objClient != nil && cfg.GeminiAPIKey != "" {
		ocr, err = ingest.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.IngestOCRModel)
		if err != nil {
			log.WithError(err).Warn("Failed to create OCR extractor, document ingestion disabled")
		} else {
			fetcher := ingest.NewFetcher(cfg.IngestTimeout, cfg.IngestRetries)
			ingestor, err = ingest.New(fetcher, ocr, db.DB(), index, objClient, m, log)
			if err != nil {
				log.WithError(err).Warn("Failed to create ingest pipeline, document ingestion disabled")
			} else {
				ingestSources = ingest.Sources(cfg.R2DocsPrefix)
				log.WithField("sources", len(ingestSources)).Info("Document ingestion enabled")
			}
		}
	}

	// Conversation engine
	sessions := session.NewMemoryStore(cfg.Engine.SessionTTL, 0)
	eng := engine.New(engine.Config{
		Extractor:    extractor,
		Sessions:     sessions,
		Planner:      plan,
		Catalog:      catalog,
		Index:        index,
		Responder:    responderAI,
		LLMLimiter:   llmLimiter,
		Transcripts:  db.DB(),
		Documents:    db.DB(),
		Logger:       log,
		Metrics:      m,
		EngineConfig: &cfg.Engine,
	})

	// Start background catalog warmup (non-blocking)
	ready := warmup.NewReadinessState(cfg.WarmupGracePeriod)
	warmup.RunInBackground(ctx, db.DB(), client, log, ready, warmup.Options{
		Collections: warmup.DefaultCollections,
		Metrics:     m,
		Ingestor:    ingestor,
		Sources:     ingestSources,
	})
	log.Info("Background catalog warmup started")

	// REST API
	api, err := httpapi.New(httpapi.Config{
		Engine:        eng,
		Catalog:       catalog,
		DB:            db.DB(),
		Readiness:     ready,
		Registry:      registry,
		Metrics:       m,
		Logger:        log,
		Global:        globalLimiter,
		Sessions:      sessionLimiter,
		Ingestor:      ingestor,
		IngestSources: ingestSources,
		ServerName:    cfg.ServerName,
		WaitForWarmup: cfg.WaitForWarmup,
		AuthUsername:  cfg.MetricsUsername,
		AuthPassword:  cfg.MetricsPassword,
	})
	if err != nil {
		fail(log, err, "Failed to create API handler")
	}

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.Router(),
		ReadTimeout:  config.ChatHTTPRead,
		WriteTimeout: config.ChatHTTPWrite,
		IdleTimeout:  config.ChatHTTPIdle,
	}

	// Background jobs
	var wg sync.WaitGroup
	startJob := func(name string, job func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithField("job", name).WithField("panic", r).Error("Background job panicked")
				}
			}()
			job()
		}()
	}
	startJob("cache_cleanup", func() {
		runCacheCleanup(ctx, db.DB(), cfg, schedule, m, log)
	})
	startJob("catalog_refresh", func() {
		runCatalogRefresh(ctx, db.DB(), client, cfg, snapMgr, schedule, ingestor, ingestSources, m, log)
	})
	startJob("metrics_update", func() {
		runMetricsUpdater(ctx, db.DB(), index, cfg, m, log)
	})

	// Follower replicas adopt new snapshots as the leader publishes them
	if snapMgr != nil {
		snapMgr.StartPolling(ctx, db, cfg.DataDir)
	}

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server stopped unexpectedly")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Stop background jobs and snapshot polling
	cancel()
	if snapMgr != nil {
		snapMgr.StopPolling()
	}

	jobsDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(jobsDone)
	}()
	select {
	case <-jobsDone:
		log.Info("All background jobs stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for background jobs to stop")
	}

	// Drain in-flight requests
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	sessionLimiter.Stop()
	llmLimiter.Stop()

	closeLLMClients(log, entityAI, optimizerAI, responderAI)
	if ocr != nil {
		if err := ocr.Close(); err != nil {
			log.WithError(err).Error("Failed to close OCR extractor")
		}
	}

	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}

	log.Info("Server stopped")

	if cfg.SentryEnabled {
		sentry.Flush(2 * time.Second)
	}
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = log.Shutdown(flushCtx)
	flushCancel()
}

// fail logs a startup error, flushes the logger, and exits.
func fail(log *logger.Logger, err error, msg string) {
	log.WithError(err).Error(msg)
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 2*time.Second)
	_ = log.Shutdown(flushCtx)
	flushCancel()
	os.Exit(1)
}

// restoreFromSnapshot seeds the local database from object storage. A
// missing snapshot is normal on first deployment; any other failure just
// means warming from the upstream API instead.
func restoreFromSnapshot(ctx context.Context, snapMgr *snapshot.Manager, dataDir string, log *logger.Logger) {
	dbPath, etag, err := snapMgr.DownloadSnapshot(ctx, dataDir)
	switch {
	case errors.Is(err, objstore.ErrNotFound):
		log.Info("No snapshot in object storage, starting with an empty database")
	case err != nil:
		log.WithError(err).Warn("Snapshot download failed, starting with an empty database")
	default:
		snapMgr.SetCurrentETag(etag)
		log.WithField("path", dbPath).
			WithField("etag", etag).
			Info("Database restored from snapshot")
	}
}

// buildLLMConfig maps environment configuration onto the genai config,
// keeping the package defaults for any model list left unset.
func buildLLMConfig(cfg *config.Config) genai.LLMConfig {
	llm := genai.DefaultLLMConfig()

	if len(cfg.LLMProviders) > 0 {
		providers := make([]genai.Provider, 0, len(cfg.LLMProviders))
		for _, p := range cfg.LLMProviders {
			providers = append(providers, genai.Provider(strings.ToLower(strings.TrimSpace(p))))
		}
		llm.Providers = providers
	}

	llm.Gemini.APIKey = cfg.GeminiAPIKey
	llm.Groq.APIKey = cfg.GroqAPIKey
	llm.Cerebras.APIKey = cfg.CerebrasAPIKey

	if len(cfg.GeminiExtractModels) > 0 {
		llm.Gemini.ExtractModels = cfg.GeminiExtractModels
	}
	if len(cfg.GeminiPlanModels) > 0 {
		llm.Gemini.PlanModels = cfg.GeminiPlanModels
	}
	if len(cfg.GeminiResponseModels) > 0 {
		llm.Gemini.ResponseModels = cfg.GeminiResponseModels
	}
	if len(cfg.GroqExtractModels) > 0 {
		llm.Groq.ExtractModels = cfg.GroqExtractModels
	}
	if len(cfg.GroqPlanModels) > 0 {
		llm.Groq.PlanModels = cfg.GroqPlanModels
	}
	if len(cfg.GroqResponseModels) > 0 {
		llm.Groq.ResponseModels = cfg.GroqResponseModels
	}
	if len(cfg.CerebrasExtractModels) > 0 {
		llm.Cerebras.ExtractModels = cfg.CerebrasExtractModels
	}
	if len(cfg.CerebrasPlanModels) > 0 {
		llm.Cerebras.PlanModels = cfg.CerebrasPlanModels
	}
	if len(cfg.CerebrasResponseModels) > 0 {
		llm.Cerebras.ResponseModels = cfg.CerebrasResponseModels
	}

	return llm
}

// closeLLMClients closes whichever LLM clients were created.
func closeLLMClients(log *logger.Logger, entityAI genai.EntityExtractor, optimizerAI genai.PlanOptimizer, responderAI genai.Responder) {
	if entityAI != nil {
		if err := entityAI.Close(); err != nil {
			log.WithError(err).Error("Failed to close entity extractor")
		}
	}
	if optimizerAI != nil {
		if err := optimizerAI.Close(); err != nil {
			log.WithError(err).Error("Failed to close plan optimizer")
		}
	}
	if responderAI != nil {
		if err := responderAI.Close(); err != nil {
			log.WithError(err).Error("Failed to close responder")
		}
	}
}
