// Package httpapi exposes the conversational engine and the cached
// academic catalog over a REST API. It owns the gin router, the request
// middleware (security headers, request-scoped logging, rate limiting)
// and the mapping from engine errors onto status codes and the Spanish
// messages a chat frontend can show directly.
package httpapi

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/admibot/admibot-go/internal/academic"
	"github.com/admibot/admibot-go/internal/engine"
	"github.com/admibot/admibot-go/internal/ingest"
	"github.com/admibot/admibot-go/internal/logger"
	"github.com/admibot/admibot-go/internal/metrics"
	"github.com/admibot/admibot-go/internal/ratelimit"
	"github.com/admibot/admibot-go/internal/sentry"
	"github.com/admibot/admibot-go/internal/storage"
	"github.com/admibot/admibot-go/internal/warmup"
)

const (
	// readinessCheckTimeout bounds the database probe behind /ready.
	readinessCheckTimeout = 5 * time.Second

	// ingestRunTimeout bounds a detached admin-triggered ingestion run.
	// PDF sources go through OCR, so a full run can take minutes.
	ingestRunTimeout = 30 * time.Minute
)

// Config holds the handler's collaborators. Engine, Catalog, DB,
// Readiness, and Registry are required; the rest default or disable.
type Config struct {
	Engine    *engine.Engine
	Catalog   academic.Provider
	DB        *storage.DB
	Readiness *warmup.ReadinessState
	Registry  *prometheus.Registry

	Metrics *metrics.Metrics
	Logger  *logger.Logger

	Global   *ratelimit.APILimiter   // optional, nil disables the global gate
	Sessions *ratelimit.KeyedLimiter // optional, nil disables per-session limits

	Ingestor      *ingest.Pipeline // optional, nil disables the admin trigger
	IngestSources []ingest.Source

	ServerName    string
	WaitForWarmup bool

	// AuthUsername and AuthPassword guard /metrics and the admin
	// endpoints. An empty password leaves them open.
	AuthUsername string
	AuthPassword string
}

// Handler serves the REST API.
type Handler struct {
	engine    *engine.Engine
	catalog   academic.Provider
	db        *storage.DB
	readiness *warmup.ReadinessState
	registry  *prometheus.Registry

	metrics *metrics.Metrics
	logger  *logger.Logger

	global   *ratelimit.APILimiter
	sessions *ratelimit.KeyedLimiter

	ingestor      *ingest.Pipeline
	ingestSources []ingest.Source
	ingestRunning atomic.Bool

	serverName    string
	waitForWarmup bool
	authUsername  string
	authPassword  string
}

// New creates the API handler.
func New(cfg Config) (*Handler, error) {
	switch {
	case cfg.Engine == nil:
		return nil, errors.New("httpapi: engine is required")
	case cfg.Catalog == nil:
		return nil, errors.New("httpapi: catalog provider is required")
	case cfg.DB == nil:
		return nil, errors.New("httpapi: database is required")
	case cfg.Readiness == nil:
		return nil, errors.New("httpapi: readiness state is required")
	case cfg.Registry == nil:
		return nil, errors.New("httpapi: metrics registry is required")
	}

	lg := cfg.Logger
	if lg == nil {
		lg = logger.New("info")
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}

	return &Handler{
		engine:        cfg.Engine,
		catalog:       cfg.Catalog,
		db:            cfg.DB,
		readiness:     cfg.Readiness,
		registry:      cfg.Registry,
		metrics:       m,
		logger:        lg.WithModule("httpapi"),
		global:        cfg.Global,
		sessions:      cfg.Sessions,
		ingestor:      cfg.Ingestor,
		ingestSources: cfg.IngestSources,
		serverName:    cfg.ServerName,
		waitForWarmup: cfg.WaitForWarmup,
		authUsername:  cfg.AuthUsername,
		authPassword:  cfg.AuthPassword,
	}, nil
}

// Router builds the gin engine with all routes and middleware attached.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), securityHeaders(), h.requestLogger())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	router.GET("/", h.handleRoot)
	router.GET("/healthz", h.handleHealthz)
	router.GET("/ready", h.handleReady)

	auth := operatorAuth(h.authUsername, h.authPassword)
	router.GET("/metrics", auth, gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})))

	// Probes and metrics stay outside the global gate so an overloaded
	// service still answers its scheduler.
	api := router.Group("/api/v1")
	api.Use(h.globalRateLimit())
	{
		api.POST("/chat", h.handleChat)
		api.POST("/sessions/:id/reset", h.handleReset)
		api.GET("/sessions/:id/history", h.handleHistory)

		api.GET("/faculties", h.handleFaculties)
		api.GET("/programs", h.handlePrograms)
		api.GET("/curriculum", h.handleCurriculum)

		admin := api.Group("/admin", auth)
		admin.POST("/ingest", h.handleIngest)
	}

	return router
}

// errorResponse is the JSON body of every non-2xx answer. Reply carries
// a ready-to-display Spanish message on chat errors.
type errorResponse struct {
	Error string `json:"error"`
	Reply string `json:"reply,omitempty"`
}
