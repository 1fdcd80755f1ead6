package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admibot/admibot-go/internal/buildinfo"
)

func (h *Handler) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     h.serverName,
		"version":     buildinfo.Version,
		"description": "Conversational admissions assistant API",
	})
}

// handleHealthz is the liveness probe: the process is up and serving.
func (h *Handler) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.serverName,
		"version": buildinfo.Version,
	})
}

// handleReady is the readiness probe. It answers 503 while the database
// is unreachable, and during initial warmup when the deployment asked to
// hold traffic until the catalog is loaded.
func (h *Handler) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessCheckTimeout)
	defer cancel()

	if err := h.db.Ready(ctx); err != nil {
		h.logger.WithError(err).Warn("Database not ready")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "database not ready",
		})
		return
	}

	status := h.readiness.Status()
	if h.waitForWarmup && !status.Ready {
		c.Header("Retry-After", "60")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "starting",
			"warmup": status,
		})
		return
	}

	cached := gin.H{}
	if n, err := h.db.CountFaculties(ctx); err == nil {
		cached["faculties"] = n
	}
	if n, err := h.db.CountPrograms(ctx); err == nil {
		cached["programs"] = n
	}
	if n, err := h.db.CountCurriculum(ctx); err == nil {
		cached["curriculum"] = n
	}
	if n, err := h.db.CountDocuments(ctx); err == nil {
		cached["documents"] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"warmup": status,
		"cached": cached,
	})
}

// handleIngest kicks off a detached ingestion run over the configured
// sources. One run at a time; the report lands in the logs.
func (h *Handler) handleIngest(c *gin.Context) {
	if h.ingestor == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "document ingestion is not configured"})
		return
	}
	if !h.ingestRunning.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, errorResponse{Error: "an ingestion run is already in progress"})
		return
	}

	sources := h.ingestSources
	go func() {
		defer h.ingestRunning.Store(false)

		// Detached from the admin request so the run survives it.
		ctx, cancel := context.WithTimeout(context.Background(), ingestRunTimeout)
		defer cancel()

		report, err := h.ingestor.Run(ctx, sources)
		log := h.logger.WithFields(map[string]any{
			"ingested":  report.Ingested,
			"unchanged": report.Unchanged,
			"failed":    report.Failed,
		})
		if err != nil {
			log.WithError(err).Error("Triggered ingestion run aborted")
			return
		}
		log.Info("Triggered ingestion run finished")
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "started",
		"sources": len(sources),
	})
}
