package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/admibot/admibot-go/internal/ctxutil"
)

// securityHeaders sets the response headers a pure JSON API should carry.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

// requestLogger attaches a request ID to the context, records the HTTP
// metrics, and logs every request. Client errors log at Warn except 404s,
// which bots generate in bulk.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := incomingRequestID(c)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), requestID))
		c.Header("X-Request-Id", requestID)

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		h.metrics.RecordHTTPRequest(route, strconv.Itoa(status), duration.Seconds())

		log := h.logger.WithFields(map[string]any{
			"request_id":  requestID,
			"http_method": c.Request.Method,
			"http_path":   c.Request.URL.Path,
			"http_status": status,
			"duration_ms": duration.Milliseconds(),
			"client_ip":   c.ClientIP(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("Request failed")
		case status >= http.StatusBadRequest && status != http.StatusNotFound:
			log.Warn("Request rejected")
		default:
			log.Debug("Request served")
		}
	}
}

func incomingRequestID(c *gin.Context) string {
	for _, header := range []string{"X-Request-Id", "X-Correlation-Id"} {
		if v := c.GetHeader(header); v != "" {
			return v
		}
	}
	return ""
}

// globalRateLimit paces all API traffic through one shared token bucket.
// Requests wait for a token instead of being dropped, so short bursts
// smooth out; the wait aborts when the client gives up.
func (h *Handler) globalRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.global == nil {
			c.Next()
			return
		}
		if err := h.global.Acquire(c.Request.Context()); err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorResponse{Error: "server is overloaded"})
			return
		}
		c.Next()
	}
}
