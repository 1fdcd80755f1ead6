package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/admibot/admibot-go/internal/config"
	domerrors "github.com/admibot/admibot-go/internal/errors"
	"github.com/admibot/admibot-go/internal/nlu"
	"github.com/admibot/admibot-go/internal/sentry"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

type chatResponse struct {
	SessionID  string   `json:"session_id"`
	TurnID     string   `json:"turn_id"`
	Reply      string   `json:"reply"`
	Intents    []string `json:"intents,omitempty"`
	Generated  bool     `json:"generated"`
	DurationMs int64    `json:"duration_ms"`
}

// handleChat runs one conversational turn. An omitted session_id starts
// a new session; the frontend carries the returned one forward.
func (h *Handler) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: message is required"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if h.sessions != nil && !h.sessions.Allow(sessionID) {
		h.metrics.RecordHTTPError("rate_limit", "chat")
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, errorResponse{
			Error: "session rate limit exceeded",
			Reply: config.RateLimitedMessage,
		})
		return
	}

	result, err := h.engine.ProcessTurn(c.Request.Context(), sessionID, req.Message)
	if err != nil {
		h.chatError(c, err)
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		SessionID:  result.SessionID,
		TurnID:     result.TurnID,
		Reply:      result.Reply,
		Intents:    intentNames(result.Entities),
		Generated:  result.Generated,
		DurationMs: result.Duration.Milliseconds(),
	})
}

// chatError maps a failed turn onto a status code and a displayable
// Spanish message. Input that survived the handler's own checks but not
// the engine's can only be oversized.
func (h *Handler) chatError(c *gin.Context, err error) {
	switch {
	case domerrors.IsInvalidInput(err):
		h.metrics.RecordHTTPError("invalid_input", "chat")
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "message rejected: " + err.Error(),
			Reply: config.UtteranceTooLongMessage,
		})
	case errors.Is(err, domerrors.ErrTimeout):
		h.metrics.RecordHTTPError("timeout", "chat")
		c.JSON(http.StatusGatewayTimeout, errorResponse{
			Error: "turn processing timed out",
			Reply: config.ProviderDownMessage,
		})
	case errors.Is(err, domerrors.ErrContextCanceled):
		// The client hung up; nobody reads this response.
		c.AbortWithStatus(http.StatusRequestTimeout)
	default:
		h.metrics.RecordHTTPError("provider_down", "chat")
		h.logger.WithError(err).Error("Turn failed with no usable data")
		sentry.CaptureExceptionWithContext(c.Request.Context(), err)
		c.JSON(http.StatusServiceUnavailable, errorResponse{
			Error: "academic data provider unavailable",
			Reply: config.ProviderDownMessage,
		})
	}
}

// handleReset drops a session's memory and transcript.
func (h *Handler) handleReset(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.engine.ResetSession(c.Request.Context(), sessionID); err != nil {
		if domerrors.IsInvalidInput(err) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
			return
		}
		h.logger.WithError(err).Error("Session reset failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to reset session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "status": "reset"})
}

// handleHistory returns the session transcript tail, oldest first.
func (h *Handler) handleHistory(c *gin.Context) {
	sessionID := c.Param("id")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	messages, err := h.engine.History(c.Request.Context(), sessionID, limit)
	if err != nil {
		if domerrors.IsInvalidInput(err) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
			return
		}
		h.logger.WithError(err).Error("Transcript read failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to read history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"count":      len(messages),
		"messages":   messages,
	})
}

func intentNames(entities *nlu.ExtractedEntities) []string {
	if entities == nil || len(entities.Intents) == 0 {
		return nil
	}
	names := make([]string, 0, len(entities.Intents))
	for _, intent := range entities.Intents {
		names = append(names, string(intent))
	}
	return names
}
