package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/admibot/admibot-go/internal/config"
	domerrors "github.com/admibot/admibot-go/internal/errors"
	"github.com/admibot/admibot-go/internal/ratelimit"
	"github.com/admibot/admibot-go/internal/storage"
)

func TestHandleChat_RejectsMissingMessage(t *testing.T) {
	h, _ := newTestHandler(t, nil, nil)
	router := h.Router()

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"blank message", `{"message": "   "}`},
		{"malformed json", `{"message": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, router, http.MethodPost, "/api/v1/chat", strings.NewReader(tt.body), nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleChat_GreetingTurn(t *testing.T) {
	h, _ := newTestHandler(t, nil, nil)
	router := h.Router()

	w := performRequest(t, router, http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message": "hola"}`), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp chatResponse
	decodeJSON(t, w, &resp)
	if resp.SessionID == "" {
		t.Error("Expected a generated session id when the request omits one")
	}
	if resp.Reply != config.GreetingMessage {
		t.Errorf("Reply = %q, want %q", resp.Reply, config.GreetingMessage)
	}
	found := false
	for _, intent := range resp.Intents {
		if intent == "GREETING" {
			found = true
		}
	}
	if !found {
		t.Errorf("Intents = %v, want GREETING included", resp.Intents)
	}
	if resp.Generated {
		t.Error("Greeting turns must not report generated replies")
	}
}

func TestHandleChat_KeepsProvidedSessionID(t *testing.T) {
	h, _ := newTestHandler(t, nil, nil)
	router := h.Router()

	body := `{"session_id": "aspirante-42", "message": "hola"}`
	w := performRequest(t, router, http.MethodPost, "/api/v1/chat", strings.NewReader(body), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp chatResponse
	decodeJSON(t, w, &resp)
	if resp.SessionID != "aspirante-42" {
		t.Errorf("SessionID = %q, want aspirante-42", resp.SessionID)
	}
}

func TestHandleChat_SessionRateLimit(t *testing.T) {
	var limiter *ratelimit.KeyedLimiter
	h, _ := newTestHandler(t, nil, func(cfg *Config) {
		limiter = ratelimit.NewSessionLimiter(1, time.Hour, cfg.Metrics)
		cfg.Sessions = limiter
	})
	t.Cleanup(limiter.Stop)
	router := h.Router()

	body := `{"session_id": "s-limited", "message": "hola"}`
	w := performRequest(t, router, http.MethodPost, "/api/v1/chat", strings.NewReader(body), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("First turn status = %d, want %d", w.Code, http.StatusOK)
	}

	w = performRequest(t, router, http.MethodPost, "/api/v1/chat", strings.NewReader(body), nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Second turn status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}
	var resp errorResponse
	decodeJSON(t, w, &resp)
	if resp.Reply != config.RateLimitedMessage {
		t.Errorf("Reply = %q, want the rate limit message", resp.Reply)
	}
}

func TestHandleChat_OversizeMessage(t *testing.T) {
	h, _ := newTestHandler(t, nil, nil)
	router := h.Router()

	body := fmt.Sprintf(`{"message": %q}`, strings.Repeat("a", 1001))
	w := performRequest(t, router, http.MethodPost, "/api/v1/chat", strings.NewReader(body), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	var resp errorResponse
	decodeJSON(t, w, &resp)
	if resp.Reply != config.UtteranceTooLongMessage {
		t.Errorf("Reply = %q, want the oversize message", resp.Reply)
	}
}

func TestHandleChat_ProviderOutage(t *testing.T) {
	catalog := &fakeCatalog{err: domerrors.NewProviderError("programs", 503, errors.New("service unavailable"))}
	h, _ := newTestHandler(t, catalog, nil)
	router := h.Router()

	body := `{"message": "¿cuáles carreras tienen?"}`
	w := performRequest(t, router, http.MethodPost, "/api/v1/chat", strings.NewReader(body), nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Status = %d, want %d, body %s", w.Code, http.StatusServiceUnavailable, w.Body.String())
	}
	var resp errorResponse
	decodeJSON(t, w, &resp)
	if resp.Reply != config.ProviderDownMessage {
		t.Errorf("Reply = %q, want the outage message", resp.Reply)
	}
}

func TestHandleReset(t *testing.T) {
	h, _ := newTestHandler(t, nil, nil)
	router := h.Router()

	body := `{"session_id": "s-reset", "message": "hola"}`
	if w := performRequest(t, router, http.MethodPost, "/api/v1/chat", strings.NewReader(body), nil); w.Code != http.StatusOK {
		t.Fatalf("Chat status = %d, want %d", w.Code, http.StatusOK)
	}

	w := performRequest(t, router, http.MethodPost, "/api/v1/sessions/s-reset/reset", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Reset status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp struct {
		SessionID string `json:"session_id"`
		Status    string `json:"status"`
	}
	decodeJSON(t, w, &resp)
	if resp.Status != "reset" {
		t.Errorf("Status = %q, want reset", resp.Status)
	}
}

func TestHandleHistory(t *testing.T) {
	h, _ := newTestHandler(t, nil, nil)
	router := h.Router()

	body := `{"session_id": "s-hist", "message": "hola"}`
	if w := performRequest(t, router, http.MethodPost, "/api/v1/chat", strings.NewReader(body), nil); w.Code != http.StatusOK {
		t.Fatalf("Chat status = %d, want %d", w.Code, http.StatusOK)
	}

	w := performRequest(t, router, http.MethodGet, "/api/v1/sessions/s-hist/history", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("History status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp struct {
		SessionID string                `json:"session_id"`
		Count     int                   `json:"count"`
		Messages  []storage.ChatMessage `json:"messages"`
	}
	decodeJSON(t, w, &resp)
	if resp.Count != 2 {
		t.Fatalf("Count = %d, want the user turn and the reply", resp.Count)
	}
	if resp.Messages[0].Role != storage.RoleUser || resp.Messages[1].Role != storage.RoleAssistant {
		t.Errorf("Roles = %q, %q, want user then assistant", resp.Messages[0].Role, resp.Messages[1].Role)
	}

	w = performRequest(t, router, http.MethodGet, "/api/v1/sessions/s-hist/history?limit=1", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Limited history status = %d, want %d", w.Code, http.StatusOK)
	}
	decodeJSON(t, w, &resp)
	if resp.Count != 1 {
		t.Errorf("Count = %d, want 1", resp.Count)
	}
}

func TestHandleHistory_RejectsBadLimit(t *testing.T) {
	h, _ := newTestHandler(t, nil, nil)
	router := h.Router()

	for _, limit := range []string{"abc", "0", "-3"} {
		w := performRequest(t, router, http.MethodGet, "/api/v1/sessions/s-1/history?limit="+limit, nil, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want %d", limit, w.Code, http.StatusBadRequest)
		}
	}
}
