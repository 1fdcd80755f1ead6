package logger

import (
	"context"
	"log/slog"

	"github.com/admibot/admibot-go/internal/ctxutil"
)

// contextHandler decorates log records with tracing values carried in the
// context (session ID, request ID, turn ID) so call sites never pass them
// explicitly.
//
// Reference: https://betterstack.com/community/guides/logging/golang-contextual-logging/
type contextHandler struct {
	handler slog.Handler
}

func newContextHandler(handler slog.Handler) *contextHandler {
	return &contextHandler{handler: handler}
}

// Enabled delegates to the wrapped handler.
func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds tracing attributes from the context before delegating.
//
// Note: the context parameter is used solely to access context values.
// Canceling it does not affect record processing (per slog.Handler contract).
func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sessionID := ctxutil.GetSessionID(ctx); sessionID != "" {
		r.AddAttrs(slog.String("session_id", sessionID))
	}

	if requestID, ok := ctxutil.GetRequestID(ctx); ok && requestID != "" {
		r.AddAttrs(slog.String("request_id", requestID))
	}

	if turnID := ctxutil.GetTurnID(ctx); turnID != "" {
		r.AddAttrs(slog.String("turn_id", turnID))
	}

	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new contextHandler whose attributes consist of
// both the receiver's attributes and the arguments.
func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new contextHandler with the given group name applied.
func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{handler: h.handler.WithGroup(name)}
}
