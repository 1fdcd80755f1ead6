package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admibot/admibot-go/internal/ctxutil"
)

func TestContextHandler_AddsTracingAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	log := slog.New(newContextHandler(base))

	ctx := context.Background()
	ctx = ctxutil.WithSessionID(ctx, "s-100")
	ctx = ctxutil.WithRequestID(ctx, "req-100")
	ctx = ctxutil.WithTurnID(ctx, "turn-100")

	log.InfoContext(ctx, "processing")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "s-100", entry["session_id"])
	assert.Equal(t, "req-100", entry["request_id"])
	assert.Equal(t, "turn-100", entry["turn_id"])
}

func TestContextHandler_EmptyContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	log := slog.New(newContextHandler(base))

	log.InfoContext(context.Background(), "no tracing")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.NotContains(t, entry, "session_id")
	assert.NotContains(t, entry, "request_id")
	assert.NotContains(t, entry, "turn_id")
}

func TestContextHandler_PartialValues(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	log := slog.New(newContextHandler(base))

	ctx := ctxutil.WithSessionID(context.Background(), "s-55")
	log.InfoContext(ctx, "partial")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "s-55", entry["session_id"])
	assert.NotContains(t, entry, "request_id")
}

func TestContextHandler_WithAttrsPreserved(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	handler := newContextHandler(base).WithAttrs([]slog.Attr{slog.String("service", "admibot-go")})
	log := slog.New(handler)

	ctx := ctxutil.WithSessionID(context.Background(), "s-7")
	log.InfoContext(ctx, "attrs kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "admibot-go", entry["service"])
	assert.Equal(t, "s-7", entry["session_id"])
}
