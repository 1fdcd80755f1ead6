package sentry

import (
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
)

// Runs before the initialization tests below; the SDK client is global,
// so IsEnabled can only be checked for the disabled state while no
// earlier test has installed a client.
func TestInitializeDisabled(t *testing.T) {
	if err := Initialize(Config{DSN: ""}); err != nil {
		t.Errorf("Expected nil error for empty DSN, got %v", err)
	}

	if IsEnabled() {
		t.Error("Expected IsEnabled() to return false when DSN is empty")
	}
}

func TestInitialize(t *testing.T) {
	// Cannot use t.Parallel() as Sentry uses global state

	err := Initialize(Config{
		DSN:         "https://examplekey@o0.ingest.sentry.io/1",
		Environment: "test",
		SampleRate:  1.0,
	})
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}

	if !IsEnabled() {
		t.Error("Expected IsEnabled() to return true after initialization")
	}

	// Clean up - flush any pending events
	Flush(time.Second)
}

func TestInitializeDefaultSampleRate(t *testing.T) {
	// Cannot use t.Parallel() as Sentry uses global state

	// Zero sample rate should default to 1.0
	err := Initialize(Config{
		DSN:        "https://examplekey@o0.ingest.sentry.io/2",
		SampleRate: 0,
	})
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}

	Flush(time.Second)
}

func TestScrubEvent(t *testing.T) {
	t.Parallel()

	event := &sentry.Event{
		Request: &sentry.Request{
			URL:     "https://admibot.example.com/api/v1/chat",
			Method:  "POST",
			Data:    `{"message":"¿cuánto cuesta la matrícula?"}`,
			Cookies: "session=abc",
			Headers: map[string]string{
				"Authorization": "Bearer secret",
				"Cookie":        "session=abc",
				"User-Agent":    "test-agent",
			},
		},
	}

	scrubbed := scrubEvent(event, nil)

	if scrubbed.Request.Data != "" {
		t.Errorf("Request body not scrubbed: %q", scrubbed.Request.Data)
	}
	if scrubbed.Request.Cookies != "" {
		t.Errorf("Cookies not scrubbed: %q", scrubbed.Request.Cookies)
	}
	if _, ok := scrubbed.Request.Headers["Authorization"]; ok {
		t.Error("Authorization header not scrubbed")
	}
	if _, ok := scrubbed.Request.Headers["Cookie"]; ok {
		t.Error("Cookie header not scrubbed")
	}
	if scrubbed.Request.Headers["User-Agent"] != "test-agent" {
		t.Error("Unrelated header should survive scrubbing")
	}
	if scrubbed.Request.URL == "" {
		t.Error("URL should survive scrubbing")
	}
}

func TestScrubEventWithoutRequest(t *testing.T) {
	t.Parallel()

	event := &sentry.Event{Message: "background job failed"}
	if scrubEvent(event, nil) != event {
		t.Error("Event without request should pass through unchanged")
	}
}

func TestFlush(t *testing.T) {
	t.Parallel()

	// Flush should complete quickly when there are no events
	if !Flush(100 * time.Millisecond) {
		t.Error("Expected Flush to return true when no events pending")
	}
}
