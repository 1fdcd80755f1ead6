package config

import (
	"testing"
	"time"
)

// TestChatTimeouts verifies chat-turn timeout constants
func TestChatTimeouts(t *testing.T) {
	tests := []struct {
		name     string
		got      time.Duration
		expected time.Duration
	}{
		{"TurnProcessing", TurnProcessing, 30 * time.Second},
		{"ChatHTTPRead", ChatHTTPRead, 10 * time.Second},
		{"ChatHTTPWrite", ChatHTTPWrite, 35 * time.Second},
		{"ChatHTTPIdle", ChatHTTPIdle, 120 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

// TestTimeoutOrdering verifies relationships the server setup relies on
func TestTimeoutOrdering(t *testing.T) {
	if ChatHTTPWrite <= TurnProcessing {
		t.Errorf("Write timeout %v must exceed turn processing %v", ChatHTTPWrite, TurnProcessing)
	}
	if LLMResponseTimeout > TurnProcessing {
		t.Errorf("Generation timeout %v cannot exceed the turn budget %v", LLMResponseTimeout, TurnProcessing)
	}
	if AcademicRequest >= TurnProcessing {
		t.Errorf("A single catalog request %v must leave room in the turn budget %v", AcademicRequest, TurnProcessing)
	}
}

// TestBackgroundIntervals verifies background job interval constants
func TestBackgroundIntervals(t *testing.T) {
	tests := []struct {
		name     string
		got      time.Duration
		expected time.Duration
	}{
		{"CacheCleanupInterval", CacheCleanupInterval, 12 * time.Hour},
		{"CacheCleanupInitialDelay", CacheCleanupInitialDelay, 5 * time.Minute},
		{"DataRefreshDefault", DataRefreshDefault, 6 * time.Hour},
		{"MetricsUpdateInterval", MetricsUpdateInterval, 5 * time.Minute},
		{"RateLimiterCleanupInterval", RateLimiterCleanupInterval, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}
