package errors

import (
	"errors"
	"testing"
)

func TestErrorWrapper_Wrap(t *testing.T) {
	wrapper := NewWrapper("academic", "list_programs")

	t.Run("wraps error with context", func(t *testing.T) {
		baseErr := errors.New("upstream unavailable")
		err := wrapper.Wrap(baseErr, "No pudimos consultar los programas")

		if err == nil {
			t.Fatal("expected non-nil error")
		}

		var wrapped *WrappedError
		if !errors.As(err, &wrapped) {
			t.Fatal("expected WrappedError")
		}

		if wrapped.Module != "academic" {
			t.Errorf("expected module 'academic', got '%s'", wrapped.Module)
		}
		if wrapped.Operation != "list_programs" {
			t.Errorf("expected operation 'list_programs', got '%s'", wrapped.Operation)
		}
		if !errors.Is(err, baseErr) {
			t.Error("expected wrapped error to match base error")
		}
	})

	t.Run("nil error returns nil", func(t *testing.T) {
		if err := wrapper.Wrap(nil, "message"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

func TestErrorWrapper_Wrapf(t *testing.T) {
	wrapper := NewWrapper("engine", "process_turn")

	baseErr := errors.New("boom")
	err := wrapper.Wrapf(baseErr, "turn %d failed", 3)

	var wrapped *WrappedError
	if !errors.As(err, &wrapped) {
		t.Fatal("expected WrappedError")
	}
	if wrapped.UserMessage != "turn 3 failed" {
		t.Errorf("expected formatted message, got '%s'", wrapped.UserMessage)
	}

	if err := wrapper.Wrapf(nil, "ignored %s", "arg"); err != nil {
		t.Errorf("expected nil for nil cause, got %v", err)
	}
}

func TestGetUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name: "wrapped error returns user message",
			err: &WrappedError{
				Module:      "academic",
				Operation:   "list_faculties",
				Cause:       errors.New("timeout"),
				UserMessage: "Intenta de nuevo en un momento",
			},
			expected: "Intenta de nuevo en un momento",
		},
		{
			name:     "plain error returns error string",
			err:      errors.New("plain failure"),
			expected: "plain failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetUserMessage(tt.err); got != tt.expected {
				t.Errorf("expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}
