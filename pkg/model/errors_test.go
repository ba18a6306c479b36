package model

import (
	"strings"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Code: ErrNotFound, Message: "Run 'run_123' not found"}
	want := "NOT_FOUND: Run 'run_123' not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("Run", "run_abc")
	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Message != "Run 'run_abc' not found" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewConfigError(t *testing.T) {
	if err := NewConfigError(); err != nil {
		t.Errorf("NewConfigError() with no details = %v, want nil", err)
	}

	err := NewConfigError(
		FieldError{Field: "tasks.probabilities", Message: "must sum to 1.0"},
		FieldError{Message: "bare message"},
	)
	msg := err.Error()
	if !strings.HasPrefix(msg, "configuration error: ") {
		t.Errorf("Error() = %q, want configuration error prefix", msg)
	}
	if !strings.Contains(msg, "tasks.probabilities: must sum to 1.0") {
		t.Errorf("Error() = %q, missing field detail", msg)
	}
	if !strings.Contains(msg, "; bare message") {
		t.Errorf("Error() = %q, missing bare detail", msg)
	}
}
