package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
)

func TestTaxonomyHelpers(t *testing.T) {
	rateLimited := NewRateLimitError("quota exhausted", errors.New("429"))
	exhausted := NewMaxRetriesExceededError(3, rateLimited)

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"configuration", NewConfigurationError("no key"), IsConfiguration, true},
		{"parse", NewParseError("Failed to parse resume file", nil), IsParse, true},
		{"unsupported format", NewUnsupportedFormatError("image/png"), IsUnsupportedFormat, true},
		{"unsupported format is validation", NewUnsupportedFormatError("image/png"), IsValidation, true},
		{"ai response", NewAIResponseError("bad json", nil), IsAIResponse, true},
		{"max retries", exhausted, IsMaxRetriesExceeded, true},
		{"max retries wraps transient", exhausted, IsTransient, true},
		{"wrapped with fmt", fmt.Errorf("analysis: %w", NewAIResponseError("bad", nil)), IsAIResponse, true},
		{"plain error", errors.New("boom"), IsTransient, false},
		{"parse is not configuration", NewParseError("x", nil), IsConfiguration, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("Expected %v, got %v for %v", tt.want, got, tt.err)
			}
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := NewParseError("Failed to parse resume file", errors.New("corrupt xref table"))
	expected := "RESUME_PARSE_FAILED: Failed to parse resume file (caused by: corrupt xref table)"
	if err.Error() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, err.Error())
	}

	if !errors.Is(err, err.Cause) {
		t.Error("Expected errors.Is to find the cause")
	}
}

func TestLogErrorIncludesContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelDebug)

	logger.LogError(NewUnsupportedFormatError("image/gif"), "extraction failed", "file", "cv.gif")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["error_code"] != ErrCodeUnsupportedFormat {
		t.Errorf("Expected error_code %s, got %v", ErrCodeUnsupportedFormat, entry["error_code"])
	}
	if entry["mime_type"] != "image/gif" {
		t.Errorf("Expected mime_type context, got %v", entry["mime_type"])
	}
	if entry["file"] != "cv.gif" {
		t.Errorf("Expected file arg, got %v", entry["file"])
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Info("ignored")
	logger.Warn("ignored")
	logger.Debug("ignored")
	logger.LogError(errors.New("x"), "ignored")
	if logger.With("k", "v") != nil {
		t.Error("Expected nil logger from With on nil receiver")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("verbose"); err == nil {
		t.Error("Expected error for unknown log level")
	}
	if _, err := New("warn"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
