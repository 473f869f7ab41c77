package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal log entry: %v", err)
	}
	return entry
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	t.Run("debug not logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Debug("debug message")
		if buf.Len() > 0 {
			t.Error("Debug message should not be logged at Info level")
		}
	})

	t.Run("info logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Info("info message")
		if buf.Len() == 0 {
			t.Error("Info message should be logged at Info level")
		}

		entry := decodeEntry(t, &buf)
		if entry["level"] != "INFO" {
			t.Errorf("Expected level INFO, got %v", entry["level"])
		}
		if entry["msg"] != "info message" {
			t.Errorf("Expected message 'info message', got %v", entry["msg"])
		}
	})

	t.Run("warn logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Warn("warn message")
		if buf.Len() == 0 {
			t.Error("Warn message should be logged at Info level")
		}
	})

	t.Run("error logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Error("error message")
		if buf.Len() == 0 {
			t.Error("Error message should be logged at Info level")
		}
	})
}

func TestLogger_WithField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithField("key", "value").Info("message")

	entry := decodeEntry(t, &buf)
	if entry["key"] != "value" {
		t.Errorf("Expected field 'key' to be 'value', got %v", entry["key"])
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithFields(map[string]interface{}{
		"permission": "create_sale",
		"role":       "cashier",
	}).Info("message")

	entry := decodeEntry(t, &buf)
	if entry["permission"] != "create_sale" {
		t.Errorf("Expected field 'permission' to be 'create_sale', got %v", entry["permission"])
	}
	if entry["role"] != "cashier" {
		t.Errorf("Expected field 'role' to be 'cashier', got %v", entry["role"])
	}
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithError(errors.New("boom")).Warn("message")

	entry := decodeEntry(t, &buf)
	if entry["error"] != "boom" {
		t.Errorf("Expected field 'error' to be 'boom', got %v", entry["error"])
	}

	// A nil error adds nothing.
	buf.Reset()
	logger.WithError(nil).Info("clean")
	entry = decodeEntry(t, &buf)
	if _, ok := entry["error"]; ok {
		t.Error("nil error should not add an error field")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"nonsense", InfoLevel},
		{"", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	if GetRequestID(ctx) != "" {
		t.Error("empty context should have no request ID")
	}

	ctx = WithRequestID(ctx, "req-1")
	if GetRequestID(ctx) != "req-1" {
		t.Errorf("GetRequestID = %q, want req-1", GetRequestID(ctx))
	}

	ctx = WithSubject(ctx, "cashier")
	if GetSubject(ctx) != "cashier" {
		t.Errorf("GetSubject = %q, want cashier", GetSubject(ctx))
	}

	var buf bytes.Buffer
	ctx = WithLogger(ctx, NewLogger(InfoLevel, &buf))
	FromContext(ctx).Info("message")

	entry := decodeEntry(t, &buf)
	if entry["request_id"] != "req-1" {
		t.Errorf("Expected request_id 'req-1', got %v", entry["request_id"])
	}
	if entry["subject"] != "cashier" {
		t.Errorf("Expected subject 'cashier', got %v", entry["subject"])
	}
}
