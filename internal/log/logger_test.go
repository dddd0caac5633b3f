package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Component: ComponentHTTP, Output: &buf})

	logger.WithComponent(ComponentRecords).Info("hello", FieldResource, "expense")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry[FieldComponent] != ComponentRecords || entry[FieldResource] != "expense" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Format: "text", Component: ComponentHTTP, Output: &buf}))
	ctx := context.Background()

	sl.LogRecordWritten(ctx, OpCreate, "expense", "abc", 1250, "Food")
	sl.LogRecordWritten(ctx, OpDelete, "budget", "def", 0, "")
	sl.LogError(ctx, "boom", errors.New("disk full"), ErrorTypeInternal, OpCreate, nil)

	out := buf.String()
	for _, want := range []string{"Record created", "amount_cents=1250", "Record deleted", "error_type=internal_error"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Record deleted") && strings.Contains(line, "amount_cents") {
			t.Errorf("delete should not log an amount: %s", line)
		}
	}
}

func TestFromContextFallback(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("expected fallback logger")
	}
	l := New(DefaultConfig())
	if FromContext(WithLogger(context.Background(), l)) != l {
		t.Error("expected logger from context")
	}
}
