package cli

import (
	"context"
	"log/slog"
	"testing"
)

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug", "json", "api")
	if logger.Component() != "api" {
		t.Errorf("component = %q, want api", logger.Component())
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug level on default logger")
	}
}

func TestSetupLoggerUnknownLevel(t *testing.T) {
	SetupLogger("loud", "text", "api")
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected fallback to info level")
	}
}
