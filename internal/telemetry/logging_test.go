package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		env  string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Setenv("LOG_LEVEL", tt.env)
		if got := LogLevel(); got != tt.want {
			t.Errorf("LOG_LEVEL=%q: expected %v, got %v", tt.env, tt.want, got)
		}
	}
}

func TestSetupLogger_JSONByDefault(t *testing.T) {
	t.Setenv("LOG_LEVEL", "INFO")
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger := setupLogger(&buf, "")
	WithTaskID(WithToken(logger, "abcdefgh"), "task-1").Info("task fetched")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if line["token"] != "abcdefgh" || line["task_id"] != "task-1" {
		t.Errorf("missing attributes in %v", line)
	}
}

func TestSetupLogger_Text(t *testing.T) {
	t.Setenv("LOG_LEVEL", "INFO")
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	setupLogger(&buf, "text").Info("hello", "session_id", "s1")

	if !strings.Contains(buf.String(), "session_id=s1") {
		t.Errorf("expected text output, got %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	logger := Discard()
	ctx := WithLogger(context.Background(), logger)

	if FromContext(ctx) != logger {
		t.Error("expected logger from context")
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger for empty context")
	}
}
