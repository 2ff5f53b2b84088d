package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// newFileLogger builds a JSON logger writing to a temp file and returns
// both, with a helper to read the output back.
func newFileLogger(t *testing.T, level string) (*Logger, func() string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "log.json")
	log, err := NewLogger(LoggingConfig{Level: level, Format: "json", Output: path})
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log, func() string {
		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log output: %v", err)
		}
		return string(raw)
	}
}

// TestLoggerFields tests the structured field helpers
func TestLoggerFields(t *testing.T) {
	log, output := newFileLogger(t, "debug")

	log.NewComponentLogger("agent").
		WithRunID("run_1").
		WithStage("training").
		WithModel("KNN").
		Info("Fitting candidate")

	out := output()
	for _, part := range []string{
		`"component":"agent"`,
		`"run_id":"run_1"`,
		`"stage":"training"`,
		`"model":"KNN"`,
		"Fitting candidate",
	} {
		if !strings.Contains(out, part) {
			t.Errorf("log output missing %s: %s", part, out)
		}
	}
}

// TestLoggerLevelFiltering tests that messages below the level are dropped
func TestLoggerLevelFiltering(t *testing.T) {
	log, output := newFileLogger(t, "warn")

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("visible warn")
	log.Errorf("visible %s", "error")

	out := output()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below warn leaked: %s", out)
	}
	if !strings.Contains(out, "visible warn") || !strings.Contains(out, "visible error") {
		t.Errorf("expected warn and error output: %s", out)
	}
}

// TestParseLogLevel tests level parsing with an unknown fallback
func TestParseLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"unknown": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

// TestLoggerContext tests the context round trip and its fallback
func TestLoggerContext(t *testing.T) {
	log, _ := newFileLogger(t, "info")

	ctx := log.WithContext(context.Background())
	if FromContext(ctx) != log {
		t.Error("expected the stored logger back from the context")
	}
	if FromContext(context.Background()) == nil {
		t.Error("expected a fallback logger from a bare context")
	}
}
