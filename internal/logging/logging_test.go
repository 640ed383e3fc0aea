package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewSinkNilLogger(t *testing.T) {
	if NewSink(nil) != Discard {
		t.Errorf("Expected Discard for nil logger")
	}
}

func TestLoggerSinkRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sink := NewSink(logger)
	sink.Record(slog.LevelWarn, "constant density", "rows", 1)

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "rows=1") {
		t.Errorf("Unexpected log output: %s", out)
	}
}

func TestSetupAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	for i := 0; i < 2; i++ {
		logger, closer, err := Setup(path, false)
		if err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
		logger.Info("batch done")
		logger.Debug("hidden")
		closer.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	if got := strings.Count(string(data), "batch done"); got != 2 {
		t.Errorf("Expected 2 appended records, got %d", got)
	}
	if strings.Contains(string(data), "hidden") {
		t.Errorf("Debug record written without verbose")
	}
}
