package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Sink records diagnostic events with a severity.
// The date-candidate packages accept a Sink instead of reaching for a global logger.
type Sink interface {
	Record(level slog.Level, msg string, args ...any)
}

type loggerSink struct {
	logger *slog.Logger
}

// NewSink adapts a slog.Logger to a Sink. A nil logger yields Discard.
func NewSink(logger *slog.Logger) Sink {
	if logger == nil {
		return Discard
	}
	return loggerSink{logger: logger}
}

func (s loggerSink) Record(level slog.Level, msg string, args ...any) {
	s.logger.Log(context.Background(), level, msg, args...)
}

type discardSink struct{}

func (discardSink) Record(slog.Level, string, ...any) {}

// Discard drops every event.
var Discard Sink = discardSink{}

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// Setup builds a text logger that writes to stderr and appends to logFile.
// The returned closer closes the log file.
func Setup(logFile string, verbose bool) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	dir := filepath.Dir(logFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewTextHandler(io.MultiWriter(os.Stderr, f), &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler).With("app", "publicatiedatumcontrole"), f, nil
}
