package gparse

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with gparse-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRunID tags the logger with the id of one parse call.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithStrategy adds the search strategy name.
func (l *Logger) WithStrategy(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("strategy", name),
	}
}

// WithWords adds the sentence and its length.
func (l *Logger) WithWords(words []string) *Logger {
	return &Logger{
		Logger: l.Logger.With(
			"sentence", strings.Join(words, " "),
			"words", len(words),
		),
	}
}

// LogParse logs a parse operation.
func (l *Logger) LogParse(ctx context.Context, results int, bestProb float64, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "parse failed",
			"error", err,
		)
	case results == 0:
		l.InfoContext(ctx, "parse found no derivation")
	default:
		l.DebugContext(ctx, "parse completed",
			"results", results,
			"best_prob", bestProb,
		)
	}
}
