package condense

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with condense-specific context.
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

// WithTable adds the table name to the logger. Every Table instance tags its
// logger this way so interleaved output from multiple tables stays readable.
func (l *Logger) WithTable(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", name),
	}
}

// LogLoad logs a load operation.
func (l *Logger) LogLoad(ctx context.Context, rows, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "load completed",
			"rows", rows,
			"bytes", bytes,
		)
	}
}

// LogRewrite logs a rewrite operation.
func (l *Logger) LogRewrite(ctx context.Context, rows, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "rewrite failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "rewrite completed",
			"rows", rows,
			"bytes", bytes,
		)
	}
}

// LogMutation logs a mutating operation (insert, remove, update, setField).
func (l *Logger) LogMutation(ctx context.Context, op string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "mutation failed",
			"op", op,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "mutation completed",
			"op", op,
			"rows", rows,
		)
	}
}

// LogQuery logs a query operation.
func (l *Logger) LogQuery(ctx context.Context, op string, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"op", op,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"op", op,
			"results", results,
		)
	}
}

// LogDelete logs blob deletion.
func (l *Logger) LogDelete(ctx context.Context, existed bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "delete completed",
			"existed", existed,
		)
	}
}

// LogCreate logs creation of the backing blob on first construction.
func (l *Logger) LogCreate(ctx context.Context, location string) {
	l.InfoContext(ctx, "blob created",
		"location", location,
	)
}
