package cullgo

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with cullgo-specific context.
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

// LogRebuild logs a lazy spatial-index rebuild.
func (l *Logger) LogRebuild(total, dropped int, duration time.Duration) {
	if dropped > 0 {
		l.Warn("index rebuilt with dropped items",
			"total", total,
			"dropped", dropped,
			"duration", duration,
		)
	} else {
		l.Debug("index rebuilt",
			"total", total,
			"duration", duration,
		)
	}
}

// LogBatch logs the outcome of one build batch.
func (l *Logger) LogBatch(built, failed, total int, duration time.Duration) {
	if failed > 0 {
		l.Warn("build batch completed with failures",
			"built", built,
			"failed", failed,
			"total", total,
			"duration", duration,
		)
	} else {
		l.Debug("build batch completed",
			"built", built,
			"total", total,
			"duration", duration,
		)
	}
}

// LogTick logs one engine tick.
func (l *Logger) LogTick(visible, total int, hitRatio float64, duration time.Duration) {
	l.Debug("tick completed",
		"visible", visible,
		"total", total,
		"hit_ratio", hitRatio,
		"duration", duration,
	)
}
