package assembly

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pipeline-specific context.
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
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithSeed adds a seed field to the logger (one stochastic simulation run).
func (l *Logger) WithSeed(seed int) *Logger {
	return &Logger{
		Logger: l.Logger.With("seed", seed),
	}
}

// WithMethod adds the clustering method to the logger.
func (l *Logger) WithMethod(method string) *Logger {
	return &Logger{
		Logger: l.Logger.With("method", method),
	}
}

// LogClustering logs a per-seed time-bin clustering outcome.
func (l *Logger) LogClustering(ctx context.Context, seed, bins, clusters int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "spike clustering failed",
			"seed", seed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "spike clustering completed",
			"seed", seed,
			"bins", bins,
			"clusters", clusters,
		)
	}
}

// LogDetection logs a per-seed assembly detection outcome.
func (l *Logger) LogDetection(ctx context.Context, seed, clusters, assemblies int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "assembly detection failed",
			"seed", seed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "assembly detection completed",
			"seed", seed,
			"clusters", clusters,
			"assemblies", assemblies,
		)
	}
}

// LogConsensus logs a consensus clustering outcome.
func (l *Logger) LogConsensus(ctx context.Context, assemblies, clusters int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "consensus clustering failed",
			"assemblies", assemblies,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "consensus clustering completed",
			"assemblies", assemblies,
			"clusters", clusters,
		)
	}
}
