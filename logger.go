package pinelocal

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/pinelocal/distance"
	"github.com/hupe1980/pinelocal/internal/registry"
)

// Logger wraps slog.Logger with pinelocal-specific context.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to w.
// A nil w writes to stderr.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs to w.
// A nil w writes to stderr.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// ParseLevel maps "debug", "info", "warn" and "error" to a slog.Level.
// Unknown names yield slog.LevelInfo and false.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// WithIndex adds an index field to the logger.
func (l *Logger) WithIndex(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("index", name),
	}
}

// LogCreateIndex logs an index creation.
func (l *Logger) LogCreateIndex(ctx context.Context, name string, dimension int, metric distance.Metric, err error) {
	if err != nil {
		l.WarnContext(ctx, "create index failed",
			"index", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "index created",
		"index", name,
		"dimension", dimension,
		"metric", metric.String(),
	)
}

// LogDeleteIndex logs an index deletion.
func (l *Logger) LogDeleteIndex(ctx context.Context, name string, err error) {
	if err != nil {
		l.WarnContext(ctx, "delete index failed",
			"index", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "index deleted", "index", name)
}

// LogUpsert logs an upsert batch.
func (l *Logger) LogUpsert(ctx context.Context, name string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "upsert failed",
			"index", name,
			"count", count,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "upsert completed",
		"index", name,
		"count", count,
	)
}

// LogQuery logs a query.
func (l *Logger) LogQuery(ctx context.Context, name string, k, matches int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"index", name,
			"k", k,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "query completed",
		"index", name,
		"k", k,
		"results", matches,
	)
}

// LogSnapshot logs an export or import.
func (l *Logger) LogSnapshot(ctx context.Context, op, name string, vectors int, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"index", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, op+" completed",
		"index", name,
		"vectors", vectors,
	)
}

// LogReconcile logs the repairs made when a data directory is opened.
func (l *Logger) LogReconcile(ctx context.Context, dataDir string, report registry.ReconcileReport, err error) {
	if err != nil {
		l.ErrorContext(ctx, "reconcile failed",
			"data_dir", dataDir,
			"error", err,
		)
		return
	}
	if report.Empty() {
		l.DebugContext(ctx, "data directory consistent", "data_dir", dataDir)
		return
	}
	if len(report.SkippedDirs) > 0 {
		l.WarnContext(ctx, "unrecognized directories left in place",
			"data_dir", dataDir,
			"dirs", report.SkippedDirs,
		)
	}
	if len(report.RemovedOrphans) > 0 || len(report.RestoredConfigs) > 0 {
		l.WarnContext(ctx, "data directory repaired",
			"data_dir", dataDir,
			"removed_orphans", report.RemovedOrphans,
			"restored_configs", report.RestoredConfigs,
		)
	}
}
