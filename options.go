package pinelocal

import (
	"log/slog"

	"github.com/hupe1980/pinelocal/codec"
	"github.com/hupe1980/pinelocal/internal/fs"
)

type options struct {
	codec                codec.Codec
	fs                   fs.FileSystem
	metricsCollector     MetricsCollector
	logger               *Logger
	maxConcurrentQueries int64
	ioLimitBytesPerSec   int64
	maxSnapshotBytes     int64
	scoringWorkers       int
	parallelThreshold    int
	dirLock              bool
}

// Option configures Open.
type Option func(*options)

// WithCodec configures the codec used for the on-disk JSON documents.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pinelocal.BasicMetricsCollector{}
//	db, _ := pinelocal.Open("./data", pinelocal.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pinelocal.NewJSONLogger(os.Stderr, slog.LevelInfo)
//	db, _ := pinelocal.Open("./data", pinelocal.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(os.Stderr, level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(nil, level)
	}
}

// WithMaxConcurrentQueries bounds the number of queries scored at once.
// Further queries wait for a slot or for their context to end. n <= 0 is unlimited.
func WithMaxConcurrentQueries(n int) Option {
	return func(o *options) {
		o.maxConcurrentQueries = int64(n)
	}
}

// WithScoringWorkers sets the goroutines used to score one query, and the
// vector count from which scoring is split across them.
// Zero values keep the defaults (GOMAXPROCS workers, 4096 vectors).
func WithScoringWorkers(workers, parallelThreshold int) Option {
	return func(o *options) {
		o.scoringWorkers = workers
		o.parallelThreshold = parallelThreshold
	}
}

// WithIOLimit throttles snapshot export and import to bytesPerSec.
// bytesPerSec <= 0 is unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimitBytesPerSec = bytesPerSec
	}
}

// WithMaxSnapshotSize bounds the decompressed size of a snapshot ImportIndex
// accepts. n <= 0 keeps the default of 1 GiB.
func WithMaxSnapshotSize(n int64) Option {
	return func(o *options) {
		o.maxSnapshotBytes = n
	}
}

// WithoutDirLock skips the advisory lock on the data directory. Only one
// process may then safely write the directory at a time.
func WithoutDirLock() Option {
	return func(o *options) {
		o.dirLock = false
	}
}

func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		fs:               fs.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		dirLock:          true,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
