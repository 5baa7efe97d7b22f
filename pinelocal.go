package pinelocal

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/hupe1980/pinelocal/internal/engine"
	"github.com/hupe1980/pinelocal/internal/fs"
	"github.com/hupe1980/pinelocal/internal/locks"
	"github.com/hupe1980/pinelocal/internal/registry"
	"github.com/hupe1980/pinelocal/internal/resource"
	"github.com/hupe1980/pinelocal/internal/snapshot"
	"github.com/hupe1980/pinelocal/internal/store"
	"github.com/hupe1980/pinelocal/model"
)

// LockFileName is the advisory lock file Open takes inside the data directory.
const LockFileName = ".lock"

// DB is an open data directory.
//
// All methods are safe for concurrent use. Every call reads from and writes
// to disk; nothing is cached between calls.
type DB struct {
	dataDir   string
	store     *store.Store
	registry  *registry.Registry
	engine    *engine.Engine
	resources *resource.Controller
	dirLock   fs.Lock

	maxSnapshotBytes int64

	logger  *Logger
	metrics MetricsCollector

	closed atomic.Bool
}

// Open opens or initializes the data directory dataDir.
//
// The directory and an empty registry are created if absent. Unless
// WithoutDirLock is given, Open takes an exclusive advisory lock and fails
// with ErrLocked if another process holds it. Leftovers of an interrupted
// create or delete are repaired before Open returns.
func Open(dataDir string, optFns ...Option) (*DB, error) {
	opts := applyOptions(optFns)
	ctx := context.Background()

	s := store.New(dataDir, func(o *store.Options) {
		o.FS = opts.fs
		o.Codec = opts.codec
	})
	if err := s.Init(); err != nil {
		return nil, translateError(err)
	}

	var dirLock fs.Lock
	if opts.dirLock {
		l, err := fs.LockFile(filepath.Join(dataDir, LockFileName))
		if err != nil {
			return nil, translateError(err)
		}
		dirLock = l
	}

	keyed := locks.New()
	db := &DB{
		dataDir:  dataDir,
		store:    s,
		registry: registry.New(s, keyed),
		engine: engine.New(s, keyed, func(o *engine.Options) {
			o.Workers = opts.scoringWorkers
			o.ParallelThreshold = opts.parallelThreshold
		}),
		resources: resource.NewController(resource.Config{
			MaxConcurrentQueries: opts.maxConcurrentQueries,
			IOLimitBytesPerSec:   opts.ioLimitBytesPerSec,
		}),
		dirLock:          dirLock,
		maxSnapshotBytes: opts.maxSnapshotBytes,
		logger:           opts.logger,
		metrics:          opts.metricsCollector,
	}

	report, err := db.registry.Reconcile()
	db.logger.LogReconcile(ctx, dataDir, report, err)
	if err != nil {
		_ = db.Close()
		return nil, translateError(err)
	}

	return db, nil
}

// DataDir returns the directory db was opened on.
func (db *DB) DataDir() string { return db.dataDir }

func (db *DB) check(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

// CreateIndex validates req and registers a new, empty index.
func (db *DB) CreateIndex(ctx context.Context, req model.CreateIndexRequest) (model.IndexDescription, error) {
	start := time.Now()
	def := req.Definition()

	desc, err := db.createIndex(ctx, def)
	db.metrics.RecordCreateIndex(time.Since(start), err)
	db.logger.LogCreateIndex(ctx, def.Name, def.Dimension, def.Metric, err)
	return desc, err
}

func (db *DB) createIndex(ctx context.Context, def model.IndexDefinition) (model.IndexDescription, error) {
	if err := db.check(ctx); err != nil {
		return model.IndexDescription{}, err
	}
	if err := validateDefinition(def); err != nil {
		return model.IndexDescription{}, err
	}
	desc, err := db.registry.Create(def)
	return desc, translateError(err)
}

// DescribeIndex returns the registry entry of name.
func (db *DB) DescribeIndex(ctx context.Context, name string) (model.IndexDescription, error) {
	if err := db.check(ctx); err != nil {
		return model.IndexDescription{}, err
	}
	if err := validateName(name); err != nil {
		return model.IndexDescription{}, err
	}
	desc, err := db.registry.Get(name)
	return desc, translateError(err)
}

// DescribeIndexStats returns the dimension and vector count of name.
func (db *DB) DescribeIndexStats(ctx context.Context, name string) (model.IndexStats, error) {
	desc, err := db.DescribeIndex(ctx, name)
	if err != nil {
		return model.IndexStats{}, err
	}
	set, err := db.engine.Vectors(ctx, name)
	if err != nil {
		return model.IndexStats{}, translateError(err)
	}
	return model.NewIndexStats(desc.Dimension, set.Len()), nil
}

// ListIndexes returns every registered index in creation order.
func (db *DB) ListIndexes(ctx context.Context) ([]model.IndexDescription, error) {
	if err := db.check(ctx); err != nil {
		return nil, err
	}
	entries, err := db.registry.List()
	return entries, translateError(err)
}

// DeleteIndex removes name and all of its vectors.
func (db *DB) DeleteIndex(ctx context.Context, name string) error {
	start := time.Now()
	err := db.deleteIndex(ctx, name)
	db.metrics.RecordDeleteIndex(time.Since(start), err)
	db.logger.LogDeleteIndex(ctx, name, err)
	return err
}

func (db *DB) deleteIndex(ctx context.Context, name string) error {
	if err := db.check(ctx); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	return translateError(db.registry.Delete(name))
}

// Upsert inserts or replaces vectors in name and returns len(vectors).
//
// Every vector needs a non-empty id and exactly the index dimension. The batch
// is written completely or not at all.
func (db *DB) Upsert(ctx context.Context, name string, vectors []model.Vector) (int, error) {
	start := time.Now()
	n, err := db.upsert(ctx, name, vectors)
	db.metrics.RecordUpsert(len(vectors), time.Since(start), err)
	db.logger.LogUpsert(ctx, name, len(vectors), err)
	return n, err
}

func (db *DB) upsert(ctx context.Context, name string, vectors []model.Vector) (int, error) {
	if err := db.check(ctx); err != nil {
		return 0, err
	}
	if err := validateName(name); err != nil {
		return 0, err
	}
	if len(vectors) == 0 {
		return 0, ErrEmptyBatch
	}
	if _, err := db.registry.Get(name); err != nil {
		return 0, translateError(err)
	}
	n, err := db.engine.UpsertValidated(ctx, name, vectors, validateVectors)
	return n, translateError(err)
}

// Query returns the req.TopK stored vectors of name most similar to req.Vector
// under the index metric, highest score first.
func (db *DB) Query(ctx context.Context, name string, req model.QueryRequest) (model.QueryResponse, error) {
	start := time.Now()
	resp, err := db.query(ctx, name, req)
	db.metrics.RecordQuery(req.TopK, time.Since(start), err)
	db.logger.LogQuery(ctx, name, req.TopK, len(resp.Matches), err)
	return resp, err
}

func (db *DB) query(ctx context.Context, name string, req model.QueryRequest) (model.QueryResponse, error) {
	if err := db.check(ctx); err != nil {
		return model.QueryResponse{}, err
	}
	if err := validateName(name); err != nil {
		return model.QueryResponse{}, err
	}
	if req.Vector == nil {
		return model.QueryResponse{}, ErrMissingQueryVector
	}
	if req.TopK < 1 {
		return model.QueryResponse{}, ErrInvalidK
	}
	desc, err := db.registry.Get(name)
	if err != nil {
		return model.QueryResponse{}, translateError(err)
	}
	if len(req.Vector) != desc.Dimension {
		return model.QueryResponse{}, &ErrDimensionMismatch{Expected: desc.Dimension, Actual: len(req.Vector)}
	}

	if err := db.resources.AcquireQuery(ctx); err != nil {
		return model.QueryResponse{}, err
	}
	defer db.resources.ReleaseQuery()

	resp, err := db.engine.Query(ctx, name, req, desc.Metric)
	return resp, translateError(err)
}

// Snapshot compression formats for ExportOptions. ImportIndex reads both.
const (
	CompressionZstd = string(snapshot.CompressionZstd)
	CompressionLZ4  = string(snapshot.CompressionLZ4)
)

// ExportOptions configures ExportIndex.
type ExportOptions struct {
	// Compression is CompressionZstd (the default) or CompressionLZ4.
	Compression string
}

// ExportIndex writes name as a compressed snapshot to w and returns the number
// of vectors written.
func (db *DB) ExportIndex(ctx context.Context, name string, w io.Writer, optFns ...func(o *ExportOptions)) (int, error) {
	n, err := db.exportIndex(ctx, name, w, optFns)
	db.logger.LogSnapshot(ctx, "export", name, n, err)
	return n, err
}

func (db *DB) exportIndex(ctx context.Context, name string, w io.Writer, optFns []func(o *ExportOptions)) (int, error) {
	opts := ExportOptions{Compression: CompressionZstd}
	for _, fn := range optFns {
		fn(&opts)
	}
	compression, err := snapshot.ParseCompression(opts.Compression)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidCompression, err)
	}

	desc, err := db.DescribeIndex(ctx, name)
	if err != nil {
		return 0, err
	}
	set, err := db.engine.Vectors(ctx, name)
	if err != nil {
		return 0, translateError(err)
	}

	out := resource.NewRateLimitedWriter(ctx, w, db.resources)
	err = snapshot.Write(out, desc.IndexDefinition, set, db.snapshotOptions, func(o *snapshot.Options) {
		o.Compression = compression
	})
	if err != nil {
		return 0, err
	}
	return set.Len(), nil
}

// ImportOptions configures ImportIndex.
type ImportOptions struct {
	// Name overrides the index name stored in the snapshot.
	Name string
}

// ImportIndex creates an index from a snapshot written by ExportIndex.
// It fails with ErrAlreadyExists if the name is taken. A failed vector write
// removes the new index again.
func (db *DB) ImportIndex(ctx context.Context, r io.Reader, optFns ...func(o *ImportOptions)) (model.IndexDescription, error) {
	start := time.Now()
	desc, n, err := db.importIndex(ctx, r, optFns)
	db.metrics.RecordCreateIndex(time.Since(start), err)
	db.logger.LogSnapshot(ctx, "import", desc.Name, n, err)
	return desc, err
}

func (db *DB) importIndex(ctx context.Context, r io.Reader, optFns []func(o *ImportOptions)) (model.IndexDescription, int, error) {
	var opts ImportOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := db.check(ctx); err != nil {
		return model.IndexDescription{}, 0, err
	}

	in := resource.NewRateLimitedReader(ctx, r, db.resources)
	doc, err := snapshot.Read(in, db.snapshotOptions)
	if err != nil {
		return model.IndexDescription{}, 0, translateError(err)
	}

	def := doc.Index
	if opts.Name != "" {
		def.Name = opts.Name
	}
	desc, err := db.createIndex(ctx, def)
	if err != nil {
		return model.IndexDescription{}, 0, err
	}
	if len(doc.Vectors) == 0 {
		return desc, 0, nil
	}

	if _, err := db.engine.UpsertValidated(ctx, def.Name, doc.Vectors, validateVectors); err != nil {
		_ = db.registry.Delete(def.Name)
		return model.IndexDescription{}, 0, translateError(err)
	}
	return desc, len(doc.Vectors), nil
}

func (db *DB) snapshotOptions(o *snapshot.Options) {
	o.Codec = db.store.Codec()
	o.MaxBytes = db.maxSnapshotBytes
}
