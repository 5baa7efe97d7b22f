package pinelocal

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pinelocal/internal/engine"
	"github.com/hupe1980/pinelocal/internal/fs"
	"github.com/hupe1980/pinelocal/internal/registry"
	"github.com/hupe1980/pinelocal/internal/snapshot"
	"github.com/hupe1980/pinelocal/internal/store"
)

var (
	// ErrNotFound is returned when no index has the given name.
	ErrNotFound = errors.New("index not found")

	// ErrAlreadyExists is returned when creating or importing an index whose name is taken.
	ErrAlreadyExists = errors.New("index already exists")

	// ErrCorruptDocument is returned when a persisted document cannot be decoded.
	ErrCorruptDocument = errors.New("corrupt document")

	// ErrStorageUnavailable is returned when the data directory cannot be read or written.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidIndexName is returned for names not matching ^[a-z0-9-]{1,45}$.
	ErrInvalidIndexName = errors.New("invalid index name")

	// ErrInvalidMetric is returned for a metric other than cosine, euclidean or dotproduct.
	ErrInvalidMetric = errors.New("invalid metric")

	// ErrInvalidSpec is returned when spec.serverless.cloud or region is empty.
	ErrInvalidSpec = errors.New("invalid spec")

	// ErrEmptyBatch is returned by Upsert for a batch without vectors.
	ErrEmptyBatch = errors.New("vectors array is required and must not be empty")

	// ErrInvalidVectorID is returned by Upsert when a vector has an empty id.
	ErrInvalidVectorID = errors.New("vector id is required")

	// ErrMissingQueryVector is returned by Query when no query vector is given.
	ErrMissingQueryVector = errors.New("query vector is required")

	// ErrInvalidK is returned when topK is not positive.
	ErrInvalidK = errors.New("topK must be positive")

	// ErrInvalidSnapshot is returned when an import stream is not a valid snapshot.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrInvalidCompression is returned by ExportIndex for an unknown compression name.
	ErrInvalidCompression = errors.New("invalid snapshot compression")

	// ErrLocked is returned by Open when another process holds the data directory.
	ErrLocked = errors.New("data directory is locked")

	// ErrClosed is returned by operations on a closed DB.
	ErrClosed = errors.New("pinelocal: db is closed")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
// ID is empty for query vectors.
type ErrDimensionMismatch struct {
	ID       string
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("dimension mismatch for vector %q: expected %d, got %d", e.ID, e.Expected, e.Actual)
	}
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidDimension indicates an invalid configured dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, registry.ErrNotFound) || errors.Is(err, engine.ErrIndexNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, registry.ErrAlreadyExists) {
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	}

	// Storage failures keep their path in the wrapped error.
	if errors.Is(err, store.ErrCorruptDocument) {
		return fmt.Errorf("%w: %w", ErrCorruptDocument, err)
	}
	if errors.Is(err, store.ErrStorageUnavailable) {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if errors.Is(err, store.ErrInvalidName) {
		return fmt.Errorf("%w: %w", ErrInvalidIndexName, err)
	}

	if errors.Is(err, snapshot.ErrInvalid) || errors.Is(err, snapshot.ErrUnsupportedVersion) {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if errors.Is(err, fs.ErrLocked) {
		return fmt.Errorf("%w: %w", ErrLocked, err)
	}

	return err
}
