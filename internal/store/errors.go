package store

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptDocument is matched by errors.Is for any *CorruptDocumentError.
	ErrCorruptDocument = errors.New("corrupt document")

	// ErrStorageUnavailable is matched by errors.Is for any *StorageError.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidName is returned for index names that would escape the data directory.
	ErrInvalidName = errors.New("invalid index name")
)

// CorruptDocumentError reports a persisted document that failed to decode.
type CorruptDocumentError struct {
	Path string
	Err  error
}

func (e *CorruptDocumentError) Error() string {
	return fmt.Sprintf("corrupt document %s: %v", e.Path, e.Err)
}

func (e *CorruptDocumentError) Unwrap() error { return e.Err }

// Is reports ErrCorruptDocument as a match.
func (e *CorruptDocumentError) Is(target error) bool { return target == ErrCorruptDocument }

// StorageError reports a filesystem failure while reading or writing a document.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports ErrStorageUnavailable as a match.
func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }
