package fs

import "errors"

// ErrLocked is returned by LockFile when another holder owns the lock.
var ErrLocked = errors.New("file is locked by another process")

// Lock is a held advisory file lock.
type Lock interface {
	// Unlock releases the lock and closes the underlying file.
	Unlock() error
}
