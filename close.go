package pinelocal

// Close releases the data directory lock. Further calls on db return ErrClosed.
// Close is idempotent.
func (db *DB) Close() error {
	if db == nil || !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	var firstErr error
	if db.dirLock != nil {
		if err := db.dirLock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
		db.dirLock = nil
	}
	return firstErr
}
