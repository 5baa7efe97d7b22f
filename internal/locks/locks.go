// Package locks provides reader/writer locks keyed by index name.
//
// Entries are reference counted and dropped once no goroutine holds or waits
// for them, so the map only grows with the number of indexes in active use.
package locks

import "sync"

type entry struct {
	mu   sync.RWMutex
	refs int
}

// Keyed is a set of sync.RWMutex values addressed by key.
// The zero value is ready to use.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New returns an empty Keyed lock set.
func New() *Keyed {
	return &Keyed{entries: make(map[string]*entry)}
}

func (k *Keyed) acquire(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.entries == nil {
		k.entries = make(map[string]*entry)
	}
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *Keyed) release(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// Lock takes the exclusive lock for key and returns the function that releases it.
func (k *Keyed) Lock(key string) (unlock func()) {
	e := k.acquire(key)
	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.release(key, e)
	}
}

// RLock takes the shared lock for key and returns the function that releases it.
func (k *Keyed) RLock(key string) (unlock func()) {
	e := k.acquire(key)
	e.mu.RLock()
	return func() {
		e.mu.RUnlock()
		k.release(key, e)
	}
}

// Len returns the number of keys currently held or waited on.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
