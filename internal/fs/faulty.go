package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is returned by a Fault without its own Err.
var ErrInjected = errors.New("fs: injected fault")

// Fault selects the operations that fail on a matching path.
type Fault struct {
	FailOnOpen    bool
	FailOnRead    bool
	FailOnWrite   bool
	FailOnSync    bool
	FailOnClose   bool
	FailOnReadDir bool
	FailOnMkdir   bool
	FailOnRemove  bool
	// FailOnRename is matched against the destination path.
	FailOnRename bool

	// FailAfterBytes fails the write that would take one opened file past
	// this many bytes. Zero disables it.
	FailAfterBytes int64

	// Err replaces ErrInjected.
	Err error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

// FaultyFS wraps a FileSystem and fails operations on paths that contain a
// registered pattern. When several patterns match, the longest wins.
type FaultyFS struct {
	base FileSystem

	mu      sync.Mutex
	rules   map[string]Fault
	written int64
}

// NewFaultyFS wraps base, or Default if base is nil.
func NewFaultyFS(base FileSystem) *FaultyFS {
	if base == nil {
		base = Default
	}
	return &FaultyFS{base: base, rules: map[string]Fault{}}
}

// AddRule registers fault for paths containing pattern, replacing any earlier
// rule for the same pattern.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	f.rules[pattern] = fault
	f.mu.Unlock()
}

// ClearRules removes every rule.
func (f *FaultyFS) ClearRules() {
	f.mu.Lock()
	clear(f.rules)
	f.mu.Unlock()
}

// Written returns the bytes successfully written through f.
func (f *FaultyFS) Written() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written
}

func (f *FaultyFS) match(path string) Fault {
	f.mu.Lock()
	defer f.mu.Unlock()

	var (
		fault Fault
		best  = -1
	)
	for pattern, rule := range f.rules {
		if len(pattern) > best && strings.Contains(path, pattern) {
			fault, best = rule, len(pattern)
		}
	}
	return fault
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	fault := f.match(name)
	if fault.FailOnOpen {
		return nil, fault.err()
	}
	file, err := f.base.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, owner: f, fault: fault}, nil
}

func (f *FaultyFS) ReadFile(name string) ([]byte, error) {
	if fault := f.match(name); fault.FailOnRead {
		return nil, fault.err()
	}
	return f.base.ReadFile(name)
}

func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) {
	if fault := f.match(name); fault.FailOnReadDir {
		return nil, fault.err()
	}
	return f.base.ReadDir(name)
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) {
	return f.base.Stat(name)
}

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error {
	if fault := f.match(path); fault.FailOnMkdir {
		return fault.err()
	}
	return f.base.MkdirAll(path, perm)
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if fault := f.match(newpath); fault.FailOnRename {
		return fault.err()
	}
	return f.base.Rename(oldpath, newpath)
}

func (f *FaultyFS) Remove(name string) error {
	if fault := f.match(name); fault.FailOnRemove {
		return fault.err()
	}
	return f.base.Remove(name)
}

func (f *FaultyFS) RemoveAll(path string) error {
	if fault := f.match(path); fault.FailOnRemove {
		return fault.err()
	}
	return f.base.RemoveAll(path)
}

type faultyFile struct {
	File
	owner   *FaultyFS
	fault   Fault
	written int64
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	if ff.fault.FailOnWrite {
		return 0, ff.fault.err()
	}
	if limit := ff.fault.FailAfterBytes; limit > 0 && ff.written+int64(len(p)) > limit {
		return 0, ff.fault.err()
	}

	n, err := ff.File.Write(p)
	ff.written += int64(n)
	ff.owner.mu.Lock()
	ff.owner.written += int64(n)
	ff.owner.mu.Unlock()
	return n, err
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailOnSync {
		return ff.fault.err()
	}
	return ff.File.Sync()
}

// Close always releases the underlying file, even when it reports a fault.
func (ff *faultyFile) Close() error {
	err := ff.File.Close()
	if ff.fault.FailOnClose {
		return ff.fault.err()
	}
	return err
}
