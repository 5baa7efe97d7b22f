// Package registry keeps the index list and the per-index config documents
// consistent.
//
// The registry document is the source of truth for which indexes exist. Config
// files are derived from it and can be rebuilt by Reconcile.
package registry

import (
	"errors"
	"slices"
	"sync"

	"github.com/hupe1980/pinelocal/internal/locks"
	"github.com/hupe1980/pinelocal/internal/store"
	"github.com/hupe1980/pinelocal/model"
)

var (
	// ErrAlreadyExists is returned by Create when the name is taken.
	ErrAlreadyExists = errors.New("index already exists")

	// ErrNotFound is returned when no index has the given name.
	ErrNotFound = errors.New("index not found")
)

// Registry creates, describes, lists and deletes indexes.
type Registry struct {
	mu    sync.Mutex // serializes registry read-modify-write cycles
	store *store.Store
	locks *locks.Keyed
}

// New creates a Registry over s. Index trees are removed under the exclusive
// lock of their name in l, which must be shared with the vector engine.
func New(s *store.Store, l *locks.Keyed) *Registry {
	if l == nil {
		l = locks.New()
	}
	return &Registry{store: s, locks: l}
}

// Create registers def. The config document is written before the registry
// entry is appended.
func (r *Registry) Create(def model.IndexDefinition) (model.IndexDescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.store.ReadRegistry()
	if err != nil {
		return model.IndexDescription{}, err
	}
	if indexOf(entries, def.Name) >= 0 {
		return model.IndexDescription{}, ErrAlreadyExists
	}

	entry := model.Describe(def)

	unlock := r.locks.Lock(def.Name)
	defer unlock()

	// A leftover tree from an interrupted create or delete is not part of any
	// registered index; start from a clean directory.
	if err := r.store.DeleteIndexTree(def.Name); err != nil {
		return model.IndexDescription{}, err
	}
	if err := r.store.WriteConfig(def.Name, def); err != nil {
		return model.IndexDescription{}, err
	}
	if err := r.store.WriteRegistry(append(entries, entry)); err != nil {
		return model.IndexDescription{}, err
	}
	return entry, nil
}

// Get returns the description of name built from its config document.
func (r *Registry) Get(name string) (model.IndexDescription, error) {
	def, found, err := r.store.ReadConfig(name)
	if err != nil {
		return model.IndexDescription{}, err
	}
	if !found {
		return model.IndexDescription{}, ErrNotFound
	}
	return model.Describe(def), nil
}

// Delete unregisters name and removes its config and vectors. The registry is
// rewritten first so the index disappears from List and Get-by-registry before
// its files are gone.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.store.ReadRegistry()
	if err != nil {
		return err
	}
	i := indexOf(entries, name)
	if i < 0 {
		return ErrNotFound
	}

	unlock := r.locks.Lock(name)
	defer unlock()

	if err := r.store.WriteRegistry(slices.Delete(entries, i, i+1)); err != nil {
		return err
	}
	return r.store.DeleteIndexTree(name)
}

// List returns every registry entry in stored order.
func (r *Registry) List() ([]model.IndexDescription, error) {
	return r.store.ReadRegistry()
}

// ReconcileReport describes the repairs made by Reconcile.
type ReconcileReport struct {
	// RemovedOrphans lists index directories that had no registry entry.
	RemovedOrphans []string
	// RestoredConfigs lists registry entries whose config document was rewritten.
	RestoredConfigs []string
	// SkippedDirs lists unregistered directories left alone because they hold
	// something other than index documents.
	SkippedDirs []string
}

// Empty reports whether Reconcile found nothing to repair or skip.
func (rr ReconcileReport) Empty() bool {
	return len(rr.RemovedOrphans) == 0 && len(rr.RestoredConfigs) == 0 && len(rr.SkippedDirs) == 0
}

// Reconcile repairs the data directory after an interrupted create or delete:
// unregistered directories that contain only index documents are removed, and
// registered indexes whose config document is missing get it rewritten from
// the registry. Any other directory is reported in SkippedDirs and kept.
func (r *Registry) Reconcile() (ReconcileReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var report ReconcileReport

	entries, err := r.store.ReadRegistry()
	if err != nil {
		return report, err
	}

	dirs, err := r.store.ListIndexDirs()
	if err != nil {
		return report, err
	}
	for _, dir := range dirs {
		if indexOf(entries, dir) >= 0 {
			continue
		}
		unlock := r.locks.Lock(dir)
		removed, err := r.removeOrphan(dir)
		unlock()
		if err != nil {
			return report, err
		}
		if removed {
			report.RemovedOrphans = append(report.RemovedOrphans, dir)
		} else {
			report.SkippedDirs = append(report.SkippedDirs, dir)
		}
	}

	for _, e := range entries {
		_, found, err := r.store.ReadConfig(e.Name)
		if errors.Is(err, store.ErrCorruptDocument) {
			// Not auto-repaired; reads of this index keep reporting the corruption.
			continue
		}
		if err != nil {
			return report, err
		}
		if found {
			continue
		}
		if err := r.store.WriteConfig(e.Name, e.IndexDefinition); err != nil {
			return report, err
		}
		report.RestoredConfigs = append(report.RestoredConfigs, e.Name)
	}

	return report, nil
}

func indexOf(entries []model.IndexDescription, name string) int {
	return slices.IndexFunc(entries, func(e model.IndexDescription) bool { return e.Name == name })
}

// removeOrphan deletes dir if the store could have written it.
func (r *Registry) removeOrphan(dir string) (bool, error) {
	ok, err := r.store.IsIndexTree(dir)
	if err != nil || !ok {
		return false, err
	}
	return true, r.store.DeleteIndexTree(dir)
}
