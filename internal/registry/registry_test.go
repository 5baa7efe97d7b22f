package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pinelocal/distance"
	"github.com/hupe1980/pinelocal/internal/fs"
	"github.com/hupe1980/pinelocal/internal/locks"
	"github.com/hupe1980/pinelocal/internal/store"
	"github.com/hupe1980/pinelocal/model"
)

func def(name string, dim int) model.IndexDefinition {
	return model.IndexDefinition{
		Name:      name,
		Dimension: dim,
		Metric:    distance.MetricEuclidean,
		Spec:      model.Spec{Serverless: model.ServerlessSpec{Cloud: "gcp", Region: "europe-west1"}},
	}
}

func newRegistry(t *testing.T) (*Registry, *store.Store) {
	t.Helper()
	s := store.New(t.TempDir())
	require.NoError(t, s.Init())
	return New(s, locks.New()), s
}

func TestRegistry_CreateGetList(t *testing.T) {
	r, s := newRegistry(t)

	entry, err := r.Create(def("one", 4))
	require.NoError(t, err)
	assert.Equal(t, "one", entry.Name)
	assert.Equal(t, model.ReadyStatus(), entry.Status)

	_, err = r.Create(def("two", 8))
	require.NoError(t, err)

	got, err := r.Get("one")
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	list, err := r.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Name)
	assert.Equal(t, "two", list[1].Name)

	cfg, found, err := s.ReadConfig("two")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 8, cfg.Dimension)
}

func TestRegistry_CreateDuplicate(t *testing.T) {
	r, s := newRegistry(t)

	_, err := r.Create(def("dup", 3))
	require.NoError(t, err)

	_, err = r.Create(def("dup", 99))
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// The original definition is untouched.
	cfg, _, err := s.ReadConfig("dup")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Dimension)

	list, err := r.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRegistry_GetMissing(t *testing.T) {
	r, _ := newRegistry(t)
	_, err := r.Get("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_Delete(t *testing.T) {
	r, s := newRegistry(t)

	_, err := r.Create(def("a", 2))
	require.NoError(t, err)
	_, err = r.Create(def("b", 2))
	require.NoError(t, err)
	_, err = r.Create(def("c", 2))
	require.NoError(t, err)
	require.NoError(t, s.WriteVectors("b", model.VectorSet{Vectors: []model.Vector{{ID: "x", Values: []float64{1, 1}}}}))

	require.NoError(t, r.Delete("b"))

	_, err = r.Get("b")
	assert.ErrorIs(t, err, ErrNotFound)

	_, statErr := os.Stat(filepath.Join(s.Root(), "b"))
	assert.True(t, os.IsNotExist(statErr))

	list, err := r.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name, "remaining entries keep their order")
	assert.Equal(t, "c", list[1].Name)

	// Not idempotent.
	assert.ErrorIs(t, r.Delete("b"), ErrNotFound)
}

func TestRegistry_RecreateStartsEmpty(t *testing.T) {
	r, s := newRegistry(t)

	_, err := r.Create(def("again", 2))
	require.NoError(t, err)
	require.NoError(t, s.WriteVectors("again", model.VectorSet{Vectors: []model.Vector{{ID: "old", Values: []float64{1, 0}}}}))
	require.NoError(t, r.Delete("again"))

	_, err = r.Create(def("again", 2))
	require.NoError(t, err)

	set, err := s.ReadVectors("again")
	require.NoError(t, err)
	assert.Empty(t, set.Vectors)
}

func TestRegistry_DeleteRegistryFirst(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	s := store.New(t.TempDir(), func(o *store.Options) { o.FS = ffs })
	require.NoError(t, s.Init())
	r := New(s, nil)

	_, err := r.Create(def("x", 2))
	require.NoError(t, err)

	// Tree removal fails after the registry has been rewritten.
	ffs.AddRule(filepath.Join(s.Root(), "x"), fs.Fault{FailOnRemove: true})
	err = r.Delete("x")
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	list, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	// Reconcile cleans up the orphaned tree.
	ffs.ClearRules()
	report, err := r.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, report.RemovedOrphans)
	_, err = r.Get("x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_CreateFailureLeavesRegistryUnchanged(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	s := store.New(t.TempDir(), func(o *store.Options) { o.FS = ffs })
	require.NoError(t, s.Init())
	r := New(s, nil)

	ffs.AddRule(store.RegistryFileName, fs.Fault{FailOnRename: true})
	_, err := r.Create(def("y", 2))
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
	ffs.ClearRules()

	list, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	// The config written before the failed registry update is an orphan.
	report, err := r.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, report.RemovedOrphans)
}

func TestRegistry_ReconcileRestoresConfig(t *testing.T) {
	r, s := newRegistry(t)

	_, err := r.Create(def("keep", 5))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(s.Root(), "keep", store.ConfigFileName)))

	_, err = r.Get("keep")
	require.ErrorIs(t, err, ErrNotFound)

	report, err := r.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, report.RestoredConfigs)
	assert.Empty(t, report.RemovedOrphans)

	got, err := r.Get("keep")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Dimension)

	report, err = r.Reconcile()
	require.NoError(t, err)
	assert.True(t, report.Empty())
}

func TestRegistry_ReconcileKeepsForeignDirs(t *testing.T) {
	r, s := newRegistry(t)

	foreign := map[string]string{
		"My Notes": "todo.txt",
		"photos":   "cat.jpg",
	}
	for dir, file := range foreign {
		require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), dir), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(s.Root(), dir, file), []byte("keep me"), 0o644))
	}
	require.NoError(t, s.WriteConfig("orphan", def("orphan", 2)))

	report, err := r.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan"}, report.RemovedOrphans)
	assert.ElementsMatch(t, []string{"My Notes", "photos"}, report.SkippedDirs)

	for dir, file := range foreign {
		data, err := os.ReadFile(filepath.Join(s.Root(), dir, file))
		require.NoError(t, err)
		assert.Equal(t, "keep me", string(data))
	}
}

func TestRegistry_ReconcileSkipsCorruptConfig(t *testing.T) {
	r, s := newRegistry(t)

	_, err := r.Create(def("bad", 2))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "bad", store.ConfigFileName), []byte("{"), 0o644))

	report, err := r.Reconcile()
	require.NoError(t, err)
	assert.True(t, report.Empty())

	_, err = r.Get("bad")
	assert.ErrorIs(t, err, store.ErrCorruptDocument)
}
