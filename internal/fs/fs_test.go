package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOS(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, Default.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, "doc.json")
	f, err := Default.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	require.NoError(t, f.Close())

	data, err := Default.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	entries, err := Default.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc.json", entries[0].Name())

	moved := filepath.Join(dir, "moved.json")
	require.NoError(t, Default.Rename(path, moved))
	_, err = Default.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, Default.Remove(moved))
	require.NoError(t, Default.RemoveAll(dir))
	require.NoError(t, Default.RemoveAll(dir), "RemoveAll of a missing path")

	_, err = Default.OpenFile(filepath.Join(dir, "nope"), os.O_RDONLY, 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSyncDir(t *testing.T) {
	assert.NoError(t, SyncDir(Default, t.TempDir()))
	assert.Error(t, SyncDir(Default, filepath.Join(t.TempDir(), "missing")))
}

func TestFaultyFS_FailAfterBytes(t *testing.T) {
	ffs := NewFaultyFS(nil)
	ffs.AddRule("limited", Fault{FailAfterBytes: 5})

	f, err := ffs.OpenFile(filepath.Join(t.TempDir(), "limited.bin"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	n, err := f.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.Write([]byte("!"))
	assert.ErrorIs(t, err, ErrInjected)
	assert.Zero(t, n)
	assert.Equal(t, int64(5), ffs.Written())
}

func TestFaultyFS_Operations(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	type op func(ffs *FaultyFS, path string) error
	open := func(ffs *FaultyFS, p string) (File, error) {
		return ffs.OpenFile(p, os.O_CREATE|os.O_WRONLY, 0o644)
	}

	cases := map[string]struct {
		fault Fault
		run   op
	}{
		"Open": {Fault{FailOnOpen: true}, func(ffs *FaultyFS, p string) error {
			_, err := open(ffs, p)
			return err
		}},
		"Write": {Fault{FailOnWrite: true}, func(ffs *FaultyFS, p string) error {
			f, err := open(ffs, p)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			_, err = f.Write([]byte("x"))
			return err
		}},
		"Sync": {Fault{FailOnSync: true}, func(ffs *FaultyFS, p string) error {
			f, err := open(ffs, p)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			return f.Sync()
		}},
		"Close": {Fault{FailOnClose: true}, func(ffs *FaultyFS, p string) error {
			f, err := open(ffs, p)
			if err != nil {
				return err
			}
			return f.Close()
		}},
		"Read": {Fault{FailOnRead: true}, func(ffs *FaultyFS, p string) error {
			_, err := ffs.ReadFile(p)
			return err
		}},
		"ReadDir": {Fault{FailOnReadDir: true}, func(ffs *FaultyFS, p string) error {
			_, err := ffs.ReadDir(p)
			return err
		}},
		"Mkdir": {Fault{FailOnMkdir: true}, func(ffs *FaultyFS, p string) error {
			return ffs.MkdirAll(p, 0o755)
		}},
		"Rename": {Fault{FailOnRename: true}, func(ffs *FaultyFS, p string) error {
			return ffs.Rename(src, p)
		}},
		"Remove": {Fault{FailOnRemove: true}, func(ffs *FaultyFS, p string) error {
			return ffs.Remove(p)
		}},
		"RemoveAll": {Fault{FailOnRemove: true}, func(ffs *FaultyFS, p string) error {
			return ffs.RemoveAll(p)
		}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ffs := NewFaultyFS(nil)
			ffs.AddRule("target", tc.fault)
			assert.ErrorIs(t, tc.run(ffs, filepath.Join(tmp, "target-"+name)), ErrInjected)
		})
	}
}

func TestFaultyFS_Rules(t *testing.T) {
	tmp := t.TempDir()
	boom := errors.New("disk full")

	ffs := NewFaultyFS(nil)
	ffs.AddRule(".json", Fault{FailOnRead: true})
	ffs.AddRule("vectors.json", Fault{FailOnRead: true, Err: boom})

	path := filepath.Join(tmp, "vectors.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, err := ffs.ReadFile(path)
	assert.ErrorIs(t, err, boom, "longest pattern wins")

	_, err = ffs.ReadFile(filepath.Join(tmp, "config.json"))
	assert.ErrorIs(t, err, ErrInjected)

	ffs.ClearRules()
	data, err := ffs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestFaultyFS_Delegates(t *testing.T) {
	ffs := NewFaultyFS(OS{})
	dir := filepath.Join(t.TempDir(), "sub")
	require.NoError(t, ffs.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, "a.txt")
	f, err := ffs.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, int64(3), ffs.Written())

	_, err = ffs.Stat(path)
	require.NoError(t, err)
	entries, err := ffs.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, ffs.Rename(path, path+".bak"))
	require.NoError(t, ffs.Remove(path+".bak"))
	require.NoError(t, ffs.RemoveAll(dir))
}

func TestLockFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	l, err := LockFile(path)
	require.NoError(t, err)

	if lockSupported {
		_, err = LockFile(path)
		assert.ErrorIs(t, err, ErrLocked)
	}

	require.NoError(t, l.Unlock())
	require.NoError(t, l.Unlock(), "second unlock")

	l, err = LockFile(path)
	require.NoError(t, err, "lock is free again")
	require.NoError(t, l.Unlock())
}
