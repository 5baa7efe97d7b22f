package store

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/hupe1980/pinelocal/codec"
	"github.com/hupe1980/pinelocal/internal/fs"
	"github.com/hupe1980/pinelocal/model"
)

const (
	// RegistryFileName is the registry document under the data root.
	RegistryFileName = "indexes.json"
	// ConfigFileName is the per-index definition document.
	ConfigFileName = "config.json"
	// VectorsFileName is the per-index vector set document.
	VectorsFileName = "vectors.json"

	dirPerm  = 0o755
	filePerm = 0o644
)

var indexNamePattern = regexp.MustCompile(`^[a-z0-9-]{1,45}$`)

// ValidIndexName reports whether name is 1 to 45 characters of lower-case
// letters, digits and hyphens.
func ValidIndexName(name string) bool {
	return indexNamePattern.MatchString(name)
}

// Options configures a Store.
type Options struct {
	FS    fs.FileSystem
	Codec codec.Codec
}

// DefaultOptions uses the local file system and codec.Default.
var DefaultOptions = Options{
	FS:    fs.Default,
	Codec: codec.Default,
}

// Store reads and writes the documents of one data directory.
// It holds no state besides its configuration; every call goes to disk.
type Store struct {
	root  string
	fs    fs.FileSystem
	codec codec.Codec
}

// New creates a Store rooted at root.
func New(root string, optFns ...func(o *Options)) *Store {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.FS == nil {
		opts.FS = fs.Default
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	return &Store{root: root, fs: opts.FS, codec: opts.Codec}
}

// Root returns the data directory.
func (s *Store) Root() string { return s.root }

// Codec returns the document codec.
func (s *Store) Codec() codec.Codec { return s.codec }

// Init creates the data directory and an empty registry if they do not exist.
func (s *Store) Init() error {
	if err := s.fs.MkdirAll(s.root, dirPerm); err != nil {
		return &StorageError{Op: "mkdir", Path: s.root, Err: err}
	}
	path := s.registryPath()
	if _, err := s.fs.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Op: "stat", Path: path, Err: err}
	}
	return s.writeDocument(path, []model.IndexDescription{})
}

// ReadRegistry returns every registry entry in stored order.
// A missing registry file yields an empty slice.
func (s *Store) ReadRegistry() ([]model.IndexDescription, error) {
	var entries []model.IndexDescription
	found, err := s.readDocument(s.registryPath(), &entries)
	if err != nil {
		return nil, err
	}
	if !found || entries == nil {
		return []model.IndexDescription{}, nil
	}
	return entries, nil
}

// WriteRegistry replaces the registry with entries.
func (s *Store) WriteRegistry(entries []model.IndexDescription) error {
	if entries == nil {
		entries = []model.IndexDescription{}
	}
	return s.writeDocument(s.registryPath(), entries)
}

// ReadConfig returns the definition of name. found is false, with a nil error,
// when the index directory or its config file does not exist.
func (s *Store) ReadConfig(name string) (def model.IndexDefinition, found bool, err error) {
	dir, err := s.indexDir(name)
	if err != nil {
		return model.IndexDefinition{}, false, err
	}
	found, err = s.readDocument(filepath.Join(dir, ConfigFileName), &def)
	if err != nil || !found {
		return model.IndexDefinition{}, false, err
	}
	return def, true, nil
}

// WriteConfig persists def, creating the index directory if needed.
func (s *Store) WriteConfig(name string, def model.IndexDefinition) error {
	dir, err := s.ensureIndexDir(name)
	if err != nil {
		return err
	}
	return s.writeDocument(filepath.Join(dir, ConfigFileName), def)
}

// ReadVectors returns the vector set of name, or an empty set if none was written.
func (s *Store) ReadVectors(name string) (model.VectorSet, error) {
	dir, err := s.indexDir(name)
	if err != nil {
		return model.VectorSet{}, err
	}
	var set model.VectorSet
	if _, err := s.readDocument(filepath.Join(dir, VectorsFileName), &set); err != nil {
		return model.VectorSet{}, err
	}
	if set.Vectors == nil {
		set.Vectors = []model.Vector{}
	}
	return set, nil
}

// WriteVectors replaces the vector set of name.
func (s *Store) WriteVectors(name string, set model.VectorSet) error {
	dir, err := s.ensureIndexDir(name)
	if err != nil {
		return err
	}
	if set.Vectors == nil {
		set.Vectors = []model.Vector{}
	}
	return s.writeDocument(filepath.Join(dir, VectorsFileName), set)
}

// DeleteIndexTree removes the directory of name and everything in it.
// It is a no-op if the directory does not exist.
func (s *Store) DeleteIndexTree(name string) error {
	dir, err := s.indexDir(name)
	if err != nil {
		return err
	}
	if err := s.fs.RemoveAll(dir); err != nil {
		return &StorageError{Op: "remove", Path: dir, Err: err}
	}
	return nil
}

// ListIndexDirs returns the names of all subdirectories of the data root.
// Hidden entries (leading dot) are skipped.
func (s *Store) ListIndexDirs() ([]string, error) {
	entries, err := s.fs.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &StorageError{Op: "readdir", Path: s.root, Err: err}
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// IsIndexTree reports whether the subdirectory name looks like one the store
// wrote: a valid index name holding nothing but index documents and leftover
// temp files. An empty directory qualifies.
func (s *Store) IsIndexTree(name string) (bool, error) {
	if !ValidIndexName(name) {
		return false, nil
	}
	dir := filepath.Join(s.root, name)
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &StorageError{Op: "readdir", Path: dir, Err: err}
	}
	for _, e := range entries {
		if e.IsDir() || !isIndexFile(e.Name()) {
			return false, nil
		}
	}
	return true, nil
}

func isIndexFile(name string) bool {
	switch name {
	case ConfigFileName, VectorsFileName:
		return true
	}
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".tmp")
}

func (s *Store) registryPath() string {
	return filepath.Join(s.root, RegistryFileName)
}

func (s *Store) indexDir(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.root, name), nil
}

func (s *Store) ensureIndexDir(name string) (string, error) {
	dir, err := s.indexDir(name)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
		return "", &StorageError{Op: "mkdir", Path: dir, Err: err}
	}
	return dir, nil
}

// readDocument decodes path into v. It returns found=false when the file does
// not exist.
func (s *Store) readDocument(path string, v any) (bool, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &StorageError{Op: "read", Path: path, Err: err}
	}
	if err := s.codec.Unmarshal(data, v); err != nil {
		return false, &CorruptDocumentError{Path: path, Err: err}
	}
	return true, nil
}

// writeDocument atomically replaces path with the encoding of v.
func (s *Store) writeDocument(path string, v any) error {
	data, err := s.codec.Marshal(v)
	if err != nil {
		return &StorageError{Op: "encode", Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	if err := s.writeTemp(tmpPath, data); err != nil {
		_ = s.fs.Remove(tmpPath)
		return &StorageError{Op: "write", Path: path, Err: err}
	}
	if err := s.fs.Rename(tmpPath, path); err != nil {
		_ = s.fs.Remove(tmpPath)
		return &StorageError{Op: "rename", Path: path, Err: err}
	}
	if err := fs.SyncDir(s.fs, dir); err != nil {
		return &StorageError{Op: "sync", Path: dir, Err: err}
	}
	return nil
}

func (s *Store) writeTemp(path string, data []byte) error {
	f, err := s.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
