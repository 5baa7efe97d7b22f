package pinelocal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/pinelocal/internal/engine"
	"github.com/hupe1980/pinelocal/internal/fs"
	"github.com/hupe1980/pinelocal/internal/registry"
	"github.com/hupe1980/pinelocal/internal/snapshot"
	"github.com/hupe1980/pinelocal/internal/store"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"RegistryNotFound", registry.ErrNotFound, ErrNotFound},
		{"EngineNotFound", fmt.Errorf("upsert: %w", engine.ErrIndexNotFound), ErrNotFound},
		{"AlreadyExists", registry.ErrAlreadyExists, ErrAlreadyExists},
		{"Corrupt", &store.CorruptDocumentError{Path: "x", Err: errors.New("eof")}, ErrCorruptDocument},
		{"Storage", &store.StorageError{Op: "write", Path: "x", Err: errors.New("disk full")}, ErrStorageUnavailable},
		{"InvalidName", store.ErrInvalidName, ErrInvalidIndexName},
		{"Snapshot", &snapshot.InvalidError{Reason: "decode"}, ErrInvalidSnapshot},
		{"SnapshotVersion", snapshot.ErrUnsupportedVersion, ErrInvalidSnapshot},
		{"Locked", fs.ErrLocked, ErrLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.in)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.in, "underlying error stays reachable")
		})
	}

	other := errors.New("boom")
	assert.Same(t, other, translateError(other))
}

func TestErrDimensionMismatch(t *testing.T) {
	assert.Equal(t, "dimension mismatch: expected 3, got 2", (&ErrDimensionMismatch{Expected: 3, Actual: 2}).Error())
	assert.Equal(t, `dimension mismatch for vector "a": expected 3, got 4`, (&ErrDimensionMismatch{ID: "a", Expected: 3, Actual: 4}).Error())
	assert.Equal(t, "invalid dimension: 0", (&ErrInvalidDimension{}).Error())
}
