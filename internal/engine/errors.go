package engine

import "errors"

var (
	// ErrIndexNotFound is returned by Upsert when the index has no config document.
	ErrIndexNotFound = errors.New("index not found")
)
