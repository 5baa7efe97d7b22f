// Package store persists index definitions and vector sets as JSON documents
// under a data directory.
//
// Layout:
//
//	<root>/indexes.json          registry (array of index descriptions)
//	<root>/<name>/config.json    index definition
//	<root>/<name>/vectors.json   {"vectors": [...]}
//
// Every write goes to a uniquely named temp file in the target directory, is
// fsynced, and is then renamed over the destination, so readers see either the
// previous document or the new one and never a partial write. There is no
// transaction spanning more than one file.
package store
