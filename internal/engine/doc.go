// Package engine implements vector upserts and exhaustive similarity queries
// over the documents of the store.
//
// The engine orchestrates:
//   - Upsert: read the whole vector set, merge the batch by id, write it back
//   - Query: score every stored vector, stable-sort descending, truncate to top-K
//   - Per-index locking: upserts are exclusive, queries are shared
//
// There is no in-memory index: every operation reads the current documents.
package engine
