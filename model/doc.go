// Package model defines the types shared by the store, the registry, the query
// engine and the HTTP surface.
//
// # Index Types
//
//   - IndexDefinition: immutable name, dimension, metric and placement spec
//   - IndexDescription: a definition plus its synthesized status
//
// # Data Types
//
//   - Vector: id, values and optional metadata
//   - VectorSet: the persisted vector collection of one index
//   - QueryRequest / QueryResponse / Match: similarity query envelope
//
// JSON field names follow the wire format of hosted vector-database APIs
// (topK, includeValues, upsertedCount, ...), so the same types are used on
// disk and over HTTP.
package model
