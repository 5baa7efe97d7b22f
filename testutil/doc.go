// Package testutil provides testing utilities for pinelocal.
//
// This package is intended for use in tests only. It provides helpers for
// generating reproducible random vectors and for computing exact top-k
// results to compare query responses against.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vec := rng.UniformVector(128)   // uniform [0, 1)
//	vec = rng.GaussianVector(128)   // standard normal
//	recs := rng.Records("doc", 100, 128)
//
// # Exact Search (Ground Truth)
//
//	want := testutil.ExactTopK(query, recs, k, distance.CosineSimilarity)
package testutil
