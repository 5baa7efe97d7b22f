// Package distance provides vector similarity calculations.
//
// # Supported Metrics
//
//   - MetricCosine: dot(a,b) / (|a|*|b|), 0 for zero-magnitude inputs
//   - MetricEuclidean: 1 / (1 + L2(a,b)), 1 for identical vectors
//   - MetricDotProduct: raw inner product, unbounded
//
// # Usage
//
//	fn, err := distance.Provider(distance.MetricCosine)
//	score := fn(query, stored)
package distance
