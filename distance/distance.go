// Package distance provides the similarity functions used to score query vectors
// against stored vectors.
//
// All functions accumulate in float64 and return a similarity
// where a higher value means "more similar".
package distance

import (
	"fmt"
	"math"
	"strings"
)

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Magnitude returns the L2 norm of v.
func Magnitude(v []float64) float64 {
	return math.Sqrt(Dot(v, v))
}

// SquaredL2 calculates the squared Euclidean distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// CosineSimilarity returns dot(a,b) / (|a| * |b|).
// It returns exactly 0 when either vector has zero magnitude.
func CosineSimilarity(a, b []float64) float64 {
	magA := Magnitude(a)
	magB := Magnitude(b)
	if magA == 0 || magB == 0 {
		return 0
	}
	return Dot(a, b) / (magA * magB)
}

// EuclideanSimilarity maps the Euclidean distance d between a and b to 1 / (1 + d).
// Identical vectors score 1; the score approaches but never reaches 0.
func EuclideanSimilarity(a, b []float64) float64 {
	return 1 / (1 + math.Sqrt(SquaredL2(a, b)))
}

// DotProductSimilarity returns the raw, unnormalized dot product.
func DotProductSimilarity(a, b []float64) float64 {
	return Dot(a, b)
}

// Metric names the similarity function an index is created with.
type Metric string

const (
	MetricCosine     Metric = "cosine"
	MetricEuclidean  Metric = "euclidean"
	MetricDotProduct Metric = "dotproduct"
)

// Metrics lists every supported metric.
var Metrics = []Metric{MetricCosine, MetricEuclidean, MetricDotProduct}

func (m Metric) String() string {
	return string(m)
}

// Valid reports whether m is a supported metric.
func (m Metric) Valid() bool {
	switch m {
	case MetricCosine, MetricEuclidean, MetricDotProduct:
		return true
	default:
		return false
	}
}

// ParseMetric converts a metric name into a Metric. Matching is exact; the
// wire format only ever uses lower-case names.
func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if !m.Valid() {
		names := make([]string, len(Metrics))
		for i, mm := range Metrics {
			names[i] = string(mm)
		}
		return "", fmt.Errorf("unsupported metric %q (want one of %s)", s, strings.Join(names, ", "))
	}
	return m, nil
}

// Func is a function type for similarity calculation.
type Func func(a, b []float64) float64

// Provider returns the similarity function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricCosine:
		return CosineSimilarity, nil
	case MetricEuclidean:
		return EuclideanSimilarity, nil
	case MetricDotProduct:
		return DotProductSimilarity, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %q", string(m))
	}
}
