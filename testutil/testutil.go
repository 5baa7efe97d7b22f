package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/pinelocal/distance"
	"github.com/hupe1980/pinelocal/model"
)

// RNG wraps a seeded random source. It is safe for concurrent use.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// UniformVector returns a vector with values in [0, 1).
func (r *RNG) UniformVector(dim int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vec := make([]float64, dim)
	for i := range vec {
		vec[i] = r.rand.Float64()
	}
	return vec
}

// GaussianVector returns a vector drawn from a standard normal distribution.
func (r *RNG) GaussianVector(dim int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vec := make([]float64, dim)
	for i := range vec {
		vec[i] = r.rand.NormFloat64()
	}
	return vec
}

// UnitVector returns an L2-normalized random vector.
func (r *RNG) UnitVector(dim int) []float64 {
	vec := r.GaussianVector(dim)

	norm := distance.Magnitude(vec)
	if norm == 0 {
		norm = 1
	}
	inv := 1 / norm
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}

// UniformVectors generates num random vectors with values in [0, 1).
// Uses a single backing array.
func (r *RNG) UniformVectors(num, dim int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	vectors := make([][]float64, num)
	for i := range num {
		vec := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range vec {
			vec[j] = r.rand.Float64()
		}
		vectors[i] = vec
	}
	return vectors
}

// Records generates num Gaussian vector records with ids "<prefix>-<i>".
// Every third record carries metadata.
func (r *RNG) Records(prefix string, num, dim int) []model.Vector {
	recs := make([]model.Vector, num)
	for i := range recs {
		recs[i] = model.Vector{
			ID:     fmt.Sprintf("%s-%d", prefix, i),
			Values: r.GaussianVector(dim),
		}
		if i%3 == 0 {
			recs[i].Metadata = model.Metadata{"n": float64(i)}
		}
	}
	return recs
}

// ExactTopK scores every record against query with fn and returns the k best
// matches, highest score first. Ties keep input order. NaN scores sort last.
func ExactTopK(query []float64, recs []model.Vector, k int, fn distance.Func) []model.Match {
	matches := make([]model.Match, len(recs))
	for i, rec := range recs {
		matches[i] = model.Match{ID: rec.ID, Score: fn(query, rec.Values)}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].Score, matches[j].Score
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return a > b
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches
}
