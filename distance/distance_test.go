package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, 32},
		{"Zero", []float64{0, 0, 0}, []float64{0, 0, 0}, 0},
		{"Mixed", []float64{1, -1, 2}, []float64{1, 1, -2}, -4},
		{"Empty", []float64{}, []float64{}, 0},
		{"Single", []float64{2}, []float64{3}, 6},
		{"Large", make([]float64, 1024), make([]float64, 1024), 0},
	}

	for i := range tests[5].a {
		tests[5].a[i] = 1
		tests[5].b[i] = 1
	}
	tests[5].expected = 1024

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dot(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, 27},
		{"Zero", []float64{0, 0, 0}, []float64{0, 0, 0}, 0},
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"Mixed", []float64{1, -1}, []float64{-1, 1}, 8},
		{"Empty", []float64{}, []float64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SquaredL2(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	t.Run("Identical", func(t *testing.T) {
		x := []float64{0.3, -1.2, 4.5}
		assert.InDelta(t, 1.0, CosineSimilarity(x, x), 1e-9)
	})

	t.Run("Orthogonal", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}))
	})

	t.Run("Opposite", func(t *testing.T) {
		assert.Equal(t, -1.0, CosineSimilarity([]float64{1, 0, 0}, []float64{-1, 0, 0}))
	})

	t.Run("ScaleInvariant", func(t *testing.T) {
		a := []float64{1, 2, 3}
		b := []float64{10, 20, 30}
		assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-9)
	})

	t.Run("ZeroMagnitude", func(t *testing.T) {
		zero := []float64{0, 0, 0}
		assert.Equal(t, 0.0, CosineSimilarity(zero, []float64{1, 2, 3}))
		assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 2, 3}, zero))
		assert.Equal(t, 0.0, CosineSimilarity(zero, zero))
	})
}

func TestEuclideanSimilarity(t *testing.T) {
	t.Run("Identical", func(t *testing.T) {
		x := []float64{7, -3, 2}
		assert.Equal(t, 1.0, EuclideanSimilarity(x, x))
	})

	t.Run("DistanceFive", func(t *testing.T) {
		got := EuclideanSimilarity([]float64{0, 0}, []float64{3, 4})
		assert.Equal(t, 1.0/6.0, got)
	})

	t.Run("Monotonic", func(t *testing.T) {
		origin := []float64{0}
		prev := EuclideanSimilarity(origin, origin)
		for _, d := range []float64{0.5, 1, 10, 1000, 1e6} {
			s := EuclideanSimilarity(origin, []float64{d})
			assert.Less(t, s, prev)
			assert.Greater(t, s, 0.0)
			prev = s
		}
	})
}

func TestDotProductSimilarity(t *testing.T) {
	t.Run("SelfIsSquaredNorm", func(t *testing.T) {
		x := []float64{1, 2, 3}
		assert.InDelta(t, 14.0, DotProductSimilarity(x, x), 1e-9)
	})

	t.Run("Bilinear", func(t *testing.T) {
		a := []float64{1, -2, 0.5}
		b := []float64{3, 1, 4}
		base := DotProductSimilarity(a, b)

		const k = 2.5
		scaled := make([]float64, len(a))
		for i := range a {
			scaled[i] = a[i] * k
		}
		assert.InDelta(t, base*k, DotProductSimilarity(scaled, b), 1e-6)
		assert.InDelta(t, base*k, DotProductSimilarity(b, scaled), 1e-6)
	})

	t.Run("Unbounded", func(t *testing.T) {
		assert.Equal(t, -8.0, DotProductSimilarity([]float64{2, 2}, []float64{-2, -2}))
		assert.Equal(t, 50.0, DotProductSimilarity([]float64{5, 5}, []float64{5, 5}))
	})
}

func TestMagnitude(t *testing.T) {
	assert.Equal(t, 5.0, Magnitude([]float64{3, 4}))
	assert.Equal(t, 0.0, Magnitude([]float64{}))
	assert.InDelta(t, math.Sqrt2, Magnitude([]float64{1, 1}), 1e-9)
}

func TestMetric(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "cosine", MetricCosine.String())
		assert.Equal(t, "euclidean", MetricEuclidean.String())
		assert.Equal(t, "dotproduct", MetricDotProduct.String())
	})

	t.Run("Parse", func(t *testing.T) {
		for _, m := range Metrics {
			got, err := ParseMetric(string(m))
			require.NoError(t, err)
			assert.Equal(t, m, got)
		}

		_, err := ParseMetric("Cosine")
		assert.Error(t, err)
		_, err = ParseMetric("l2")
		assert.Error(t, err)
		_, err = ParseMetric("")
		assert.Error(t, err)
	})

	t.Run("Provider", func(t *testing.T) {
		a := []float64{1, 0, 0}
		b := []float64{0, 1, 0}

		f, err := Provider(MetricCosine)
		require.NoError(t, err)
		assert.Equal(t, 1.0, f(a, a))
		assert.Equal(t, 0.0, f(a, b))

		f, err = Provider(MetricEuclidean)
		require.NoError(t, err)
		assert.InDelta(t, 1/(1+math.Sqrt2), f(a, b), 1e-9)

		f, err = Provider(MetricDotProduct)
		require.NoError(t, err)
		assert.Equal(t, 1.0, f(a, a))

		_, err = Provider(Metric("hamming"))
		assert.Error(t, err)
	})
}
