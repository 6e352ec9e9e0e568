package lsh

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMNISTLikeRegression pins S3: at MNIST-scale parameters (d=784,
// w=4, k=14, L=153, R=0.6 over ~1000 normalized points), queries must
// complete and every returned PointID must satisfy the exact-distance
// post-filter. Skipped under -short since 153 tables over 784-D points
// is several seconds of work.
func TestMNISTLikeRegression(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MNIST-scale regression in -short mode")
	}

	const d = 784
	const n = 1000
	const r = 0.6

	rng := rand.New(rand.NewSource(2024))
	points := make([][]float64, n)
	for i := range points {
		points[i] = normalizedRandomVector(rng, d)
	}

	cfg := DefaultConfig(d, r)
	cfg.Seed = 2024
	cfg.Width = 4
	cfg.K = 14
	cfg.L = 153

	idx, err := NewIndex(cfg)
	require.NoError(t, err)
	require.NoError(t, idx.Build(context.Background(), points))

	for q := 0; q < 20; q++ {
		query := points[rng.Intn(n)]
		results, err := idx.Query(context.Background(), query)
		require.NoError(t, err)
		for _, id := range results {
			d := euclideanDistance(points[id], query)
			assert.LessOrEqual(t, d, r+1e-9)
		}
	}
}

func normalizedRandomVector(rng *rand.Rand, d int) []float64 {
	v := randomVector(rng, d)
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}
