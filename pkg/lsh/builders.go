package lsh

import (
	"fmt"
	"math/rand"
)

// BuildG constructs L independent g-function collections, each a
// k-concatenation of AM04 hashes over dimension d, width w and radius R.
// seed makes the resulting collections reproducible.
func BuildG(d, w, k, l int, r float64, seed int64) ([]HashCollection, error) {
	if k <= 0 || l <= 0 {
		return nil, wrapError("build_g", fmt.Errorf("%w: k and L must be positive", ErrInvalidParameters))
	}
	rng := rand.New(rand.NewSource(seed))
	family, err := NewAM04HashFamily(d, float64(w), r, rng)
	if err != nil {
		return nil, wrapError("build_g", err)
	}

	collections := make([]HashCollection, l)
	for i := 0; i < l; i++ {
		hashes := make([]*AM04Hash, k)
		for j := range hashes {
			hashes[j] = family.Sample()
		}
		collections[i] = &gCollection{hashes: hashes}
	}
	return collections, nil
}

// BuildU constructs a pool of m half-size (k/2) collections and emits one
// CompositeHashCollection for every unordered pair (i,j), i<j, in
// lexicographic order, so L = m(m-1)/2 tables are produced while only m
// half-hashes are evaluated per point. l, if non-zero, must match the
// derived table count and exists only as a documentation/sanity aid for
// callers who already know L.
func BuildU(d, w, k, l int, r float64, m int, seed int64) ([]HashCollection, error) {
	if k <= 0 || k%2 != 0 {
		return nil, wrapError("build_u", fmt.Errorf("%w: k must be even and positive, got %d", ErrInvalidParameters, k))
	}
	if m < 2 {
		return nil, wrapError("build_u", fmt.Errorf("%w: m must be at least 2, got %d", ErrInvalidParameters, m))
	}
	wantL := m * (m - 1) / 2
	if l != 0 && l != wantL {
		return nil, wrapError("build_u", fmt.Errorf("%w: L=%d inconsistent with m=%d (expected %d)", ErrInvalidParameters, l, m, wantL))
	}

	rng := rand.New(rand.NewSource(seed))
	family, err := NewAM04HashFamily(d, float64(w), r, rng)
	if err != nil {
		return nil, wrapError("build_u", err)
	}

	pool := &hashPool{cols: make([]*gCollection, m)}
	for i := 0; i < m; i++ {
		hashes := make([]*AM04Hash, k/2)
		for j := range hashes {
			hashes[j] = family.Sample()
		}
		pool.cols[i] = &gCollection{hashes: hashes}
	}

	collections := make([]HashCollection, 0, wantL)
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			collections = append(collections, &uCollection{pool: pool, i: i, j: j})
		}
	}
	return collections, nil
}
