package lsh

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModPHashDimensionMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	h := NewModPHash(4, 1<<20, rng)

	_, err := h.Hash([]int32{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDimension))
}

func TestModPHashScalarDimension(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	h := NewModPHashScalar(1<<10, rng)
	assert.Equal(t, 1, h.Dim())

	out, err := h.Hash([]int32{7})
	require.NoError(t, err)
	assert.Less(t, out, uint64(1<<10))
}

// TestModPHashLinearModP pins property 7: hash(x+y) == hash(x)+hash(y) mod
// P, before the final output-width truncation. Hash() always truncates by
// rt, so rt is set to modP, which makes that truncation a no-op.
func TestModPHashLinearModP(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := NewModPHash(6, modP, rng) // rt == modP: no further truncation

	x := []int32{3, -7, 100, -100000, 1, 0}
	y := []int32{-3, 12, -50, 250000, -1, 9999}
	xy := make([]int32, len(x))
	for i := range x {
		xy[i] = x[i] + y[i]
	}

	hx, err := h.Hash(x)
	require.NoError(t, err)
	hy, err := h.Hash(y)
	require.NoError(t, err)
	hxy, err := h.Hash(xy)
	require.NoError(t, err)

	assert.Equal(t, hxy, (hx+hy)%modP)
}

func TestModPHashDeterministicGivenSeed(t *testing.T) {
	rng1 := rand.New(rand.NewSource(7))
	rng2 := rand.New(rand.NewSource(7))
	h1 := NewModPHash(5, 1<<16, rng1)
	h2 := NewModPHash(5, 1<<16, rng2)

	z := []int32{1, 2, 3, 4, 5}
	out1, err := h1.Hash(z)
	require.NoError(t, err)
	out2, err := h2.Hash(z)
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
}

func TestReduceInt32ModPHandlesNegatives(t *testing.T) {
	// A negative value and its positive counterpart must combine to 0 mod P.
	pos := reduceInt32ModP(12345)
	neg := reduceInt32ModP(-12345)
	assert.Equal(t, uint64(0), (pos+neg)%modP)
}
