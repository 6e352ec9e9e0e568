package lsh

import (
	"fmt"
	"math/rand"
)

// modP is the largest prime below 2^32, the modulus for ModPHash's running
// sum. Matches the E2LSH reference.
const modP uint64 = 1<<32 - 5

// ModPHash is a universal hash: a linear combination of an integer vector
// modulo modP, then reduced to a target output width. It is used for both
// t1 (bucket index) and t2 (fingerprint) in LSHIndex's tables.
type ModPHash struct {
	r  []uint64 // coefficients, each drawn from the full uint32 range
	rt uint64   // output width; final result is taken mod rt
}

// NewModPHash draws dim coefficients uniformly from rng and returns a hash
// with output width rt. Reproducible given the same rng state.
func NewModPHash(dim int, rt uint64, rng *rand.Rand) *ModPHash {
	r := make([]uint64, dim)
	for i := range r {
		r[i] = uint64(rng.Uint32())
	}
	return &ModPHash{r: r, rt: rt}
}

// NewModPHashScalar is the 1-D convenience constructor (d' = 1).
func NewModPHashScalar(rt uint64, rng *rand.Rand) *ModPHash {
	return NewModPHash(1, rt, rng)
}

// Dim reports the coefficient vector's length.
func (m *ModPHash) Dim() int {
	return len(m.r)
}

// Hash computes sum(z[i]*r[i]) mod modP, then reduces the result mod rt.
// Each product is promoted to 64-bit arithmetic before the mod-P reduction
// so the running sum never overflows, and the running sum itself is kept
// reduced mod modP at every step (so Hash(x+y) == Hash(x)+Hash(y) mod modP
// before the final % rt truncation).
func (m *ModPHash) Hash(z []int32) (uint64, error) {
	if len(z) != len(m.r) {
		return 0, wrapError("modphash.hash", errInvalidDim(len(m.r), len(z)))
	}

	var result uint64
	for i, zi := range z {
		zmod := reduceInt32ModP(zi)
		product := (zmod * m.r[i]) % modP
		result = (result + product) % modP
	}
	return result % m.rt, nil
}

// reduceInt32ModP maps a signed int32 into [0, modP) under two's-complement
// mod-P arithmetic, so negative hash coordinates are handled the same way
// positive ones are.
func reduceInt32ModP(z int32) uint64 {
	if z >= 0 {
		return uint64(z) % modP
	}
	neg := uint64(-int64(z)) % modP
	return (modP - neg) % modP
}

func errInvalidDim(want, got int) error {
	return &dimError{want: want, got: got}
}

// dimError carries the expected/actual dimensions while still satisfying
// errors.Is(err, ErrInvalidDimension) for callers that only check the
// sentinel.
type dimError struct {
	want, got int
}

func (e *dimError) Error() string {
	return fmt.Sprintf("expected dimension %d, got %d", e.want, e.got)
}

func (e *dimError) Unwrap() error {
	return ErrInvalidDimension
}

func (e *dimError) Is(target error) bool {
	return target == ErrInvalidDimension
}
