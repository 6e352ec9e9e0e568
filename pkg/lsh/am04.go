package lsh

import (
	"fmt"
	"math"
	"math/rand"
)

// AM04Hash is a single p-stable hash h(v) = floor((a.v)/R + b), a ~
// N(0, 1/w^2) componentwise, b ~ U[0,1). Immutable once constructed.
type AM04Hash struct {
	a []float64
	b float64
	r float64
}

// Apply evaluates the hash. Rounding is toward negative infinity.
func (h *AM04Hash) Apply(v []float64) (int32, error) {
	if len(v) != len(h.a) {
		return 0, wrapError("am04hash.apply", errInvalidDim(len(h.a), len(v)))
	}
	var dot float64
	for i, ai := range h.a {
		dot += ai * v[i]
	}
	return int32(math.Floor(dot/h.r + h.b)), nil
}

// AM04HashFamily samples independent AM04Hash values for a fixed
// dimension, projection width and radius.
type AM04HashFamily struct {
	d   int
	w   float64
	r   float64
	rng *rand.Rand
}

// NewAM04HashFamily validates its parameters and returns a family that
// draws from rng. w is the bucket width (sigma of the projection is 1/w);
// r is the query radius, which is also the hash's divisor (not w).
func NewAM04HashFamily(d int, w, r float64, rng *rand.Rand) (*AM04HashFamily, error) {
	if d <= 0 {
		return nil, wrapError("new_am04_family", fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidParameters, d))
	}
	if w <= 0 {
		return nil, wrapError("new_am04_family", fmt.Errorf("%w: width must be positive, got %v", ErrInvalidParameters, w))
	}
	if r <= 0 {
		return nil, wrapError("new_am04_family", fmt.Errorf("%w: radius must be positive, got %v", ErrInvalidParameters, r))
	}
	return &AM04HashFamily{d: d, w: w, r: r, rng: rng}, nil
}

// Sample draws a new AM04Hash from the family.
func (f *AM04HashFamily) Sample() *AM04Hash {
	a := make([]float64, f.d)
	for i := range a {
		a[i] = boxMuller(f.rng) / f.w
	}
	return &AM04Hash{a: a, b: f.rng.Float64(), r: f.r}
}

// boxMuller draws one standard-normal sample using the Box-Muller
// transform. Required over naive sum-of-uniforms approximations because
// AM04's guarantees depend on the projection's tails being genuinely
// Gaussian, not merely bell-shaped.
func boxMuller(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
