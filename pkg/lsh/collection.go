package lsh

// Precomputed is the result of precomputing a point against a hash
// collection (or a shared pool of collections). For a non-composite
// (g) collection it simply wraps the original point, since a g-function
// gains nothing from precomputation beyond avoiding recomputation across
// calls. For a composite (u) collection it holds every pool member's
// half-vector, computed once per point per pool and reused by every
// CompositeHashCollection sharing that pool.
type Precomputed struct {
	pool *hashPool
	q    []float64
	half [][]int32
}

// HashCollection is the common interface for g- and u-functions: a
// k-concatenation of AM04 hashes applied to a point.
type HashCollection interface {
	// Dim reports the length of the k-vector this collection emits.
	Dim() int
	// Apply evaluates the collection directly against a point.
	Apply(v []float64) ([]int32, error)
	// Precompute returns a value that ApplyPrecomputed can consume in
	// O(k) instead of O(k*d).
	Precompute(v []float64) Precomputed
	// ApplyPrecomputed evaluates the collection against a Precomputed
	// value. Returns ErrPoolMismatch if p was built against a different
	// pool than the one this collection belongs to.
	ApplyPrecomputed(p Precomputed) ([]int32, error)
	// poolID returns the shared pool this collection draws from, or nil
	// for a non-composite (g) collection. Unexported: only this
	// package's two collection kinds participate in pool-sharing.
	poolID() *hashPool
}

// gCollection is the g-function: k independent AM04 hashes.
type gCollection struct {
	hashes []*AM04Hash
}

func (g *gCollection) Dim() int {
	return len(g.hashes)
}

func (g *gCollection) Apply(v []float64) ([]int32, error) {
	out := make([]int32, len(g.hashes))
	for i, h := range g.hashes {
		val, err := h.Apply(v)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

func (g *gCollection) Precompute(v []float64) Precomputed {
	return Precomputed{q: v}
}

func (g *gCollection) ApplyPrecomputed(p Precomputed) ([]int32, error) {
	return g.Apply(p.q)
}

func (g *gCollection) poolID() *hashPool {
	return nil
}

// hashPool is the shared set of m half-size HashCollections that
// CompositeHashCollections draw their two halves from. A single owner
// (the builder) holds it; composites carry a pointer plus a pair of
// indices, never a copy.
type hashPool struct {
	cols []*gCollection
}

// uCollection is the u-function: the concatenation of two pool members,
// pool[i] and pool[j] with i < j.
type uCollection struct {
	pool *hashPool
	i, j int
}

func (u *uCollection) Dim() int {
	return u.pool.cols[u.i].Dim() + u.pool.cols[u.j].Dim()
}

func (u *uCollection) Apply(v []float64) ([]int32, error) {
	a, err := u.pool.cols[u.i].Apply(v)
	if err != nil {
		return nil, err
	}
	b, err := u.pool.cols[u.j].Apply(v)
	if err != nil {
		return nil, err
	}
	out := make([]int32, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out, nil
}

// Precompute evaluates every member of the shared pool once, so any other
// composite collection sharing this pool can reuse the result.
func (u *uCollection) Precompute(v []float64) Precomputed {
	half := make([][]int32, len(u.pool.cols))
	for idx, c := range u.pool.cols {
		// Pool members are plain gCollections; evaluation cannot fail
		// once construction has validated dimensions.
		z, _ := c.Apply(v)
		half[idx] = z
	}
	return Precomputed{pool: u.pool, half: half}
}

func (u *uCollection) ApplyPrecomputed(p Precomputed) ([]int32, error) {
	if p.pool != u.pool {
		return nil, wrapError("ucollection.apply_precomputed", ErrPoolMismatch)
	}
	a := p.half[u.i]
	b := p.half[u.j]
	out := make([]int32, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out, nil
}

func (u *uCollection) poolID() *hashPool {
	return u.pool
}
