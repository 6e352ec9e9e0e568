package lsh

import "sync"

// bucketSlot is one slot of a BucketMap's flat backing array. The stored
// key is the t2 fingerprint; the slot's array position is reached via t1,
// not via the fingerprint.
type bucketSlot struct {
	occupied    bool
	fingerprint uint32
	points      []PointID
}

// BucketMap is a custom open-addressing table that separates the bucket
// key (t1, the probe start position) from the stored key (t2, the
// fingerprint used for equality). It has no standard-library or common
// third-party equivalent: map[K]V compares on K structurally and has no
// notion of a separate probe index. Pre-sized to its final capacity at
// construction and never rehashed, per the design's "no rehash" invariant.
type BucketMap struct {
	mu       sync.Mutex
	slots    []bucketSlot
	capacity uint64
}

// NewBucketMap allocates a table with capacity rounded up to a power of
// two no smaller than minCapacity (and at least 16 slots).
func NewBucketMap(minCapacity int) *BucketMap {
	cap := nextPow2(minCapacity)
	if cap < 16 {
		cap = 16
	}
	return &BucketMap{
		slots:    make([]bucketSlot, cap),
		capacity: uint64(cap),
	}
}

// Capacity returns the table's fixed slot count.
func (b *BucketMap) Capacity() uint64 {
	return b.capacity
}

// probeStep derives a deterministic odd stride from the fingerprint, so
// repeated probing from any bucket visits every slot before repeating
// (odd strides are coprime with a power-of-two capacity).
func probeStep(fingerprint uint32, capacity uint64) uint64 {
	step := (uint64(fingerprint)*2 + 1) % capacity
	if step == 0 {
		step = 1
	}
	return step | 1
}

// Insert places PointID id under fingerprint f, probing from bucket. If
// the probed slot is empty it is claimed; if it already holds f, id is
// appended to that slot's list; otherwise probing continues. Returns
// ErrCapacityExceeded if every slot is probed without success, which the
// documented sizing rule (capacity >= 2*|points|) makes unreachable in
// practice.
func (b *BucketMap) Insert(bucket uint64, f uint32, id PointID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	step := probeStep(f, b.capacity)
	pos := bucket % b.capacity
	for i := uint64(0); i < b.capacity; i++ {
		slot := &b.slots[pos]
		if !slot.occupied {
			slot.occupied = true
			slot.fingerprint = f
			slot.points = append(slot.points, id)
			return nil
		}
		if slot.fingerprint == f {
			slot.points = append(slot.points, id)
			return nil
		}
		pos = (pos + step) % b.capacity
	}
	return wrapError("bucketmap.insert", ErrCapacityExceeded)
}

// Lookup probes from bucket until it finds fingerprint f (a hit) or an
// empty slot (a miss, returns nil). A hit may belong to a different
// k-vector that collided with f in both t1 and t2; the caller is expected
// to resolve that false-positive rate with an exact distance check.
func (b *BucketMap) Lookup(bucket uint64, f uint32) []PointID {
	b.mu.Lock()
	defer b.mu.Unlock()

	step := probeStep(f, b.capacity)
	pos := bucket % b.capacity
	for i := uint64(0); i < b.capacity; i++ {
		slot := &b.slots[pos]
		if !slot.occupied {
			return nil
		}
		if slot.fingerprint == f {
			return slot.points
		}
		pos = (pos + step) % b.capacity
	}
	return nil
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
