// Package lsh implements R-near-neighbor search over Euclidean points using
// Locality Sensitive Hashing: AM04 p-stable hash families, their g- and
// u-compositions, and an E2LSH-style two-level bucket scheme.
package lsh

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/dustin/go-humanize"

	"github.com/liliang-cn/rnnlsh/internal/core"
)

// PointID identifies a point by its position in the dataset passed to
// Build. Valid over [0, len(points)).
type PointID int32

// FamilyKind selects which hash family a Config-driven index builds.
type FamilyKind int

const (
	// FamilyG builds L independent g-function collections.
	FamilyG FamilyKind = iota
	// FamilyU builds a shared pool of m half-collections and emits
	// m(m-1)/2 composite collections from it.
	FamilyU
)

// tableHashSeedXOR decorrelates the RNG used for t1/t2 table coefficients
// from the RNG used to sample the hash collections themselves, while
// staying a pure function of Config.Seed so builds remain reproducible.
const tableHashSeedXOR = 0x5bd1e9955bd1e995

// Config configures an LSHIndex. Zero-value CapacityFactor,
// FingerprintWidth, BuildWorkers, QueryWorkers and Logger fields are filled
// in with DefaultConfig's values; the hash parameters (Dimension, Width, R,
// K, and L or M) and Seed are not defaulted and must be supplied by the
// caller, or taken from DefaultConfig.
type Config struct {
	Dimension int
	Width     float64
	K         int
	L         int
	M         int
	R         float64
	Seed      int64
	Family    FamilyKind

	// CapacityFactor sets each table's slot count to the next power of two
	// >= CapacityFactor * len(points) (at least 16). Default 2.
	CapacityFactor int
	// FingerprintWidth bounds the t2 fingerprint's output range. Default
	// is the full uint32 range.
	FingerprintWidth uint64
	// BuildWorkers, if > 1, inserts points into tables using a bounded
	// worker pool instead of sequentially.
	BuildWorkers int
	// QueryWorkers, if > 1, probes tables using a bounded worker pool.
	QueryWorkers int

	Logger core.Logger
}

// DefaultConfig returns a Config for a g-family index over dimension d and
// query radius r, with the remaining parameters set to values reasonable
// for moderate-dimensional Euclidean data.
func DefaultConfig(d int, r float64) Config {
	return Config{
		Dimension:        d,
		Width:            4.0,
		K:                8,
		L:                10,
		R:                r,
		Seed:             time.Now().UnixNano(),
		Family:           FamilyG,
		CapacityFactor:   2,
		FingerprintWidth: uint64(1) << 32,
		BuildWorkers:     1,
		QueryWorkers:     1,
		Logger:           core.NopLogger(),
	}
}

func (c *Config) applyDefaults() {
	if c.CapacityFactor <= 0 {
		c.CapacityFactor = 2
	}
	if c.FingerprintWidth == 0 {
		c.FingerprintWidth = uint64(1) << 32
	}
	if c.BuildWorkers <= 0 {
		c.BuildWorkers = 1
	}
	if c.QueryWorkers <= 0 {
		c.QueryWorkers = 1
	}
	if c.Logger == nil {
		c.Logger = core.NopLogger()
	}
}

func (c Config) validate() error {
	if c.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive", ErrInvalidParameters)
	}
	if c.R <= 0 {
		return fmt.Errorf("%w: R must be positive", ErrInvalidParameters)
	}
	if c.Width <= 0 {
		return fmt.Errorf("%w: width must be positive", ErrInvalidParameters)
	}
	if c.Family == FamilyU && c.K%2 != 0 {
		return fmt.Errorf("%w: k must be even for a u-family", ErrInvalidParameters)
	}
	return nil
}

// table pairs a BucketMap with the t1/t2 ModPHash functions that compute
// its bucket index and fingerprint from a collection's k-vector.
type table struct {
	bm  *BucketMap
	rt1 *ModPHash
	rt2 *ModPHash
}

// LSHIndex owns the dataset reference, the L hash tables, the radius R and
// the hash collections. Immutable after Build succeeds.
type LSHIndex struct {
	mu          sync.RWMutex
	cfg         Config
	collections []HashCollection
	tables      []table
	points      [][]float64
	built       bool
	logger      core.Logger

	lastBuildElapsed time.Duration
}

// NewIndex validates cfg and constructs the hash collections, but does not
// yet hold any points; call Build to index a dataset.
func NewIndex(cfg Config) (*LSHIndex, error) {
	if err := cfg.validate(); err != nil {
		return nil, wrapError("new_index", err)
	}
	cfg.applyDefaults()

	var collections []HashCollection
	var err error
	switch cfg.Family {
	case FamilyG:
		collections, err = BuildG(cfg.Dimension, int(cfg.Width), cfg.K, cfg.L, cfg.R, cfg.Seed)
	case FamilyU:
		collections, err = BuildU(cfg.Dimension, int(cfg.Width), cfg.K, cfg.L, cfg.R, cfg.M, cfg.Seed)
	default:
		return nil, wrapError("new_index", fmt.Errorf("%w: unknown family kind %d", ErrInvalidParameters, cfg.Family))
	}
	if err != nil {
		return nil, err
	}

	return &LSHIndex{
		cfg:         cfg,
		collections: collections,
		logger:      cfg.Logger.Named("lsh"),
	}, nil
}

// Build indexes points: one BucketMap per collection, sized to
// CapacityFactor*len(points), with every point precomputed once per
// shared pool and pushed into every table. A single point's evaluation
// failure aborts the build; the index is left unbuilt.
func (ix *LSHIndex) Build(ctx context.Context, points [][]float64) error {
	if len(points) == 0 {
		return wrapError("build", fmt.Errorf("%w: empty point set", ErrInvalidParameters))
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	start := time.Now()
	capacity := len(points) * ix.cfg.CapacityFactor

	rng := rand.New(rand.NewSource(ix.cfg.Seed ^ tableHashSeedXOR))
	tables := make([]table, len(ix.collections))
	for i, c := range ix.collections {
		d := c.Dim()
		bm := NewBucketMap(capacity)
		tables[i] = table{
			bm:  bm,
			rt1: NewModPHash(d, bm.Capacity(), rng),
			rt2: NewModPHash(d, ix.cfg.FingerprintWidth, rng),
		}
	}

	insert := func(id PointID) error {
		v := points[id]
		if len(v) != ix.cfg.Dimension {
			return wrapError("build", errInvalidDim(ix.cfg.Dimension, len(v)))
		}
		cache := make(map[*hashPool]Precomputed)
		var identity Precomputed
		haveIdentity := false

		for i, c := range ix.collections {
			p, err := precomputeFor(c, v, cache, &identity, &haveIdentity)
			if err != nil {
				return err
			}
			z, err := c.ApplyPrecomputed(p)
			if err != nil {
				return wrapError("build", err)
			}
			t := &tables[i]
			bucket, err := t.rt1.Hash(z)
			if err != nil {
				return wrapError("build", err)
			}
			fp, err := t.rt2.Hash(z)
			if err != nil {
				return wrapError("build", err)
			}
			if err := t.bm.Insert(bucket, uint32(fp), id); err != nil {
				return err
			}
		}
		return nil
	}

	if err := runOverPoints(ctx, len(points), ix.cfg.BuildWorkers, insert); err != nil {
		return err
	}

	ix.tables = tables
	ix.points = points
	ix.built = true
	ix.lastBuildElapsed = time.Since(start)

	ix.logger.Info("build complete", core.BuildEvent{
		Points:    len(points),
		Tables:    len(tables),
		Elapsed:   ix.lastBuildElapsed,
		SizeHuman: humanize.Bytes(ix.approxMemoryBytes()),
	}.Keyvals()...)
	return nil
}

// Query returns every PointID within radius R of q with the usual LSH
// probabilistic guarantees, deduplicated and exact-distance-verified.
func (ix *LSHIndex) Query(ctx context.Context, q []float64) ([]PointID, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.built {
		return nil, wrapError("query", fmt.Errorf("%w: index has not been built", ErrInvalidParameters))
	}
	if len(q) != ix.cfg.Dimension {
		return nil, wrapError("query", errInvalidDim(ix.cfg.Dimension, len(q)))
	}

	start := time.Now()
	tried := bitset.New(uint(len(ix.points)))
	var mu sync.Mutex
	results := make(map[PointID]struct{})

	cache := make(map[*hashPool]Precomputed)
	var identity Precomputed
	haveIdentity := false
	var cacheMu sync.Mutex

	probe := func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := ix.collections[i]
		cacheMu.Lock()
		p, err := precomputeFor(c, q, cache, &identity, &haveIdentity)
		cacheMu.Unlock()
		if err != nil {
			return err
		}
		z, err := c.ApplyPrecomputed(p)
		if err != nil {
			return wrapError("query", err)
		}
		t := &ix.tables[i]
		bucket, err := t.rt1.Hash(z)
		if err != nil {
			return wrapError("query", err)
		}
		fp, err := t.rt2.Hash(z)
		if err != nil {
			return wrapError("query", err)
		}
		candidates := t.bm.Lookup(bucket, uint32(fp))
		if len(candidates) == 0 {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		for _, cand := range candidates {
			if tried.Test(uint(cand)) {
				continue
			}
			tried.Set(uint(cand))
			if euclideanDistance(ix.points[cand], q) <= ix.cfg.R {
				results[cand] = struct{}{}
			}
		}
		return nil
	}

	// cacheMu guards the shared precompute cache (collections sharing a
	// pool must not race filling it); mu separately guards tried/results,
	// which only the candidate-resolution tail of probe touches.
	if err := runOverTables(ctx, len(ix.collections), ix.cfg.QueryWorkers, probe, &mu); err != nil {
		return nil, err
	}

	out := make([]PointID, 0, len(results))
	for id := range results {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	ix.logger.Debug("query complete", core.QueryEvent{
		Candidates: tried.Count(),
		Results:    len(out),
		Elapsed:    time.Since(start),
	}.Keyvals()...)
	return out, nil
}

// precomputeFor returns the Precomputed value for collection c against
// point v, reusing a cached value for collections that share a pool (or
// the single identity precomputation shared by every non-composite
// collection), so each pool is evaluated once per point regardless of how
// many tables draw from it.
func precomputeFor(c HashCollection, v []float64, cache map[*hashPool]Precomputed, identity *Precomputed, haveIdentity *bool) (Precomputed, error) {
	pool := c.poolID()
	if pool == nil {
		if !*haveIdentity {
			*identity = c.Precompute(v)
			*haveIdentity = true
		}
		return *identity, nil
	}
	if cached, ok := cache[pool]; ok {
		return cached, nil
	}
	p := c.Precompute(v)
	cache[pool] = p
	return p, nil
}

func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Stats reports a snapshot of the index's size and configuration,
// matching the Stats() map[string]interface{} convention used throughout
// this module's ancestry.
func (ix *LSHIndex) Stats() map[string]interface{} {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	stats := map[string]interface{}{
		"built":      ix.built,
		"tables":     len(ix.collections),
		"dimension":  ix.cfg.Dimension,
		"radius":     ix.cfg.R,
		"build_time": ix.lastBuildElapsed.String(),
	}
	if ix.built {
		stats["points"] = len(ix.points)
		stats["approx_size"] = humanize.Bytes(ix.approxMemoryBytes())
	}
	return stats
}

func (ix *LSHIndex) approxMemoryBytes() uint64 {
	var total uint64
	for _, t := range ix.tables {
		total += t.bm.Capacity() * 24 // rough per-slot overhead estimate
	}
	total += uint64(len(ix.points)) * uint64(ix.cfg.Dimension) * 8
	return total
}
