// Package rnnlsh is the module root for an R-near-neighbor index built on
// Locality Sensitive Hashing (LSH): AM04 p-stable hash families, their
// g- and u-compositions, and an E2LSH-style two-level bucket scheme.
//
// The indexing core lives in [github.com/liliang-cn/rnnlsh/pkg/lsh]. This
// root package carries no code of its own; it exists to host the module's
// top-level documentation.
//
// # Quick start
//
//	import "github.com/liliang-cn/rnnlsh/pkg/lsh"
//
//	// NewIndex samples the hash collections itself (a g-family unless
//	// Config.Family says otherwise); w is a float64 bucket width.
//	idx, err := lsh.NewIndex(lsh.Config{
//	    Dimension: d,
//	    Width:     w,
//	    K:         k,
//	    L:         l,
//	    R:         r,
//	    Seed:      seed,
//	})
//	err = idx.Build(ctx, points)
//	neighbors, err := idx.Query(ctx, q)
//
// # Scope
//
// This module answers approximate R-near-neighbor queries only: k-NN,
// dynamic deletion, disk persistence and distributed sharding are out of
// scope. File I/O, CLI drivers and benchmark harnesses are external
// collaborators that provide point vectors and hash-family parameters and
// consume the returned PointIDs; they are not part of this module.
package rnnlsh
