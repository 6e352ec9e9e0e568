package lsh

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by this package. Use errors.Is against these,
// never string matching.
var (
	// ErrInvalidDimension is returned when a vector's length disagrees with
	// a hash function's configured dimension.
	ErrInvalidDimension = errors.New("lsh: invalid vector dimension")

	// ErrInvalidParameters is returned for malformed build/query parameters:
	// k odd in a u-family, L inconsistent with m, R <= 0, w <= 0, d == 0.
	ErrInvalidParameters = errors.New("lsh: invalid parameters")

	// ErrCapacityExceeded is returned when a BucketMap cannot place an
	// entry after probing every slot. Unreachable under the documented
	// sizing rule (capacity >= 2*|points|, no rehash); guarded anyway.
	ErrCapacityExceeded = errors.New("lsh: bucket map capacity exceeded")

	// ErrPoolMismatch is returned when a CompositeHashCollection is asked
	// to apply a Precomputed value built against a different hash pool.
	ErrPoolMismatch = errors.New("lsh: precomputed hashes reference a different pool")
)

// IndexError wraps an error with the operation that produced it.
type IndexError struct {
	Op  string
	Err error
}

func (e *IndexError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("lsh: %v", e.Err)
	}
	return fmt.Sprintf("lsh: %s: %v", e.Op, e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

func (e *IndexError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IndexError{Op: op, Err: err}
}
