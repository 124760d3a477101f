package worldcupdb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested competitor does not exist.
	ErrNotFound = errors.New("competitor not found")

	// ErrVersionConflict indicates a rating write lost a compare-and-swap on the
	// row version. The surrounding transaction must be rolled back.
	ErrVersionConflict = errors.New("competitor version conflict")
)
