package domain

import "errors"

// Common domain errors. Usecases translate these into HTTP-level
// apperror values; the domain layer never logs or swallows them.
var (
	ErrNotFound = errors.New("resource not found")

	// ErrValidation marks invariant violations at construction time
	// (bad enum member, non-positive amount, missing required field).
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition marks an operation attempted from a status
	// that does not permit it. Aggregate state is unchanged on failure.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNotAuthorized marks a caller identity mismatch. Authorization
	// is always checked before status, so it wins over transition errors.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrVersionConflict is returned by repositories when a concurrent
	// writer committed the same aggregate first.
	ErrVersionConflict = errors.New("aggregate version conflict")
)
