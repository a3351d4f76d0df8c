package kbModel

import "errors"

var (
	// ErrInvalidArgument - malformed or contradictory call, e.g. both or
	// neither deletion selector given.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrExtraction - source text could not be produced; ingestion aborts
	// before any chunk is written.
	ErrExtraction = errors.New("extraction failed")

	// ErrNotFound - a specific chunk or blob does not exist. Deletion and
	// query paths treat this as absence, not failure.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable - a remote store call failed at the transport
	// level. Surfaced to the caller; retries are a caller concern.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInconsistent - a chunk observed in one store but not another.
	ErrInconsistent = errors.New("stores inconsistent")
)
