package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Run coordination errors. Busy and stale are expected conditions
	// and are returned as values for callers to inspect with errors.Is.

	// ErrBusy indicates a sync cycle is already active.
	ErrBusy = errors.New("sync already running")

	// ErrStaleHandle indicates a stop request named a run that is no longer active.
	ErrStaleHandle = errors.New("stale run handle")

	// ErrUploaderFailure indicates the uploader collaborator failed mid-cycle.
	ErrUploaderFailure = errors.New("uploader failure")

	// ErrCancelled indicates the cycle was cancelled by a stop request.
	ErrCancelled = errors.New("sync cancelled")

	// ErrClosed indicates the scheduler has been shut down.
	ErrClosed = errors.New("scheduler closed")

	// ErrConstraintNotMet indicates an external run condition (network, power) is not satisfied.
	ErrConstraintNotMet = errors.New("run constraint not met")
)
