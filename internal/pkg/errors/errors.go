package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoPlacement signals that an adjustment had no available dates to place plans on.
	ErrNoPlacement = errors.New("no placement possible")
	// ErrRollbackExpired signals that the 24h rollback window has passed.
	ErrRollbackExpired = errors.New("rollback window expired")
	// ErrVersionConflict signals a concurrent commit against the same plan group.
	ErrVersionConflict = errors.New("plan group version conflict")
)
