package verdict

import "errors"

// Sentinel kinds for verdict errors.
var (
	// ErrUnavailable marks a generator failure; round 2 synthesis is safe to
	// retry after it.
	ErrUnavailable = errors.New("verdict generator unavailable")
)
