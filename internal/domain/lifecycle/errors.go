package lifecycle

import "errors"

// Sentinel kinds for lifecycle errors.
var (
	// ErrInvalidTransition marks out-of-order or unknown status transitions.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrIncompleteScoring marks an advance to scored without a round 1 row
	// from every configured judge.
	ErrIncompleteScoring = errors.New("incomplete scoring")
)
