package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	// ErrNotFound marks a lookup for a row that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate marks an insert that collided with an existing key.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict marks a conditional update whose precondition no longer
	// held; callers should re-read and retry.
	ErrConflict = errors.New("conflicting update")
)
