package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNotReady marks a command issued against a submission whose status
	// does not allow it yet.
	ErrNotReady = errors.New("submission not ready")
	// ErrMalformedDonation marks a donation payload that fails validation.
	ErrMalformedDonation = errors.New("malformed donation")
)
