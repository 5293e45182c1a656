// Package lifecycle validates submission status transitions.
//
// Statuses advance along a fixed sequence and never move backward. Applying
// a transition the submission is already in or past is a no-op rather than
// an error, which makes transition commands safe to retry.
package lifecycle

import (
	"fmt"

	"github.com/demoday/arbiter/internal/domain/model"
)

// Decision is the outcome of validating a requested transition.
type Decision int

// Transition decisions.
const (
	// Apply means target is the immediate successor and should be persisted.
	Apply Decision = iota
	// Noop means the submission is already in or past target.
	Noop
)

// Decide validates advancing a submission from current to target.
// It returns Apply when target is the immediate successor of current, Noop
// when the transition was already applied, and ErrInvalidTransition for
// skips, backward moves of more than the idempotent window, or unknown
// statuses.
func Decide(current, target model.Status) (Decision, error) {
	if !current.Valid() {
		return 0, fmt.Errorf("%w: unknown current status %q", ErrInvalidTransition, current)
	}
	if !target.Valid() {
		return 0, fmt.Errorf("%w: unknown target status %q", ErrInvalidTransition, target)
	}
	if current.AtLeast(target) {
		return Noop, nil
	}
	if next, ok := current.Next(); ok && next == target {
		return Apply, nil
	}
	return 0, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
}

// AcceptsVotes reports whether a submission in the given status accepts
// community votes.
func AcceptsVotes(s model.Status) bool {
	return s == model.StatusCommunityVoting
}
