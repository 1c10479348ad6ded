package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when the requested state is not
	// reachable from the current state by a single legal step
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrForbidden is returned when the transition exists but the actor's
	// role is not authorized to perform it
	ErrForbidden = errors.New("role not authorized for transition")

	// ErrInvalidState is returned when a state is not a member of the
	// direction's status enum
	ErrInvalidState = errors.New("invalid state")
)
