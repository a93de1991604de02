package search

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is returned when a scratch queue receives more
	// candidates than its capacity during one step.
	ErrCapacityExceeded = errors.New("search queue capacity exceeded")

	// ErrMissingCollaborator is returned when a request lacks a grammar or
	// evaluator.
	ErrMissingCollaborator = errors.New("missing collaborator")

	// ErrUnsupported is returned when the collaborators do not provide the
	// capabilities a strategy requires.
	ErrUnsupported = errors.New("collaborator not supported by strategy")
)

// CapacityError reports a scratch queue overflow.
type CapacityError struct {
	Queue    string
	Capacity int
	Round    int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s queue exceeded capacity %d in round %d", e.Queue, e.Capacity, e.Round)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }
