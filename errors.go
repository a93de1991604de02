package gparse

import (
	"errors"
	"fmt"

	"github.com/jayantk/jklol-sub002/eval"
	"github.com/jayantk/jklol-sub002/search"
	"github.com/jayantk/jklol-sub002/shiftreduce"
)

var (
	// ErrEmptySentence is returned when a parse is requested for no words.
	ErrEmptySentence = errors.New("sentence has no words")

	// ErrNoParse is returned by SearchBuilder.First when no derivation
	// survives the search.
	ErrNoParse = errors.New("no grounded parse")

	// ErrInvalidBeamSize is returned when a strategy is configured with a
	// non-positive beam.
	ErrInvalidBeamSize = errors.New("beam size must be positive")

	// ErrCapacityExceeded is returned when a scratch queue overflows
	// during search.
	ErrCapacityExceeded = search.ErrCapacityExceeded

	// ErrMissingCollaborator is returned when a parser has no grammar or
	// evaluator.
	ErrMissingCollaborator = search.ErrMissingCollaborator

	// ErrUnsupported is returned when a strategy needs a capability the
	// grammar or evaluator lacks.
	ErrUnsupported = search.ErrUnsupported
)

// ErrCapacity reports a queue overflow surfaced by a parse.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrCapacity struct {
	Queue    string
	Capacity int
	Round    int
	cause    error
}

func (e *ErrCapacity) Error() string {
	return fmt.Sprintf("capacity exceeded: %s queue holds %d (round %d)", e.Queue, e.Capacity, e.Round)
}

func (e *ErrCapacity) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ce *search.CapacityError
	if errors.As(err, &ce) {
		return &ErrCapacity{Queue: ce.Queue, Capacity: ce.Capacity, Round: ce.Round, cause: err}
	}
	if errors.Is(err, shiftreduce.ErrInvalidBeamSize) || errors.Is(err, eval.ErrInvalidBeamSize) {
		return fmt.Errorf("%w: %w", ErrInvalidBeamSize, err)
	}

	return err
}
