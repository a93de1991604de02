package eval

import (
	"errors"
	"fmt"
)

// ErrInvalidState is returned when a state is constructed with a
// continuation but no environment, or an environment but no continuation.
var ErrInvalidState = errors.New("invalid evaluation state")

// Env is an evaluation environment.
type Env interface {
	// Extend returns a child scope of the environment.
	Extend() Env
}

// Step is the tagged payload of a State: Suspended or Denoted.
type Step interface {
	isStep()
}

// Suspended is a pending evaluation.
type Suspended struct {
	Continuation any
	Env          Env
}

// Denoted is a completed evaluation.
type Denoted struct {
	Value any
	// Env is the environment after evaluation. It may be nil.
	Env Env
}

func (Suspended) isStep() {}
func (Denoted) isStep()   {}

// State is one point of an evaluation search. States are immutable values.
type State struct {
	step    Step
	diagram any
	prob    float64
}

// Suspend creates a suspended state. Both cont and env are required.
func Suspend(cont any, env Env, diagram any, prob float64) (State, error) {
	if cont == nil || env == nil {
		return State{}, fmt.Errorf("%w: continuation and environment must both be set", ErrInvalidState)
	}
	return State{step: Suspended{Continuation: cont, Env: env}, diagram: diagram, prob: prob}, nil
}

// Denote creates a completed state.
func Denote(value any, env Env, diagram any, prob float64) State {
	return State{step: Denoted{Value: value, Env: env}, diagram: diagram, prob: prob}
}

// Step returns the tagged payload. It is nil for the zero State.
func (s State) Step() Step { return s.step }

// Valid reports whether s was built by Suspend or Denote.
func (s State) Valid() bool { return s.step != nil }

// Suspended returns the pending evaluation.
func (s State) Suspended() (Suspended, bool) {
	v, ok := s.step.(Suspended)
	return v, ok
}

// Denoted returns the completed evaluation.
func (s State) Denoted() (Denoted, bool) {
	v, ok := s.step.(Denoted)
	return v, ok
}

// IsSuspended reports whether evaluation is still pending.
func (s State) IsSuspended() bool {
	_, ok := s.step.(Suspended)
	return ok
}

// Continuation returns the pending continuation, or nil.
func (s State) Continuation() any {
	if v, ok := s.step.(Suspended); ok {
		return v.Continuation
	}
	return nil
}

// ContinuationEnv returns the environment of the pending continuation, or
// nil.
func (s State) ContinuationEnv() Env {
	if v, ok := s.step.(Suspended); ok {
		return v.Env
	}
	return nil
}

// Denotation returns the value of a completed evaluation.
func (s State) Denotation() (any, bool) {
	if v, ok := s.step.(Denoted); ok {
		return v.Value, true
	}
	return nil, false
}

// Env returns the environment of either variant.
func (s State) Env() Env {
	switch v := s.step.(type) {
	case Suspended:
		return v.Env
	case Denoted:
		return v.Env
	}
	return nil
}

// Diagram returns the world the state was evaluated against.
func (s State) Diagram() any { return s.diagram }

// Prob returns the probability of the state.
func (s State) Prob() float64 { return s.prob }

// WithProb returns a copy of s with probability prob.
func (s State) WithProb(prob float64) State {
	s.prob = prob
	return s
}

func (s State) String() string {
	switch v := s.step.(type) {
	case Suspended:
		return fmt.Sprintf("suspended(%.4g)", s.prob)
	case Denoted:
		return fmt.Sprintf("denoted(%v, %.4g)", v.Value, s.prob)
	}
	return "invalid"
}
