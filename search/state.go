package search

import (
	"fmt"

	"github.com/jayantk/jklol-sub002/eval"
	"github.com/jayantk/jklol-sub002/shiftreduce"
)

// State is a point of the joint search. States are immutable once created.
type State struct {
	stack   *shiftreduce.Stack
	diagram any
	env     eval.Env
	// pending is the evaluation of the top stack entry. It is suspended for
	// evaluating states and the zero State for parsing states.
	pending eval.State
}

func newParsing(stack *shiftreduce.Stack, diagram any, env eval.Env) *State {
	return &State{stack: stack, diagram: diagram, env: env}
}

func newEvaluating(stack *shiftreduce.Stack, pending eval.State, env eval.Env) (*State, error) {
	if !pending.IsSuspended() {
		return nil, fmt.Errorf("%w: evaluating state needs a suspended evaluation, got %v", eval.ErrInvalidState, pending)
	}
	return &State{stack: stack, diagram: pending.Diagram(), env: env, pending: pending}, nil
}

// Stack returns the derivation stack. It is nil for states of a pipelined
// evaluation.
func (s *State) Stack() *shiftreduce.Stack { return s.stack }

// Diagram returns the world the state is grounded in.
func (s *State) Diagram() any {
	if s.pending.Valid() {
		return s.pending.Diagram()
	}
	return s.diagram
}

// Env returns the environment later continuations extend.
func (s *State) Env() eval.Env { return s.env }

// Continuation returns the suspended evaluation, or nil.
func (s *State) Continuation() any { return s.pending.Continuation() }

// ContinuationEnv returns the environment of the suspended evaluation, or
// nil.
func (s *State) ContinuationEnv() eval.Env { return s.pending.ContinuationEnv() }

// Evaluating reports whether an evaluation is pending.
func (s *State) Evaluating() bool { return s.pending.IsSuspended() }

// Finished reports whether the state is a complete grounded derivation.
func (s *State) Finished() bool {
	return !s.Evaluating() && s.stack != nil && s.stack.IncludesRoot
}

// StackProb returns the syntactic probability component.
func (s *State) StackProb() float64 {
	if s.stack == nil {
		return 1
	}
	return s.stack.TotalProb
}

// EvalProb returns the probability of the pending evaluation, or 1.
func (s *State) EvalProb() float64 {
	if s.pending.Valid() {
		return s.pending.Prob()
	}
	return 1
}

// TotalProb returns StackProb * EvalProb.
func (s *State) TotalProb() float64 { return s.StackProb() * s.EvalProb() }

// EvalState returns the evaluation state carried by s: the pending one, or
// the result attached to the top stack entry.
func (s *State) EvalState() (eval.State, bool) {
	if s.pending.Valid() {
		return s.pending, true
	}
	if s.stack != nil {
		if st, ok := s.stack.Entry.Info.(eval.State); ok {
			return st, true
		}
	}
	return eval.State{}, false
}

// Denotation returns the most recent completed evaluation value.
func (s *State) Denotation() (any, bool) {
	st, ok := s.EvalState()
	if !ok {
		return nil, false
	}
	return st.Denotation()
}

func (s *State) String() string {
	kind := "parsing"
	switch {
	case s.Evaluating():
		kind = "evaluating"
	case s.Finished():
		kind = "finished"
	}
	return fmt.Sprintf("%s %v p=%.4g", kind, s.stack, s.TotalProb())
}
