package eval

import (
	"errors"
	"math"

	"github.com/jayantk/jklol-sub002/queue"
	"github.com/jayantk/jklol-sub002/shiftreduce"
)

// ErrInvalidBeamSize is returned when an evaluation beam size is not
// positive.
var ErrInvalidBeamSize = errors.New("evaluation beam size must be positive")

// Evaluator evaluates the logical forms of parses incrementally.
//
// Implementations used by a parallel pipelined search must be safe for
// concurrent use.
type Evaluator interface {
	// Evaluatable reports whether entries with the given syntactic
	// category have a logical form that can be evaluated.
	Evaluatable(syntax any) bool
	// ParseToContinuation returns the continuation that evaluates p in env.
	// Sub-parses carrying evaluation results are used as already computed
	// values. A nil continuation means p cannot be evaluated.
	ParseToContinuation(p *shiftreduce.Parse, env Env) (any, error)
	// Continue advances a suspended state by one step, appending its
	// successors to out.
	Continue(s State, out []State) ([]State, error)
	// Environment returns a fresh top-level environment.
	Environment() Env
}

// LogicalFormEvaluator evaluates logical forms that are not attached to a
// parse.
type LogicalFormEvaluator interface {
	Evaluator
	// Continuation returns the continuation that evaluates lf in env, or nil
	// if lf cannot be evaluated.
	Continuation(lf any, env Env) (any, error)
}

// Cost scores a state; the probability is multiplied by exp(cost) and
// math.Inf(-1) discards the state.
type Cost func(State) float64

// EvaluateBeam runs a beam search over the evaluations of lf against
// diagram and returns the completed states, best first.
func EvaluateBeam(ev LogicalFormEvaluator, lf, diagram any, cost Cost, beamSize int) ([]State, error) {
	if beamSize <= 0 {
		return nil, ErrInvalidBeamSize
	}
	env := ev.Environment()
	cont, err := ev.Continuation(lf, env)
	if err != nil {
		return nil, err
	}
	if cont == nil {
		return nil, nil
	}
	initial, err := Suspend(cont, env, diagram, 1)
	if err != nil {
		return nil, err
	}

	heap := queue.NewKbest[State](beamSize)
	finished := queue.NewKbest[State](beamSize)
	offer := func(s State) {
		score := s.Prob()
		if cost != nil {
			c := cost(s)
			if math.IsInf(c, -1) {
				return
			}
			score *= math.Exp(c)
		}
		if s.IsSuspended() {
			heap.Offer(s, score)
		} else {
			finished.Offer(s, score)
		}
	}
	offer(initial)

	beam := make([]State, 0, beamSize)
	var next []State
	for heap.Len() > 0 {
		beam = heap.AppendItems(beam[:0])
		heap.Clear()
		for _, s := range beam {
			next, err = ev.Continue(s, next[:0])
			if err != nil {
				return nil, err
			}
			for _, n := range next {
				offer(n)
			}
		}
	}

	drained := finished.Drain()
	out := make([]State, len(drained))
	for i, d := range drained {
		out[i] = d.Item
	}
	return out, nil
}
