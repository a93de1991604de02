package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/jayantk/jklol-sub002/chart"
	"github.com/jayantk/jklol-sub002/eval"
	"github.com/jayantk/jklol-sub002/shiftreduce"
)

// Strategy is a grounded parsing algorithm.
type Strategy interface {
	// Name identifies the strategy in logs and metrics.
	Name() string
	// Search returns the grounded parses of the request, best first. An
	// empty result means no derivation survived the search.
	Search(ctx context.Context, req Request) ([]Result, error)
}

// Compile time checks.
var (
	_ Strategy = (*Interleaved)(nil)
	_ Strategy = (*Pipelined)(nil)
)

// Cost scores a candidate state. The state's probability is multiplied by
// exp(cost); math.Inf(-1) discards the state.
type Cost func(*State) float64

// FilterCost converts a predicate into a Cost that discards states for
// which keep returns false.
func FilterCost(keep func(*State) bool) Cost {
	return func(s *State) float64 {
		if keep(s) {
			return 0
		}
		return math.Inf(-1)
	}
}

// Request is the input of a search.
type Request struct {
	Grammar   shiftreduce.Grammar
	Evaluator eval.Evaluator
	Words     []string
	// Diagram is the initial world.
	Diagram any

	// Cost is applied to every candidate state. Nil keeps all.
	Cost Cost
	// EntryCost is applied to every chart entry. Nil keeps all.
	EntryCost chart.EntryCost

	Logger   *slog.Logger
	Timer    Timer
	Observer Observer
}

func (r Request) normalize() (Request, error) {
	if r.Grammar == nil {
		return r, fmt.Errorf("%w: grammar", ErrMissingCollaborator)
	}
	if r.Evaluator == nil {
		return r, fmt.Errorf("%w: evaluator", ErrMissingCollaborator)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.DiscardHandler)
	}
	if r.Timer == nil {
		r.Timer = NoopTimer{}
	}
	if r.Observer == nil {
		r.Observer = NoopObserver{}
	}
	return r, nil
}

// score returns the queue priority of s, or false if the cost discards it.
func (r Request) score(s *State) (float64, bool) {
	w, ok := r.weight(s)
	if !ok {
		return 0, false
	}
	return s.TotalProb() * w, true
}

// weight returns exp(cost) for s, or false if the cost discards it.
func (r Request) weight(s *State) (float64, bool) {
	if r.Cost == nil {
		return 1, true
	}
	c := r.Cost(s)
	if math.IsInf(c, -1) {
		r.Observer.OnDiscard()
		return 0, false
	}
	return math.Exp(c), true
}

// Result is a grounded parse.
type Result struct {
	// Parse is the derivation. Nodes that were evaluated carry their
	// eval.State in Info.
	Parse *shiftreduce.Parse
	// Denotation is the value of the root evaluation, or nil.
	Denotation any
	// Diagram is the world after evaluation.
	Diagram any
	// Prob is the joint syntactic and semantic probability.
	Prob float64
	// Score is Prob adjusted by the request cost.
	Score float64
}
