package search

import "github.com/jayantk/jklol-sub002/chart"

// Observer receives search progress events. Implementations used with a
// parallel pipelined search must be safe for concurrent use.
type Observer interface {
	// OnRound is called at the start of each round with the beam size.
	OnRound(round, beam int)
	// OnEvaluate is called after each evaluation step.
	OnEvaluate(successors int)
	// OnLookahead is called when a deterministic evaluation step is
	// continued without queueing.
	OnLookahead()
	// OnDiscard is called when the cost discards a candidate.
	OnDiscard()
	// OnChart is called once per search with the final chart size.
	OnChart(stats chart.Stats)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) OnRound(int, int)    {}
func (NoopObserver) OnEvaluate(int)      {}
func (NoopObserver) OnLookahead()        {}
func (NoopObserver) OnDiscard()          {}
func (NoopObserver) OnChart(chart.Stats) {}
