package testutil

import (
	"maps"
	"sync"
	"sync/atomic"

	"github.com/jayantk/jklol-sub002/chart"
	"github.com/jayantk/jklol-sub002/eval"
	"github.com/jayantk/jklol-sub002/shiftreduce"
)

var _ eval.LogicalFormEvaluator = (*CountingEvaluator)(nil)

// CountingEvaluator wraps an evaluator and counts the calls made to it. It
// is safe for concurrent use if the wrapped evaluator is.
type CountingEvaluator struct {
	eval.Evaluator

	mu    sync.Mutex
	spans map[chart.Span]int

	continuations atomic.Int64
	steps         atomic.Int64
}

// NewCountingEvaluator wraps ev.
func NewCountingEvaluator(ev eval.Evaluator) *CountingEvaluator {
	return &CountingEvaluator{Evaluator: ev, spans: make(map[chart.Span]int)}
}

// ParseToContinuation records the span of p and delegates.
func (c *CountingEvaluator) ParseToContinuation(p *shiftreduce.Parse, env eval.Env) (any, error) {
	c.mu.Lock()
	c.spans[p.Span]++
	c.mu.Unlock()
	c.continuations.Add(1)
	return c.Evaluator.ParseToContinuation(p, env)
}

// Continuation delegates to the wrapped evaluator if it evaluates logical
// forms, and reports no continuation otherwise.
func (c *CountingEvaluator) Continuation(lf any, env eval.Env) (any, error) {
	lfe, ok := c.Evaluator.(eval.LogicalFormEvaluator)
	if !ok {
		return nil, nil
	}
	c.continuations.Add(1)
	return lfe.Continuation(lf, env)
}

// Continue counts the step and delegates.
func (c *CountingEvaluator) Continue(s eval.State, out []eval.State) ([]eval.State, error) {
	c.steps.Add(1)
	return c.Evaluator.Continue(s, out)
}

// Continuations returns the number of continuations requested.
func (c *CountingEvaluator) Continuations() int64 { return c.continuations.Load() }

// Steps returns the number of Continue calls.
func (c *CountingEvaluator) Steps() int64 { return c.steps.Load() }

// Spans returns how often each span was turned into a continuation.
func (c *CountingEvaluator) Spans() map[chart.Span]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.spans)
}
