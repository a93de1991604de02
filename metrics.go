package gparse

import (
	"sync/atomic"
	"time"

	"github.com/jayantk/jklol-sub002/chart"
	"github.com/jayantk/jklol-sub002/search"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus; the promcollector package provides one.
//
// The search.Observer methods are called while a parse runs. A collector
// shared by concurrent parses, or used with a parallel pipelined strategy,
// must be safe for concurrent use.
type MetricsCollector interface {
	search.Observer

	// RecordParse is called after each parse. words is the sentence
	// length, results the number of grounded parses, err is nil if
	// successful.
	RecordParse(words, results int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct {
	search.NoopObserver
}

func (NoopMetricsCollector) RecordParse(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ParseCount      atomic.Int64
	ParseErrors     atomic.Int64
	ParseTotalNanos atomic.Int64
	EmptyParses     atomic.Int64
	Words           atomic.Int64
	Results         atomic.Int64
	Rounds          atomic.Int64
	BeamStates      atomic.Int64
	EvaluationSteps atomic.Int64
	Successors      atomic.Int64
	Lookaheads      atomic.Int64
	Discards        atomic.Int64
	ChartEntries    atomic.Int64
	ChartEvaluated  atomic.Int64
}

// RecordParse implements MetricsCollector.
func (b *BasicMetricsCollector) RecordParse(words, results int, duration time.Duration, err error) {
	b.ParseCount.Add(1)
	b.ParseTotalNanos.Add(duration.Nanoseconds())
	b.Words.Add(int64(words))
	b.Results.Add(int64(results))
	if err != nil {
		b.ParseErrors.Add(1)
	} else if results == 0 {
		b.EmptyParses.Add(1)
	}
}

// OnRound implements search.Observer.
func (b *BasicMetricsCollector) OnRound(_, beam int) {
	b.Rounds.Add(1)
	b.BeamStates.Add(int64(beam))
}

// OnEvaluate implements search.Observer.
func (b *BasicMetricsCollector) OnEvaluate(successors int) {
	b.EvaluationSteps.Add(1)
	b.Successors.Add(int64(successors))
}

// OnLookahead implements search.Observer.
func (b *BasicMetricsCollector) OnLookahead() { b.Lookaheads.Add(1) }

// OnDiscard implements search.Observer.
func (b *BasicMetricsCollector) OnDiscard() { b.Discards.Add(1) }

// OnChart implements search.Observer.
func (b *BasicMetricsCollector) OnChart(s chart.Stats) {
	b.ChartEntries.Add(int64(s.Entries))
	b.ChartEvaluated.Add(int64(s.Evaluated))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ParseCount:      b.ParseCount.Load(),
		ParseErrors:     b.ParseErrors.Load(),
		ParseAvgNanos:   b.getAvgParseNanos(),
		EmptyParses:     b.EmptyParses.Load(),
		Words:           b.Words.Load(),
		Results:         b.Results.Load(),
		Rounds:          b.Rounds.Load(),
		BeamStates:      b.BeamStates.Load(),
		EvaluationSteps: b.EvaluationSteps.Load(),
		Successors:      b.Successors.Load(),
		Lookaheads:      b.Lookaheads.Load(),
		Discards:        b.Discards.Load(),
		ChartEntries:    b.ChartEntries.Load(),
		ChartEvaluated:  b.ChartEvaluated.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgParseNanos() int64 {
	count := b.ParseCount.Load()
	if count == 0 {
		return 0
	}
	return b.ParseTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ParseCount      int64
	ParseErrors     int64
	ParseAvgNanos   int64
	EmptyParses     int64
	Words           int64
	Results         int64
	Rounds          int64
	BeamStates      int64
	EvaluationSteps int64
	Successors      int64
	Lookaheads      int64
	Discards        int64
	ChartEntries    int64
	ChartEvaluated  int64
}
