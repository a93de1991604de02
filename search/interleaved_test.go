package search_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayantk/jklol-sub002/arith"
	"github.com/jayantk/jklol-sub002/chart"
	"github.com/jayantk/jklol-sub002/eval"
	"github.com/jayantk/jklol-sub002/search"
	"github.com/jayantk/jklol-sub002/shiftreduce"
	"github.com/jayantk/jklol-sub002/testutil"
)

func TestInterleavedSingleWord(t *testing.T) {
	f := newFixture(t, &arith.Lexicon{Entries: []arith.LexEntry{entry("seven", "N", "7", 1)}})

	results := run(t, &search.Interleaved{BeamSize: 10}, f.request("seven"))
	require.Len(t, results, 1)
	assert.Equal(t, 7, results[0].Denotation)
	assert.InDelta(t, 1.0, results[0].Prob, 1e-12)
	assert.InDelta(t, 1.0, results[0].Score, 1e-12)
	assert.Equal(t, arith.World{}, results[0].Diagram)

	st, ok := results[0].Parse.Info.(eval.State)
	require.True(t, ok, "root node carries its evaluation")
	v, _ := st.Denotation()
	assert.Equal(t, 7, v)
}

func TestInterleavedNondeterministicSpan(t *testing.T) {
	for _, prob := range []float64{1, 0.5} {
		f := newFixture(t, &arith.Lexicon{Entries: []arith.LexEntry{
			entry("one_or_two", "N", "amb(1:0.6, 2:0.4)", prob),
		}})
		results := run(t, &search.Interleaved{BeamSize: 10}, f.request("one_or_two"))
		assert.Equal(t, []any{1, 2}, denotations(results))
		assert.InDeltaSlice(t, []float64{0.6 * prob, 0.4 * prob}, probs(results), 1e-12)
	}
}

func TestInterleavedBeamPrunes(t *testing.T) {
	f := newFixture(t, &arith.Lexicon{Entries: []arith.LexEntry{
		entry("a", "N", "1", 0.7),
		entry("a", "N", "2", 0.3),
	}})

	results := run(t, &search.Interleaved{BeamSize: 1}, f.request("a"))
	assert.Equal(t, []any{1}, denotations(results))
	assert.InDeltaSlice(t, []float64{0.7}, probs(results), 1e-12)

	results = run(t, &search.Interleaved{BeamSize: 10}, f.request("a"))
	assert.Equal(t, []any{1, 2}, denotations(results))
}

func TestInterleavedFilter(t *testing.T) {
	f := newFixture(t, sumLexicon())

	req := f.request("one_or_two")
	results := run(t, &search.Interleaved{BeamSize: 10}, req)
	assert.Equal(t, []any{1, 2}, denotations(results))

	rec := &recorder{}
	req.Cost = rejectDenotation(2)
	req.Observer = rec
	results = run(t, &search.Interleaved{BeamSize: 10}, req)
	assert.Equal(t, []any{1}, denotations(results))
	assert.Positive(t, rec.discards.Load())
}

func TestInterleavedCostScore(t *testing.T) {
	f := newFixture(t, sumLexicon())
	req := f.request("one_or_two")
	req.Cost = func(s *search.State) float64 {
		if d, ok := s.Denotation(); ok && d == 1 {
			return math.Log(0.5)
		}
		return 0
	}

	results := run(t, &search.Interleaved{BeamSize: 10}, req)
	require.Len(t, results, 2)
	// 0.6 * 0.5 < 0.4, so the cost reorders the results.
	assert.Equal(t, []any{2, 1}, denotations(results))
	assert.InDelta(t, 0.4, results[0].Score, 1e-12)
	assert.InDelta(t, 0.3, results[1].Score, 1e-12)
	assert.InDelta(t, 0.6, results[1].Prob, 1e-12)
}

func TestInterleavedComposition(t *testing.T) {
	f := newFixture(t, sumLexicon())

	results := run(t, &search.Interleaved{BeamSize: 10}, f.request("one_or_two", "plus", "x"))
	want := []summary{
		{Denotation: 2, Prob: 0.42, World: "{x=1}"},
		{Denotation: 3, Prob: 0.28, World: "{x=1}"},
		{Denotation: 3, Prob: 0.18, World: "{x=2}"},
		{Denotation: 4, Prob: 0.12, World: "{x=2}"},
	}
	got := summarize(results)
	for i := range got {
		got[i].Form = ""
	}
	assert.Empty(t, cmp.Diff(want, got, approx))
}

func TestInterleavedLookaheadEquivalence(t *testing.T) {
	tests := []struct {
		name  string
		lex   *arith.Lexicon
		words []string
		cost  search.Cost
	}{
		{name: "composition", words: []string{"one_or_two", "plus", "x"}},
		{name: "tied lexemes", lex: tieLexicon(), words: []string{"a"}},
		{name: "tied choices", lex: tieLexicon(), words: []string{"b"}},
		{name: "deterministic chain", words: []string{"pick", "plus", "x"}},
		{name: "filtered denotation", words: []string{"pick"}, cost: rejectDenotation(5)},
		{
			// Rejecting one of two successors leaves a single suspended
			// state, which lookahead continues immediately.
			name:  "filter forces lookahead",
			words: []string{"x", "plus", "one"},
			cost: search.FilterCost(func(s *search.State) bool {
				w, _ := s.Diagram().(arith.World)
				v, ok := w.Get("x")
				return !ok || v != 2
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := tt.lex
			if lex == nil {
				lex = sumLexicon()
			}
			f := newFixture(t, lex)
			req := f.request(tt.words...)
			req.Cost = tt.cost

			on, off := &recorder{}, &recorder{}
			req.Observer = on
			withLookahead := run(t, &search.Interleaved{BeamSize: 100}, req)
			req.Observer = off
			without := run(t, &search.Interleaved{BeamSize: 100, DisableLookahead: true}, req)

			require.NotEmpty(t, withLookahead)
			assert.Empty(t, cmp.Diff(summarize(without), summarize(withLookahead), approx))
			assert.Zero(t, off.lookaheads.Load())
		})
	}

	t.Run("lookahead is taken", func(t *testing.T) {
		f := newFixture(t, sumLexicon())
		req := f.request("pick")
		rec := &recorder{}
		req.Observer = rec
		results := run(t, &search.Interleaved{BeamSize: 100}, req)
		assert.Equal(t, []any{4, 5}, denotations(results))
		assert.Equal(t, int64(1), rec.lookaheads.Load())
	})

	t.Run("filter forces lookahead", func(t *testing.T) {
		f := newFixture(t, sumLexicon())
		req := f.request("x", "plus", "one")
		req.Cost = search.FilterCost(func(s *search.State) bool {
			w, _ := s.Diagram().(arith.World)
			v, ok := w.Get("x")
			return !ok || v != 2
		})
		rec := &recorder{}
		req.Observer = rec
		results := run(t, &search.Interleaved{BeamSize: 100}, req)
		assert.Equal(t, []any{2}, denotations(results))
		assert.InDeltaSlice(t, []float64{0.7}, probs(results), 1e-12)
		assert.Positive(t, rec.lookaheads.Load())
	})
}

func TestInterleavedMemoizesSpans(t *testing.T) {
	f := newFixture(t, sumLexicon())
	counting := testutil.NewCountingEvaluator(f.evaluator)
	req := f.request("one_or_two", "plus", "x")
	req.Evaluator = counting

	rec := &recorder{}
	req.Observer = rec
	results := run(t, &search.Interleaved{BeamSize: 100}, req)
	require.Len(t, results, 4)

	assert.Equal(t, map[chart.Span]int{
		{Start: 0, End: 0}: 1,
		{Start: 0, End: 2}: 2,
	}, counting.Spans())
	assert.Equal(t, int64(3), f.evaluator.Stats().Continuations)

	for _, r := range results {
		st, ok := r.Parse.Left.Info.(eval.State)
		require.True(t, ok, "left child carries the attached evaluation")
		v, _ := st.Denotation()
		assert.Contains(t, []any{1, 2}, v)

		infos := r.Parse.Infos()
		require.Len(t, infos, 2, "root and left child are evaluated")
		root, ok := infos[0].(eval.State)
		require.True(t, ok)
		d, _ := root.Denotation()
		assert.Equal(t, r.Denotation, d)
		left, ok := infos[1].(eval.State)
		require.True(t, ok)
		lv, _ := left.Denotation()
		assert.Equal(t, v, lv)
	}

	stats := rec.chart.Load()
	require.NotNil(t, stats)
	assert.Positive(t, stats.Evaluated)
	assert.Greater(t, stats.Entries, stats.Evaluated)
}

func TestInterleavedStateInvariants(t *testing.T) {
	f := newFixture(t, sumLexicon())
	req := f.request("pick", "plus", "one_or_two", "plus", "x")

	var checked int
	req.Cost = func(s *search.State) float64 {
		checked++
		assert.Equal(t, s.Continuation() == nil, s.ContinuationEnv() == nil, "%v", s)
		assert.InDelta(t, s.StackProb()*s.EvalProb(), s.TotalProb(), 1e-12, "%v", s)
		if s.Evaluating() {
			assert.False(t, s.Finished())
		}
		return 0
	}
	results := run(t, &search.Interleaved{BeamSize: 50}, req)
	assert.NotEmpty(t, results)
	assert.Positive(t, checked)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestInterleavedBeamBound(t *testing.T) {
	f := newFixture(t, sumLexicon())
	words := []string{"one_or_two", "plus", "one_or_two", "plus", "x"}
	req := f.request(words...)
	rec := &recorder{}
	req.Observer = rec

	const beam = 2
	results := run(t, &search.Interleaved{BeamSize: beam}, req)
	assert.LessOrEqual(t, len(results), beam)
	assert.LessOrEqual(t, rec.maxBeam.Load(), int64(beam*(len(words)+1)))
	assert.GreaterOrEqual(t, rec.rounds.Load(), int64(len(words)))
}

func TestInterleavedSkipping(t *testing.T) {
	lex := sumLexicon()
	lex.Skip = 0.1
	f := newFixture(t, lex)

	results := run(t, &search.Interleaved{BeamSize: 100}, f.request("um", "one"))
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Denotation)
	assert.InDelta(t, 0.1, results[0].Prob, 1e-12)

	results = run(t, &search.Interleaved{BeamSize: 100}, f.request("one", "please"))
	require.Len(t, results, 1)
	assert.InDelta(t, 0.1, results[0].Prob, 1e-12)
}

func TestInterleavedEntryCost(t *testing.T) {
	f := newFixture(t, &arith.Lexicon{Entries: []arith.LexEntry{
		entry("a", "N", "1", 0.7),
		entry("a", "N", "2", 0.3),
	}})
	req := f.request("a")
	req.EntryCost = func(e chart.Entry, _ []string) float64 {
		if lex, ok := e.Lexicon.(*arith.Lexeme); ok && lex.Semantics.String() == "1" {
			return math.Inf(-1)
		}
		return 0
	}
	results := run(t, &search.Interleaved{BeamSize: 10}, req)
	assert.Equal(t, []any{2}, denotations(results))
}

func TestInterleavedNoParse(t *testing.T) {
	f := newFixture(t, sumLexicon())
	results := run(t, &search.Interleaved{BeamSize: 10}, f.request("banana"))
	assert.Empty(t, results)

	results = run(t, &search.Interleaved{BeamSize: 10}, f.request("one", "one"))
	assert.Empty(t, results)
}

func TestInterleavedErrors(t *testing.T) {
	f := newFixture(t, &arith.Lexicon{Entries: []arith.LexEntry{
		entry("a", "N", "1", 0.7),
		entry("a", "N", "2", 0.3),
		entry("y", "N", "y", 1),
	}})
	ctx := context.Background()

	t.Run("temporary queue overflow", func(t *testing.T) {
		_, err := (&search.Interleaved{BeamSize: 10, TempCapacity: 1}).Search(ctx, f.request("a"))
		require.ErrorIs(t, err, search.ErrCapacityExceeded)
		var capErr *search.CapacityError
		require.True(t, errors.As(err, &capErr))
		assert.Equal(t, 1, capErr.Capacity)
		assert.Equal(t, 0, capErr.Round)
	})

	t.Run("evaluator error", func(t *testing.T) {
		_, err := (&search.Interleaved{BeamSize: 10}).Search(ctx, f.request("y"))
		assert.ErrorIs(t, err, arith.ErrUnbound)
	})

	t.Run("beam size", func(t *testing.T) {
		_, err := (&search.Interleaved{}).Search(ctx, f.request("a"))
		assert.ErrorIs(t, err, shiftreduce.ErrInvalidBeamSize)
	})

	t.Run("missing collaborators", func(t *testing.T) {
		req := f.request("a")
		req.Grammar = nil
		_, err := (&search.Interleaved{BeamSize: 1}).Search(ctx, req)
		assert.ErrorIs(t, err, search.ErrMissingCollaborator)

		req = f.request("a")
		req.Evaluator = nil
		_, err = (&search.Interleaved{BeamSize: 1}).Search(ctx, req)
		assert.ErrorIs(t, err, search.ErrMissingCollaborator)
	})

	t.Run("invalid evaluation state", func(t *testing.T) {
		req := f.request("a")
		req.Evaluator = emptyStepEvaluator{f.evaluator}
		_, err := (&search.Interleaved{BeamSize: 10}).Search(ctx, req)
		assert.ErrorIs(t, err, eval.ErrInvalidState)
	})
}

// emptyStepEvaluator produces a zero State from every step.
type emptyStepEvaluator struct{ eval.Evaluator }

func (emptyStepEvaluator) Continue(_ eval.State, out []eval.State) ([]eval.State, error) {
	return append(out, eval.State{}), nil
}

func TestStrategyNames(t *testing.T) {
	assert.Equal(t, "interleaved", (&search.Interleaved{}).Name())
	assert.Equal(t, "pipelined", (&search.Pipelined{}).Name())
}
