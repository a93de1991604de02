package search_test

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayantk/jklol-sub002/arith"
	"github.com/jayantk/jklol-sub002/chart"
	"github.com/jayantk/jklol-sub002/search"
)

type fixture struct {
	grammar   *arith.Grammar
	evaluator *arith.Evaluator
}

func newFixture(t *testing.T, lex *arith.Lexicon) fixture {
	t.Helper()
	g, err := arith.NewGrammar(lex)
	require.NoError(t, err)
	return fixture{grammar: g, evaluator: arith.NewEvaluator(lex.Domain...)}
}

func (f fixture) request(words ...string) search.Request {
	return search.Request{
		Grammar:   f.grammar,
		Evaluator: f.evaluator,
		Words:     words,
		Diagram:   arith.World{},
	}
}

func entry(word, category, semantics string, prob float64) arith.LexEntry {
	return arith.LexEntry{Word: word, Category: category, Semantics: semantics, Prob: prob}
}

// sumLexicon has no skipping and a two-valued variable domain with distinct
// probabilities, so that complete derivations never tie.
func sumLexicon() *arith.Lexicon {
	return &arith.Lexicon{
		Entries: []arith.LexEntry{
			entry("one", "N", "1", 1),
			entry("two", "N", "2", 1),
			entry("x", "N", "x", 1),
			entry("one_or_two", "N", "amb(1:0.6, 2:0.4)", 1),
			entry("plus", `(N\N)/N`, `\y.\x.x + y`, 1),
			entry("pick", "N", "amb(3:1) + amb(1:0.6, 2:0.4)", 1),
		},
		Domain: []arith.Choice{{Value: 1, Prob: 0.7}, {Value: 2, Prob: 0.3}},
	}
}

// tieLexicon yields derivations of equal probability, so result order is
// decided by tie-breaking alone.
func tieLexicon() *arith.Lexicon {
	return &arith.Lexicon{
		Entries: []arith.LexEntry{
			entry("a", "N", "1", 0.5),
			entry("a", "N", "2", 0.5),
			entry("b", "N", "amb(1:0.5, 2:0.5)", 1),
		},
	}
}

type summary struct {
	Denotation any
	Prob       float64
	World      string
	Form       string
}

func summarize(results []search.Result) []summary {
	out := make([]summary, len(results))
	for i, r := range results {
		out[i] = summary{
			Denotation: r.Denotation,
			Prob:       r.Prob,
			World:      fmt.Sprint(r.Diagram),
			Form:       r.Parse.String(),
		}
	}
	return out
}

func denotations(results []search.Result) []any {
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r.Denotation
	}
	return out
}

func probs(results []search.Result) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.Prob
	}
	return out
}

var approx = cmpopts.EquateApprox(0, 1e-12)

// recorder counts observer events.
type recorder struct {
	rounds     atomic.Int64
	maxBeam    atomic.Int64
	evaluates  atomic.Int64
	lookaheads atomic.Int64
	discards   atomic.Int64
	chart      atomic.Pointer[chart.Stats]
}

func (r *recorder) OnRound(_, beam int) {
	r.rounds.Add(1)
	for {
		cur := r.maxBeam.Load()
		if int64(beam) <= cur || r.maxBeam.CompareAndSwap(cur, int64(beam)) {
			return
		}
	}
}

func (r *recorder) OnEvaluate(int)        { r.evaluates.Add(1) }
func (r *recorder) OnLookahead()          { r.lookaheads.Add(1) }
func (r *recorder) OnDiscard()            { r.discards.Add(1) }
func (r *recorder) OnChart(s chart.Stats) { r.chart.Store(&s) }

func rejectDenotation(v any) search.Cost {
	return search.FilterCost(func(s *search.State) bool {
		d, ok := s.Denotation()
		return !ok || d != v
	})
}

func run(t *testing.T, s search.Strategy, req search.Request) []search.Result {
	t.Helper()
	results, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	return results
}

func TestFilterCost(t *testing.T) {
	keep := search.FilterCost(func(*search.State) bool { return true })
	drop := search.FilterCost(func(*search.State) bool { return false })
	assert.Zero(t, keep(nil))
	assert.True(t, math.IsInf(drop(nil), -1))
}
