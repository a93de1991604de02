package arith_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayantk/jklol-sub002/arith"
	"github.com/jayantk/jklol-sub002/eval"
	"github.com/jayantk/jklol-sub002/shiftreduce"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"N", "N"},
		{"N\\N", "N\\N"},
		{"(N\\N)/N", "(N\\N)/N"},
		{"N\\N/N", "(N\\N)/N"},
		{"N/(N/N)", "N/(N/N)"},
		{" ( N\\N ) / N ", "(N\\N)/N"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := arith.ParseCategory(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.String())
		})
	}

	t.Run("structure", func(t *testing.T) {
		c, err := arith.ParseCategory("(N\\N)/N")
		require.NoError(t, err)
		assert.False(t, c.IsAtomic())
		assert.Equal(t, arith.Forward, c.Dir())
		assert.Equal(t, arith.Backward, c.Result().Dir())
		assert.True(t, c.Arg().Equal(arith.Atom("N")))
	})

	for _, bad := range []string{"", "(N", "N/", "N)", "/N"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := arith.ParseCategory(bad)
			assert.Error(t, err)
		})
	}
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1", "1"},
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{`\y.\x.x + y`, `(\y.(\x.(x + y)))`},
		{"amb(1:0.6, 2:0.4)", "amb(1:0.6,2:0.4)"},
		{"amb(-1:1)", "amb(-1:1)"},
		{"x", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e, err := arith.ParseExpr(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String())
		})
	}

	for _, bad := range []string{"", "1 +", "amb(1)", "amb(1:x)", "(1", "1 2", "#", `\1.x`} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := arith.ParseExpr(bad)
			assert.Error(t, err)
		})
	}
}

func TestWorld(t *testing.T) {
	w, err := arith.ParseWorld("y=2, x=1")
	require.NoError(t, err)
	assert.Equal(t, "{x=1,y=2}", w.String())
	assert.Equal(t, 2, w.Len())

	w2 := w.With("z", 3)
	_, ok := w.Get("z")
	assert.False(t, ok, "With must not modify the receiver")
	v, ok := w2.Get("z")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	empty, err := arith.ParseWorld("")
	require.NoError(t, err)
	assert.Equal(t, "{}", empty.String())

	_, err = arith.ParseWorld("x")
	assert.Error(t, err)
	_, err = arith.ParseWorld("x=one")
	assert.Error(t, err)

	src := map[string]int{"a": 1}
	nw := arith.NewWorld(src)
	src["a"] = 2
	v, _ = nw.Get("a")
	assert.Equal(t, 1, v)
}

func TestLexicon(t *testing.T) {
	lex := arith.DefaultLexicon()
	require.NotEmpty(t, lex.Entries)
	g, err := arith.NewGrammar(lex)
	require.NoError(t, err)
	assert.Len(t, g.Lexemes(), len(lex.Entries))
	assert.Same(t, lex, g.Lexicon())

	data, err := lex.Marshal()
	require.NoError(t, err)
	again, err := arith.ParseLexicon(data)
	require.NoError(t, err)
	assert.Equal(t, lex, again)

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := arith.ParseLexicon([]byte("entries: ["))
		assert.ErrorIs(t, err, arith.ErrInvalidLexicon)
	})

	bad := []arith.LexEntry{
		{Word: "", Category: "N", Semantics: "1", Prob: 1},
		{Word: "a", Category: "N/", Semantics: "1", Prob: 1},
		{Word: "a", Category: "N", Semantics: "1 +", Prob: 1},
		{Word: "a", Category: "N", Semantics: "1", Prob: 0},
	}
	for _, e := range bad {
		_, err := arith.NewGrammar(&arith.Lexicon{Entries: []arith.LexEntry{e}})
		assert.ErrorIs(t, err, arith.ErrInvalidLexicon, "%+v", e)
	}

	_, err = arith.NewGrammar(&arith.Lexicon{Unary: []arith.UnaryRule{{From: "(", To: "S", Prob: 1}}})
	assert.ErrorIs(t, err, arith.ErrInvalidLexicon)
}

func evaluate(t *testing.T, ev *arith.Evaluator, src string, world arith.World) []eval.State {
	t.Helper()
	e, err := arith.ParseExpr(src)
	require.NoError(t, err)
	states, err := eval.EvaluateBeam(ev, e, world, nil, 10)
	require.NoError(t, err)
	return states
}

func denotations(states []eval.State) []any {
	out := make([]any, len(states))
	for i, s := range states {
		out[i], _ = s.Denotation()
	}
	return out
}

func probs(states []eval.State) []float64 {
	out := make([]float64, len(states))
	for i, s := range states {
		out[i] = s.Prob()
	}
	return out
}

func TestEvaluator(t *testing.T) {
	t.Run("deterministic in one step", func(t *testing.T) {
		ev := arith.NewEvaluator()
		states := evaluate(t, ev, "1 + 2 * 3", arith.World{})
		assert.Equal(t, []any{7}, denotations(states))
		assert.Equal(t, []float64{1}, probs(states))
		assert.Equal(t, arith.Stats{Continuations: 1, Steps: 1}, ev.Stats())
	})

	t.Run("amb", func(t *testing.T) {
		ev := arith.NewEvaluator()
		states := evaluate(t, ev, "amb(1:0.6, 2:0.4) * 10", arith.World{})
		assert.Equal(t, []any{10, 20}, denotations(states))
		assert.InDeltaSlice(t, []float64{0.6, 0.4}, probs(states), 1e-12)
		assert.Equal(t, int64(1), ev.Stats().ChoicePoints)
		assert.Equal(t, int64(3), ev.Stats().Steps)
	})

	t.Run("world variable resolved once", func(t *testing.T) {
		ev := arith.NewEvaluator(arith.Choice{Value: 1, Prob: 0.7}, arith.Choice{Value: 2, Prob: 0.3})
		states := evaluate(t, ev, "x + x", arith.World{})
		assert.Equal(t, []any{2, 4}, denotations(states))
		assert.InDeltaSlice(t, []float64{0.7, 0.3}, probs(states), 1e-12)
		assert.Equal(t, int64(1), ev.Stats().ChoicePoints)

		w, ok := states[0].Diagram().(arith.World)
		require.True(t, ok)
		assert.Equal(t, "{x=1}", w.String())
	})

	t.Run("world variable bound", func(t *testing.T) {
		ev := arith.NewEvaluator(arith.Choice{Value: 1, Prob: 1})
		states := evaluate(t, ev, "x + x", arith.NewWorld(map[string]int{"x": 3}))
		assert.Equal(t, []any{6}, denotations(states))
		assert.Zero(t, ev.Stats().ChoicePoints)
	})

	t.Run("lambda", func(t *testing.T) {
		ev := arith.NewEvaluator()
		e := arith.App{Fn: mustExpr(t, `\x.x * x`), Arg: arith.Int(4)}
		states, err := eval.EvaluateBeam(ev, e, arith.World{}, nil, 1)
		require.NoError(t, err)
		assert.Equal(t, []any{16}, denotations(states))
	})

	t.Run("cost filters denotations", func(t *testing.T) {
		ev := arith.NewEvaluator()
		e := mustExpr(t, "amb(1:0.6, 2:0.4)")
		states, err := eval.EvaluateBeam(ev, e, arith.World{}, func(s eval.State) float64 {
			if v, ok := s.Denotation(); ok && v == 1 {
				return math.Inf(-1)
			}
			return 0
		}, 10)
		require.NoError(t, err)
		assert.Equal(t, []any{2}, denotations(states))
	})

	t.Run("errors", func(t *testing.T) {
		ev := arith.NewEvaluator()
		_, err := eval.EvaluateBeam(ev, mustExpr(t, "x"), arith.World{}, nil, 10)
		assert.ErrorIs(t, err, arith.ErrUnbound)

		_, err = eval.EvaluateBeam(ev, mustExpr(t, `(\x.x) + 1`), arith.World{}, nil, 10)
		assert.ErrorIs(t, err, arith.ErrType)

		_, err = eval.EvaluateBeam(ev, arith.App{Fn: arith.Int(1), Arg: arith.Int(2)}, arith.World{}, nil, 10)
		assert.ErrorIs(t, err, arith.ErrType)

		_, err = ev.Continue(eval.Denote(1, arith.NewEnv(), nil, 1), nil)
		assert.ErrorIs(t, err, eval.ErrInvalidState)
	})

	t.Run("reset", func(t *testing.T) {
		ev := arith.NewEvaluator()
		evaluate(t, ev, "1", arith.World{})
		ev.ResetStats()
		assert.Equal(t, arith.Stats{}, ev.Stats())
	})
}

func mustExpr(t *testing.T, src string) arith.Expr {
	t.Helper()
	e, err := arith.ParseExpr(src)
	require.NoError(t, err)
	return e
}

func TestEnv(t *testing.T) {
	top := arith.NewEnv()
	inner := top.With("x", 1).With("y", 2).With("x", 3)
	v, ok := inner.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	_, ok = top.Lookup("x")
	assert.False(t, ok)

	ext, ok := top.Extend().(*arith.Env)
	require.True(t, ok)
	assert.Equal(t, 1, ext.Depth())
	assert.Equal(t, 0, top.Depth())
}

func TestGrammar(t *testing.T) {
	g, err := arith.NewGrammar(arith.DefaultLexicon())
	require.NoError(t, err)

	parses, err := shiftreduce.BeamSearch(g, []string{"One", "plus", "two"}, shiftreduce.BeamOptions{BeamSize: 10})
	require.NoError(t, err)
	require.NotEmpty(t, parses)

	best := parses[0]
	assert.InDelta(t, 1.0, best.SubtreeProb(), 1e-12)
	lf, ok := g.LogicalForm(best)
	require.True(t, ok)
	assert.Equal(t, `(((\y.(\x.(x + y))) 2) 1)`, lf.(arith.Expr).String())

	ev := arith.NewEvaluator()
	states, err := eval.EvaluateBeam(ev, lf, arith.World{}, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, []any{3}, denotations(states))

	for _, p := range parses[1:] {
		assert.Less(t, p.SubtreeProb(), best.SubtreeProb(), "skipping words costs probability")
	}
}

func TestGrammarRoots(t *testing.T) {
	lex := &arith.Lexicon{
		Entries: []arith.LexEntry{
			{Word: "one", Category: "N", Semantics: "1", Prob: 1},
			{Word: "twice", Category: "N/N", Semantics: `\x.x * 2`, Prob: 1},
		},
		Unary: []arith.UnaryRule{{From: "N", To: "S", Prob: 0.5}},
		Roots: map[string]float64{"S": 1},
	}
	g, err := arith.NewGrammar(lex)
	require.NoError(t, err)

	parses, err := shiftreduce.BeamSearch(g, []string{"twice", "one"}, shiftreduce.BeamOptions{BeamSize: 10})
	require.NoError(t, err)
	require.Len(t, parses, 1)
	assert.InDelta(t, 0.5, parses[0].SubtreeProb(), 1e-12)
	assert.Equal(t, "S", parses[0].Syntax.(*arith.Category).String())

	lf, ok := g.LogicalForm(parses[0])
	require.True(t, ok)
	assert.Equal(t, `((\x.(x * 2)) 1)`, lf.(arith.Expr).String())
}
