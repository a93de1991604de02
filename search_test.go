package gparse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayantk/jklol-sub002/arith"
	"github.com/jayantk/jklol-sub002/search"
)

func TestSearchBuilder(t *testing.T) {
	p := newTestParser(t, ambiguousLexicon())
	ctx := context.Background()

	t.Run("Execute", func(t *testing.T) {
		results := p.Search("a").MustExecute(ctx)
		require.Len(t, results, 2)
		assert.Equal(t, 1, results[0].Denotation)
		assert.Equal(t, 2, results[1].Denotation)
	})

	t.Run("Limit", func(t *testing.T) {
		results, err := p.Search("a").Limit(1).Execute(ctx)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 1, results[0].Denotation)
	})

	t.Run("First", func(t *testing.T) {
		best, err := p.Search("a").First(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, best.Denotation)

		_, err = p.Search("a", "a").First(ctx)
		assert.ErrorIs(t, err, ErrNoParse)
	})

	t.Run("CountAndExists", func(t *testing.T) {
		n, err := p.Search("a").Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		ok, err := p.Search("a", "a").Exists(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = p.Search("y").Count(ctx)
		assert.ErrorIs(t, err, arith.ErrUnbound)
		_, err = p.Search("y").Exists(ctx)
		assert.ErrorIs(t, err, arith.ErrUnbound)
	})

	t.Run("Filter", func(t *testing.T) {
		results, err := p.Search("a").
			Filter(func(s *search.State) bool {
				v, ok := s.Denotation()
				return !ok || v != 1
			}).
			Execute(ctx)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 2, results[0].Denotation)
	})

	t.Run("CostAndFilter", func(t *testing.T) {
		// The cost reverses the order; the filter still applies.
		prefer2 := func(s *search.State) float64 {
			if v, ok := s.Denotation(); ok && v == 2 {
				return 2
			}
			return 0
		}
		results, err := p.Search("a").Cost(prefer2).Execute(ctx)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, 2, results[0].Denotation)
		assert.Greater(t, results[0].Score, results[1].Score)

		results, err = p.Search("a").
			Cost(prefer2).
			Filter(func(s *search.State) bool {
				v, ok := s.Denotation()
				return !ok || v != 2
			}).
			Execute(ctx)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 1, results[0].Denotation)
	})

	t.Run("Stream", func(t *testing.T) {
		var got []any
		for r, err := range p.Search("a").Stream(ctx) {
			require.NoError(t, err)
			got = append(got, r.Denotation)
			break
		}
		assert.Equal(t, []any{1}, got)

		var errs int
		for _, err := range p.Search("y").Stream(ctx) {
			assert.ErrorIs(t, err, arith.ErrUnbound)
			errs++
		}
		assert.Equal(t, 1, errs)
	})

	t.Run("MustExecutePanics", func(t *testing.T) {
		assert.Panics(t, func() { p.Search().MustExecute(ctx) })
	})

	t.Run("Diagram", func(t *testing.T) {
		p := newTestParser(t, arith.DefaultLexicon())
		best, err := p.Search("two", "times", "x").Diagram(arith.World{}.With("x", 5)).First(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, best.Denotation)
	})
}
