package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func terminal(syntax string, start, end int) Entry {
	span := Span{Start: start, End: end}
	return Entry{Syntax: syntax, Terminal: true, Span: span, Trigger: span}
}

func TestChartAdd(t *testing.T) {
	c := New([]string{"a", "b", "c"})

	r1, ok := c.Add(terminal("N", 0, 0), 0.5)
	require.True(t, ok)
	r2, ok := c.Add(terminal("V", 0, 0), 0.25)
	require.True(t, ok)

	assert.Equal(t, Ref{Start: 0, End: 0, Index: 0}, r1)
	assert.Equal(t, Ref{Start: 0, End: 0, Index: 1}, r2)
	assert.Equal(t, 2, c.NumEntries(0, 0))
	assert.Equal(t, 0, c.NumEntries(1, 2))
	assert.Equal(t, "V", c.Entry(r2).Syntax)
	assert.Equal(t, 0.25, c.Prob(r2))
	assert.Equal(t, []Ref{r1, r2}, c.Refs(0, 0))
}

func TestChartAppendOnly(t *testing.T) {
	c := New([]string{"a"})
	r, _ := c.Add(terminal("N", 0, 0), 1)

	evaluated := c.Entry(r).WithInfo("denotation")
	r2, ok := c.Add(evaluated, 0.6)
	require.True(t, ok)

	assert.NotEqual(t, r, r2)
	assert.Nil(t, c.Entry(r).Info, "original entry is not rewritten")
	assert.Equal(t, "denotation", c.Entry(r2).Info)
	assert.False(t, c.IsEvaluated(r))
	assert.True(t, c.IsEvaluated(r2))
	assert.Equal(t, Stats{Entries: 2, Evaluated: 1}, c.Stats())
}

func TestChartRejects(t *testing.T) {
	t.Run("zero probability", func(t *testing.T) {
		c := New([]string{"a"})
		_, ok := c.Add(terminal("N", 0, 0), 0)
		assert.False(t, ok)
		assert.Equal(t, 0, c.NumEntries(0, 0))
	})

	t.Run("out of range span", func(t *testing.T) {
		c := New([]string{"a"})
		_, ok := c.Add(terminal("N", 0, 1), 1)
		assert.False(t, ok)
	})

	t.Run("entry cost", func(t *testing.T) {
		c := New([]string{"a", "b"}, func(o *Options) {
			o.EntryCost = func(e Entry, words []string) float64 {
				if e.Syntax == "bad" {
					return math.Inf(-1)
				}
				return math.Log(0.5)
			}
		})
		_, ok := c.Add(terminal("bad", 0, 0), 1)
		assert.False(t, ok)

		r, ok := c.Add(terminal("good", 1, 1), 0.8)
		require.True(t, ok)
		assert.InDelta(t, 0.4, c.Prob(r), 1e-12)
	})
}

func TestEntrySkipped(t *testing.T) {
	e := terminal("N", 1, 1)
	assert.False(t, e.Skipped())
	assert.True(t, e.WithSpan(Span{Start: 0, End: 1}).Skipped())
	assert.Equal(t, 2, Span{Start: 3, End: 4}.Len())
}
