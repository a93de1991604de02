package shiftreduce

import (
	"strings"

	"github.com/jayantk/jklol-sub002/chart"
	"github.com/jayantk/jklol-sub002/queue"
)

// Moves applies shift-reduce moves for one sentence. It owns two beam-sized
// scratch queues and is not safe for concurrent use.
type Moves struct {
	grammar Grammar
	skipper Skipper
	chart   *chart.Chart
	lower   []string

	tmp1 *queue.Kbest[*Stack]
	tmp2 *queue.Kbest[*Stack]
}

// NewMoves binds the moves to a grammar and a chart initialised by it.
// beamSize bounds each round of reductions inside ShiftReduce.
func NewMoves(g Grammar, c *chart.Chart, beamSize int) *Moves {
	lower := make([]string, c.Len())
	for i, w := range c.Words() {
		lower[i] = strings.ToLower(w)
	}
	skipper, _ := g.(Skipper)
	return &Moves{
		grammar: g,
		skipper: skipper,
		chart:   c,
		lower:   lower,
		tmp1:    queue.NewKbest[*Stack](beamSize),
		tmp2:    queue.NewKbest[*Stack](beamSize),
	}
}

// Chart returns the chart the moves write to.
func (m *Moves) Chart() *chart.Chart { return m.chart }

// CanSkip reports whether the grammar allows skipping words.
func (m *Moves) CanSkip() bool { return m.skipper != nil }

// shiftable reports whether e may be pushed by a shift: an unevaluated
// terminal that does not skip any words.
func shiftable(e chart.Entry) bool {
	return e.Terminal && e.Info == nil && !e.Skipped()
}

// Shift pushes every terminal that starts at the word after the top of s.
// Lexical entries may span several words.
func (m *Moves) Shift(s *Stack, out queue.SearchQueue[*Stack]) {
	cur := s.End() + 1
	for end := cur; end < m.chart.Len(); end++ {
		for _, r := range m.chart.Refs(cur, end) {
			e := m.chart.Entry(r)
			if !shiftable(e) {
				continue
			}
			next := s.Push(r, e, m.chart.Prob(r), false)
			out.Offer(next, next.TotalProb)
		}
	}
}

// Reduce combines the top two entries of s.
func (m *Moves) Reduce(s *Stack, out queue.SearchQueue[*Stack]) {
	if s.Size < 2 {
		return
	}
	prev := s.Previous
	base := m.chart.Prob(prev.Ref) * m.chart.Prob(s.Ref)
	for _, c := range m.grammar.Combine(prev.Entry, s.Entry) {
		e := c.Entry
		e.Terminal = false
		e.Info = nil
		e.Span = chart.Span{Start: prev.Start(), End: s.End()}
		e.Left = prev.Ref
		e.Right = s.Ref

		r, ok := m.chart.Add(e, base*c.Prob)
		if !ok {
			continue
		}
		next := prev.Previous.Push(r, e, m.chart.Prob(r), false)
		out.Offer(next, next.TotalProb)
	}
}

// ShiftReduce shifts and then applies reductions until none remain,
// offering every intermediate stack to out.
func (m *Moves) ShiftReduce(s *Stack, out queue.SearchQueue[*Stack]) {
	m.tmp1.Clear()
	m.Shift(s, m.tmp1)

	cur, next := m.tmp1, m.tmp2
	for cur.Len() > 0 {
		next.Clear()
		for st, score := range cur.All() {
			out.Offer(st, score)
			m.Reduce(st, next)
		}
		cur, next = next, cur
	}
}

// Skip extends the top entry of s over the next word.
func (m *Moves) Skip(s *Stack, out queue.SearchQueue[*Stack]) {
	if m.skipper == nil || s.IsEmpty() || s.End() >= m.chart.Len()-1 {
		return
	}
	word := s.End() + 1
	r, ok := m.skipEntry(s.Ref, word, m.skipper.SkipProb(m.lower[word]))
	if !ok {
		return
	}
	next := s.Previous.Push(r, m.chart.Entry(r), m.chart.Prob(r), false)
	out.Offer(next, next.TotalProb)
}

// skipEntry adds a copy of the referenced entry whose span ends at end.
// For non-terminals the rightmost terminal is extended.
func (m *Moves) skipEntry(r chart.Ref, end int, skipProb float64) (chart.Ref, bool) {
	e := m.chart.Entry(r)
	prob := m.chart.Prob(r) * skipProb
	if e.Terminal {
		return m.chart.Add(e.WithSpan(chart.Span{Start: e.Span.Start, End: end}), prob)
	}

	right, ok := m.skipEntry(e.Right, end, skipProb)
	if !ok {
		return chart.Ref{}, false
	}
	next := e.WithRight(right).WithSpan(chart.Span{Start: e.Span.Start, End: end})
	return m.chart.Add(next, prob)
}

// ShiftSkipLeft skips the first k words and shifts the terminals that start
// at word k onto the empty stack.
func (m *Moves) ShiftSkipLeft(k int, out queue.SearchQueue[*Stack]) {
	if k == 0 || k >= m.chart.Len() || m.skipper == nil {
		return
	}
	skipProb := 1.0
	for _, w := range m.lower[:k] {
		skipProb *= m.skipper.SkipProb(w)
	}

	empty := Empty()
	for end := k; end < m.chart.Len(); end++ {
		for _, r := range m.chart.Refs(k, end) {
			e := m.chart.Entry(r)
			if !shiftable(e) {
				continue
			}
			skipped, ok := m.chart.Add(e.WithSpan(chart.Span{Start: 0, End: end}), m.chart.Prob(r)*skipProb)
			if !ok {
				continue
			}
			next := empty.Push(skipped, m.chart.Entry(skipped), m.chart.Prob(skipped), false)
			out.Offer(next, next.TotalProb)
		}
	}
}

// Root completes a single-entry stack covering the whole sentence: the top
// entry and its unary variants are scored as roots and pushed with the
// root flag set.
func (m *Moves) Root(s *Stack, out queue.SearchQueue[*Stack]) {
	if s.Size != 1 || s.End() != m.chart.Len()-1 || s.IncludesRoot {
		return
	}

	var roots []chart.Ref
	if r, ok := m.chart.Add(s.Entry, s.TotalProb); ok {
		roots = append(roots, r)
	}
	for _, c := range m.grammar.Unary(s.Entry) {
		e := c.Entry
		e.Span = s.Entry.Span
		if r, ok := m.chart.Add(e, s.TotalProb*c.Prob); ok {
			roots = append(roots, r)
		}
	}

	for _, r := range roots {
		e := m.chart.Entry(r)
		scored, ok := m.chart.Add(e, m.chart.Prob(r)*m.grammar.RootProb(e))
		if !ok {
			continue
		}
		next := s.Previous.Push(scored, e, m.chart.Prob(scored), true)
		out.Offer(next, next.TotalProb)
	}
}

// Decode materialises the derivation rooted at r.
func (m *Moves) Decode(r chart.Ref) *Parse {
	return Decode(m.chart, r)
}
