package shiftreduce

import (
	"errors"
	"log/slog"

	"github.com/jayantk/jklol-sub002/chart"
	"github.com/jayantk/jklol-sub002/queue"
)

// ErrInvalidBeamSize is returned when a beam size is not positive.
var ErrInvalidBeamSize = errors.New("beam size must be positive")

// BeamOptions configures BeamSearch.
type BeamOptions struct {
	// BeamSize bounds each stack-size segment of the beam and the number of
	// returned parses.
	BeamSize int
	// MaxStackSize bounds the stack depth. Values <= 0 use the number of
	// words plus one.
	MaxStackSize int
	// EntryCost filters chart entries.
	EntryCost chart.EntryCost
	// Logger receives per-round debug output. Nil disables it.
	Logger *slog.Logger
}

// MaxStack returns the effective maximum stack size for n words.
func MaxStack(maxStackSize, n int) int {
	if maxStackSize > 0 {
		return maxStackSize
	}
	return n + 1
}

// BeamSearch returns the highest-probability complete parses of words,
// best first.
func BeamSearch(g Grammar, words []string, opts BeamOptions) ([]*Parse, error) {
	if opts.BeamSize <= 0 {
		return nil, ErrInvalidBeamSize
	}
	c, err := NewChart(g, words, opts.EntryCost)
	if err != nil {
		return nil, err
	}
	m := NewMoves(g, c, opts.BeamSize)

	maxStack := MaxStack(opts.MaxStackSize, len(words))
	heap := queue.NewSegregated(maxStack, opts.BeamSize, SizeKey(maxStack))
	heap.Offer(Empty(), 1)
	finished := queue.NewKbest[*Stack](opts.BeamSize)

	beam := make([]*Stack, 0, opts.BeamSize*maxStack)
	for round := 0; heap.Len() > 0 || round < len(words); round++ {
		beam = heap.AppendItems(beam[:0])
		heap.Clear()
		if opts.Logger != nil {
			opts.Logger.Debug("syntactic round", "round", round, "beam", len(beam))
		}

		for _, s := range beam {
			m.ShiftReduce(s, heap)
			m.Skip(s, heap)
			m.Root(s, finished)
		}
		m.ShiftSkipLeft(round, heap)
	}

	scored := finished.Drain()
	parses := make([]*Parse, len(scored))
	for i, s := range scored {
		parses[i] = m.Decode(s.Item.Ref)
	}
	return parses, nil
}
