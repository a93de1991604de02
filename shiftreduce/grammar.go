package shiftreduce

import (
	"fmt"

	"github.com/jayantk/jklol-sub002/chart"
)

// Candidate is an entry proposed by a grammar together with the local
// probability of the rule that produced it.
type Candidate struct {
	Entry chart.Entry
	Prob  float64
}

// Grammar supplies the entries and rules used by the moves.
type Grammar interface {
	// InitializeChart adds the terminal entries for every span of c.
	InitializeChart(c *chart.Chart) error
	// Combine returns the entries built from adjacent left and right
	// entries. Spans and child references are filled in by the caller.
	Combine(left, right chart.Entry) []Candidate
	// Unary returns copies of e with a root unary rule applied.
	Unary(e chart.Entry) []Candidate
	// RootProb scores e as the root of a complete derivation.
	RootProb(e chart.Entry) float64
}

// Skipper is implemented by grammars that allow words to be skipped.
type Skipper interface {
	// SkipProb returns the probability of skipping a lowercased word.
	SkipProb(word string) float64
}

// LogicalFormer is implemented by grammars whose parses have logical forms.
type LogicalFormer interface {
	// LogicalForm returns the logical form of p, or false if it has none.
	LogicalForm(p *Parse) (any, bool)
}

// NewChart creates a chart over words and fills it with g's terminals.
func NewChart(g Grammar, words []string, cost chart.EntryCost) (*chart.Chart, error) {
	c := chart.New(words, func(o *chart.Options) {
		o.EntryCost = cost
	})
	if err := g.InitializeChart(c); err != nil {
		return nil, fmt.Errorf("initialize chart: %w", err)
	}
	return c, nil
}
