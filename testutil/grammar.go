package testutil

import (
	"fmt"
	"strings"

	"github.com/jayantk/jklol-sub002/chart"
	"github.com/jayantk/jklol-sub002/shiftreduce"
)

// Lexeme is a lexical entry of a scripted Grammar.
type Lexeme struct {
	// Phrase is one or more space separated lowercase words.
	Phrase string
	Syntax string
	Prob   float64
	// Value is the logical form of the entry.
	Value any
}

// Rule combines adjacent Left and Right categories into Result.
type Rule struct {
	Left, Right, Result string
	Prob                float64
}

// UnaryRule rewrites From into To at the root.
type UnaryRule struct {
	From, To string
	Prob     float64
}

// Grammar is a table-driven shiftreduce.Grammar with string categories.
type Grammar struct {
	Lexicon []Lexeme
	Rules   []Rule
	Unaries []UnaryRule
	// Roots maps a root category to its probability. Nil scores every
	// root 1; a missing category scores 0.
	Roots map[string]float64
}

var (
	_ shiftreduce.Grammar       = (*Grammar)(nil)
	_ shiftreduce.LogicalFormer = (*Grammar)(nil)
	_ shiftreduce.Skipper       = (*SkippingGrammar)(nil)
)

// InitializeChart implements shiftreduce.Grammar.
func (g *Grammar) InitializeChart(c *chart.Chart) error {
	words := c.Words()
	for i := range g.Lexicon {
		lex := &g.Lexicon[i]
		phrase := strings.Fields(lex.Phrase)
		if len(phrase) == 0 {
			return fmt.Errorf("lexeme %d: empty phrase", i)
		}
		for start := 0; start+len(phrase) <= len(words); start++ {
			if !matches(words[start:start+len(phrase)], phrase) {
				continue
			}
			span := chart.Span{Start: start, End: start + len(phrase) - 1}
			c.Add(chart.Entry{
				Syntax:   lex.Syntax,
				Terminal: true,
				Lexicon:  lex,
				Span:     span,
				Trigger:  span,
			}, lex.Prob)
		}
	}
	return nil
}

func matches(words, phrase []string) bool {
	for i := range phrase {
		if !strings.EqualFold(words[i], phrase[i]) {
			return false
		}
	}
	return true
}

// Combine implements shiftreduce.Grammar.
func (g *Grammar) Combine(left, right chart.Entry) []shiftreduce.Candidate {
	var out []shiftreduce.Candidate
	for i := range g.Rules {
		r := &g.Rules[i]
		if r.Left == left.Syntax && r.Right == right.Syntax {
			out = append(out, shiftreduce.Candidate{
				Entry: chart.Entry{Syntax: r.Result, Combinator: r},
				Prob:  r.Prob,
			})
		}
	}
	return out
}

// Unary implements shiftreduce.Grammar.
func (g *Grammar) Unary(e chart.Entry) []shiftreduce.Candidate {
	var out []shiftreduce.Candidate
	for i := range g.Unaries {
		u := &g.Unaries[i]
		if u.From != e.Syntax {
			continue
		}
		next := e
		next.Syntax = u.To
		next.RootUnary = &chart.Unary{Rule: u, Syntax: u.To}
		out = append(out, shiftreduce.Candidate{Entry: next, Prob: u.Prob})
	}
	return out
}

// RootProb implements shiftreduce.Grammar.
func (g *Grammar) RootProb(e chart.Entry) float64 {
	if g.Roots == nil {
		return 1
	}
	syntax, _ := e.Syntax.(string)
	return g.Roots[syntax]
}

// LogicalForm implements shiftreduce.LogicalFormer. Terminals use their
// lexeme value; non-terminals join their children as "(left right)".
func (g *Grammar) LogicalForm(p *shiftreduce.Parse) (any, bool) {
	if p.IsTerminal() {
		lex, ok := p.Entry.Lexicon.(*Lexeme)
		if !ok || lex.Value == nil {
			return nil, false
		}
		return lex.Value, true
	}
	l, ok := g.LogicalForm(p.Left)
	if !ok {
		return nil, false
	}
	r, ok := g.LogicalForm(p.Right)
	if !ok {
		return nil, false
	}
	return fmt.Sprintf("(%v %v)", l, r), true
}

// SkippingGrammar is a Grammar that skips every word with one probability.
type SkippingGrammar struct {
	*Grammar
	Skip float64
}

// SkipProb implements shiftreduce.Skipper.
func (g *SkippingGrammar) SkipProb(string) float64 { return g.Skip }
