package arith

import (
	"fmt"
	"strings"

	"github.com/jayantk/jklol-sub002/chart"
	"github.com/jayantk/jklol-sub002/shiftreduce"
)

var (
	_ shiftreduce.Grammar       = (*Grammar)(nil)
	_ shiftreduce.Skipper       = (*Grammar)(nil)
	_ shiftreduce.LogicalFormer = (*Grammar)(nil)
)

type unaryRule struct {
	from, to *Category
	prob     float64
}

// Grammar is a categorial grammar with forward and backward application.
type Grammar struct {
	lexicon *Lexicon
	lexemes []*Lexeme
	unary   []unaryRule
	roots   map[string]float64
	skip    float64
}

// NewGrammar compiles a lexicon.
func NewGrammar(lex *Lexicon) (*Grammar, error) {
	lexemes, err := lex.compile()
	if err != nil {
		return nil, err
	}
	g := &Grammar{lexicon: lex, lexemes: lexemes, roots: lex.Roots, skip: lex.Skip}
	for _, u := range lex.Unary {
		from, err := ParseCategory(u.From)
		if err != nil {
			return nil, fmt.Errorf("%w: unary rule: %w", ErrInvalidLexicon, err)
		}
		to, err := ParseCategory(u.To)
		if err != nil {
			return nil, fmt.Errorf("%w: unary rule: %w", ErrInvalidLexicon, err)
		}
		g.unary = append(g.unary, unaryRule{from: from, to: to, prob: u.Prob})
	}
	return g, nil
}

// Lexicon returns the lexicon the grammar was compiled from.
func (g *Grammar) Lexicon() *Lexicon { return g.lexicon }

// Lexemes returns the compiled entries.
func (g *Grammar) Lexemes() []*Lexeme { return g.lexemes }

// InitializeChart implements shiftreduce.Grammar.
func (g *Grammar) InitializeChart(c *chart.Chart) error {
	words := c.Words()
	for _, lex := range g.lexemes {
		n := len(lex.Words)
		for start := 0; start+n <= len(words); start++ {
			if !matchWords(words[start:start+n], lex.Words) {
				continue
			}
			span := chart.Span{Start: start, End: start + n - 1}
			c.Add(chart.Entry{
				Syntax:   lex.Category,
				Terminal: true,
				Lexicon:  lex,
				Span:     span,
				Trigger:  span,
			}, lex.Prob)
		}
	}
	return nil
}

func matchWords(words, phrase []string) bool {
	for i, w := range phrase {
		if strings.ToLower(words[i]) != w {
			return false
		}
	}
	return true
}

// Combine implements shiftreduce.Grammar.
func (g *Grammar) Combine(left, right chart.Entry) []shiftreduce.Candidate {
	l, ok := left.Syntax.(*Category)
	if !ok {
		return nil
	}
	r, ok := right.Syntax.(*Category)
	if !ok {
		return nil
	}
	var out []shiftreduce.Candidate
	if l.Dir() == Forward && l.Arg().Equal(r) {
		out = append(out, shiftreduce.Candidate{
			Entry: chart.Entry{Syntax: l.Result(), Combinator: Forward},
			Prob:  1,
		})
	}
	if r.Dir() == Backward && r.Arg().Equal(l) {
		out = append(out, shiftreduce.Candidate{
			Entry: chart.Entry{Syntax: r.Result(), Combinator: Backward},
			Prob:  1,
		})
	}
	return out
}

// Unary implements shiftreduce.Grammar.
func (g *Grammar) Unary(e chart.Entry) []shiftreduce.Candidate {
	c, ok := e.Syntax.(*Category)
	if !ok {
		return nil
	}
	var out []shiftreduce.Candidate
	for i := range g.unary {
		u := &g.unary[i]
		if !u.from.Equal(c) {
			continue
		}
		next := e
		next.Syntax = u.to
		next.RootUnary = &chart.Unary{Rule: u, Syntax: u.to}
		out = append(out, shiftreduce.Candidate{Entry: next, Prob: u.prob})
	}
	return out
}

// RootProb implements shiftreduce.Grammar.
func (g *Grammar) RootProb(e chart.Entry) float64 {
	if len(g.roots) == 0 {
		return 1
	}
	c, ok := e.Syntax.(*Category)
	if !ok {
		return 0
	}
	return g.roots[c.String()]
}

// SkipProb implements shiftreduce.Skipper.
func (g *Grammar) SkipProb(string) float64 { return g.skip }

// LogicalForm implements shiftreduce.LogicalFormer. The result is an Expr.
func (g *Grammar) LogicalForm(p *shiftreduce.Parse) (any, bool) {
	e, err := semantics(p, nil)
	if err != nil {
		return nil, false
	}
	return e, true
}

// semantics builds the expression of p. sub may replace the expression of
// any node below p.
func semantics(p *shiftreduce.Parse, sub func(*shiftreduce.Parse) (Expr, bool)) (Expr, error) {
	if p.IsTerminal() {
		lex, ok := p.Entry.Lexicon.(*Lexeme)
		if !ok {
			return nil, fmt.Errorf("terminal %v has no lexeme", p.Span)
		}
		return lex.Semantics, nil
	}
	child := func(c *shiftreduce.Parse) (Expr, error) {
		if sub != nil {
			if e, ok := sub(c); ok {
				return e, nil
			}
		}
		return semantics(c, sub)
	}
	l, err := child(p.Left)
	if err != nil {
		return nil, err
	}
	r, err := child(p.Right)
	if err != nil {
		return nil, err
	}
	switch p.Entry.Combinator {
	case Forward:
		return App{Fn: l, Arg: r}, nil
	case Backward:
		return App{Fn: r, Arg: l}, nil
	}
	return nil, fmt.Errorf("unknown combinator %v at %v", p.Entry.Combinator, p.Span)
}
