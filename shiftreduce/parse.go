package shiftreduce

import (
	"fmt"
	"strings"

	"github.com/jayantk/jklol-sub002/chart"
)

// Parse is a decoded derivation tree.
type Parse struct {
	// Syntax is the category of this node after its unary rules.
	Syntax any
	// Entry is the chart entry the node was decoded from.
	Entry chart.Entry
	// Ref addresses Entry.
	Ref chart.Ref
	// Span is the range of words covered, words are Words.
	Span  chart.Span
	Words []string

	Left  *Parse
	Right *Parse

	// Unaries lists the unary rules applied at this node, innermost first.
	Unaries []*chart.Unary

	// NodeProb is the probability contributed by this node alone.
	NodeProb float64
	// Info is the evaluation result attached to this node, if any.
	Info any
	// Diagram is set on the root of a grounded result.
	Diagram any
}

// Decode materialises the derivation rooted at r. Node probabilities are
// chosen so that the subtree probability of each node equals its chart
// probability.
func Decode(c *chart.Chart, r chart.Ref) *Parse {
	e := c.Entry(r)
	prob := c.Prob(r)
	p := &Parse{
		Syntax: e.Syntax,
		Entry:  e,
		Ref:    r,
		Span:   e.Span,
		Words:  c.Words()[e.Span.Start : e.Span.End+1],
		Info:   e.Info,
	}
	if e.RootUnary != nil {
		p.Unaries = append(p.Unaries, e.RootUnary)
	}

	if e.Terminal {
		p.NodeProb = prob
		return p
	}

	p.Left = Decode(c, e.Left).withUnary(e.LeftUnary)
	p.Right = Decode(c, e.Right).withUnary(e.RightUnary)
	if children := p.Left.SubtreeProb() * p.Right.SubtreeProb(); children != 0 {
		p.NodeProb = prob / children
	}
	return p
}

func (p *Parse) withUnary(u *chart.Unary) *Parse {
	if u == nil {
		return p
	}
	cp := *p
	cp.Syntax = u.Syntax
	cp.Unaries = append(append([]*chart.Unary(nil), p.Unaries...), u)
	return &cp
}

// IsTerminal reports whether p is a lexical node.
func (p *Parse) IsTerminal() bool { return p.Left == nil }

// SubtreeProb returns the probability of the whole subtree rooted at p.
func (p *Parse) SubtreeProb() float64 {
	if p.IsTerminal() {
		return p.NodeProb
	}
	return p.NodeProb * p.Left.SubtreeProb() * p.Right.SubtreeProb()
}

// WithDiagram returns a copy of p carrying diagram.
func (p *Parse) WithDiagram(diagram any) *Parse {
	cp := *p
	cp.Diagram = diagram
	return &cp
}

// WithInfo returns a copy of p carrying info whose node probability is
// nodeProb.
func (p *Parse) WithInfo(info any, nodeProb float64) *Parse {
	cp := *p
	cp.Info = info
	cp.NodeProb = nodeProb
	return &cp
}

// ForSpan returns the node covering exactly span, or nil.
func (p *Parse) ForSpan(span chart.Span) *Parse {
	if p.Span == span {
		return p
	}
	if p.IsTerminal() {
		return nil
	}
	if span.End <= p.Left.Span.End {
		return p.Left.ForSpan(span)
	}
	return p.Right.ForSpan(span)
}

// Infos returns the attached evaluation results in pre-order.
func (p *Parse) Infos() []any {
	var out []any
	p.walk(func(n *Parse) {
		if n.Info != nil {
			out = append(out, n.Info)
		}
	})
	return out
}

// Terminals returns the lexical nodes from left to right.
func (p *Parse) Terminals() []*Parse {
	var out []*Parse
	p.walk(func(n *Parse) {
		if n.IsTerminal() {
			out = append(out, n)
		}
	})
	return out
}

func (p *Parse) walk(fn func(*Parse)) {
	fn(p)
	if !p.IsTerminal() {
		p.Left.walk(fn)
		p.Right.walk(fn)
	}
}

func (p *Parse) String() string {
	var sb strings.Builder
	p.write(&sb)
	return sb.String()
}

func (p *Parse) write(sb *strings.Builder) {
	if p.IsTerminal() {
		fmt.Fprintf(sb, "%v:%q", p.Syntax, strings.Join(p.Words, " "))
		return
	}
	fmt.Fprintf(sb, "(%v ", p.Syntax)
	p.Left.write(sb)
	sb.WriteByte(' ')
	p.Right.write(sb)
	sb.WriteByte(')')
}
