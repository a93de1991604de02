package arith

import (
	"fmt"
	"strconv"
	"strings"
)

// Expr is an expression of the semantics language. String returns a
// canonical form: equal expressions print identically.
type Expr interface {
	fmt.Stringer
	expr()
}

// Int is an integer literal.
type Int int

// Var is a variable reference.
type Var string

// Choice is one alternative of an Amb or of a variable domain.
type Choice struct {
	Value int     `yaml:"value"`
	Prob  float64 `yaml:"prob"`
}

// Amb chooses one of its alternatives nondeterministically.
type Amb []Choice

// BinOp applies +, - or * to two integers.
type BinOp struct {
	Op          byte
	Left, Right Expr
}

// Lambda is a one-argument function.
type Lambda struct {
	Param string
	Body  Expr
}

// App applies Fn to Arg.
type App struct {
	Fn, Arg Expr
}

func (Int) expr()    {}
func (Var) expr()    {}
func (Amb) expr()    {}
func (BinOp) expr()  {}
func (Lambda) expr() {}
func (App) expr()    {}

func (e Int) String() string { return strconv.Itoa(int(e)) }
func (e Var) String() string { return string(e) }

func (e Amb) String() string {
	parts := make([]string, len(e))
	for i, c := range e {
		parts[i] = strconv.Itoa(c.Value) + ":" + strconv.FormatFloat(c.Prob, 'g', -1, 64)
	}
	return "amb(" + strings.Join(parts, ",") + ")"
}

func (e BinOp) String() string {
	return "(" + e.Left.String() + " " + string(e.Op) + " " + e.Right.String() + ")"
}

func (e Lambda) String() string { return `(\` + e.Param + "." + e.Body.String() + ")" }
func (e App) String() string    { return "(" + e.Fn.String() + " " + e.Arg.String() + ")" }

// ParseExpr parses the semantics language.
func ParseExpr(src string) (Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, fmt.Errorf("expression %q: %w", src, err)
	}
	p := &exprParser{toks: toks}
	e, err := p.expr()
	if err == nil && !p.done() {
		err = fmt.Errorf("unexpected %q", p.peek().text)
	}
	if err != nil {
		return nil, fmt.Errorf("expression %q: %w", src, err)
	}
	return e, nil
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokSymbol
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		b := src[i]
		switch {
		case b == ' ' || b == '\t' || b == '\n':
			i++
		case b >= '0' && b <= '9':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.' || src[j] == 'e') {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j]})
			i = j
		case isIdent(b):
			j := i
			for j < len(src) && isIdent(src[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, src[i:j]})
			i = j
		case strings.IndexByte(`()+-*:,.\`, b) >= 0:
			toks = append(toks, token{tokSymbol, string(b)})
			i++
		default:
			return nil, fmt.Errorf("unexpected %q at %d", b, i)
		}
	}
	return toks, nil
}

type exprParser struct {
	toks []token
	pos  int
}

func (p *exprParser) done() bool { return p.pos >= len(p.toks) }

func (p *exprParser) peek() token {
	if p.done() {
		return token{kind: tokSymbol}
	}
	return p.toks[p.pos]
}

func (p *exprParser) accept(sym string) bool {
	if t := p.peek(); t.kind == tokSymbol && t.text == sym {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) expect(sym string) error {
	if !p.accept(sym) {
		return fmt.Errorf("expected %q, got %q", sym, p.peek().text)
	}
	return nil
}

func (p *exprParser) expr() (Expr, error) {
	if p.accept(`\`) {
		t := p.peek()
		if t.kind != tokIdent {
			return nil, fmt.Errorf("expected parameter, got %q", t.text)
		}
		p.pos++
		if err := p.expect("."); err != nil {
			return nil, err
		}
		body, err := p.expr()
		if err != nil {
			return nil, err
		}
		return Lambda{Param: t.text, Body: body}, nil
	}
	return p.sum()
}

func (p *exprParser) sum() (Expr, error) {
	left, err := p.product()
	if err != nil {
		return nil, err
	}
	for {
		var op byte
		switch {
		case p.accept("+"):
			op = '+'
		case p.accept("-"):
			op = '-'
		default:
			return left, nil
		}
		right, err := p.product()
		if err != nil {
			return nil, err
		}
		left = BinOp{Op: op, Left: left, Right: right}
	}
}

func (p *exprParser) product() (Expr, error) {
	left, err := p.atom()
	if err != nil {
		return nil, err
	}
	for p.accept("*") {
		right, err := p.atom()
		if err != nil {
			return nil, err
		}
		left = BinOp{Op: '*', Left: left, Right: right}
	}
	return left, nil
}

func (p *exprParser) atom() (Expr, error) {
	t := p.peek()
	switch {
	case p.done():
		return nil, fmt.Errorf("unexpected end")
	case t.kind == tokNumber:
		p.pos++
		n, err := strconv.Atoi(t.text)
		if err != nil {
			return nil, fmt.Errorf("integer %q: %w", t.text, err)
		}
		return Int(n), nil
	case t.kind == tokIdent && t.text == "amb":
		p.pos++
		return p.amb()
	case t.kind == tokIdent:
		p.pos++
		return Var(t.text), nil
	case p.accept("("):
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		return e, p.expect(")")
	}
	return nil, fmt.Errorf("unexpected %q", t.text)
}

func (p *exprParser) amb() (Expr, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var choices Amb
	for {
		v, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		t := p.peek()
		if t.kind != tokNumber {
			return nil, fmt.Errorf("expected probability, got %q", t.text)
		}
		p.pos++
		prob, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("probability %q: %w", t.text, err)
		}
		choices = append(choices, Choice{Value: v, Prob: prob})
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return choices, nil
}

func (p *exprParser) number() (int, error) {
	neg := p.accept("-")
	t := p.peek()
	if t.kind != tokNumber {
		return 0, fmt.Errorf("expected integer, got %q", t.text)
	}
	p.pos++
	n, err := strconv.Atoi(t.text)
	if err != nil {
		return 0, fmt.Errorf("integer %q: %w", t.text, err)
	}
	if neg {
		n = -n
	}
	return n, nil
}
