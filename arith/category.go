package arith

import (
	"fmt"
	"strings"
)

// Direction is the argument direction of a slash category.
type Direction byte

const (
	// Forward categories X/Y take their argument on the right.
	Forward Direction = '/'
	// Backward categories X\Y take their argument on the left.
	Backward Direction = '\\'
)

// Category is an atomic or slash category. Categories are immutable and
// compared by their canonical string.
type Category struct {
	atom   string
	result *Category
	arg    *Category
	dir    Direction
	str    string
}

// Atom returns an atomic category.
func Atom(name string) *Category {
	return &Category{atom: name, str: name}
}

// Slash returns the category result/arg or result\arg.
func Slash(result *Category, dir Direction, arg *Category) *Category {
	c := &Category{result: result, arg: arg, dir: dir}
	c.str = wrap(result) + string(dir) + wrap(arg)
	return c
}

func wrap(c *Category) string {
	if c.IsAtomic() {
		return c.str
	}
	return "(" + c.str + ")"
}

// IsAtomic reports whether c has no slash.
func (c *Category) IsAtomic() bool { return c.result == nil }

// Result returns the result of a slash category.
func (c *Category) Result() *Category { return c.result }

// Arg returns the argument of a slash category.
func (c *Category) Arg() *Category { return c.arg }

// Dir returns the slash direction, or 0 for atomic categories.
func (c *Category) Dir() Direction { return c.dir }

// Equal reports whether c and o are the same category.
func (c *Category) Equal(o *Category) bool { return c.str == o.str }

func (c *Category) String() string { return c.str }

// ParseCategory parses categories such as N, N\N and (N\N)/N. Slashes
// associate to the left.
func ParseCategory(s string) (*Category, error) {
	p := &catParser{src: strings.ReplaceAll(s, " ", "")}
	c, err := p.category()
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", s, err)
	}
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("category %q: unexpected %q at %d", s, p.src[p.pos], p.pos)
	}
	return c, nil
}

type catParser struct {
	src string
	pos int
}

func (p *catParser) category() (*Category, error) {
	left, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.pos < len(p.src) {
		dir := Direction(p.src[p.pos])
		if dir != Forward && dir != Backward {
			break
		}
		p.pos++
		right, err := p.primary()
		if err != nil {
			return nil, err
		}
		left = Slash(left, dir, right)
	}
	return left, nil
}

func (p *catParser) primary() (*Category, error) {
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("unexpected end")
	}
	if p.src[p.pos] == '(' {
		p.pos++
		c, err := p.category()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.src) || p.src[p.pos] != ')' {
			return nil, fmt.Errorf("missing ')' at %d", p.pos)
		}
		p.pos++
		return c, nil
	}
	start := p.pos
	for p.pos < len(p.src) && isIdent(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return nil, fmt.Errorf("unexpected %q at %d", p.src[p.pos], p.pos)
	}
	return Atom(p.src[start:p.pos]), nil
}

func isIdent(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
