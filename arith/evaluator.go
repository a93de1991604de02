package arith

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/jayantk/jklol-sub002/eval"
	"github.com/jayantk/jklol-sub002/shiftreduce"
)

var (
	// ErrUnbound is returned for variables missing from the environment
	// and the world when the evaluator has no domain to choose from.
	ErrUnbound = errors.New("unbound variable")
	// ErrType is returned when an operator is applied to a value of the
	// wrong kind.
	ErrType = errors.New("type error")
)

var _ eval.LogicalFormEvaluator = (*Evaluator)(nil)

// Value is an int or a *Closure.
type Value = any

// Closure is a function value.
type Closure struct {
	Param string
	Body  Expr
	Env   *Env
}

func (c *Closure) String() string { return `<\` + c.Param + "." + c.Body.String() + ">" }

// Env is an immutable evaluation scope.
type Env struct {
	parent *Env
	name   string
	value  Value
	bound  bool
}

// NewEnv returns an empty top-level scope.
func NewEnv() *Env { return &Env{} }

// Extend implements eval.Env.
func (e *Env) Extend() eval.Env { return &Env{parent: e} }

// With returns a child scope binding name to v.
func (e *Env) With(name string, v Value) *Env {
	return &Env{parent: e, name: name, value: v, bound: true}
}

// Lookup returns the innermost binding of name.
func (e *Env) Lookup(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if s.bound && s.name == name {
			return s.value, true
		}
	}
	return nil, false
}

// Depth returns the number of scopes from e to the top level.
func (e *Env) Depth() int {
	n := 0
	for s := e.parent; s != nil; s = s.parent {
		n++
	}
	return n
}

// Continuation is a suspended evaluation.
type Continuation struct {
	expr Expr
	run  thunk
}

// Expr returns the expression being evaluated.
func (c *Continuation) Expr() Expr { return c.expr }

func (c *Continuation) String() string { return "<" + c.expr.String() + ">" }

// branch is one successor of an evaluation step. A nil next means the
// evaluation finished with value.
type branch struct {
	prob  float64
	world World
	value Value
	next  thunk
}

type thunk func(w World) ([]branch, error)

type cont func(v Value, w World) ([]branch, error)

func done(v Value, w World) ([]branch, error) {
	return []branch{{prob: 1, world: w, value: v}}, nil
}

// Stats counts evaluator work.
type Stats struct {
	// Continuations is the number of continuations built from parses or
	// logical forms.
	Continuations int64
	// Steps is the number of Continue calls.
	Steps int64
	// ChoicePoints is the number of amb expressions and world variables
	// that split an evaluation.
	ChoicePoints int64
}

// Evaluator evaluates arith expressions against a World. It is safe for
// concurrent use.
type Evaluator struct {
	domain []Choice

	continuations atomic.Int64
	steps         atomic.Int64
	choices       atomic.Int64
}

// NewEvaluator returns an evaluator that resolves variables missing from the
// world by choosing from domain.
func NewEvaluator(domain ...Choice) *Evaluator {
	return &Evaluator{domain: domain}
}

// Stats returns the work done so far.
func (ev *Evaluator) Stats() Stats {
	return Stats{
		Continuations: ev.continuations.Load(),
		Steps:         ev.steps.Load(),
		ChoicePoints:  ev.choices.Load(),
	}
}

// ResetStats zeroes the counters.
func (ev *Evaluator) ResetStats() {
	ev.continuations.Store(0)
	ev.steps.Store(0)
	ev.choices.Store(0)
}

// Evaluatable implements eval.Evaluator. Only atomic categories denote
// values worth grounding.
func (ev *Evaluator) Evaluatable(syntax any) bool {
	c, ok := syntax.(*Category)
	return ok && c.IsAtomic()
}

// Environment implements eval.Evaluator.
func (ev *Evaluator) Environment() eval.Env { return NewEnv() }

// ParseToContinuation implements eval.Evaluator. Sub-parses that carry a
// completed evaluation are bound in the environment instead of being
// evaluated again.
func (ev *Evaluator) ParseToContinuation(p *shiftreduce.Parse, env eval.Env) (any, error) {
	scope, ok := env.(*Env)
	if !ok {
		return nil, fmt.Errorf("%w: environment %T", eval.ErrInvalidState, env)
	}
	expr, err := semantics(p, func(c *shiftreduce.Parse) (Expr, bool) {
		st, ok := c.Info.(eval.State)
		if !ok {
			return nil, false
		}
		v, ok := st.Denotation()
		if !ok {
			return nil, false
		}
		name := fmt.Sprintf("$%d_%d", c.Span.Start, c.Span.End)
		scope = scope.With(name, v)
		return Var(name), true
	})
	if err != nil {
		return nil, err
	}
	return ev.continuation(expr, scope), nil
}

// Continuation implements eval.LogicalFormEvaluator.
func (ev *Evaluator) Continuation(lf any, env eval.Env) (any, error) {
	expr, ok := lf.(Expr)
	if !ok {
		return nil, nil
	}
	scope, ok := env.(*Env)
	if !ok {
		return nil, fmt.Errorf("%w: environment %T", eval.ErrInvalidState, env)
	}
	return ev.continuation(expr, scope), nil
}

func (ev *Evaluator) continuation(expr Expr, env *Env) *Continuation {
	ev.continuations.Add(1)
	return &Continuation{
		expr: expr,
		run: func(w World) ([]branch, error) {
			return ev.eval(expr, env, w, done)
		},
	}
}

// Continue implements eval.Evaluator.
func (ev *Evaluator) Continue(s eval.State, out []eval.State) ([]eval.State, error) {
	c, ok := s.Continuation().(*Continuation)
	if !ok {
		return out, fmt.Errorf("%w: continuation %T", eval.ErrInvalidState, s.Continuation())
	}
	var w World
	if s.Diagram() != nil {
		if w, ok = s.Diagram().(World); !ok {
			return out, fmt.Errorf("%w: diagram %T is not a World", eval.ErrInvalidState, s.Diagram())
		}
	}
	ev.steps.Add(1)

	branches, err := c.run(w)
	if err != nil {
		return out, fmt.Errorf("evaluate %v: %w", c.expr, err)
	}
	env := s.ContinuationEnv()
	for _, b := range branches {
		prob := s.Prob() * b.prob
		if b.next == nil {
			out = append(out, eval.Denote(b.value, env, b.world, prob))
			continue
		}
		next, err := eval.Suspend(&Continuation{expr: c.expr, run: b.next}, env, b.world, prob)
		if err != nil {
			return out, err
		}
		out = append(out, next)
	}
	return out, nil
}

// eval evaluates e and passes its value to k. It returns early with one
// suspended branch per alternative at the first choice point.
func (ev *Evaluator) eval(e Expr, env *Env, w World, k cont) ([]branch, error) {
	switch e := e.(type) {
	case Int:
		return k(int(e), w)

	case Var:
		name := string(e)
		if v, ok := env.Lookup(name); ok {
			return k(v, w)
		}
		if v, ok := w.Get(name); ok {
			return k(v, w)
		}
		if len(ev.domain) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnbound, name)
		}
		ev.choices.Add(1)
		out := make([]branch, len(ev.domain))
		for i, c := range ev.domain {
			out[i] = branch{
				prob:  c.Prob,
				world: w.With(name, c.Value),
				next:  func(w World) ([]branch, error) { return k(c.Value, w) },
			}
		}
		return out, nil

	case Amb:
		ev.choices.Add(1)
		out := make([]branch, len(e))
		for i, c := range e {
			out[i] = branch{
				prob:  c.Prob,
				world: w,
				next:  func(w World) ([]branch, error) { return k(c.Value, w) },
			}
		}
		return out, nil

	case BinOp:
		return ev.eval(e.Left, env, w, func(l Value, w World) ([]branch, error) {
			return ev.eval(e.Right, env, w, func(r Value, w World) ([]branch, error) {
				v, err := arithmetic(e.Op, l, r)
				if err != nil {
					return nil, err
				}
				return k(v, w)
			})
		})

	case Lambda:
		return k(&Closure{Param: e.Param, Body: e.Body, Env: env}, w)

	case App:
		return ev.eval(e.Fn, env, w, func(f Value, w World) ([]branch, error) {
			fn, ok := f.(*Closure)
			if !ok {
				return nil, fmt.Errorf("%w: cannot apply %v", ErrType, f)
			}
			return ev.eval(e.Arg, env, w, func(a Value, w World) ([]branch, error) {
				return ev.eval(fn.Body, fn.Env.With(fn.Param, a), w, k)
			})
		})
	}
	return nil, fmt.Errorf("%w: unknown expression %T", ErrType, e)
}

func arithmetic(op byte, l, r Value) (Value, error) {
	a, ok := l.(int)
	if !ok {
		return nil, fmt.Errorf("%w: %v is not an integer", ErrType, l)
	}
	b, ok := r.(int)
	if !ok {
		return nil, fmt.Errorf("%w: %v is not an integer", ErrType, r)
	}
	switch op {
	case '+':
		return a + b, nil
	case '-':
		return a - b, nil
	case '*':
		return a * b, nil
	}
	return nil, fmt.Errorf("%w: unknown operator %q", ErrType, op)
}
