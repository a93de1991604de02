package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/jayantk/jklol-sub002/eval"
	"github.com/jayantk/jklol-sub002/queue"
	"github.com/jayantk/jklol-sub002/shiftreduce"
)

// Pipelined parses the sentence syntactically first and then evaluates the
// most probable distinct logical forms independently.
//
// The grammar must implement shiftreduce.LogicalFormer and the evaluator
// eval.LogicalFormEvaluator.
type Pipelined struct {
	// BeamSize bounds the syntactic beam.
	BeamSize int
	// MaxStackSize bounds stack depth. Values <= 0 use the number of words
	// plus one.
	MaxStackSize int
	// NumLogicalForms is the number of distinct logical forms evaluated.
	NumLogicalForms int
	// EvalBeamSize bounds the evaluation beam of each logical form.
	EvalBeamSize int
	// LocallyNormalize divides parse probabilities by the syntactic
	// partition function and evaluation probabilities by the partition
	// function of their logical form.
	LocallyNormalize bool
	// Parallelism is the number of logical forms evaluated concurrently.
	// Values <= 1 evaluate sequentially.
	Parallelism int
}

// Name implements Strategy.
func (s *Pipelined) Name() string { return "pipelined" }

// logicalForm is a distinct logical form and the parses that produce it.
type logicalForm struct {
	key   string
	value any
	// best is the most probable parse with this form.
	best *shiftreduce.Parse
	mass float64
}

// Search implements Strategy.
func (s *Pipelined) Search(ctx context.Context, req Request) ([]Result, error) {
	if s.BeamSize <= 0 || s.NumLogicalForms <= 0 {
		return nil, shiftreduce.ErrInvalidBeamSize
	}
	if s.EvalBeamSize <= 0 {
		return nil, eval.ErrInvalidBeamSize
	}
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}
	former, ok := req.Grammar.(shiftreduce.LogicalFormer)
	if !ok {
		return nil, fmt.Errorf("%w: grammar %T has no logical forms", ErrUnsupported, req.Grammar)
	}
	ev, ok := req.Evaluator.(eval.LogicalFormEvaluator)
	if !ok {
		return nil, fmt.Errorf("%w: evaluator %T cannot evaluate logical forms", ErrUnsupported, req.Evaluator)
	}

	ctx, end := req.Timer.Start(ctx, PhaseSearch)
	defer end()

	_, done := req.Timer.Start(ctx, PhaseSyntacticSearch)
	parses, err := shiftreduce.BeamSearch(req.Grammar, req.Words, shiftreduce.BeamOptions{
		BeamSize:     s.BeamSize,
		MaxStackSize: s.MaxStackSize,
		EntryCost:    req.EntryCost,
		Logger:       req.Logger,
	})
	done()
	if err != nil {
		return nil, err
	}

	_, done = req.Timer.Start(ctx, PhaseAggregate)
	forms, z := aggregate(former, parses)
	done()
	if len(forms) > s.NumLogicalForms {
		forms = forms[:s.NumLogicalForms]
	}
	req.Logger.DebugContext(ctx, "syntactic search finished",
		"parses", len(parses),
		"logical_forms", len(forms),
	)

	evalCtx, done := req.Timer.Start(ctx, PhaseEvaluateForms)
	evaluated, err := s.evaluate(evalCtx, req, ev, forms)
	done()
	if err != nil {
		return nil, err
	}

	if !s.LocallyNormalize {
		z = 1
	}
	results := queue.NewKbest[Result](s.NumLogicalForms * s.EvalBeamSize)
	for i, f := range forms {
		states := evaluated[i]
		zEval := 1.0
		if s.LocallyNormalize {
			zEval = 0
			for _, st := range states {
				zEval += st.Prob()
			}
		}
		for _, st := range states {
			denotation, _ := st.Denotation()
			prob := f.mass * st.Prob() / (z * zEval)
			w, ok := req.weight(&State{diagram: st.Diagram(), pending: st})
			if !ok {
				continue
			}
			// The root absorbs the mass of the form's other parses, so the
			// subtree probability of Parse is prob.
			nodeProb := f.best.NodeProb * prob / f.best.SubtreeProb()
			r := Result{
				Parse:      f.best.WithInfo(st, nodeProb).WithDiagram(st.Diagram()),
				Denotation: denotation,
				Diagram:    st.Diagram(),
				Prob:       prob,
				Score:      prob * w,
			}
			results.Offer(r, r.Score)
		}
	}

	drained := results.Drain()
	out := make([]Result, len(drained))
	for i, d := range drained {
		out[i] = d.Item
	}
	return out, nil
}

// aggregate groups parses by logical form, most probable form first, and
// returns the total probability of the parses.
func aggregate(former shiftreduce.LogicalFormer, parses []*shiftreduce.Parse) ([]*logicalForm, float64) {
	byKey := make(map[string]*logicalForm)
	var forms []*logicalForm
	var z float64
	for _, p := range parses {
		prob := p.SubtreeProb()
		z += prob
		lf, ok := former.LogicalForm(p)
		if !ok {
			continue
		}
		key := formKey(lf)
		f, ok := byKey[key]
		if !ok {
			f = &logicalForm{key: key, value: lf, best: p}
			byKey[key] = f
			forms = append(forms, f)
		}
		f.mass += prob
	}
	slices.SortStableFunc(forms, func(a, b *logicalForm) int {
		return cmp.Compare(b.mass, a.mass)
	})
	return forms, z
}

func formKey(lf any) string {
	if s, ok := lf.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(lf)
}

// evaluate runs the evaluation beam of every form. The result at index i
// belongs to forms[i].
func (s *Pipelined) evaluate(ctx context.Context, req Request, ev eval.LogicalFormEvaluator, forms []*logicalForm) ([][]eval.State, error) {
	var cost eval.Cost
	if req.Cost != nil {
		cost = func(st eval.State) float64 {
			return req.Cost(&State{diagram: st.Diagram(), pending: st})
		}
	}
	observed := observedEvaluator{LogicalFormEvaluator: ev, observer: req.Observer}

	out := make([][]eval.State, len(forms))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.Parallelism))
	for i, f := range forms {
		g.Go(func() error {
			states, err := eval.EvaluateBeam(observed, f.value, req.Diagram, cost, s.EvalBeamSize)
			if err != nil {
				return fmt.Errorf("evaluate %s: %w", f.key, err)
			}
			out[i] = states
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// observedEvaluator reports evaluation steps to an Observer.
type observedEvaluator struct {
	eval.LogicalFormEvaluator
	observer Observer
}

func (e observedEvaluator) Continue(st eval.State, out []eval.State) ([]eval.State, error) {
	n := len(out)
	out, err := e.LogicalFormEvaluator.Continue(st, out)
	if err == nil {
		e.observer.OnEvaluate(len(out) - n)
	}
	return out, err
}
