package search

import (
	"context"
	"fmt"

	"github.com/jayantk/jklol-sub002/chart"
	"github.com/jayantk/jklol-sub002/eval"
	"github.com/jayantk/jklol-sub002/queue"
	"github.com/jayantk/jklol-sub002/shiftreduce"
)

// DefaultTempCapacity is the capacity of the per-step scratch queue of
// parser successors.
const DefaultTempCapacity = 100000

// Interleaved searches parser moves and evaluation steps in one beam.
//
// Each round drains the beam. Parsing states are expanded with the skip,
// shift-reduce and root moves; successors whose category is evaluatable
// start an evaluation. Evaluating states advance their evaluation by one
// step. When a step has exactly one suspended successor that survives the
// cost, it is continued immediately instead of being queued.
//
// Completed evaluations are attached to a new chart entry so that enclosing
// derivations use the computed value. Terminal entries are evaluated only
// at the bottom of the stack; deeper terminals are evaluated as part of the
// span that combines them.
type Interleaved struct {
	// BeamSize bounds each stack-size segment of the beam and the number of
	// results.
	BeamSize int
	// MaxStackSize bounds stack depth. Values <= 0 use the number of words
	// plus one.
	MaxStackSize int
	// TempCapacity bounds the parser successors of a single state. Zero uses
	// DefaultTempCapacity. Exceeding it aborts the search.
	TempCapacity int
	// DisableLookahead queues every evaluation successor.
	DisableLookahead bool
}

// Name implements Strategy.
func (s *Interleaved) Name() string { return "interleaved" }

// Search implements Strategy.
func (s *Interleaved) Search(ctx context.Context, req Request) ([]Result, error) {
	if s.BeamSize <= 0 {
		return nil, shiftreduce.ErrInvalidBeamSize
	}
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}
	ctx, end := req.Timer.Start(ctx, PhaseSearch)
	defer end()

	_, done := req.Timer.Start(ctx, PhaseInitialize)
	c, err := shiftreduce.NewChart(req.Grammar, req.Words, req.EntryCost)
	done()
	if err != nil {
		return nil, err
	}
	env := req.Evaluator.Environment()
	if env == nil {
		return nil, fmt.Errorf("%w: evaluator returned no environment", ErrMissingCollaborator)
	}

	tempCap := s.TempCapacity
	if tempCap <= 0 {
		tempCap = DefaultTempCapacity
	}
	maxStack := shiftreduce.MaxStack(s.MaxStackSize, len(req.Words))
	keyer := shiftreduce.SizeKey(maxStack)

	r := &interleavedRun{
		ctx:       ctx,
		req:       req,
		lookahead: !s.DisableLookahead,
		chart:     c,
		moves:     shiftreduce.NewMoves(req.Grammar, c, s.BeamSize),
		heap: queue.NewSegregated(maxStack, s.BeamSize, func(st *State) int {
			return keyer(st.stack)
		}),
		finished:  queue.NewKbest[*State](s.BeamSize),
		tmpStacks: queue.NewKbest[*shiftreduce.Stack](tempCap),
		tmpStates: queue.NewKbest[*State](s.BeamSize),
		beam:      make([]*State, 0, s.BeamSize*maxStack),
	}
	return r.run(newParsing(shiftreduce.Empty(), req.Diagram, env))
}

type interleavedRun struct {
	ctx       context.Context
	req       Request
	lookahead bool
	round     int

	chart *chart.Chart
	moves *shiftreduce.Moves

	heap     *queue.Segregated[*State]
	finished *queue.Kbest[*State]

	tmpStacks *queue.Kbest[*shiftreduce.Stack]
	tmpStates *queue.Kbest[*State]

	beam     []*State
	stackBuf []*shiftreduce.Stack
	evalBuf  []eval.State
}

func (r *interleavedRun) run(start *State) ([]Result, error) {
	r.offer(r.heap, start)

	n := len(r.req.Words)
	for r.round = 0; r.heap.Len() > 0 || r.round < n; r.round++ {
		r.beam = r.heap.AppendItems(r.beam[:0])
		r.heap.Clear()
		r.req.Observer.OnRound(r.round, len(r.beam))
		r.req.Logger.DebugContext(r.ctx, "search round",
			"round", r.round,
			"beam", len(r.beam),
			"finished", r.finished.Len(),
		)

		for _, st := range r.beam {
			var err error
			if st.Evaluating() {
				err = r.evaluate(st)
			} else {
				err = r.expand(st)
			}
			if err != nil {
				return nil, err
			}
		}

		_, done := r.req.Timer.Start(r.ctx, PhaseSkipLeft)
		r.tmpStacks.Clear()
		r.moves.ShiftSkipLeft(r.round, r.tmpStacks)
		err := r.offerParseStates(start)
		done()
		if err != nil {
			return nil, err
		}
	}

	stats := r.chart.Stats()
	r.req.Observer.OnChart(stats)
	r.req.Logger.DebugContext(r.ctx, "search finished",
		"rounds", r.round,
		"results", r.finished.Len(),
		"chart_entries", stats.Entries,
		"chart_evaluated", stats.Evaluated,
	)
	return r.results(), nil
}

// expand applies the parser moves to a parsing state.
func (r *interleavedRun) expand(st *State) error {
	_, done := r.req.Timer.Start(r.ctx, PhaseParseStep)
	r.tmpStacks.Clear()
	r.moves.Skip(st.stack, r.tmpStacks)
	r.moves.ShiftReduce(st.stack, r.tmpStacks)
	r.moves.Root(st.stack, r.tmpStacks)
	done()
	return r.offerParseStates(st)
}

// offerParseStates queues the stacks in tmpStacks as successors of parent,
// starting evaluations where possible.
func (r *interleavedRun) offerParseStates(parent *State) error {
	if r.tmpStacks.Overflowed() {
		return &CapacityError{Queue: "parser successor", Capacity: r.tmpStacks.Cap(), Round: r.round}
	}
	r.stackBuf = r.tmpStacks.AppendItems(r.stackBuf[:0])

	for _, next := range r.stackBuf {
		if r.evaluatable(next) {
			st, err := r.initialize(parent, next)
			if err != nil {
				return err
			}
			if st != nil {
				if !r.lookahead {
					r.offer(r.heap, st)
					continue
				}
				if _, ok := r.req.score(st); !ok {
					continue
				}
				if err := r.evaluate(st); err != nil {
					return err
				}
				continue
			}
		}
		r.offer(r.heap, newParsing(next, parent.diagram, parent.env))
	}
	return nil
}

func (r *interleavedRun) evaluatable(s *shiftreduce.Stack) bool {
	e := s.Entry
	if e.Info != nil || (e.Terminal && s.Size != 1) {
		return false
	}
	return r.req.Evaluator.Evaluatable(e.Syntax)
}

// initialize starts evaluating the top entry of next. It returns nil if the
// evaluator has no continuation for it.
func (r *interleavedRun) initialize(parent *State, next *shiftreduce.Stack) (*State, error) {
	parse := r.moves.Decode(next.Ref)
	env := parent.env.Extend()
	cont, err := r.req.Evaluator.ParseToContinuation(parse, env)
	if err != nil {
		return nil, fmt.Errorf("continuation for %v: %w", next.Ref, err)
	}
	if cont == nil {
		return nil, nil
	}
	pending, err := eval.Suspend(cont, env, parent.diagram, 1)
	if err != nil {
		return nil, err
	}
	return newEvaluating(next, pending, parent.env)
}

// evaluate advances st, following chains of single suspended successors
// when lookahead is enabled.
func (r *interleavedRun) evaluate(st *State) error {
	cur := st
	for {
		_, done := r.req.Timer.Start(r.ctx, PhaseEvaluateStep)
		var err error
		r.evalBuf, err = r.req.Evaluator.Continue(cur.pending, r.evalBuf[:0])
		done()
		if err != nil {
			return fmt.Errorf("evaluate %v: %w", cur.stack.Ref, err)
		}
		r.req.Observer.OnEvaluate(len(r.evalBuf))

		if !r.lookahead {
			for _, res := range r.evalBuf {
				if err := r.queueEvalState(cur, res, r.heap); err != nil {
					return err
				}
			}
			return nil
		}

		r.tmpStates.Clear()
		for _, res := range r.evalBuf {
			if err := r.queueEvalState(cur, res, r.tmpStates); err != nil {
				return err
			}
		}
		if r.tmpStates.Len() == 1 {
			if next, _, _ := r.tmpStates.Peek(); next.Evaluating() {
				r.req.Observer.OnLookahead()
				cur = next
				continue
			}
		}
		for next, score := range r.tmpStates.All() {
			r.heap.Offer(next, score)
		}
		return nil
	}
}

// queueEvalState queues the successor res of cur. A completed evaluation is
// attached to a new chart entry and parsing resumes from it.
func (r *interleavedRun) queueEvalState(cur *State, res eval.State, q queue.SearchQueue[*State]) error {
	if !res.Valid() {
		return fmt.Errorf("%w: evaluator produced an empty state", eval.ErrInvalidState)
	}
	if res.IsSuspended() {
		next, err := newEvaluating(cur.stack, res, cur.env)
		if err != nil {
			return err
		}
		r.offer(q, next)
		return nil
	}

	s := cur.stack
	entry := s.Entry.WithInfo(res)
	ref, ok := r.chart.Add(entry, s.EntryProb*res.Prob())
	if !ok {
		return nil
	}
	env := res.Env()
	if env == nil {
		env = cur.env
	}
	stack := s.Previous.Push(ref, entry, r.chart.Prob(ref), s.IncludesRoot)
	r.offer(q, newParsing(stack, res.Diagram(), env))
	return nil
}

// offer scores st and queues it in q, or in the finished queue if it is
// complete.
func (r *interleavedRun) offer(q queue.SearchQueue[*State], st *State) {
	score, ok := r.req.score(st)
	if !ok {
		return
	}
	if st.Finished() {
		r.finished.Offer(st, score)
		return
	}
	q.Offer(st, score)
}

func (r *interleavedRun) results() []Result {
	drained := r.finished.Drain()
	out := make([]Result, len(drained))
	for i, d := range drained {
		st := d.Item
		denotation, _ := st.Denotation()
		out[i] = Result{
			Parse:      r.moves.Decode(st.stack.Ref).WithDiagram(st.Diagram()),
			Denotation: denotation,
			Diagram:    st.Diagram(),
			Prob:       st.TotalProb(),
			Score:      d.Score,
		}
	}
	return out
}
