package queue

import (
	"iter"
	"slices"
)

// Scored pairs an item with its score.
type Scored[T any] struct {
	Item  T
	Score float64
}

type element[T any] struct {
	item  T
	score float64
	seq   uint64
}

// worse reports whether a ranks below b. Equal scores are ordered by
// insertion sequence so that later offers are evicted first.
func worse[T any](a, b element[T]) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.seq > b.seq
}

// Kbest keeps the k highest-scoring items offered to it.
//
// The heap is ordered worst-first so that the top element is the eviction
// candidate.
type Kbest[T any] struct {
	elems      []element[T]
	capacity   int
	seq        uint64
	overflowed bool
}

// NewKbest creates a queue retaining at most capacity items.
// A negative capacity is treated as zero.
func NewKbest[T any](capacity int) *Kbest[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Kbest[T]{
		elems:    make([]element[T], 0, min(capacity, 1024)),
		capacity: capacity,
	}
}

// Offer implements SearchQueue.
func (q *Kbest[T]) Offer(item T, score float64) (T, bool) {
	e := element[T]{item: item, score: score, seq: q.seq}
	q.seq++

	if len(q.elems) < q.capacity {
		q.elems = append(q.elems, e)
		q.up(len(q.elems) - 1)
		var zero T
		return zero, false
	}

	q.overflowed = true
	if q.capacity == 0 || !worse(q.elems[0], e) {
		return item, true
	}

	evicted := q.elems[0].item
	q.elems[0] = e
	q.down(0, len(q.elems))
	return evicted, true
}

// Len implements SearchQueue.
func (q *Kbest[T]) Len() int { return len(q.elems) }

// Cap returns the configured capacity.
func (q *Kbest[T]) Cap() int { return q.capacity }

// Overflowed reports whether an item was offered while the queue was full
// since it was created or last cleared.
func (q *Kbest[T]) Overflowed() bool { return q.overflowed }

// Peek returns the worst retained item and its score.
func (q *Kbest[T]) Peek() (T, float64, bool) {
	if len(q.elems) == 0 {
		var zero T
		return zero, 0, false
	}
	return q.elems[0].item, q.elems[0].score, true
}

// RemoveMin removes and returns the worst retained item.
func (q *Kbest[T]) RemoveMin() (T, float64, bool) {
	if len(q.elems) == 0 {
		var zero T
		return zero, 0, false
	}
	n := len(q.elems) - 1
	top := q.elems[0]
	q.elems[0] = q.elems[n]
	q.elems[n] = element[T]{}
	q.elems = q.elems[:n]
	if n > 0 {
		q.down(0, n)
	}
	return top.item, top.score, true
}

// Drain removes every item and returns them best first.
func (q *Kbest[T]) Drain() []Scored[T] {
	out := make([]Scored[T], len(q.elems))
	for i := len(out) - 1; i >= 0; i-- {
		item, score, _ := q.RemoveMin()
		out[i] = Scored[T]{Item: item, Score: score}
	}
	return out
}

// Sorted returns the retained items best first without modifying the queue.
func (q *Kbest[T]) Sorted() []Scored[T] {
	elems := q.ordered()
	out := make([]Scored[T], len(elems))
	for i, e := range elems {
		out[i] = Scored[T]{Item: e.item, Score: e.score}
	}
	return out
}

// ordered returns a copy of the heap best first. Equal scores keep offer
// order.
func (q *Kbest[T]) ordered() []element[T] {
	elems := slices.Clone(q.elems)
	slices.SortFunc(elems, func(a, b element[T]) int {
		switch {
		case worse(b, a):
			return -1
		case worse(a, b):
			return 1
		}
		return 0
	})
	return elems
}

// AppendItems implements SearchQueue. Items are appended best first.
func (q *Kbest[T]) AppendItems(dst []T) []T {
	for _, e := range q.ordered() {
		dst = append(dst, e.item)
	}
	return dst
}

// All implements SearchQueue. Items are yielded best first.
func (q *Kbest[T]) All() iter.Seq2[T, float64] {
	return func(yield func(T, float64) bool) {
		for _, e := range q.ordered() {
			if !yield(e.item, e.score) {
				return
			}
		}
	}
}

// Clear implements SearchQueue.
func (q *Kbest[T]) Clear() {
	clear(q.elems)
	q.elems = q.elems[:0]
	q.seq = 0
	q.overflowed = false
}

func (q *Kbest[T]) up(j int) {
	e := q.elems[j]
	for j > 0 {
		i := (j - 1) / 2
		if !worse(e, q.elems[i]) {
			break
		}
		q.elems[j] = q.elems[i]
		j = i
	}
	q.elems[j] = e
}

func (q *Kbest[T]) down(i, n int) {
	e := q.elems[i]
	for {
		c := 2*i + 1
		if c >= n {
			break
		}
		if r := c + 1; r < n && worse(q.elems[r], q.elems[c]) {
			c = r
		}
		if !worse(q.elems[c], e) {
			break
		}
		q.elems[i] = q.elems[c]
		i = c
	}
	q.elems[i] = e
}
