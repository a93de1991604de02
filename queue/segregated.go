package queue

import "iter"

// Segregated is a set of independent Kbest segments selected by a key
// function. Each segment has the same capacity.
type Segregated[T any] struct {
	segments []*Kbest[T]
	key      func(T) int
}

// NewSegregated creates numSegments segments of capacity each. key maps an
// item to its segment; a key outside [0, numSegments) discards the item.
func NewSegregated[T any](numSegments, capacity int, key func(T) int) *Segregated[T] {
	segments := make([]*Kbest[T], max(numSegments, 0))
	for i := range segments {
		segments[i] = NewKbest[T](capacity)
	}
	return &Segregated[T]{segments: segments, key: key}
}

// Offer implements SearchQueue.
func (q *Segregated[T]) Offer(item T, score float64) (T, bool) {
	k := q.key(item)
	if k < 0 || k >= len(q.segments) {
		return item, true
	}
	return q.segments[k].Offer(item, score)
}

// Len implements SearchQueue.
func (q *Segregated[T]) Len() int {
	n := 0
	for _, s := range q.segments {
		n += s.Len()
	}
	return n
}

// NumSegments returns the number of segments.
func (q *Segregated[T]) NumSegments() int { return len(q.segments) }

// Segment returns segment i.
func (q *Segregated[T]) Segment(i int) *Kbest[T] { return q.segments[i] }

// AppendItems implements SearchQueue. Items are grouped by segment.
func (q *Segregated[T]) AppendItems(dst []T) []T {
	for _, s := range q.segments {
		dst = s.AppendItems(dst)
	}
	return dst
}

// All implements SearchQueue.
func (q *Segregated[T]) All() iter.Seq2[T, float64] {
	return func(yield func(T, float64) bool) {
		for _, s := range q.segments {
			for item, score := range s.All() {
				if !yield(item, score) {
					return
				}
			}
		}
	}
}

// Clear implements SearchQueue.
func (q *Segregated[T]) Clear() {
	for _, s := range q.segments {
		s.Clear()
	}
}
