// Package queue provides capacity-bounded priority queues that retain the
// highest-scoring items offered to them.
//
// Kbest is a single bounded queue. Segregated partitions items into
// independent Kbest segments by a caller-provided key so that one class of
// items cannot starve another.
package queue

import "iter"

// SearchQueue is the common interface of the bounded queues.
type SearchQueue[T any] interface {
	// Offer adds item with the given score. If the queue is full, the
	// worst item (possibly item itself) is evicted and returned.
	Offer(item T, score float64) (evicted T, ok bool)
	// Len returns the number of retained items.
	Len() int
	// AppendItems appends the retained items to dst best first. Equal scores
	// keep offer order.
	AppendItems(dst []T) []T
	// All iterates over retained items and their scores in AppendItems order.
	All() iter.Seq2[T, float64]
	// Clear removes every item.
	Clear()
}

// Compile time checks.
var (
	_ SearchQueue[int] = (*Kbest[int])(nil)
	_ SearchQueue[int] = (*Segregated[int])(nil)
)
