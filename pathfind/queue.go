package pathfind

import "errors"

// ErrEmptyQueue is returned by PopMin on an empty queue.
var ErrEmptyQueue = errors.New("pathfind: pop from empty queue")

type entry[T any] struct {
	element  T
	priority float64
}

// PriorityQueue is an array-backed binary min-heap keyed by a float64 priority.
// The same element may be inserted multiple times with different priorities;
// there is no decrease-key. Improving an element's priority is done by
// inserting a second entry and letting the stale one surface later as a no-op
// (lazy deletion — see Search.FindPath).
type PriorityQueue[T any] struct {
	// entries[0] is an unused sentinel; the heap is 1-indexed so the
	// children of entries[i] are entries[2i] and entries[2i+1].
	entries []entry[T]
}

// NewPriorityQueue creates an empty queue.
func NewPriorityQueue[T any]() *PriorityQueue[T] {
	return &PriorityQueue[T]{entries: make([]entry[T], 1)}
}

// Insert appends the element and restores heap order by sifting up.
func (q *PriorityQueue[T]) Insert(element T, priority float64) {
	q.entries = append(q.entries, entry[T]{element: element, priority: priority})
	i := len(q.entries) - 1
	for i > 1 {
		parent := i / 2
		if q.entries[parent].priority <= q.entries[i].priority {
			break
		}
		q.entries[parent], q.entries[i] = q.entries[i], q.entries[parent]
		i = parent
	}
}

// PopMin removes and returns the element with the smallest priority.
// Callers should check IsEmpty first; an empty queue yields ErrEmptyQueue.
func (q *PriorityQueue[T]) PopMin() (T, error) {
	if q.IsEmpty() {
		var zero T
		return zero, ErrEmptyQueue
	}
	min := q.entries[1].element

	last := len(q.entries) - 1
	q.entries[1] = q.entries[last]
	q.entries[last] = entry[T]{} // release for GC
	q.entries = q.entries[:last]

	n := len(q.entries) - 1
	i := 1
	for {
		child := 2 * i
		if child > n {
			break
		}
		// Pick the smaller child; on a tie the right child wins.
		if child+1 <= n && q.entries[child+1].priority <= q.entries[child].priority {
			child++
		}
		if q.entries[i].priority <= q.entries[child].priority {
			break
		}
		q.entries[i], q.entries[child] = q.entries[child], q.entries[i]
		i = child
	}
	return min, nil
}

// IsEmpty reports whether the queue holds no entries.
func (q *PriorityQueue[T]) IsEmpty() bool {
	return len(q.entries) <= 1
}

// Len returns the number of entries (including stale duplicates).
func (q *PriorityQueue[T]) Len() int {
	return len(q.entries) - 1
}

// Clear discards all entries, keeping the backing array for reuse.
func (q *PriorityQueue[T]) Clear() {
	q.entries = q.entries[:1]
}
