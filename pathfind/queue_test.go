package pathfind

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkHeap verifies the min-heap invariant over the 1-indexed backing array.
func checkHeap[T any](t *testing.T, q *PriorityQueue[T]) {
	t.Helper()
	n := len(q.entries) - 1
	for i := 1; i <= n; i++ {
		if l := 2 * i; l <= n {
			assert.LessOrEqual(t, q.entries[i].priority, q.entries[l].priority,
				"parent %d vs left child %d", i, l)
		}
		if r := 2*i + 1; r <= n {
			assert.LessOrEqual(t, q.entries[i].priority, q.entries[r].priority,
				"parent %d vs right child %d", i, r)
		}
	}
}

func TestQueueInsertPop(t *testing.T) {
	q := NewPriorityQueue[string]()
	assert.True(t, q.IsEmpty())

	q.Insert("mid", 5)
	q.Insert("low", 1)
	q.Insert("high", 9)
	checkHeap(t, q)
	assert.Equal(t, 3, q.Len())

	v, err := q.PopMin()
	require.NoError(t, err)
	assert.Equal(t, "low", v)
	v, err = q.PopMin()
	require.NoError(t, err)
	assert.Equal(t, "mid", v)
	v, err = q.PopMin()
	require.NoError(t, err)
	assert.Equal(t, "high", v)
	assert.True(t, q.IsEmpty())
}

func TestQueuePopEmpty(t *testing.T) {
	q := NewPriorityQueue[int]()
	_, err := q.PopMin()
	assert.ErrorIs(t, err, ErrEmptyQueue)

	q.Insert(1, 1)
	_, _ = q.PopMin()
	_, err = q.PopMin()
	assert.ErrorIs(t, err, ErrEmptyQueue)
}

func TestQueueClear(t *testing.T) {
	q := NewPriorityQueue[int]()
	for i := 0; i < 10; i++ {
		q.Insert(i, float64(i))
	}
	q.Clear()
	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Len())

	// Usable after Clear.
	q.Insert(42, 1)
	v, err := q.PopMin()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestQueueDuplicateElements(t *testing.T) {
	// The same element may carry several priorities at once (lazy deletion).
	q := NewPriorityQueue[string]()
	q.Insert("n", 7)
	q.Insert("n", 3)
	q.Insert("n", 5)
	assert.Equal(t, 3, q.Len())
	checkHeap(t, q)

	for !q.IsEmpty() {
		v, err := q.PopMin()
		require.NoError(t, err)
		assert.Equal(t, "n", v)
	}
}

func TestQueueTieBreakRightChild(t *testing.T) {
	// After popping "a", the root's children both have priority 2; the sift
	// must promote the right child, so "c" surfaces before "b".
	q := NewPriorityQueue[string]()
	q.Insert("a", 0)
	q.Insert("b", 2)
	q.Insert("c", 2)
	q.Insert("d", 3)
	q.Insert("e", 3)

	var got []string
	for !q.IsEmpty() {
		v, err := q.PopMin()
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []string{"a", "c", "b", "e", "d"}, got)
}

func TestQueueRandomizedOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	q := NewPriorityQueue[int]()

	const n = 500
	for i := 0; i < n; i++ {
		q.Insert(i, rng.Float64()*100)
		if i%7 == 0 && !q.IsEmpty() {
			_, err := q.PopMin()
			require.NoError(t, err)
		}
		checkHeap(t, q)
	}

	prev := -1.0
	for !q.IsEmpty() {
		top := q.entries[1].priority
		assert.GreaterOrEqual(t, top, prev, "pops must be non-decreasing")
		prev = top
		_, err := q.PopMin()
		require.NoError(t, err)
		checkHeap(t, q)
	}
}
