// Package pathfind implements A* shortest-path search over an arbitrary
// weighted directed graph, backed by a binary min-heap frontier.
package pathfind

import (
	"errors"
	"fmt"
)

// ErrNodeNotInGraph is returned when the start, goal, or any node reached
// during expansion has no entry in the graph mapping. A node with no outgoing
// edges must still be present, mapped to an empty edge list.
var ErrNodeNotInGraph = errors.New("pathfind: node not in graph")

// Edge is a directed connection to a node with a non-negative traversal cost.
// Bidirectional movement requires two edges.
type Edge[N comparable] struct {
	To   N
	Cost float64
}

// Graph maps each node to its outgoing edges. It is owned by the caller and
// never mutated by a search, so it may be shared read-only across goroutines.
type Graph[N comparable] map[N][]Edge[N]

// Heuristic estimates the remaining cost between two nodes. The returned path
// is optimal only if the heuristic is admissible (never overestimates) and
// consistent; the search does not verify this. It must be pure.
type Heuristic[N comparable] func(a, b N) float64

// Search is an A* engine over an immutable (graph, heuristic) pair. It is
// reusable across sequential FindPath calls; each call allocates its own
// working state.
type Search[N comparable] struct {
	graph     Graph[N]
	heuristic Heuristic[N]
}

// NewSearch creates a Search over the given graph and heuristic.
func NewSearch[N comparable](graph Graph[N], heuristic Heuristic[N]) *Search[N] {
	return &Search[N]{graph: graph, heuristic: heuristic}
}

// FindPath returns the lowest-cost path from start to goal, inclusive of
// both. It returns a nil path (and no error) when the goal is unreachable,
// and [start] when start == goal. Looking up a node absent from the graph is
// a contract violation reported as ErrNodeNotInGraph.
func (s *Search[N]) FindPath(start, goal N) ([]N, error) {
	if _, ok := s.graph[start]; !ok {
		return nil, fmt.Errorf("%w: start %v", ErrNodeNotInGraph, start)
	}
	if _, ok := s.graph[goal]; !ok {
		return nil, fmt.Errorf("%w: goal %v", ErrNodeNotInGraph, goal)
	}
	if start == goal {
		return []N{start}, nil
	}

	cameFrom := make(map[N]N)
	costSoFar := map[N]float64{start: 0}
	frontier := NewPriorityQueue[N]()
	frontier.Insert(start, 0)

	for !frontier.IsEmpty() {
		current, err := frontier.PopMin()
		if err != nil {
			return nil, err
		}
		if current == goal {
			break
		}

		edges, ok := s.graph[current]
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrNodeNotInGraph, current)
		}
		for _, e := range edges {
			tentative := costSoFar[current] + e.Cost
			if known, seen := costSoFar[e.To]; seen && known <= tentative {
				continue // no improvement; a stale frontier entry stays a no-op
			}
			costSoFar[e.To] = tentative
			cameFrom[e.To] = current
			frontier.Insert(e.To, tentative+s.heuristic(e.To, goal))
		}
	}

	if _, ok := cameFrom[goal]; !ok {
		return nil, nil // disconnected: an expected outcome, not a failure
	}

	path := []N{goal}
	for cur := goal; cur != start; {
		cur = cameFrom[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Cost sums the edge costs along a path previously returned by FindPath.
// It returns ErrNodeNotInGraph if the path leaves the graph, or an error if
// two consecutive nodes are not connected.
func (s *Search[N]) Cost(path []N) (float64, error) {
	var total float64
	for i := 0; i+1 < len(path); i++ {
		edges, ok := s.graph[path[i]]
		if !ok {
			return 0, fmt.Errorf("%w: %v", ErrNodeNotInGraph, path[i])
		}
		// Parallel edges are allowed; the search always relaxes through the
		// cheapest one, so sum that.
		best, found := 0.0, false
		for _, e := range edges {
			if e.To == path[i+1] && (!found || e.Cost < best) {
				best, found = e.Cost, true
			}
		}
		if found {
			total += best
		} else {
			return 0, fmt.Errorf("pathfind: no edge %v -> %v", path[i], path[i+1])
		}
	}
	return total, nil
}
