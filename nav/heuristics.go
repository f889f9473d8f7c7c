package nav

import (
	"fmt"
	"sort"

	"github.com/kasuganosora/tilepathd/pathfind"
)

// DefaultHeuristic is used when a request names none.
const DefaultHeuristic = "manhattan"

var heuristics = map[string]pathfind.Heuristic[pathfind.Point]{
	"manhattan": pathfind.Manhattan,
	"chebyshev": pathfind.Chebyshev,
	"euclidean": pathfind.Euclidean,
	// dijkstra disables the estimate entirely.
	"dijkstra": pathfind.Zero[pathfind.Point],
}

// HeuristicByName resolves a request's heuristic name. The empty string maps
// to DefaultHeuristic.
func HeuristicByName(name string) (pathfind.Heuristic[pathfind.Point], error) {
	if name == "" {
		name = DefaultHeuristic
	}
	h, ok := heuristics[name]
	if !ok {
		return nil, fmt.Errorf("nav: unknown heuristic %q", name)
	}
	return h, nil
}

// HeuristicNames lists the accepted heuristic names, sorted.
func HeuristicNames() []string {
	names := make([]string, 0, len(heuristics))
	for n := range heuristics {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
