package pathfind_test

import (
	"testing"

	"github.com/kasuganosora/tilepathd/pathfind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ptA = pathfind.Point{X: 0, Y: 0}
	ptB = pathfind.Point{X: 1, Y: 0}
	ptC = pathfind.Point{X: 0, Y: 1}
)

// triangleGraph is the documented three-node example: A-B and A-C cost 1,
// B-C costs 1.5 directly (cheaper than the 2.0 detour through A).
func triangleGraph() pathfind.Graph[pathfind.Point] {
	return pathfind.Graph[pathfind.Point]{
		ptA: {{To: ptB, Cost: 1}, {To: ptC, Cost: 1}},
		ptB: {{To: ptA, Cost: 1}, {To: ptC, Cost: 1.5}},
		ptC: {{To: ptA, Cost: 1}, {To: ptB, Cost: 1.5}},
	}
}

func TestFindPathTriangle(t *testing.T) {
	g := triangleGraph()

	s := pathfind.NewSearch(g, pathfind.Manhattan)
	path, err := s.FindPath(ptA, ptB)
	require.NoError(t, err)
	assert.Equal(t, []pathfind.Point{ptA, ptB}, path)
	cost, err := s.Cost(path)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cost, 1e-9)

	// With a zero heuristic the search degrades to Dijkstra and must still
	// prefer the direct B-C edge over the detour through A.
	d := pathfind.NewSearch(g, pathfind.Zero[pathfind.Point])
	path, err = d.FindPath(ptB, ptC)
	require.NoError(t, err)
	assert.Equal(t, []pathfind.Point{ptB, ptC}, path)
	cost, err = d.Cost(path)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, cost, 1e-9)
}

func TestFindPathIdentity(t *testing.T) {
	s := pathfind.NewSearch(triangleGraph(), pathfind.Manhattan)
	path, err := s.FindPath(ptA, ptA)
	require.NoError(t, err)
	assert.Equal(t, []pathfind.Point{ptA}, path)
}

func TestFindPathUnreachable(t *testing.T) {
	island := pathfind.Point{X: 9, Y: 9}
	g := triangleGraph()
	g[island] = nil // present in the graph, no edges either way

	s := pathfind.NewSearch(g, pathfind.Manhattan)

	path, err := s.FindPath(ptA, island)
	require.NoError(t, err)
	assert.Empty(t, path, "unreachable goal is an empty path, not an error")

	path, err = s.FindPath(island, ptA)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestFindPathNodeNotInGraph(t *testing.T) {
	g := triangleGraph()
	s := pathfind.NewSearch(g, pathfind.Manhattan)
	missing := pathfind.Point{X: 7, Y: 7}

	_, err := s.FindPath(missing, ptA)
	assert.ErrorIs(t, err, pathfind.ErrNodeNotInGraph)

	_, err = s.FindPath(ptA, missing)
	assert.ErrorIs(t, err, pathfind.ErrNodeNotInGraph)

	// A dangling edge target discovered mid-expansion is the same violation.
	dangling := pathfind.Graph[pathfind.Point]{
		ptA: {{To: missing, Cost: 1}},
		ptB: {},
	}
	_, err = pathfind.NewSearch(dangling, pathfind.Manhattan).FindPath(ptA, ptB)
	assert.ErrorIs(t, err, pathfind.ErrNodeNotInGraph)
}

// gridGraph builds a 4-directional unit-cost grid with the given blocked
// cells, every open cell present as a key.
func gridGraph(w, h int, blocked map[pathfind.Point]bool) pathfind.Graph[pathfind.Point] {
	g := make(pathfind.Graph[pathfind.Point])
	deltas := []pathfind.Point{{X: 0, Y: 1}, {X: 0, Y: -1}, {X: 1, Y: 0}, {X: -1, Y: 0}}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := pathfind.Point{X: x, Y: y}
			if blocked[p] {
				continue
			}
			edges := []pathfind.Edge[pathfind.Point]{}
			for _, d := range deltas {
				n := pathfind.Point{X: x + d.X, Y: y + d.Y}
				if n.X < 0 || n.X >= w || n.Y < 0 || n.Y >= h || blocked[n] {
					continue
				}
				edges = append(edges, pathfind.Edge[pathfind.Point]{To: n, Cost: 1})
			}
			g[p] = edges
		}
	}
	return g
}

// bfsDistance is the brute-force reference for unit-cost grids.
func bfsDistance(g pathfind.Graph[pathfind.Point], start, goal pathfind.Point) int {
	dist := map[pathfind.Point]int{start: 0}
	queue := []pathfind.Point{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			return dist[cur]
		}
		for _, e := range g[cur] {
			if _, seen := dist[e.To]; !seen {
				dist[e.To] = dist[cur] + 1
				queue = append(queue, e.To)
			}
		}
	}
	return -1
}

func TestFindPathGridOptimality(t *testing.T) {
	blocked := map[pathfind.Point]bool{
		{X: 1, Y: 1}: true, {X: 1, Y: 2}: true, {X: 1, Y: 3}: true,
		{X: 3, Y: 0}: true, {X: 3, Y: 1}: true, {X: 3, Y: 2}: true,
	}
	g := gridGraph(5, 5, blocked)
	start := pathfind.Point{X: 0, Y: 0}
	goal := pathfind.Point{X: 4, Y: 0}

	for name, h := range map[string]pathfind.Heuristic[pathfind.Point]{
		"manhattan": pathfind.Manhattan,
		"chebyshev": pathfind.Chebyshev,
		"euclidean": pathfind.Euclidean,
		"zero":      pathfind.Zero[pathfind.Point],
	} {
		s := pathfind.NewSearch(g, h)
		path, err := s.FindPath(start, goal)
		require.NoError(t, err, name)
		require.NotEmpty(t, path, name)

		assert.Equal(t, start, path[0], name)
		assert.Equal(t, goal, path[len(path)-1], name)
		// Every consecutive pair must be a real edge.
		cost, err := s.Cost(path)
		require.NoError(t, err, name)

		want := bfsDistance(g, start, goal)
		require.NotEqual(t, -1, want)
		assert.InDelta(t, float64(want), cost, 1e-9, name)
		assert.Len(t, path, want+1, name)
	}
}

func TestFindPathWalledOff(t *testing.T) {
	// A full vertical wall splits the grid in two.
	blocked := map[pathfind.Point]bool{}
	for y := 0; y < 5; y++ {
		blocked[pathfind.Point{X: 2, Y: y}] = true
	}
	g := gridGraph(5, 5, blocked)

	s := pathfind.NewSearch(g, pathfind.Manhattan)
	path, err := s.FindPath(pathfind.Point{X: 0, Y: 2}, pathfind.Point{X: 4, Y: 2})
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestFindPathWeightedDijkstra(t *testing.T) {
	// Integer node IDs: the engine is agnostic to node structure.
	g := pathfind.Graph[int]{
		1: {{To: 2, Cost: 4}, {To: 3, Cost: 1}},
		2: {{To: 4, Cost: 1}},
		3: {{To: 2, Cost: 1}, {To: 4, Cost: 6}},
		4: {},
	}
	s := pathfind.NewSearch(g, pathfind.Zero[int])
	path, err := s.FindPath(1, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 2, 4}, path)
	cost, err := s.Cost(path)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, cost, 1e-9)
}

func TestSearchReusableAcrossCalls(t *testing.T) {
	g := gridGraph(6, 6, nil)
	s := pathfind.NewSearch(g, pathfind.Manhattan)

	for i := 0; i < 3; i++ {
		path, err := s.FindPath(pathfind.Point{X: 0, Y: 0}, pathfind.Point{X: 5, Y: 5})
		require.NoError(t, err)
		assert.Len(t, path, 11, "iteration %d must see fresh working state", i)
	}
}
