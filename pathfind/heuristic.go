package pathfind

import "math"

// Point is a 2D grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Manhattan is the L1 distance: |ax-bx| + |ay-by|. Admissible and consistent
// for 4-directional unit-cost grids.
func Manhattan(a, b Point) float64 {
	return math.Abs(float64(a.X-b.X)) + math.Abs(float64(a.Y-b.Y))
}

// Chebyshev is the L∞ distance: max(|ax-bx|, |ay-by|). Admissible for
// 8-directional grids where diagonal steps cost the same as straight ones.
func Chebyshev(a, b Point) float64 {
	return math.Max(math.Abs(float64(a.X-b.X)), math.Abs(float64(a.Y-b.Y)))
}

// Euclidean is the straight-line L2 distance.
func Euclidean(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Zero ignores both nodes, reducing A* to Dijkstra's algorithm.
func Zero[N comparable](_, _ N) float64 { return 0 }
