package resource

import "github.com/kasuganosora/tilepathd/pathfind"

// step pairs a direction code with its coordinate delta and reverse.
var steps = []struct {
	dir, rev int
	dx, dy   int
}{
	{DirDown, DirUp, 0, 1},
	{DirLeft, DirRight, -1, 0},
	{DirRight, DirLeft, 1, 0},
	{DirUp, DirDown, 0, -1},
}

// BuildGraph compiles a PassabilityMap into the search engine's graph form.
// Every in-bounds tile is a graph key (a wall is present with no usable
// edges — unreachable, not missing); off-map coordinates are absent, which
// the engine reports as a lookup error. A step requires leaving the source
// tile in the movement direction AND entering the destination from the
// reverse direction, the RPG Maker passage rule, so blocked regions and
// walls are neither leavable nor enterable. Edge cost is the destination
// tile's terrain cost.
func BuildGraph(pm *PassabilityMap) pathfind.Graph[pathfind.Point] {
	g := make(pathfind.Graph[pathfind.Point], pm.Width*pm.Height)
	for y := 0; y < pm.Height; y++ {
		for x := 0; x < pm.Width; x++ {
			from := pathfind.Point{X: x, Y: y}
			var edges []pathfind.Edge[pathfind.Point]
			for _, s := range steps {
				nx, ny := x+s.dx, y+s.dy
				if nx < 0 || nx >= pm.Width || ny < 0 || ny >= pm.Height {
					continue
				}
				if !pm.CanPass(x, y, s.dir) || !pm.CanPass(nx, ny, s.rev) {
					continue
				}
				edges = append(edges, pathfind.Edge[pathfind.Point]{
					To:   pathfind.Point{X: nx, Y: ny},
					Cost: pm.TerrainCost(nx, ny),
				})
			}
			g[from] = edges
		}
	}
	return g
}
