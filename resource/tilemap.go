package resource

import "fmt"

// RPG Maker style direction codes.
const (
	DirDown  = 2
	DirLeft  = 4
	DirRight = 6
	DirUp    = 8
)

// Collision mask bits for one tile, row-major in TileMap.Collision.
// A set bit blocks movement OUT of the tile in that direction.
const (
	BlockDown  = 1 << 0
	BlockLeft  = 1 << 1
	BlockRight = 1 << 2
	BlockUp    = 1 << 3
	BlockAll   = BlockDown | BlockLeft | BlockRight | BlockUp
)

// TileMap is the JSON document describing one map: a collision grid with
// optional region layer, region-wide movement blocks, and per-region terrain
// cost multipliers.
type TileMap struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	// Collision holds one blocked-direction mask per tile, row-major
	// (index = y*Width + x). 0 is fully passable, BlockAll is a wall.
	Collision []int `json:"collision"`
	// Regions holds one region ID per tile, row-major. Optional.
	Regions []int `json:"regions,omitempty"`
	// BlockedRegions lists region IDs that block all movement.
	BlockedRegions []int `json:"blocked_regions,omitempty"`
	// RegionCosts maps region ID to the cost of stepping onto a tile in that
	// region. Unlisted regions cost 1.
	RegionCosts map[int]float64 `json:"region_costs,omitempty"`
}

// Validate checks the document's structural consistency.
func (m *TileMap) Validate() error {
	if m.ID <= 0 {
		return fmt.Errorf("resource: map %q: id must be positive", m.Name)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("resource: map %d: dimensions %dx%d invalid", m.ID, m.Width, m.Height)
	}
	if len(m.Collision) != m.Width*m.Height {
		return fmt.Errorf("resource: map %d: collision grid has %d cells, want %d",
			m.ID, len(m.Collision), m.Width*m.Height)
	}
	if m.Regions != nil && len(m.Regions) != m.Width*m.Height {
		return fmt.Errorf("resource: map %d: region grid has %d cells, want %d",
			m.ID, len(m.Regions), m.Width*m.Height)
	}
	for i, mask := range m.Collision {
		if mask < 0 || mask > BlockAll {
			return fmt.Errorf("resource: map %d: bad collision mask %d at cell %d", m.ID, mask, i)
		}
	}
	for region, cost := range m.RegionCosts {
		if cost <= 0 {
			return fmt.Errorf("resource: map %d: region %d cost %v must be positive", m.ID, region, cost)
		}
	}
	return nil
}

// PassabilityMap is the compiled movement model for one map: per-tile,
// per-direction passability plus the terrain cost of stepping onto each tile.
type PassabilityMap struct {
	Width  int
	Height int
	// data[y][x][dir index]; indices 0..3 = down, left, right, up.
	data [][][4]bool
	// regions[y][x]; nil when the map carries no region layer.
	regions [][]int
	costs   map[int]float64
	blocked map[int]bool
}

// NewPassabilityMap creates a map with every tile passable in all directions.
func NewPassabilityMap(w, h int) *PassabilityMap {
	pm := &PassabilityMap{Width: w, Height: h}
	pm.data = make([][][4]bool, h)
	for y := range pm.data {
		pm.data[y] = make([][4]bool, w)
		for x := range pm.data[y] {
			pm.data[y][x] = [4]bool{true, true, true, true}
		}
	}
	return pm
}

func dirIndex(dir int) int {
	switch dir {
	case DirDown:
		return 0
	case DirLeft:
		return 1
	case DirRight:
		return 2
	case DirUp:
		return 3
	}
	return -1
}

// SetPass sets passability for direction 2/4/6/8 at (x, y).
func (pm *PassabilityMap) SetPass(x, y, dir int, passable bool) {
	if x < 0 || x >= pm.Width || y < 0 || y >= pm.Height {
		return
	}
	if i := dirIndex(dir); i >= 0 {
		pm.data[y][x][i] = passable
	}
}

// CanPass reports whether movement in direction 2/4/6/8 is allowed out of (x, y).
// Out-of-bounds tiles and blocked regions never pass.
func (pm *PassabilityMap) CanPass(x, y, dir int) bool {
	if x < 0 || x >= pm.Width || y < 0 || y >= pm.Height {
		return false
	}
	if pm.blocked[pm.RegionAt(x, y)] {
		return false
	}
	if i := dirIndex(dir); i >= 0 {
		return pm.data[y][x][i]
	}
	return false
}

// SetRegion sets the region ID at (x, y), creating the region layer on first use.
func (pm *PassabilityMap) SetRegion(x, y, regionID int) {
	if x < 0 || x >= pm.Width || y < 0 || y >= pm.Height {
		return
	}
	if pm.regions == nil {
		pm.regions = make([][]int, pm.Height)
		for i := range pm.regions {
			pm.regions[i] = make([]int, pm.Width)
		}
	}
	pm.regions[y][x] = regionID
}

// RegionAt returns the region ID at (x, y), or 0 without a region layer.
func (pm *PassabilityMap) RegionAt(x, y int) int {
	if pm.regions == nil || x < 0 || x >= pm.Width || y < 0 || y >= pm.Height {
		return 0
	}
	return pm.regions[y][x]
}

// TerrainCost returns the cost of stepping onto (x, y). Default 1.
func (pm *PassabilityMap) TerrainCost(x, y int) float64 {
	if c, ok := pm.costs[pm.RegionAt(x, y)]; ok {
		return c
	}
	return 1
}

// RegionBlocked reports whether the tile's region blocks all movement.
func (pm *PassabilityMap) RegionBlocked(x, y int) bool {
	return pm.blocked[pm.RegionAt(x, y)]
}

// Compile validates a TileMap and builds its PassabilityMap.
func Compile(m *TileMap) (*PassabilityMap, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	pm := NewPassabilityMap(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			mask := m.Collision[y*m.Width+x]
			pm.data[y][x][0] = mask&BlockDown == 0
			pm.data[y][x][1] = mask&BlockLeft == 0
			pm.data[y][x][2] = mask&BlockRight == 0
			pm.data[y][x][3] = mask&BlockUp == 0
			if m.Regions != nil {
				pm.SetRegion(x, y, m.Regions[y*m.Width+x])
			}
		}
	}
	pm.costs = m.RegionCosts
	pm.blocked = make(map[int]bool, len(m.BlockedRegions))
	for _, r := range m.BlockedRegions {
		pm.blocked[r] = true
	}
	return pm, nil
}
