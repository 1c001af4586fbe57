package model

import "fmt"

// TerrainType classifies a single map tile.
type TerrainType byte

const (
	Land   TerrainType = 0 // passable ground
	Water  TerrainType = 1 // naval only
	Cliff  TerrainType = 2 // impassable (rock, tree, wall)
	Bridge TerrainType = 3 // land corridor over water
)

// terrainGlyphs is the scenario file encoding of a tile row.
var terrainGlyphs = map[rune]TerrainType{
	'.': Land,
	'~': Water,
	'#': Cliff,
	'=': Bridge,
}

// Map is the tile grid the units stand on.
type Map struct {
	Width  int
	Height int
	Tiles  []TerrainType // row-major: Tiles[y*Width + x]
}

// NewMap returns a width x height map of open land.
func NewMap(width, height int) *Map {
	return &Map{Width: width, Height: height, Tiles: make([]TerrainType, width*height)}
}

// ParseMap builds a map from rows of terrain glyphs. All rows must have
// the same length.
func ParseMap(rows []string) (*Map, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("map has no rows")
	}
	width := len([]rune(rows[0]))
	m := NewMap(width, len(rows))
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != width {
			return nil, fmt.Errorf("map row %d: width %d, want %d", y, len(runes), width)
		}
		for x, r := range runes {
			t, ok := terrainGlyphs[r]
			if !ok {
				return nil, fmt.Errorf("map row %d col %d: unknown terrain %q", y, x, r)
			}
			m.Tiles[y*width+x] = t
		}
	}
	return m, nil
}

// InBounds reports whether (x, y) is a tile of the map.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// At returns the terrain at tile (x, y). Returns Cliff for out-of-bounds
// coordinates so nothing can be placed off the map.
func (m *Map) At(x, y int) TerrainType {
	if !m.InBounds(x, y) {
		return Cliff
	}
	return m.Tiles[y*m.Width+x]
}

// Clip restricts the half-open rectangle [x0,x1) x [y0,y1) to the map.
func (m *Map) Clip(x0, y0, x1, y1 int) (int, int, int, int) {
	x0 = max(x0, 0)
	y0 = max(y0, 0)
	x1 = min(x1, m.Width)
	y1 = min(y1, m.Height)
	return x0, y0, x1, y1
}

// Passable reports whether a unit of domain d may stand on every tile of
// the w x h footprint anchored at (x, y).
func (m *Map) Passable(d MoveDomain, x, y, w, h int) bool {
	for ty := y; ty < y+h; ty++ {
		for tx := x; tx < x+w; tx++ {
			if !m.InBounds(tx, ty) {
				return false
			}
			t := m.At(tx, ty)
			switch d {
			case DomainFly:
			case DomainNaval:
				if t != Water {
					return false
				}
			default:
				if t == Water || t == Cliff {
					return false
				}
			}
		}
	}
	return true
}
