package model

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrWorldFull is returned by AddUnit when UnitMax live units already exist.
var ErrWorldFull = errors.New("world is at unit capacity")

// Unit is a live unit on the map. X and Y name its top-left tile.
type Unit struct {
	ID      int
	Type    *UnitType
	Owner   int
	X       int
	Y       int
	Rescued bool
}

// World is the mutable simulation state triggers run against: catalog,
// players, map and live units. It doubles as the reference spatial index
// (linear scans over the live unit list).
type World struct {
	Catalog *Catalog
	Map     *Map
	Players [MaxPlayers]Player

	units  []*Unit
	nextID int
	this   int
}

// NewWorld creates an empty world. A nil map means an unbounded 128x128 field.
func NewWorld(catalog *Catalog, m *Map) *World {
	if m == nil {
		m = NewMap(128, 128)
	}
	w := &World{Catalog: catalog, Map: m, nextID: 1}
	for i := range w.Players {
		w.Players[i].Index = i
		w.Players[i].resetCounts(catalog.Len())
	}
	return w
}

// Player returns the bookkeeping record for player i.
func (w *World) Player(i int) *Player { return &w.Players[i] }

// ThisPlayer is the active (local) player.
func (w *World) ThisPlayer() int { return w.this }

func (w *World) SetThisPlayer(i int) error {
	if i < 0 || i >= MaxPlayers {
		return fmt.Errorf("this player %d out of range [0,%d)", i, MaxPlayers)
	}
	w.this = i
	return nil
}

func (w *World) NumUnitTypes() int { return w.Catalog.Len() }

// Units returns the live units in creation order. The slice must not be modified.
func (w *World) Units() []*Unit { return w.units }

// AddUnit places a new unit and updates its owner's counters.
func (w *World) AddUnit(t *UnitType, owner, x, y int) (*Unit, error) {
	if owner < 0 || owner >= MaxPlayers {
		return nil, fmt.Errorf("owner %d out of range [0,%d)", owner, MaxPlayers)
	}
	if len(w.units) >= UnitMax {
		return nil, ErrWorldFull
	}
	if !w.Map.Passable(t.Domain, x, y, t.TileWidth, t.TileHeight) {
		return nil, fmt.Errorf("%s cannot stand at (%d,%d)", t.Ident, x, y)
	}
	u := &Unit{ID: w.nextID, Type: t, Owner: owner, X: x, Y: y}
	w.nextID++
	w.units = append(w.units, u)
	w.Players[owner].countUnit(t, 1)
	return u, nil
}

// RemoveUnit drops a unit (death, despawn). Unknown ids are ignored.
func (w *World) RemoveUnit(id int) {
	for i, u := range w.units {
		if u.ID != id {
			continue
		}
		w.Players[u.Owner].countUnit(u.Type, -1)
		w.units = append(w.units[:i], w.units[i+1:]...)
		slog.Debug("unit removed", "id", id, "type", u.Type.Ident, "owner", u.Owner)
		return
	}
}

// Unit returns the live unit with the given id, or nil.
func (w *World) Unit(id int) *Unit {
	for _, u := range w.units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// FindUnitsByType returns every live unit of type t.
func (w *World) FindUnitsByType(t *UnitType) []*Unit {
	var out []*Unit
	for _, u := range w.units {
		if u.Type == t {
			out = append(out, u)
		}
	}
	return out
}

// SelectUnits returns every live unit whose footprint intersects the
// rectangle [x0,x1) x [y0,y1). The far edges are exclusive, so callers
// add 1 to include them. The rectangle is clipped to the map first.
func (w *World) SelectUnits(x0, y0, x1, y1 int) []*Unit {
	x0, y0, x1, y1 = w.Map.Clip(x0, y0, x1, y1)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}
	var out []*Unit
	for _, u := range w.units {
		if u.X+u.Type.TileWidth <= x0 || u.X >= x1 {
			continue
		}
		if u.Y+u.Type.TileHeight <= y0 || u.Y >= y1 {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Recount rebuilds every player's counters from the live unit list.
func (w *World) Recount() {
	for i := range w.Players {
		w.Players[i].resetCounts(w.Catalog.Len())
	}
	for _, u := range w.units {
		w.Players[u.Owner].countUnit(u.Type, 1)
	}
}
