package trigger

import (
	"fmt"
	"log/slog"

	"github.com/nstehr/vimy/vimy-triggers/model"
)

// World is the game state conditions read. *model.World implements it;
// the spatial queries may be backed by any index.
type World interface {
	Player(i int) *model.Player
	ThisPlayer() int
	NumUnitTypes() int
	FindUnitsByType(t *model.UnitType) []*model.Unit
	// SelectUnits returns units intersecting [x0,x1) x [y0,y1).
	SelectUnits(x0, y0, x1, y1 int) []*model.Unit
}

// UnitCount is the if-unit condition: some player in range owns Quantity
// units of Spec, compared with Op.
type UnitCount struct {
	Player   PlayerSelector
	Op       Operator
	Quantity int
	Spec     UnitSpec
}

// NewUnitCount resolves the operator and unit specifier once.
func NewUnitCount(c Catalog, player any, op string, quantity int, unit string) (*UnitCount, error) {
	sel, err := ParsePlayer(player)
	if err != nil {
		return nil, fmt.Errorf("if-unit: %w", err)
	}
	o, err := ParseOperator(op)
	if err != nil {
		return nil, fmt.Errorf("if-unit: %w", err)
	}
	spec, err := ResolveUnitSpec(c, unit)
	if err != nil {
		return nil, fmt.Errorf("if-unit: %w", err)
	}
	return &UnitCount{Player: sel, Op: o, Quantity: quantity, Spec: spec}, nil
}

func (c *UnitCount) Eval(w World) bool {
	lo, hi := c.Player.Range(w)
	for pn := lo; pn < hi; pn++ {
		p := w.Player(pn)
		switch c.Spec.Kind {
		case SpecAny:
			for j := 0; j < w.NumUnitTypes(); j++ {
				if c.Op.Compare(p.Count(j), c.Quantity) {
					return true
				}
			}
		case SpecAll:
			if c.Op.Compare(p.TotalNumUnits, c.Quantity) {
				return true
			}
		case SpecNonBuildings:
			if c.Op.Compare(p.NumFoodUnits, c.Quantity) {
				return true
			}
		case SpecBuildings:
			if c.Op.Compare(p.NumBuildings, c.Quantity) {
				return true
			}
		default:
			if c.Op.Compare(p.Count(c.Spec.Type.Index), c.Quantity) {
				return true
			}
		}
	}
	return false
}

// NearUnitCount is the if-near-unit condition (and, with RescuedOnly,
// if-rescued-near-unit): around some unit of type Anchor, the number of
// units matching Spec and Player compares true against Quantity.
type NearUnitCount struct {
	Player      PlayerSelector
	Op          Operator
	Quantity    int
	Spec        UnitSpec
	Anchor      *model.UnitType
	RescuedOnly bool
}

// NewNearUnitCount resolves operator, specifier and anchor type once.
func NewNearUnitCount(c Catalog, player any, op string, quantity int, unit, anchor string, rescuedOnly bool) (*NearUnitCount, error) {
	name := "if-near-unit"
	if rescuedOnly {
		name = "if-rescued-near-unit"
	}
	sel, err := ParsePlayer(player)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	o, err := ParseOperator(op)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	spec, err := ResolveUnitSpec(c, unit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	at, err := c.Lookup(anchor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &NearUnitCount{Player: sel, Op: o, Quantity: quantity, Spec: spec, Anchor: at, RescuedOnly: rescuedOnly}, nil
}

func (c *NearUnitCount) Eval(w World) bool {
	for _, anchor := range w.FindUnitsByType(c.Anchor) {
		around := w.SelectUnits(neighborhood(anchor))
		n := 0
		for _, u := range around {
			if c.RescuedOnly && !u.Rescued {
				continue
			}
			if !c.Spec.matchesNeighbor(u) {
				continue
			}
			if c.Player.Matches(w, u.Owner) {
				n++
			}
		}
		slog.Debug("near-unit count", "anchor", anchor.ID, "type", c.Anchor.Ident, "around", len(around), "matched", n)
		if c.Op.Compare(n, c.Quantity) {
			return true
		}
	}
	return false
}

// neighborhood is the search rectangle around a unit: one tile of margin
// for land units, two for everything else. The far edges get the +1 that
// SelectUnits' exclusive bound needs.
func neighborhood(u *model.Unit) (x0, y0, x1, y1 int) {
	r := 2
	if u.Type.Domain == model.DomainLand {
		r = 1
	}
	return u.X - r, u.Y - r, u.X + u.Type.TileWidth + r, u.Y + u.Type.TileHeight + r
}

// OpponentCount is the if-opponents condition: for some player p in range,
// the number of other players that mark p as an enemy and still have units
// compares true against Quantity. The count restarts for every p.
type OpponentCount struct {
	Player   PlayerSelector
	Op       Operator
	Quantity int
}

func NewOpponentCount(player any, op string, quantity int) (*OpponentCount, error) {
	sel, err := ParsePlayer(player)
	if err != nil {
		return nil, fmt.Errorf("if-opponents: %w", err)
	}
	o, err := ParseOperator(op)
	if err != nil {
		return nil, fmt.Errorf("if-opponents: %w", err)
	}
	return &OpponentCount{Player: sel, Op: o, Quantity: quantity}, nil
}

func (c *OpponentCount) Eval(w World) bool {
	lo, hi := c.Player.Range(w)
	for pn := lo; pn < hi; pn++ {
		n := 0
		for i := 0; i < model.MaxPlayers; i++ {
			if i == pn {
				continue
			}
			other := w.Player(i)
			if other.IsEnemy(pn) && other.TotalNumUnits > 0 {
				n++
			}
		}
		if c.Op.Compare(n, c.Quantity) {
			return true
		}
	}
	return false
}
