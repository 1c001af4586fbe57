package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownUnitType is returned by Catalog.Lookup for identifiers that are not registered.
var ErrUnknownUnitType = errors.New("unknown unit type")

// MoveDomain is how a unit type moves. Proximity checks use a tighter
// neighborhood for land units than for ships and aircraft.
type MoveDomain byte

const (
	DomainLand  MoveDomain = 0
	DomainFly   MoveDomain = 1
	DomainNaval MoveDomain = 2
)

func (d MoveDomain) String() string {
	switch d {
	case DomainLand:
		return "land"
	case DomainFly:
		return "fly"
	case DomainNaval:
		return "naval"
	}
	return fmt.Sprintf("domain(%d)", byte(d))
}

// ParseMoveDomain accepts the names produced by MoveDomain.String.
func ParseMoveDomain(s string) (MoveDomain, error) {
	switch strings.ToLower(s) {
	case "", "land":
		return DomainLand, nil
	case "fly", "air":
		return DomainFly, nil
	case "naval", "sea":
		return DomainNaval, nil
	}
	return DomainLand, fmt.Errorf("unknown move domain %q", s)
}

// UnitType is one entry of the unit-type catalog.
type UnitType struct {
	Ident      string // "unit-footman", "unit-farm"
	Name       string
	Index      int // slot in Player.UnitTypesCount
	TileWidth  int
	TileHeight int
	Building   bool
	Domain     MoveDomain
}

// Catalog is the ordered set of known unit types. Index values are dense
// and match insertion order.
type Catalog struct {
	types   []*UnitType
	byIdent map[string]*UnitType
}

func NewCatalog() *Catalog {
	return &Catalog{byIdent: make(map[string]*UnitType)}
}

// Add registers t and assigns its Index. Footprints default to 1x1.
func (c *Catalog) Add(t *UnitType) error {
	if t.Ident == "" {
		return errors.New("unit type needs an ident")
	}
	if _, ok := c.byIdent[t.Ident]; ok {
		return fmt.Errorf("duplicate unit type %q", t.Ident)
	}
	if t.TileWidth <= 0 {
		t.TileWidth = 1
	}
	if t.TileHeight <= 0 {
		t.TileHeight = 1
	}
	t.Index = len(c.types)
	c.types = append(c.types, t)
	c.byIdent[t.Ident] = t
	return nil
}

// Lookup finds a unit type by ident. The error names the closest known
// ident when one is within a small edit distance.
func (c *Catalog) Lookup(ident string) (*UnitType, error) {
	if t, ok := c.byIdent[ident]; ok {
		return t, nil
	}
	if s := c.suggest(ident); s != "" {
		return nil, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownUnitType, ident, s)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownUnitType, ident)
}

func (c *Catalog) Len() int { return len(c.types) }

// Types returns the catalog in index order. The slice must not be modified.
func (c *Catalog) Types() []*UnitType { return c.types }

func (c *Catalog) suggest(ident string) string {
	best := ""
	bestDist := editLimit(len(ident)) + 1
	for _, t := range c.types {
		d := levenshtein.ComputeDistance(strings.ToLower(ident), strings.ToLower(t.Ident))
		if d < bestDist {
			best, bestDist = t.Ident, d
		}
	}
	return best
}

func editLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
