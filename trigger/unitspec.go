package trigger

import (
	"fmt"

	"github.com/nstehr/vimy/vimy-triggers/model"
)

// SpecKind tags a UnitSpec.
type SpecKind byte

const (
	SpecConcrete     SpecKind = iota // exactly Type
	SpecAny                          // "any": any single unit type
	SpecAll                          // "all": every unit
	SpecNonBuildings                 // "units": every unit that is not a building
	SpecBuildings                    // "buildings": every building
)

// UnitSpec is a resolved unit-type specifier. Type is set only for SpecConcrete.
type UnitSpec struct {
	Kind SpecKind
	Type *model.UnitType
}

// Catalog resolves unit-type identifiers.
type Catalog interface {
	Lookup(ident string) (*model.UnitType, error)
}

// ResolveUnitSpec maps the sentinels any, all, units and buildings to their
// class; anything else is looked up in the catalog and a lookup error is
// returned as is.
func ResolveUnitSpec(c Catalog, ident string) (UnitSpec, error) {
	switch ident {
	case "any":
		return UnitSpec{Kind: SpecAny}, nil
	case "all":
		return UnitSpec{Kind: SpecAll}, nil
	case "units":
		return UnitSpec{Kind: SpecNonBuildings}, nil
	case "buildings":
		return UnitSpec{Kind: SpecBuildings}, nil
	}
	t, err := c.Lookup(ident)
	if err != nil {
		return UnitSpec{}, err
	}
	return UnitSpec{Kind: SpecConcrete, Type: t}, nil
}

func (s UnitSpec) String() string {
	switch s.Kind {
	case SpecConcrete:
		if s.Type == nil {
			return "<nil>"
		}
		return s.Type.Ident
	case SpecAny:
		return "any"
	case SpecAll:
		return "all"
	case SpecNonBuildings:
		return "units"
	case SpecBuildings:
		return "buildings"
	}
	return fmt.Sprintf("spec(%d)", byte(s.Kind))
}

// matchesNeighbor is the per-unit type test of the near-unit conditions.
// SpecAny and SpecAll never match a neighbor. Existing scenarios depend on
// that, so near-unit conditions only count with "units", "buildings" or a
// concrete type.
func (s UnitSpec) matchesNeighbor(u *model.Unit) bool {
	switch s.Kind {
	case SpecNonBuildings:
		return !u.Type.Building
	case SpecBuildings:
		return u.Type.Building
	case SpecConcrete:
		return u.Type == s.Type
	}
	return false
}
