package model

// MaxPlayers bounds player indices and the width of the enemy bitmask.
const MaxPlayers = 16

// UnitMax is the live-unit capacity of a world.
const UnitMax = 2048

// Player carries the bookkeeping counters read by trigger conditions.
// The world keeps them in sync as units are added and removed.
type Player struct {
	Index          int
	Name           string
	TotalNumUnits  int
	NumFoodUnits   int // units that are not buildings
	NumBuildings   int
	UnitTypesCount []int // indexed by UnitType.Index
	Enemy          uint32 // bit i set: player i is an enemy
}

// IsEnemy reports whether p considers player i an enemy.
func (p *Player) IsEnemy(i int) bool {
	if i < 0 || i >= MaxPlayers {
		return false
	}
	return p.Enemy&(1<<uint(i)) != 0
}

func (p *Player) SetEnemy(i int) {
	if i < 0 || i >= MaxPlayers {
		return
	}
	p.Enemy |= 1 << uint(i)
}

func (p *Player) countUnit(t *UnitType, delta int) {
	for len(p.UnitTypesCount) <= t.Index {
		p.UnitTypesCount = append(p.UnitTypesCount, 0)
	}
	p.UnitTypesCount[t.Index] += delta
	p.TotalNumUnits += delta
	if t.Building {
		p.NumBuildings += delta
	} else {
		p.NumFoodUnits += delta
	}
}

func (p *Player) resetCounts(numTypes int) {
	p.TotalNumUnits = 0
	p.NumFoodUnits = 0
	p.NumBuildings = 0
	p.UnitTypesCount = make([]int, numTypes)
}

// Count returns the number of live units of the unit type with the given index.
func (p *Player) Count(index int) int {
	if index < 0 || index >= len(p.UnitTypesCount) {
		return 0
	}
	return p.UnitTypesCount[index]
}
