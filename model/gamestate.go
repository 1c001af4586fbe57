package model

import "fmt"

// GameState is the per-tick snapshot the host simulation sends to the
// trigger sidecar. The host owns the simulation; the snapshot replaces the
// sidecar's copy of units and diplomacy wholesale.
type GameState struct {
	Tick       int           `json:"tick"`
	ThisPlayer int           `json:"thisPlayer"`
	Players    []PlayerState `json:"players"`
	Units      []UnitState   `json:"units"`
}

type PlayerState struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Enemy uint32 `json:"enemy"`
}

type UnitState struct {
	ID      int    `json:"id"`
	Type    string `json:"type"`
	Owner   int    `json:"owner"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Rescued bool   `json:"rescued"`
}

// Apply replaces the world's units and player diplomacy with the snapshot
// and recomputes every counter. On error the world is left unchanged.
func (w *World) Apply(gs GameState) error {
	if gs.ThisPlayer < 0 || gs.ThisPlayer >= MaxPlayers {
		return fmt.Errorf("this player %d out of range [0,%d)", gs.ThisPlayer, MaxPlayers)
	}
	if len(gs.Units) > UnitMax {
		return fmt.Errorf("%w: snapshot has %d units", ErrWorldFull, len(gs.Units))
	}
	units := make([]*Unit, 0, len(gs.Units))
	for _, us := range gs.Units {
		t, err := w.Catalog.Lookup(us.Type)
		if err != nil {
			return fmt.Errorf("unit %d: %w", us.ID, err)
		}
		if us.Owner < 0 || us.Owner >= MaxPlayers {
			return fmt.Errorf("unit %d: owner %d out of range", us.ID, us.Owner)
		}
		units = append(units, &Unit{ID: us.ID, Type: t, Owner: us.Owner, X: us.X, Y: us.Y, Rescued: us.Rescued})
	}
	for _, ps := range gs.Players {
		if ps.Index < 0 || ps.Index >= MaxPlayers {
			return fmt.Errorf("player %d out of range [0,%d)", ps.Index, MaxPlayers)
		}
	}

	for _, ps := range gs.Players {
		p := &w.Players[ps.Index]
		p.Enemy = ps.Enemy
		if ps.Name != "" {
			p.Name = ps.Name
		}
	}
	w.this = gs.ThisPlayer
	w.units = units
	for _, u := range units {
		if u.ID >= w.nextID {
			w.nextID = u.ID + 1
		}
	}
	w.Recount()
	return nil
}
