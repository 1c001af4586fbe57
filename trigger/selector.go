package trigger

import (
	"errors"
	"fmt"

	"github.com/nstehr/vimy/vimy-triggers/model"
)

// ErrBadPlayer is returned for player arguments that are neither a valid
// index nor one of "any" or "this".
var ErrBadPlayer = errors.New("bad player")

type selectorKind byte

const (
	selectIndex selectorKind = iota
	selectAny
	selectThis
)

// PlayerSelector picks the players a condition looks at. "this" is bound
// to the active player at evaluation time, not at parse time.
type PlayerSelector struct {
	kind  selectorKind
	index int
}

// AnyPlayer selects every player slot.
func AnyPlayer() PlayerSelector { return PlayerSelector{kind: selectAny} }

// ThisPlayer selects the active player.
func ThisPlayer() PlayerSelector { return PlayerSelector{kind: selectThis} }

// Player selects player i, which must be in [0, MaxPlayers).
func Player(i int) (PlayerSelector, error) {
	if i < 0 || i >= model.MaxPlayers {
		return PlayerSelector{}, fmt.Errorf("%w: %d not in [0,%d)", ErrBadPlayer, i, model.MaxPlayers)
	}
	return PlayerSelector{kind: selectIndex, index: i}, nil
}

// ParsePlayer accepts an integer index or the strings "any" and "this".
func ParsePlayer(v any) (PlayerSelector, error) {
	switch p := v.(type) {
	case int:
		return Player(p)
	case int64:
		return Player(int(p))
	case float64:
		if p != float64(int(p)) {
			return PlayerSelector{}, fmt.Errorf("%w: %v", ErrBadPlayer, p)
		}
		return Player(int(p))
	case string:
		switch p {
		case "any":
			return AnyPlayer(), nil
		case "this":
			return ThisPlayer(), nil
		}
	}
	return PlayerSelector{}, fmt.Errorf("%w: %v", ErrBadPlayer, v)
}

// Range returns the half-open player range [lo, hi) for world w.
func (s PlayerSelector) Range(w World) (lo, hi int) {
	switch s.kind {
	case selectAny:
		return 0, model.MaxPlayers
	case selectThis:
		p := w.ThisPlayer()
		return p, p + 1
	}
	return s.index, s.index + 1
}

// Matches reports whether owner is selected in world w.
func (s PlayerSelector) Matches(w World, owner int) bool {
	lo, hi := s.Range(w)
	return owner >= lo && owner < hi
}

func (s PlayerSelector) String() string {
	switch s.kind {
	case selectAny:
		return "any"
	case selectThis:
		return "this"
	}
	return fmt.Sprintf("%d", s.index)
}
