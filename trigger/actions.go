package trigger

import (
	"fmt"
	"log/slog"
)

// GameResult is the outcome of a match.
type GameResult byte

const (
	Undecided GameResult = iota
	Victory
	Defeat
	Draw
)

func (r GameResult) String() string {
	switch r {
	case Undecided:
		return "undecided"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	case Draw:
		return "draw"
	}
	return fmt.Sprintf("result(%d)", byte(r))
}

// Game holds the flags the end-of-game actions set and the simulation
// loop reads. Once Running is false the loop stops ticking.
type Game struct {
	Result  GameResult
	Paused  bool
	Running bool
}

// Start resets the flags for a new match.
func (g *Game) Start() {
	g.Result = Undecided
	g.Paused = false
	g.Running = true
}

func (g *Game) Victory() { g.end(Victory) }
func (g *Game) Defeat()  { g.end(Defeat) }
func (g *Game) Draw()    { g.end(Draw) }

func (g *Game) end(r GameResult) {
	g.Result = r
	g.Paused = true
	g.Running = false
	slog.Info("game ended", "result", r)
}

// Actions returns the three terminal actions keyed by their script names.
func (g *Game) Actions() map[string]Callable {
	return map[string]Callable{
		"action-victory": ActionFunc(g.Victory),
		"action-defeat":  ActionFunc(g.Defeat),
		"action-draw":    ActionFunc(g.Draw),
	}
}
