package trigger

import (
	"testing"

	"github.com/nstehr/vimy/vimy-triggers/model"
)

func TestEndActions(t *testing.T) {
	tests := []struct {
		name string
		want GameResult
	}{
		{"action-victory", Victory},
		{"action-defeat", Defeat},
		{"action-draw", Draw},
	}
	for _, tc := range tests {
		var g Game
		g.Start()
		if _, err := g.Actions()[tc.name].Call(); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if g.Result != tc.want || !g.Paused || g.Running {
			t.Errorf("%s: game = %+v, want result %v paused, not running", tc.name, g, tc.want)
		}

		// Firing again, or after a different result, still forces the flags.
		g.Paused = false
		g.Running = true
		g.Actions()[tc.name].Call()
		if g.Result != tc.want || !g.Paused || g.Running {
			t.Errorf("%s refire: game = %+v", tc.name, g)
		}
	}
}

func TestStartResets(t *testing.T) {
	g := Game{Result: Defeat, Paused: true}
	g.Start()
	if g.Result != Undecided || g.Paused || !g.Running {
		t.Errorf("after Start: %+v", g)
	}
}

func TestSinglePlayerDefaults(t *testing.T) {
	w := testWorld(t)
	w.Player(1).SetEnemy(0)
	place(t, w,
		model.UnitState{Type: "unit-footman", Owner: 0, X: 1, Y: 1},
		model.UnitState{Type: "unit-footman", Owner: 1, X: 9, Y: 9},
	)
	g := &Game{}
	g.Start()
	e := NewEngine(nil)
	if err := e.Init(SinglePlayer(e, w, g)); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if tbl, _ := e.Triggers(); tbl.Len() != 2 {
		t.Fatalf("len = %d, want 2", tbl.Len())
	}

	for range 4 {
		if err := e.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !g.Running {
		t.Fatalf("game ended early: %v", g.Result)
	}

	// Only the local player's units are left.
	place(t, w, model.UnitState{Type: "unit-footman", Owner: 0, X: 1, Y: 1})
	for range 2 {
		if err := e.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if g.Result != Victory {
		t.Errorf("result = %v, want victory", g.Result)
	}
}
