package trigger

import (
	"errors"
	"strings"
	"testing"

	"github.com/nstehr/vimy/vimy-triggers/model"
)

func TestCompilerConditions(t *testing.T) {
	w := testWorld(t)
	w.Player(1).SetEnemy(0)
	place(t, w,
		model.UnitState{Type: "unit-circle-of-power", Owner: 15, X: 10, Y: 10},
		model.UnitState{Type: "unit-peasant", Owner: 0, X: 11, Y: 10, Rescued: true},
		model.UnitState{Type: "unit-footman", Owner: 1, X: 30, Y: 30},
	)
	cp := NewCompiler(w, w.Catalog, &Game{})

	tests := []struct {
		src  string
		want Value
	}{
		{`IfUnit("any", ">=", 0, "all")`, Truthy},
		{`IfUnit(0, "==", 1, "unit-peasant")`, Truthy},
		{`IfUnit("this", "==", 0, "buildings")`, Truthy},
		{`IfUnit(1, ">", 1, "units")`, Falsy},
		{`IfNearUnit(0, "==", 1, "unit-peasant", "unit-circle-of-power")`, Truthy},
		{`IfRescuedNearUnit("any", ">=", 1, "units", "unit-circle-of-power")`, Truthy},
		{`IfOpponents("this", "==", 1)`, Truthy},
		{`IfOpponents(0, "==", 1) && IfUnit(0, "<", 1, "unit-footman")`, Truthy},
		{`!IfOpponents(0, "==", 1)`, Falsy},
	}
	for _, tc := range tests {
		c, err := cp.Condition(tc.src)
		if err != nil {
			t.Fatalf("Condition(%s): %v", tc.src, err)
		}
		got, err := c.Call()
		if err != nil {
			t.Fatalf("Call(%s): %v", tc.src, err)
		}
		if got != tc.want {
			t.Errorf("%s = %v, want %v", tc.src, got, tc.want)
		}
	}
}

func TestCompilerRejectsLiteralsAtLoad(t *testing.T) {
	w := testWorld(t)
	cp := NewCompiler(w, w.Catalog, &Game{})

	tests := []struct {
		src  string
		want error
	}{
		{`IfUnit("any", "<>", 0, "all")`, ErrBadOperator},
		{`IfOpponents(0, "eq", 0)`, ErrBadOperator},
		{`IfUnit(16, "==", 0, "all")`, ErrBadPlayer},
		{`IfUnit("someone", "==", 0, "all")`, ErrBadPlayer},
		{`IfUnit(0, "==", 0, "unit-dragon")`, model.ErrUnknownUnitType},
		{`IfNearUnit(0, "==", 0, "all", "unit-dragon")`, model.ErrUnknownUnitType},
	}
	for _, tc := range tests {
		if _, err := cp.Condition(tc.src); !errors.Is(err, tc.want) {
			t.Errorf("Condition(%s) err = %v, want %v", tc.src, err, tc.want)
		}
	}

	if _, err := cp.Condition(`IfUnit(0, "==")`); err == nil {
		t.Error("expected compile error for wrong arity")
	}
}

func TestCompilerRuntimeOperatorError(t *testing.T) {
	w := testWorld(t)
	cp := NewCompiler(w, w.Catalog, &Game{})

	// The operator is not a literal, so it can only be checked when run.
	c, err := cp.Condition(`IfUnit(0, "<" + ">", 0, "all")`)
	if err != nil {
		t.Fatalf("Condition: %v", err)
	}
	if _, err := c.Call(); err == nil || !strings.Contains(err.Error(), ErrBadOperator.Error()) {
		t.Errorf("Call err = %v, want illegal comparison", err)
	}
}

func TestCompilerBuildsLiteralConditionsOnce(t *testing.T) {
	w := testWorld(t)
	circle := model.UnitState{Type: "unit-circle-of-power", Owner: 15, X: 10, Y: 10}
	place(t, w, circle)
	cp := NewCompiler(w, w.Catalog, &Game{})
	c, err := cp.Condition(`IfUnit("this", "==", 0, "all") && IfNearUnit(0, "<", 1, "units", "unit-circle-of-power")`)
	if err != nil {
		t.Fatalf("Condition: %v", err)
	}

	for i := range 3 {
		if i == 1 {
			place(t, w, circle, model.UnitState{Type: "unit-footman", Owner: 0, X: 3, Y: 3})
		}
		got, err := c.Call()
		if err != nil {
			t.Fatalf("Call %d: %v", i, err)
		}
		// The cached condition still sees the world as it is now.
		if want := i == 0; got.Fires() != want {
			t.Errorf("call %d fired = %v, want %v", i, got.Fires(), want)
		}
	}
	if len(cp.conds) != 2 {
		t.Errorf("built %d conditions, want 2", len(cp.conds))
	}
}

func TestCompilerActions(t *testing.T) {
	w := testWorld(t)
	g := &Game{}
	g.Start()
	cp := NewCompiler(w, w.Catalog, g)

	a, err := cp.Action(`ActionDraw()`)
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if _, err := a.Call(); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if g.Result != Draw || g.Running || !g.Paused {
		t.Errorf("game = %+v, want draw", *g)
	}
}

func TestCompiledTriggerThroughEngine(t *testing.T) {
	w := testWorld(t)
	g := &Game{}
	g.Start()
	cp := NewCompiler(w, w.Catalog, g)
	e := NewEngine(nil)

	cond, err := cp.Condition(`IfUnit("this", "==", 0, "all")`)
	if err != nil {
		t.Fatal(err)
	}
	act, err := cp.Action(`ActionDefeat()`)
	if err != nil {
		t.Fatal(err)
	}
	mustRegister(t, e, cond, act)

	if err := e.Step(); err != nil {
		t.Fatal(err)
	}
	if g.Result != Defeat || g.Running {
		t.Errorf("game = %+v, want defeat", *g)
	}
}
