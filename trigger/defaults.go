package trigger

// SinglePlayer returns the stock single-player trigger set as a callable
// for Engine.Init: victory once no opponent of the active player has units
// left, defeat once the active player has none. The defeat trigger is
// registered last and so is checked first.
func SinglePlayer(e *Engine, w World, g *Game) Callable {
	return CallableFunc(func() (Value, error) {
		win := &OpponentCount{Player: ThisPlayer(), Op: OpEq, Quantity: 0}
		if err := e.Register(Condition(w, win.Eval), ActionFunc(g.Victory)); err != nil {
			return Falsy, err
		}
		lose := &UnitCount{Player: ThisPlayer(), Op: OpEq, Quantity: 0, Spec: UnitSpec{Kind: SpecAll}}
		if err := e.Register(Condition(w, lose.Eval), ActionFunc(g.Defeat)); err != nil {
			return Falsy, err
		}
		return Falsy, nil
	})
}
