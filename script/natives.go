package script

import (
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/nstehr/vimy/vimy-triggers/trigger"
)

func (rt *Runtime) natives() map[string]lua.Function {
	return map[string]lua.Function{
		"add-trigger":          rt.addTrigger,
		"if-unit":              rt.ifUnit,
		"if-near-unit":         rt.ifNearUnit(false),
		"if-rescued-near-unit": rt.ifNearUnit(true),
		"if-opponents":         rt.ifOpponents,
		"action-victory":       rt.action("action-victory", rt.game.Victory),
		"action-defeat":        rt.action("action-defeat", rt.game.Defeat),
		"action-draw":          rt.action("action-draw", rt.game.Draw),
	}
}

func (rt *Runtime) checkArgs(l *lua.State, name string, n int) {
	if got := l.Top(); got != n {
		rt.raise(l, fmt.Errorf("%s: expected %d arguments, got %d", name, n, got))
	}
}

// playerArg reads a player index or the strings "any" and "this".
func playerArg(l *lua.State, index int) any {
	if l.TypeOf(index) == lua.TypeNumber {
		n, _ := l.ToNumber(index)
		return n
	}
	s, _ := l.ToString(index)
	return s
}

func (rt *Runtime) addTrigger(l *lua.State) int {
	rt.checkArgs(l, "add-trigger", 2)
	lua.CheckType(l, 1, lua.TypeFunction)
	lua.CheckType(l, 2, lua.TypeFunction)

	cond := &luaCallable{rt: rt, ref: rt.ref(1)}
	action := &luaCallable{rt: rt, ref: rt.ref(2)}
	if err := rt.engine.Register(cond, action); err != nil {
		rt.unref(cond.ref)
		rt.unref(action.ref)
		rt.raise(l, err)
	}
	return 0
}

func (rt *Runtime) ifUnit(l *lua.State) int {
	rt.checkArgs(l, "if-unit", 4)
	c, err := trigger.NewUnitCount(rt.catalog, playerArg(l, 1), lua.CheckString(l, 2),
		lua.CheckInteger(l, 3), lua.CheckString(l, 4))
	if err != nil {
		rt.raise(l, err)
		return 0
	}
	l.PushBoolean(c.Eval(rt.world))
	return 1
}

func (rt *Runtime) ifNearUnit(rescued bool) lua.Function {
	name := "if-near-unit"
	if rescued {
		name = "if-rescued-near-unit"
	}
	return func(l *lua.State) int {
		rt.checkArgs(l, name, 5)
		c, err := trigger.NewNearUnitCount(rt.catalog, playerArg(l, 1), lua.CheckString(l, 2),
			lua.CheckInteger(l, 3), lua.CheckString(l, 4), lua.CheckString(l, 5), rescued)
		if err != nil {
			rt.raise(l, err)
			return 0
		}
		l.PushBoolean(c.Eval(rt.world))
		return 1
	}
}

func (rt *Runtime) ifOpponents(l *lua.State) int {
	rt.checkArgs(l, "if-opponents", 3)
	c, err := trigger.NewOpponentCount(playerArg(l, 1), lua.CheckString(l, 2), lua.CheckInteger(l, 3))
	if err != nil {
		rt.raise(l, err)
		return 0
	}
	l.PushBoolean(c.Eval(rt.world))
	return 1
}

func (rt *Runtime) action(name string, f func()) lua.Function {
	return func(l *lua.State) int {
		rt.checkArgs(l, name, 0)
		f()
		return 0
	}
}

// prelude defines the stock single-player triggers: win when no opponent
// has units left, lose when the local player has none. Scenario scripts
// may replace it.
const prelude = `
_G["single-player-triggers"] = function()
  add_trigger(function() return if_opponents("this", "==", 0) end, action_victory)
  add_trigger(function() return if_unit("this", "==", 0, "all") end, action_defeat)
end
`
