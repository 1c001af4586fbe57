// Package script embeds a Lua runtime for scenario scripts and binds the
// trigger engine into it.
//
// Native functions are registered under their canonical names and under
// Lua-identifier aliases, so both of these work:
//
//	_G["add-trigger"](function() return _G["if-opponents"]("this", "==", 0) end, _G["action-victory"])
//	add_trigger(function() return if_opponents("this", "==", 0) end, action_victory)
//
// The global "*triggers*" holds the trigger table as a Lua sequence of
// {condition, action} pairs, newest first.
package script

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/nstehr/vimy/vimy-triggers/trigger"
)

// TriggersGlobal is the script-visible name of the trigger table.
const TriggersGlobal = "*triggers*"

// DefaultsGlobal names the function Init runs when no triggers exist.
const DefaultsGlobal = "single-player-triggers"

const refsKey = "vimy.trigger.refs"

// Runtime is one Lua state bound to one world, game and trigger engine.
// Like the engine it is single-threaded.
type Runtime struct {
	l       *lua.State
	world   trigger.World
	catalog trigger.Catalog
	game    *trigger.Game
	engine  *trigger.Engine
	store   *luaStore

	nextRef  int
	freeRefs []int
	lastErr  error // Go error behind the Lua error being raised
}

// New opens a Lua state, registers the trigger functions and creates an
// engine whose table lives in the "*triggers*" global.
func New(w trigger.World, c trigger.Catalog, g *trigger.Game) (*Runtime, error) {
	rt := &Runtime{l: lua.NewState(), world: w, catalog: c, game: g}
	lua.OpenLibraries(rt.l)

	rt.l.NewTable()
	rt.l.SetField(lua.RegistryIndex, refsKey)

	rt.store = &luaStore{rt: rt, byID: make(map[string]trigger.Trigger)}
	rt.engine = trigger.NewEngine(rt.store)

	rt.l.NewTable()
	rt.l.SetGlobal(TriggersGlobal)

	for name, fn := range rt.natives() {
		rt.register(name, fn)
	}
	if err := rt.DoString(prelude); err != nil {
		return nil, fmt.Errorf("load prelude: %w", err)
	}
	return rt, nil
}

// Engine is the trigger engine bound to this runtime.
func (rt *Runtime) Engine() *trigger.Engine { return rt.engine }

// DoString runs a chunk of Lua source.
func (rt *Runtime) DoString(src string) error {
	return rt.wrap(lua.DoString(rt.l, src))
}

// DoFile runs a Lua file.
func (rt *Runtime) DoFile(path string) error {
	if err := rt.wrap(lua.DoFile(rt.l, path)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Defaults is a callable that runs the script-level DefaultsGlobal
// function, for Engine.Init.
func (rt *Runtime) Defaults() trigger.Callable {
	return trigger.CallableFunc(func() (trigger.Value, error) {
		rt.l.Global(DefaultsGlobal)
		if rt.l.TypeOf(-1) != lua.TypeFunction {
			rt.l.Pop(1)
			slog.Warn("no default triggers defined", "global", DefaultsGlobal)
			return trigger.Falsy, nil
		}
		return rt.call()
	})
}

// Close releases the Lua state. Lua callables must not be used afterwards.
func (rt *Runtime) Close() {
	rt.l = nil
}

// ScriptError is a Lua error. Err is the Go error a native function
// raised it for, if any.
type ScriptError struct {
	Msg string
	Err error
}

func (e *ScriptError) Error() string { return e.Msg }
func (e *ScriptError) Unwrap() error { return e.Err }

func (rt *Runtime) wrap(err error) error {
	if err == nil {
		return nil
	}
	cause := rt.lastErr
	rt.lastErr = nil
	return &ScriptError{Msg: err.Error(), Err: cause}
}

// raise turns a Go error into a Lua error. It does not return.
func (rt *Runtime) raise(l *lua.State, err error) {
	rt.lastErr = err
	lua.Errorf(l, "%s", err.Error())
}

func (rt *Runtime) register(name string, fn lua.Function) {
	rt.l.Register(name, fn)
	if alias := strings.ReplaceAll(name, "-", "_"); alias != name {
		rt.l.Register(alias, fn)
	}
}

// call invokes the function on top of the stack with no arguments and
// classifies its single result.
func (rt *Runtime) call() (trigger.Value, error) {
	if err := rt.l.ProtectedCall(0, 1, 0); err != nil {
		return trigger.Falsy, rt.wrap(err)
	}
	defer rt.l.Pop(1)
	switch rt.l.TypeOf(-1) {
	case lua.TypeNil:
		return trigger.Falsy, nil
	case lua.TypeBoolean:
		if rt.l.ToBoolean(-1) {
			return trigger.Truthy, nil
		}
		return trigger.Falsy, nil
	}
	return trigger.NonBoolean, nil
}

// ref pins the value at index in the registry and returns its key.
// Keys freed by unref are reused.
func (rt *Runtime) ref(index int) int {
	index = absIndex(rt.l, index)
	var key int
	if n := len(rt.freeRefs); n > 0 {
		key = rt.freeRefs[n-1]
		rt.freeRefs = rt.freeRefs[:n-1]
	} else {
		rt.nextRef++
		key = rt.nextRef
	}
	rt.l.Field(lua.RegistryIndex, refsKey)
	rt.l.PushValue(index)
	rt.l.RawSetInt(-2, key)
	rt.l.Pop(1)
	return key
}

func (rt *Runtime) unref(ref int) {
	rt.l.Field(lua.RegistryIndex, refsKey)
	rt.l.PushNil()
	rt.l.RawSetInt(-2, ref)
	rt.l.Pop(1)
	rt.freeRefs = append(rt.freeRefs, ref)
}

func (rt *Runtime) pushRef(ref int) {
	rt.l.Field(lua.RegistryIndex, refsKey)
	rt.l.RawGetInt(-1, ref)
	rt.l.Remove(-2)
}

func absIndex(l *lua.State, index int) int {
	if index < 0 && index > lua.RegistryIndex {
		return l.Top() + index + 1
	}
	return index
}

// luaCallable is a Lua function pinned in the registry.
type luaCallable struct {
	rt  *Runtime
	ref int
}

func (c *luaCallable) Call() (trigger.Value, error) {
	c.rt.pushRef(c.ref)
	return c.rt.call()
}

// pin returns a registry ref holding c as a Lua function. A Lua callable
// already has one; a Go callable is wrapped and pinned.
func (rt *Runtime) pin(c trigger.Callable) int {
	if lc, ok := c.(*luaCallable); ok && lc.rt == rt {
		return lc.ref
	}
	rt.l.PushGoFunction(func(l *lua.State) int {
		v, err := c.Call()
		if err != nil {
			rt.raise(l, err)
			return 0
		}
		l.PushBoolean(v.Fires())
		return 1
	})
	ref := rt.ref(-1)
	rt.l.Pop(1)
	return ref
}
