package script

import (
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/nstehr/vimy/vimy-triggers/trigger"
)

// luaStore keeps the canonical trigger table in the "*triggers*" global.
// Each element is a pair table {condition, action, id = <trigger id>};
// pairs written by scripts without an id get one on the next Load.
type luaStore struct {
	rt   *Runtime
	byID map[string]pinned
	// retired holds refs of dropped pairs until the next Release.
	retired []int
}

// pinned is a trigger built from a pair, with registry refs to the slot
// values it was built from.
type pinned struct {
	t            trigger.Trigger
	cond, action int
}

// Prepend replaces the global with a new sequence whose first element is
// t's pair. A list a script already holds is left as it was.
func (s *luaStore) Prepend(t trigger.Trigger) error {
	l := s.rt.l
	l.Global(TriggersGlobal)
	old := l.Top()
	n := 0
	switch l.TypeOf(old) {
	case lua.TypeNil:
	case lua.TypeTable:
		n = l.RawLength(old)
	default:
		err := fmt.Errorf("%s is a %s, not a list", TriggersGlobal, lua.TypeNameOf(l, old))
		l.Pop(1)
		return err
	}

	p := pinned{t: t, cond: s.rt.pin(t.Condition), action: s.rt.pin(t.Action)}

	l.CreateTable(n+1, 0)
	list := l.Top()

	l.CreateTable(2, 1)
	s.rt.pushRef(p.cond)
	l.RawSetInt(-2, 1)
	s.rt.pushRef(p.action)
	l.RawSetInt(-2, 2)
	l.PushString(t.ID)
	l.SetField(-2, "id")
	l.RawSetInt(list, 1)

	for i := 1; i <= n; i++ {
		l.RawGetInt(old, i)
		l.RawSetInt(list, i+1)
	}
	l.SetGlobal(TriggersGlobal)
	l.Pop(1)

	s.byID[t.ID] = p
	return nil
}

// Load converts the current global into a trigger table. Triggers whose
// pairs are gone from the list are retired.
func (s *luaStore) Load() (trigger.Table, error) {
	l := s.rt.l
	l.Global(TriggersGlobal)
	defer l.Pop(1)
	list := l.Top()

	switch l.TypeOf(list) {
	case lua.TypeNil:
		s.retire(nil)
		return trigger.Table{}, nil
	case lua.TypeTable:
	default:
		return trigger.Table{}, fmt.Errorf("%s is a %s, not a list", TriggersGlobal, lua.TypeNameOf(l, list))
	}

	n := l.RawLength(list)
	ts := make([]trigger.Trigger, 0, n)
	live := make(map[string]bool, n)
	for i := 1; i <= n; i++ {
		l.RawGetInt(list, i)
		t, err := s.pair(i)
		l.Pop(1)
		if err != nil {
			return trigger.Table{}, err
		}
		live[t.ID] = true
		ts = append(ts, t)
	}
	s.retire(live)
	return trigger.TableOf(ts...), nil
}

// pair reads the pair table on top of the stack. A cached trigger is
// reused only while both slots still hold the values it was built from;
// a pair edited in place becomes a new trigger with a new id.
func (s *luaStore) pair(i int) (trigger.Trigger, error) {
	l := s.rt.l
	pair := l.Top()
	if l.TypeOf(pair) != lua.TypeTable {
		return trigger.Trigger{}, fmt.Errorf("%s[%d] is a %s, not a pair", TriggersGlobal, i, lua.TypeNameOf(l, pair))
	}

	l.Field(pair, "id")
	id, _ := l.ToString(-1)
	l.Pop(1)
	if p, ok := s.byID[id]; ok && s.slotHolds(pair, 1, p.cond) && s.slotHolds(pair, 2, p.action) {
		return p.t, nil
	}

	for slot := 1; slot <= 2; slot++ {
		l.RawGetInt(pair, slot)
		isFunc := l.TypeOf(-1) == lua.TypeFunction
		l.Pop(1)
		if !isFunc {
			return trigger.Trigger{}, fmt.Errorf("%s[%d][%d] is not a function", TriggersGlobal, i, slot)
		}
	}
	var p pinned
	l.RawGetInt(pair, 1)
	p.cond = s.rt.ref(-1)
	l.RawGetInt(pair, 2)
	p.action = s.rt.ref(-1)
	l.Pop(2)

	t, err := trigger.NewTrigger(&luaCallable{rt: s.rt, ref: p.cond}, &luaCallable{rt: s.rt, ref: p.action})
	if err != nil {
		s.rt.unref(p.cond)
		s.rt.unref(p.action)
		return trigger.Trigger{}, err
	}
	p.t = t
	l.PushString(t.ID)
	l.SetField(pair, "id")
	s.byID[t.ID] = p
	return t, nil
}

func (s *luaStore) slotHolds(pair, slot, ref int) bool {
	l := s.rt.l
	l.RawGetInt(pair, slot)
	s.rt.pushRef(ref)
	same := l.RawEqual(-1, -2)
	l.Pop(2)
	return same
}

// retire drops every cached trigger not in live. Its refs stay pinned
// until Release, since the engine's current pass may still call it.
func (s *luaStore) retire(live map[string]bool) {
	for id, p := range s.byID {
		if !live[id] {
			delete(s.byID, id)
			s.retired = append(s.retired, p.cond, p.action)
		}
	}
}

func (s *luaStore) Release() {
	for _, ref := range s.retired {
		s.rt.unref(ref)
	}
	s.retired = s.retired[:0]
}

// Reset empties the global and unpins everything. The engine forgets its
// pass along with it, so nothing can call the released functions.
func (s *luaStore) Reset() error {
	s.rt.l.NewTable()
	s.rt.l.SetGlobal(TriggersGlobal)
	s.retire(nil)
	s.Release()
	return nil
}
