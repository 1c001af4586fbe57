package trigger

import (
	"fmt"
	"io"
	"log/slog"
)

// Engine walks the trigger table one trigger per simulation tick.
// It is not safe for concurrent use; the simulation loop owns it. Actions
// may call Register while a step is running.
type Engine struct {
	store  Store
	cursor Table // remaining suffix of the current pass; empty means reload

	// OnFired, if set, runs after a trigger's action. Fired triggers stay
	// in the table; a store that wants remove-on-fire hooks in here.
	OnFired func(t Trigger)
}

// NewEngine returns an engine over store, or over a fresh MemoryStore when
// store is nil.
func NewEngine(store Store) *Engine {
	if store == nil {
		store = &MemoryStore{}
	}
	return &Engine{store: store}
}

// Register prepends a trigger, so the newest trigger is visited first on
// the next pass. A pass already in progress does not see it.
func (e *Engine) Register(condition, action Callable) error {
	t, err := NewTrigger(condition, action)
	if err != nil {
		return err
	}
	if err := e.store.Prepend(t); err != nil {
		return fmt.Errorf("register trigger: %w", err)
	}
	slog.Debug("trigger registered", "id", t.ID)
	return nil
}

// Triggers returns the current canonical table.
func (e *Engine) Triggers() (Table, error) {
	return e.store.Load()
}

// Step evaluates exactly one trigger: the head of the current pass. When
// the pass is exhausted it reloads the table first; an empty table makes
// the step a no-op. A true condition runs its action in the same step.
// Errors from either callable abort the step and are returned to the
// caller, which should treat them as fatal.
func (e *Engine) Step() error {
	if e.cursor.Empty() {
		if r, ok := e.store.(Releaser); ok {
			r.Release()
		}
		t, err := e.store.Load()
		if err != nil {
			return fmt.Errorf("load triggers: %w", err)
		}
		e.cursor = t
	}

	t, rest, ok := e.cursor.Pop()
	if !ok {
		return nil
	}
	e.cursor = rest

	v, err := t.Condition.Call()
	if err != nil {
		return fmt.Errorf("trigger %s condition: %w", t.ID, err)
	}
	if !v.Fires() {
		return nil
	}
	if v == NonBoolean {
		slog.Debug("non-boolean condition result treated as true", "trigger", t.ID)
	}

	slog.Debug("trigger fired", "trigger", t.ID)
	if _, err := t.Action.Call(); err != nil {
		return fmt.Errorf("trigger %s action: %w", t.ID, err)
	}
	if e.OnFired != nil {
		e.OnFired(t)
	}
	return nil
}

// Pending is the number of triggers left in the current pass.
func (e *Engine) Pending() int { return e.cursor.Len() }

// Init runs defaults when no triggers are registered yet. defaults is
// expected to register the standard single-player triggers.
func (e *Engine) Init(defaults Callable) error {
	t, err := e.store.Load()
	if err != nil {
		return fmt.Errorf("load triggers: %w", err)
	}
	if !t.Empty() || defaults == nil {
		slog.Info("triggers initialized", "count", t.Len())
		return nil
	}
	slog.Info("no triggers registered, installing defaults")
	if _, err := defaults.Call(); err != nil {
		return fmt.Errorf("default triggers: %w", err)
	}
	return nil
}

// Clean empties the table and forgets the current pass.
func (e *Engine) Clean() error {
	e.cursor = Table{}
	if err := e.store.Reset(); err != nil {
		return fmt.Errorf("reset triggers: %w", err)
	}
	return nil
}

// Save writes the trigger section of a save file. Trigger state is not
// serialized; the section carries only a marker saying so.
func (e *Engine) Save(w io.Writer) error {
	_, err := io.WriteString(w, "\n-- ------------------------------------------\n"+
		"-- MODULE: trigger\n\n"+
		"-- unsupported: trigger state is not saved\n\n")
	return err
}
