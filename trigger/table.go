package trigger

import (
	"errors"
	"iter"

	"github.com/google/uuid"
)

// ErrNilCallable is returned when a trigger is built without a condition or action.
var ErrNilCallable = errors.New("trigger needs both a condition and an action")

// Trigger pairs a condition with the action it runs.
type Trigger struct {
	ID        string
	Condition Callable
	Action    Callable
}

// NewTrigger builds a trigger with a fresh ID.
func NewTrigger(condition, action Callable) (Trigger, error) {
	if condition == nil || action == nil {
		return Trigger{}, ErrNilCallable
	}
	return Trigger{ID: uuid.NewString(), Condition: condition, Action: action}, nil
}

type node struct {
	trigger Trigger
	next    *node
}

// Table is an immutable list of triggers, newest first. Prepend shares
// structure with the receiver, so a Table held by a cursor never changes
// under it.
type Table struct {
	head *node
	n    int
}

// TableOf builds a table whose first element is ts[0].
func TableOf(ts ...Trigger) Table {
	var t Table
	for i := len(ts) - 1; i >= 0; i-- {
		t = t.Prepend(ts[i])
	}
	return t
}

func (t Table) Prepend(tr Trigger) Table {
	return Table{head: &node{trigger: tr, next: t.head}, n: t.n + 1}
}

func (t Table) Len() int { return t.n }

func (t Table) Empty() bool { return t.head == nil }

// Pop returns the first trigger and the rest of the table.
func (t Table) Pop() (Trigger, Table, bool) {
	if t.head == nil {
		return Trigger{}, t, false
	}
	return t.head.trigger, Table{head: t.head.next, n: t.n - 1}, true
}

// All iterates the table front to back.
func (t Table) All() iter.Seq[Trigger] {
	return func(yield func(Trigger) bool) {
		for n := t.head; n != nil; n = n.next {
			if !yield(n.trigger) {
				return
			}
		}
	}
}

// Store owns the canonical trigger table. The engine only loads snapshots
// from it and prepends to it.
type Store interface {
	Load() (Table, error)
	Prepend(t Trigger) error
	Reset() error
}

// Releaser is implemented by stores that hold resources for triggers
// dropped from the table. The engine calls Release at a pass boundary,
// when no snapshot it holds can still reach them.
type Releaser interface {
	Release()
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	table Table
}

func (s *MemoryStore) Load() (Table, error) { return s.table, nil }

func (s *MemoryStore) Prepend(t Trigger) error {
	s.table = s.table.Prepend(t)
	return nil
}

func (s *MemoryStore) Reset() error {
	s.table = Table{}
	return nil
}
