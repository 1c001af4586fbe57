package trigger

import "fmt"

// Value is what a zero-argument script callable yields.
type Value byte

const (
	Falsy      Value = iota // false or nil
	Truthy                  // true
	NonBoolean              // any other non-nil value
)

func (v Value) String() string {
	switch v {
	case Falsy:
		return "falsy"
	case Truthy:
		return "truthy"
	case NonBoolean:
		return "non-boolean"
	}
	return fmt.Sprintf("value(%d)", byte(v))
}

// Fires reports whether a condition result runs its action. Any non-nil,
// non-false value fires, as in the scripting languages scenarios are
// written in.
func (v Value) Fires() bool { return v != Falsy }

// ValueOf classifies a Go value returned by a script runtime.
func ValueOf(v any) Value {
	switch b := v.(type) {
	case nil:
		return Falsy
	case bool:
		if b {
			return Truthy
		}
		return Falsy
	}
	return NonBoolean
}

// Callable is a condition or action slot of a trigger. The engine never
// looks inside one; it only invokes it.
type Callable interface {
	Call() (Value, error)
}

// CallableFunc adapts a Go function to Callable.
type CallableFunc func() (Value, error)

func (f CallableFunc) Call() (Value, error) { return f() }

// Condition adapts a world predicate to Callable.
func Condition(w World, eval func(World) bool) Callable {
	return CallableFunc(func() (Value, error) {
		if eval(w) {
			return Truthy, nil
		}
		return Falsy, nil
	})
}

// ActionFunc adapts a side effect to Callable. Actions yield nothing.
type ActionFunc func()

func (f ActionFunc) Call() (Value, error) {
	f()
	return Falsy, nil
}
