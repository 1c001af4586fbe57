package trigger

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// Compiler turns expression sources into trigger callables. Conditions
// and actions call the same predicates and end-of-game actions the
// scripting bridge exposes, under Go-style names:
//
//	IfUnit("this", "==", 0, "all")
//	IfNearUnit(0, ">=", 1, "unit-peasant", "unit-circle-of-power")
//	IfRescuedNearUnit("any", ">", 2, "units", "unit-circle-of-power")
//	IfOpponents("this", "==", 0)
//	ActionVictory()  ActionDefeat()  ActionDraw()
type Compiler struct {
	world   World
	catalog Catalog
	game    *Game
	opts    []expr.Option
	// conds holds the condition built for each argument list seen, so a
	// call site with literal arguments resolves them once.
	conds map[condKey]evaluator
}

type condKey struct {
	fn       string
	player   any
	op       string
	quantity int
	unit     string
	anchor   string
}

type evaluator interface {
	Eval(w World) bool
}

func NewCompiler(w World, c Catalog, g *Game) *Compiler {
	cp := &Compiler{world: w, catalog: c, game: g, conds: make(map[condKey]evaluator)}
	cp.opts = []expr.Option{
		expr.Function("IfUnit", cp.ifUnit, new(func(any, string, int, string) bool)),
		expr.Function("IfNearUnit", cp.ifNearUnit, new(func(any, string, int, string, string) bool)),
		expr.Function("IfRescuedNearUnit", cp.ifRescuedNearUnit, new(func(any, string, int, string, string) bool)),
		expr.Function("IfOpponents", cp.ifOpponents, new(func(any, string, int) bool)),
		expr.Function("ActionVictory", cp.action(g.Victory)),
		expr.Function("ActionDefeat", cp.action(g.Defeat)),
		expr.Function("ActionDraw", cp.action(g.Draw)),
	}
	return cp
}

// Condition compiles a boolean expression. Literal arguments are checked
// here, so a bad operator or unit type fails at load time instead of on
// the tick the condition first runs.
func (cp *Compiler) Condition(src string) (Callable, error) {
	if err := cp.checkLiterals(src); err != nil {
		return nil, err
	}
	prog, err := expr.Compile(src, append(cp.opts, expr.AsBool())...)
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", src, err)
	}
	return exprCallable{src: src, program: prog}, nil
}

// Action compiles an expression run for its side effects.
func (cp *Compiler) Action(src string) (Callable, error) {
	if err := cp.checkLiterals(src); err != nil {
		return nil, err
	}
	prog, err := expr.Compile(src, cp.opts...)
	if err != nil {
		return nil, fmt.Errorf("compile action %q: %w", src, err)
	}
	return exprCallable{src: src, program: prog}, nil
}

type exprCallable struct {
	src     string
	program *vm.Program
}

func (c exprCallable) Call() (Value, error) {
	out, err := vm.Run(c.program, nil)
	if err != nil {
		return Falsy, fmt.Errorf("run %q: %w", c.src, err)
	}
	return ValueOf(out), nil
}

func (cp *Compiler) ifUnit(params ...any) (any, error) {
	k := condKey{fn: "IfUnit", player: params[0], op: params[1].(string), quantity: toInt(params[2]), unit: params[3].(string)}
	return cp.eval(k, func() (evaluator, error) {
		return NewUnitCount(cp.catalog, k.player, k.op, k.quantity, k.unit)
	})
}

func (cp *Compiler) ifNearUnit(params ...any) (any, error) {
	return cp.nearUnit("IfNearUnit", false, params)
}

func (cp *Compiler) ifRescuedNearUnit(params ...any) (any, error) {
	return cp.nearUnit("IfRescuedNearUnit", true, params)
}

func (cp *Compiler) nearUnit(fn string, rescued bool, params []any) (any, error) {
	k := condKey{fn: fn, player: params[0], op: params[1].(string), quantity: toInt(params[2]),
		unit: params[3].(string), anchor: params[4].(string)}
	return cp.eval(k, func() (evaluator, error) {
		return NewNearUnitCount(cp.catalog, k.player, k.op, k.quantity, k.unit, k.anchor, rescued)
	})
}

func (cp *Compiler) ifOpponents(params ...any) (any, error) {
	k := condKey{fn: "IfOpponents", player: params[0], op: params[1].(string), quantity: toInt(params[2])}
	return cp.eval(k, func() (evaluator, error) {
		return NewOpponentCount(k.player, k.op, k.quantity)
	})
}

// eval evaluates the condition for k, building it on first use. Player
// arguments that cannot key a map are resolved on every call.
func (cp *Compiler) eval(k condKey, build func() (evaluator, error)) (any, error) {
	cacheable := false
	switch k.player.(type) {
	case string, int, int64, float64:
		cacheable = true
	}
	if cacheable {
		if c, ok := cp.conds[k]; ok {
			return c.Eval(cp.world), nil
		}
	}
	c, err := build()
	if err != nil {
		return nil, err
	}
	if cacheable {
		cp.conds[k] = c
	}
	return c.Eval(cp.world), nil
}

func (cp *Compiler) action(f func()) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		f()
		return nil, nil
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// literalArgs lists, per function, which argument positions hold a
// player, an operator, a unit specifier and an anchor unit type.
var literalArgs = map[string]struct{ player, op, unit, anchor int }{
	"IfUnit":            {0, 1, 3, -1},
	"IfNearUnit":        {0, 1, 3, 4},
	"IfRescuedNearUnit": {0, 1, 3, 4},
	"IfOpponents":       {0, 1, -1, -1},
}

type literalChecker struct {
	catalog Catalog
	err     error
}

func (v *literalChecker) Visit(node *ast.Node) {
	if v.err != nil {
		return
	}
	call, ok := (*node).(*ast.CallNode)
	if !ok {
		return
	}
	id, ok := call.Callee.(*ast.IdentifierNode)
	if !ok {
		return
	}
	pos, ok := literalArgs[id.Value]
	if !ok {
		return
	}
	arg := func(i int) ast.Node {
		if i < 0 || i >= len(call.Arguments) {
			return nil
		}
		return call.Arguments[i]
	}

	switch a := arg(pos.player).(type) {
	case *ast.StringNode:
		_, v.err = ParsePlayer(a.Value)
	case *ast.IntegerNode:
		_, v.err = ParsePlayer(a.Value)
	}
	if v.err != nil {
		v.err = fmt.Errorf("%s: %w", id.Value, v.err)
		return
	}
	if a, ok := arg(pos.op).(*ast.StringNode); ok {
		if _, err := ParseOperator(a.Value); err != nil {
			v.err = fmt.Errorf("%s: %w", id.Value, err)
			return
		}
	}
	if a, ok := arg(pos.unit).(*ast.StringNode); ok {
		if _, err := ResolveUnitSpec(v.catalog, a.Value); err != nil {
			v.err = fmt.Errorf("%s: %w", id.Value, err)
			return
		}
	}
	if a, ok := arg(pos.anchor).(*ast.StringNode); ok {
		if _, err := v.catalog.Lookup(a.Value); err != nil {
			v.err = fmt.Errorf("%s: %w", id.Value, err)
		}
	}
}

func (cp *Compiler) checkLiterals(src string) error {
	tree, err := parser.Parse(src)
	if err != nil {
		return fmt.Errorf("parse %q: %w", src, err)
	}
	v := &literalChecker{catalog: cp.catalog}
	ast.Walk(&tree.Node, v)
	return v.err
}
