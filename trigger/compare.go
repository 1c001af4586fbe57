package trigger

import (
	"errors"
	"fmt"
)

// ErrBadOperator is returned for comparison tokens outside the six accepted ones.
var ErrBadOperator = errors.New("illegal comparison operation")

// Operator is a binary integer predicate used by every condition.
type Operator byte

const (
	OpEq Operator = iota
	OpNotEq
	OpGe
	OpGt
	OpLe
	OpLt
)

// ParseOperator resolves "=", "==", "!=", ">=", ">", "<=" or "<".
func ParseOperator(token string) (Operator, error) {
	switch token {
	case "=", "==":
		return OpEq, nil
	case "!=":
		return OpNotEq, nil
	case ">=":
		return OpGe, nil
	case ">":
		return OpGt, nil
	case "<=":
		return OpLe, nil
	case "<":
		return OpLt, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadOperator, token)
}

// Compare applies the operator to a (the observed count) and b (the quantity).
func (op Operator) Compare(a, b int) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNotEq:
		return a != b
	case OpGe:
		return a >= b
	case OpGt:
		return a > b
	case OpLe:
		return a <= b
	case OpLt:
		return a < b
	}
	return false
}

func (op Operator) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpGe:
		return ">="
	case OpGt:
		return ">"
	case OpLe:
		return "<="
	case OpLt:
		return "<"
	}
	return fmt.Sprintf("op(%d)", byte(op))
}
