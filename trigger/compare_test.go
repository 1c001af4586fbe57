package trigger

import (
	"errors"
	"testing"
)

func TestParseOperator(t *testing.T) {
	tests := []struct {
		token string
		want  Operator
		cases [][2]int // pairs that must satisfy the operator
		fails [][2]int // pairs that must not
	}{
		{"==", OpEq, [][2]int{{3, 3}}, [][2]int{{3, 4}}},
		{"=", OpEq, [][2]int{{0, 0}}, [][2]int{{1, 0}}},
		{"!=", OpNotEq, [][2]int{{3, 4}}, [][2]int{{3, 3}}},
		{">=", OpGe, [][2]int{{4, 3}, {3, 3}}, [][2]int{{2, 3}}},
		{">", OpGt, [][2]int{{4, 3}}, [][2]int{{3, 3}}},
		{"<=", OpLe, [][2]int{{2, 3}, {3, 3}}, [][2]int{{4, 3}}},
		{"<", OpLt, [][2]int{{2, 3}}, [][2]int{{3, 3}}},
	}
	for _, tc := range tests {
		op, err := ParseOperator(tc.token)
		if err != nil {
			t.Fatalf("ParseOperator(%q): %v", tc.token, err)
		}
		if op != tc.want {
			t.Errorf("ParseOperator(%q) = %v, want %v", tc.token, op, tc.want)
		}
		for _, c := range tc.cases {
			if !op.Compare(c[0], c[1]) {
				t.Errorf("%d %s %d should hold", c[0], op, c[1])
			}
		}
		for _, c := range tc.fails {
			if op.Compare(c[0], c[1]) {
				t.Errorf("%d %s %d should not hold", c[0], op, c[1])
			}
		}
	}
}

func TestParseOperatorRejects(t *testing.T) {
	for _, token := range []string{"", "<>", "eq", "===", "=>", "=<", "!", "!==", ">==", " ==", "== "} {
		if _, err := ParseOperator(token); !errors.Is(err, ErrBadOperator) {
			t.Errorf("ParseOperator(%q) err = %v, want ErrBadOperator", token, err)
		}
	}
}
