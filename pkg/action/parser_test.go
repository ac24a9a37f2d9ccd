package action

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		expected  string
	}{
		{name: "empty", condition: "", expected: "<empty>"},
		{name: "comparison", condition: "FOPR > 100", expected: "(> FOPR 100)"},
		{name: "fortran operators", condition: "FOPR .ge. 1 AND FWCT .NE. 0.5", expected: "(AND (>= FOPR 1) (!= FWCT 0.5))"},
		{name: "and chain is flat", condition: "A1 > 1 AND A2 > 2 AND A3 > 3", expected: "(AND (> A1 1) (> A2 2) (> A3 3))"},
		{name: "and binds tighter than or", condition: "A1 > 1 OR A2 > 2 AND A3 > 3", expected: "(OR (> A1 1) (AND (> A2 2) (> A3 3)))"},
		{name: "parentheses", condition: "( A1 > 1 OR A2 > 2 ) AND A3 > 3", expected: "(AND (OR (> A1 1) (> A2 2)) (> A3 3))"},
		{name: "expression on the right", condition: "WOPR OP1 < WOPR OP2", expected: "(< WOPR OP1 WOPR OP2)"},
		{name: "month name", condition: "MNTH = JLY", expected: "(= MNTH 7)"},
		{name: "month name outside MNTH stays an expression", condition: "FOPR = JUL", expected: "(= FOPR JUL)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := ParseCondition(strings.Fields(tt.condition))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tree.String())
		})
	}
}

func TestParseCondition_Leaves(t *testing.T) {
	tree, err := ParseCondition([]string{"WOPR", "OP*", "<=", "1.5E2"})
	require.NoError(t, err)
	require.Equal(t, 2, tree.Size())

	left, right := tree.Children()[0], tree.Children()[1]

	assert.Equal(t, TokenOpLE, tree.Type)
	assert.Equal(t, TokenExpr, left.Type)
	assert.Equal(t, FuncWell, left.FuncType)
	assert.Equal(t, "WOPR", left.Func)
	assert.Equal(t, []string{"OP*"}, left.ArgList)
	assert.Equal(t, ArgPattern, left.ArgKind)
	assert.Equal(t, TokenNumber, right.Type)
	assert.InDelta(t, 150.0, right.Number, 1e-12)
}

func TestParseCondition_Errors(t *testing.T) {
	tests := []struct {
		name        string
		condition   string
		wantMessage string
	}{
		{
			name:        "number on the left",
			condition:   "100 > FOPR",
			wantMessage: "Expected expression as left hand side of comparison, but got 100 instead.",
		},
		{
			name:        "missing operator",
			condition:   "FOPR 100",
			wantMessage: "expected comparison operator",
		},
		{
			name:        "missing right hand side",
			condition:   "FOPR >",
			wantMessage: "expected value as right hand side",
		},
		{
			name:        "dangling AND",
			condition:   "FOPR > 1 AND",
			wantMessage: "Expected expression as left hand side",
		},
		{
			name:        "unclosed parenthesis",
			condition:   "( FOPR > 1",
			wantMessage: "expected ')'",
		},
		{
			name:        "extra data",
			condition:   "FOPR > 1 )",
			wantMessage: "Extra unhandled data starting with token[3] = ) in ACTIONX condition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCondition(strings.Fields(tt.condition))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCondition)
			assert.Contains(t, err.Error(), tt.wantMessage)
		})
	}
}
