package action

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult_MakeSetIntersection(t *testing.T) {
	tests := []struct {
		name          string
		lhs           Result
		rhs           Result
		wantSatisfied bool
		wantKind      ResultKind
		wantWells     []string
	}{
		{
			name:          "scalar and scalar",
			lhs:           NewResult(true),
			rhs:           NewResult(true),
			wantSatisfied: true,
			wantKind:      ResultScalar,
		},
		{
			name:          "scalar keeps the well set",
			lhs:           NewResult(true),
			rhs:           NewResult(true).WithWells("OP1", "OP2"),
			wantSatisfied: true,
			wantKind:      ResultSet,
			wantWells:     []string{"OP1", "OP2"},
		},
		{
			name:          "well set is not narrowed by scalar",
			lhs:           NewResult(true).WithWells("OP2", "OP1"),
			rhs:           NewResult(true),
			wantSatisfied: true,
			wantKind:      ResultSet,
			wantWells:     []string{"OP1", "OP2"},
		},
		{
			name:          "two sets intersect",
			lhs:           NewResult(true).WithWells("OP1", "OP2", "OP3"),
			rhs:           NewResult(true).WithWells("OP2", "OP3", "OP4"),
			wantSatisfied: true,
			wantKind:      ResultSet,
			wantWells:     []string{"OP2", "OP3"},
		},
		{
			name:          "failed side clears wells",
			lhs:           NewResult(true).WithWells("OP1"),
			rhs:           NewResult(false),
			wantSatisfied: false,
			wantKind:      ResultSet,
		},
		{
			name:          "failed scalar stays scalar",
			lhs:           NewResult(false),
			rhs:           NewResult(true).WithWells("OP1"),
			wantSatisfied: false,
			wantKind:      ResultScalar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.lhs.MakeSetIntersection(tt.rhs)

			assert.Equal(t, tt.wantSatisfied, got.ConditionSatisfied())
			assert.Equal(t, tt.wantKind, got.Kind())
			assert.Equal(t, tt.wantWells, got.Matches().Wells())
		})
	}
}

func TestResult_MakeSetUnion(t *testing.T) {
	tests := []struct {
		name          string
		lhs           Result
		rhs           Result
		wantSatisfied bool
		wantKind      ResultKind
		wantWells     []string
	}{
		{
			name:          "both fail",
			lhs:           NewResult(false).WithWells(),
			rhs:           NewResult(false),
			wantSatisfied: false,
			wantKind:      ResultSet,
		},
		{
			name:          "scalar adopts well set",
			lhs:           NewResult(true),
			rhs:           NewResult(true).WithWells("OP1"),
			wantSatisfied: true,
			wantKind:      ResultSet,
			wantWells:     []string{"OP1"},
		},
		{
			name:          "set unchanged by scalar",
			lhs:           NewResult(false).WithWells(),
			rhs:           NewResult(true),
			wantSatisfied: true,
			wantKind:      ResultSet,
		},
		{
			name:          "sets unite",
			lhs:           NewResult(true).WithWells("OP3", "OP1"),
			rhs:           NewResult(true).WithWells("OP2", "OP1"),
			wantSatisfied: true,
			wantKind:      ResultSet,
			wantWells:     []string{"OP1", "OP2", "OP3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.lhs.MakeSetUnion(tt.rhs)

			assert.Equal(t, tt.wantSatisfied, got.ConditionSatisfied())
			assert.Equal(t, tt.wantKind, got.Kind())
			assert.Equal(t, tt.wantWells, got.Matches().Wells())
		})
	}
}

func TestResult_OperandsUnchanged(t *testing.T) {
	lhs := NewResult(true).WithWells("OP1", "OP2")
	rhs := NewResult(true).WithWells("OP2", "OP3")

	_ = lhs.MakeSetIntersection(rhs)
	_ = lhs.MakeSetUnion(rhs)
	_ = NewResult(true).MakeSetIntersection(lhs).WithWells("OP9")

	assert.Equal(t, []string{"OP1", "OP2"}, lhs.Matches().Wells())
	assert.Equal(t, []string{"OP2", "OP3"}, rhs.Matches().Wells())
}

func TestResult_Equal(t *testing.T) {
	assert.True(t, NewResult(true).Equal(NewResult(true)))
	assert.False(t, NewResult(true).Equal(NewResult(false)))
	assert.False(t, NewResult(true).Equal(NewResult(true).WithWells()))
	assert.True(t, NewResult(true).WithWells("B", "A").Equal(NewResult(true).WithWells("A", "B", "A")))

	matches := NewResult(true).WithWells("OP1").Matches()
	assert.True(t, matches.HasWell("OP1"))
	assert.False(t, matches.HasWell("OP2"))
	assert.False(t, NewResult(true).Matches().HasWell("OP1"))
}

func TestResult_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewResult(true))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"satisfied":true,"kind":"scalar","wells":null}`, string(data))

	data, err = json.Marshal(NewResult(false).WithWells())
	assert.NoError(t, err)
	assert.JSONEq(t, `{"satisfied":false,"kind":"set","wells":[]}`, string(data))

	data, err = json.Marshal(NewResult(true).WithWells("OP2", "OP1"))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"satisfied":true,"kind":"set","wells":["OP1","OP2"]}`, string(data))
}
