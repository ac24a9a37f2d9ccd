package action

import (
	"slices"
	"testing"
	"time"

	"github.com/ethpandaops/schedeck/pkg/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	start := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)

	keywords := []deck.Keyword{
		deck.NewKeyword("WCONPROD", deck.NewRecord("'OP1'", "OPEN")),
		deck.NewKeyword(KeywordActionX,
			deck.NewRecord("'ACT1'", "2"),
			deck.NewRecord("WOPR", "'OP*'", "<", "100"),
		),
		deck.NewKeyword("WELOPEN", deck.NewRecord("'?'", "SHUT")),
		deck.NewKeyword(KeywordEndAction),
		deck.NewKeyword("RPTRST", deck.NewRecord("BASIC=2")),
		deck.NewKeyword(KeywordActionX,
			deck.NewRecord("'ACT2'"),
			deck.NewRecord("FOPR", ">", "1"),
		),
		deck.NewKeyword(KeywordEndAction),
	}

	plain, actions, err := Extract(keywords, start)
	require.NoError(t, err)

	require.Len(t, plain, 2)
	assert.Equal(t, "WCONPROD", plain[0].Name)
	assert.Equal(t, "RPTRST", plain[1].Name)

	require.Len(t, actions, 2)
	assert.Equal(t, "ACT1", actions[0].Name())
	assert.Equal(t, start, actions[0].StartTime())
	require.Len(t, actions[0].Keywords(), 1)
	assert.Equal(t, "WELOPEN", actions[0].Keywords()[0].Name)
	assert.Empty(t, actions[1].Keywords())
}

func TestExtract_Errors(t *testing.T) {
	header := deck.NewKeyword(KeywordActionX, deck.NewRecord("'ACT1'"), deck.NewRecord("FOPR", ">", "1"))

	tests := []struct {
		name     string
		keywords []deck.Keyword
		wantErr  error
	}{
		{
			name:     "missing ENDACTIO",
			keywords: []deck.Keyword{header, deck.NewKeyword("WELOPEN")},
			wantErr:  ErrUnterminatedAction,
		},
		{
			name:     "nested ACTIONX",
			keywords: []deck.Keyword{header, header},
			wantErr:  ErrUnterminatedAction,
		},
		{
			name:     "keyword not allowed",
			keywords: []deck.Keyword{header, deck.NewKeyword("TSTEP", deck.NewRecord("1"))},
			wantErr:  ErrInvalidKeyword,
		},
		{
			name:     "ENDACTIO without ACTIONX",
			keywords: []deck.Keyword{deck.NewKeyword(KeywordEndAction)},
			wantErr:  deck.ErrInput,
		},
		{
			name:     "bad condition",
			keywords: []deck.Keyword{deck.NewKeyword(KeywordActionX, deck.NewRecord("'ACT1'"), deck.NewRecord(">", "1"))},
			wantErr:  ErrInvalidCondition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Extract(tt.keywords, time.Time{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, deck.ErrInput)
		})
	}
}

func TestActions(t *testing.T) {
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	fopr, err := ParseCondition([]string{"FOPR", ">", "1"})
	require.NoError(t, err)

	wopr, err := ParseCondition([]string{"WOPR", "OP*", "<", "FU_LIMIT", "AND", "FWCT", "<", "1"})
	require.NoError(t, err)

	var actions Actions
	actions.Add(NewActionX("ACT1", 1, 0, start, fopr))
	actions.Add(NewActionX("ACT2", 3, 0, start.Add(48*time.Hour), wopr))
	actions.Add(NewActionX("ACT1", 5, 0, start, fopr))

	require.Equal(t, 2, actions.Len())

	act, ok := actions.Get("ACT1")
	require.True(t, ok)
	assert.Equal(t, 5, act.MaxRun())

	_, ok = actions.Get("NOPE")
	assert.False(t, ok)

	var names []string
	for act := range actions.All() {
		names = append(names, act.Name())
	}
	assert.Equal(t, []string{"ACT1", "ACT2"}, names)

	assert.Equal(t, []string{"FOPR", "FU_LIMIT", "FWCT", "WOPR"}, actions.RequiredSummary())

	pending := actions.Pending(map[string]RunState{"ACT1": {Count: 5}}, start.Add(72*time.Hour))
	require.Len(t, pending, 1)
	assert.Equal(t, "ACT2", pending[0].Name())

	pending = actions.Pending(nil, start)
	assert.True(t, slices.ContainsFunc(pending, func(a *ActionX) bool { return a.Name() == "ACT1" }))
	assert.Len(t, pending, 1)
}
