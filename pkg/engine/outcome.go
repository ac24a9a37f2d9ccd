package engine

import (
	"time"

	"github.com/ethpandaops/schedeck/pkg/action"
	"github.com/ethpandaops/schedeck/pkg/deck"
	"github.com/ethpandaops/schedeck/pkg/rendering"
)

// Outcome is the evaluation of one action at one report step. Keywords and
// WellPI are only set when the condition was satisfied.
type Outcome struct {
	Action   string          `json:"action"`
	Step     int             `json:"step"`
	Time     time.Time       `json:"time"`
	Result   action.Result   `json:"result"`
	Run      action.RunState `json:"run"`
	Keywords []deck.Keyword  `json:"keywords,omitempty"`
	WellPI   []string        `json:"wellPI,omitempty"`
}

func (o Outcome) row() rendering.OutcomeRow {
	return rendering.OutcomeRow{
		Action:    o.Action,
		Satisfied: o.Result.ConditionSatisfied(),
		Wells:     o.Result.Matches().Wells(),
	}
}
