package action

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"time"

	"github.com/ethpandaops/schedeck/pkg/deck"
)

// Actions is the set of actions known to a schedule in declaration order.
// Redeclaring an action replaces the earlier definition in place.
type Actions struct {
	actions []*ActionX
}

// Add registers act, replacing an action with the same name.
func (a *Actions) Add(act *ActionX) {
	for i, existing := range a.actions {
		if existing.Name() == act.Name() {
			a.actions[i] = act
			return
		}
	}

	a.actions = append(a.actions, act)
}

// Get returns the action called name.
func (a *Actions) Get(name string) (*ActionX, bool) {
	for _, act := range a.actions {
		if act.Name() == name {
			return act, true
		}
	}

	return nil, false
}

// Len returns the number of actions.
func (a *Actions) Len() int {
	return len(a.actions)
}

// All iterates over the actions in declaration order.
func (a *Actions) All() iter.Seq[*ActionX] {
	return slices.Values(a.actions)
}

// Pending returns the actions which are ready at simTime. runs maps action
// names to their earlier runs; a missing entry means the action never ran.
func (a *Actions) Pending(runs map[string]RunState, simTime time.Time) []*ActionX {
	var pending []*ActionX

	for _, act := range a.actions {
		if act.Ready(runs[act.Name()], simTime) {
			pending = append(pending, act)
		}
	}

	return pending
}

// RequiredSummary returns the sorted summary vectors read by any action.
func (a *Actions) RequiredSummary() []string {
	required := make(map[string]struct{})

	for _, act := range a.actions {
		act.RequiredSummary(required)
	}

	return sortedKeys(required)
}

// Extract splits the keywords of one report step into the plain keywords
// and the ACTIONX blocks they contain. Every ACTIONX must be closed by
// ENDACTIO and its body may only hold keywords accepted by ValidKeyword.
func Extract(keywords []deck.Keyword, startTime time.Time) ([]deck.Keyword, []*ActionX, error) {
	var (
		plain   []deck.Keyword
		actions []*ActionX
		current *ActionX
		opener  deck.Keyword
	)

	for _, kw := range keywords {
		switch {
		case kw.Name == KeywordActionX:
			if current != nil {
				return nil, nil, &deck.InputError{
					Msg:      fmt.Sprintf("ACTIONX %s is not closed by %s before the next ACTIONX", current.Name(), KeywordEndAction),
					Location: opener.Location,
					Err:      ErrUnterminatedAction,
				}
			}

			act, err := ParseActionX(kw, startTime)
			if err != nil {
				return nil, nil, err
			}

			current, opener = act, kw
		case kw.Name == KeywordEndAction:
			if current == nil {
				return nil, nil, deck.NewInputError(fmt.Sprintf("%s without a preceding ACTIONX", KeywordEndAction), kw.Location)
			}

			actions = append(actions, current)
			current = nil
		case current != nil:
			if err := current.AddKeyword(kw); err != nil {
				return nil, nil, err
			}
		default:
			plain = append(plain, kw)
		}
	}

	if current != nil {
		return nil, nil, &deck.InputError{
			Msg:      fmt.Sprintf("ACTIONX %s is missing %s", current.Name(), KeywordEndAction),
			Location: opener.Location,
			Err:      ErrUnterminatedAction,
		}
	}

	return plain, actions, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
