package action

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ethpandaops/schedeck/pkg/deck"
)

const (
	// KeywordActionX opens an action block.
	KeywordActionX = "ACTIONX"
	// KeywordEndAction closes an action block.
	KeywordEndAction = "ENDACTIO"

	keywordWellPI = "WELPI"

	defaultMaxRun = 1
)

// allowedKeywords are the keywords an ACTIONX block may contain.
//
//nolint:gochecknoglobals // Fixed allow-list
var allowedKeywords = map[string]struct{}{
	"BOX": {}, "COMPLUMP": {}, "COMPDAT": {}, "COMPSEGS": {},
	"ENDBOX": {}, "EXIT": {},
	"GCONINJE": {}, "GCONPROD": {}, "GCONSUMP": {}, "GEFAC": {}, "GLIFTOPT": {}, "GRUPTREE": {},
	"MULTX": {}, "MULTX-": {}, "MULTY": {}, "MULTY-": {}, "MULTZ": {}, "MULTZ-": {},
	"NEXT": {}, "NEXTSTEP": {},
	"UDQ": {},
	"WCONHIST": {}, "WCONINJH": {}, "WCONINJE": {}, "WCONPROD": {},
	"WECON": {}, "WEFAC": {},
	"WELOPEN": {}, "WELPI": {}, "WELSEGS": {}, "WELSPECS": {}, "WELTARG": {},
	"WGRUPCON": {}, "WLIST": {}, "WPIMULT": {}, "WSEGVALV": {}, "WTEST": {}, "WTMULT": {},
}

// ValidKeyword reports whether keyword may appear inside an ACTIONX block.
func ValidKeyword(keyword string) bool {
	_, ok := allowedKeywords[keyword]
	return ok
}

// RunState is the bookkeeping of earlier runs of one action.
type RunState struct {
	Count    int       `json:"count"`
	LastTime time.Time `json:"lastTime"`
	Wells    []string  `json:"wells,omitempty"`
}

// ActionX is a conditional block of schedule keywords.
type ActionX struct {
	name      string
	maxRun    int
	minWait   time.Duration
	startTime time.Time
	location  deck.Location
	tokens    []string
	condition ASTNode
	keywords  []deck.Keyword
}

// NewActionX creates an action from an already parsed condition.
func NewActionX(name string, maxRun int, minWait time.Duration, startTime time.Time, condition ASTNode) *ActionX {
	return &ActionX{
		name:      name,
		maxRun:    maxRun,
		minWait:   minWait,
		startTime: startTime,
		condition: condition,
	}
}

// ParseActionX reads the ACTIONX keyword: record 0 holds the name, the
// maximum number of runs and the minimum wait in days; every following
// record is part of the condition.
func ParseActionX(kw deck.Keyword, startTime time.Time) (*ActionX, error) {
	if kw.Size() == 0 {
		return nil, deck.NewInputError("ACTIONX requires a name record", kw.Location)
	}

	header := kw.Records[0]

	name := header.Text(0, "")
	if name == "" {
		return nil, deck.NewInputError("ACTIONX requires a name", kw.Location)
	}

	maxRun, err := header.Int(1, defaultMaxRun)
	if err != nil {
		return nil, deck.WrapInputError(err, kw.Location)
	}

	minWaitDays, err := header.Float(2, 0)
	if err != nil {
		return nil, deck.WrapInputError(err, kw.Location)
	}

	if kw.Size() < 2 {
		return nil, &deck.InputError{
			Msg:      fmt.Sprintf("Action %s does not have a condition.", name),
			Location: kw.Location,
			Err:      ErrNoCondition,
		}
	}

	var tokens []string

	for _, record := range kw.Records[1:] {
		for _, item := range record.Items {
			token, err := deck.Dequote(item)
			if err != nil {
				return nil, deck.WrapInputError(err, kw.Location)
			}

			tokens = append(tokens, token)
		}
	}

	condition, err := ParseCondition(tokens)
	if err != nil {
		return nil, &deck.InputError{
			Msg:      fmt.Sprintf("condition of action %s has the following error: %v", name, err),
			Location: kw.Location,
			Err:      err,
		}
	}

	minWait, err := deck.DaysToDuration(minWaitDays)
	if err != nil {
		return nil, deck.WrapInputError(err, kw.Location)
	}

	act := NewActionX(name, maxRun, minWait, startTime, condition)
	act.location = kw.Location
	act.tokens = tokens

	return act, nil
}

// AddKeyword appends kw to the action body.
func (a *ActionX) AddKeyword(kw deck.Keyword) error {
	if !ValidKeyword(kw.Name) {
		return &deck.InputError{
			Msg:      fmt.Sprintf("The keyword %s is not supported in the ACTIONX block", kw.Name),
			Location: kw.Location,
			Err:      ErrInvalidKeyword,
		}
	}

	a.keywords = append(a.keywords, kw)

	return nil
}

// Name returns the action name.
func (a *ActionX) Name() string {
	return a.name
}

// MaxRun returns the number of times the action may run.
func (a *ActionX) MaxRun() int {
	return a.maxRun
}

// MinWait returns the minimum time between two runs.
func (a *ActionX) MinWait() time.Duration {
	return a.minWait
}

// StartTime returns the time from which the action may run.
func (a *ActionX) StartTime() time.Time {
	return a.startTime
}

// Location returns where the ACTIONX keyword was declared.
func (a *ActionX) Location() deck.Location {
	return a.location
}

// Condition returns the parsed condition.
func (a *ActionX) Condition() ASTNode {
	return a.condition
}

// ConditionString returns the condition tokens joined by spaces.
func (a *ActionX) ConditionString() string {
	return strings.Join(a.tokens, " ")
}

// Keywords returns the action body.
func (a *ActionX) Keywords() []deck.Keyword {
	return slices.Clone(a.keywords)
}

// Ready reports whether the action may be evaluated at simTime given its
// earlier runs.
func (a *ActionX) Ready(run RunState, simTime time.Time) bool {
	if run.Count >= a.maxRun || simTime.Before(a.startTime) {
		return false
	}

	if run.Count == 0 || a.minWait <= 0 {
		return true
	}

	return simTime.Sub(run.LastTime) >= a.minWait
}

// Eval evaluates the condition.
func (a *ActionX) Eval(ctx Context) (Result, error) {
	return a.condition.Eval(ctx)
}

// RequiredSummary adds the summary vectors the condition reads to out.
func (a *ActionX) RequiredSummary(out map[string]struct{}) {
	a.condition.RequiredSummary(out)
}

// WellPIWells returns the wells named by WELPI keywords in the body. The
// name '?' refers to the wells matched by the condition.
func (a *ActionX) WellPIWells(ctx Context, matches MatchingEntities) []string {
	var wells []string

	for _, kw := range a.keywords {
		if kw.Name != keywordWellPI {
			continue
		}

		for _, record := range kw.Records {
			arg := record.Text(0, "")
			if arg == "?" {
				wells = append(wells, matches.Wells()...)
				continue
			}

			names, _ := ctx.Wells(arg)
			wells = append(wells, names...)
		}
	}

	slices.Sort(wells)

	return slices.Compact(wells)
}
