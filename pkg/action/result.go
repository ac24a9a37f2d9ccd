package action

import (
	"encoding/json"

	"github.com/ethpandaops/schedeck/pkg/sortedset"
)

// ResultKind tells a pure pass/fail result from one carrying matched entities.
type ResultKind int

const (
	// ResultScalar carries no entity information, e.g. FOPR > 100.
	ResultScalar ResultKind = iota
	// ResultSet carries the entities for which the condition held.
	ResultSet
)

func (k ResultKind) String() string {
	if k == ResultSet {
		return "set"
	}

	return "scalar"
}

// MatchingEntities is the set of wells for which a condition held. A nil
// set means the condition never involved any wells.
type MatchingEntities struct {
	wells *sortedset.Set[string]
}

// Wells returns the matching wells in sorted order.
func (m MatchingEntities) Wells() []string {
	if m.wells == nil {
		return nil
	}

	return m.wells.Elements()
}

// HasWell reports whether well is among the matching wells.
func (m MatchingEntities) HasWell(well string) bool {
	return m.wells != nil && m.wells.HasElement(well)
}

// Equal reports whether both hold the same wells, with absent and present
// sets told apart.
func (m MatchingEntities) Equal(other MatchingEntities) bool {
	if m.wells == nil || other.wells == nil {
		return m.wells == nil && other.wells == nil
	}

	return m.wells.Equal(other.wells)
}

func (m MatchingEntities) cleared() MatchingEntities {
	if m.wells == nil {
		return m
	}

	return MatchingEntities{wells: sortedset.New[string]()}
}

func (m MatchingEntities) union(rhs MatchingEntities) MatchingEntities {
	switch {
	case rhs.wells == nil:
		return m
	case m.wells == nil:
		return MatchingEntities{wells: rhs.wells.Clone()}
	default:
		return MatchingEntities{wells: m.wells.MakeUnion(rhs.wells)}
	}
}

func (m MatchingEntities) intersection(rhs MatchingEntities) MatchingEntities {
	return MatchingEntities{wells: sortedset.IntersectWithEmptyHandling(rhs.wells, m.wells)}
}

// Result is the outcome of evaluating a condition. Results are values; the
// combining methods return new results and never modify their operands.
type Result struct {
	satisfied bool
	matches   MatchingEntities
}

// NewResult returns a scalar result.
func NewResult(satisfied bool) Result {
	return Result{satisfied: satisfied}
}

// WithWells returns a copy of r whose matching set also holds wells. The
// copy is a set result even when wells is empty.
func (r Result) WithWells(wells ...string) Result {
	set := sortedset.New[string]()
	if r.matches.wells != nil {
		set = r.matches.wells.Clone()
	}

	set.Insert(wells...)
	set.Commit()

	return Result{satisfied: r.satisfied, matches: MatchingEntities{wells: set}}
}

// ConditionSatisfied reports whether the condition held.
func (r Result) ConditionSatisfied() bool {
	return r.satisfied
}

// Matches returns the matching entities.
func (r Result) Matches() MatchingEntities {
	return r.matches
}

// Kind reports whether r carries a matching entity set.
func (r Result) Kind() ResultKind {
	if r.matches.wells == nil {
		return ResultScalar
	}

	return ResultSet
}

// MakeSetUnion combines r and rhs as by OR. A failed result keeps no
// matching wells.
func (r Result) MakeSetUnion(rhs Result) Result {
	out := Result{satisfied: r.satisfied || rhs.satisfied}

	if !out.satisfied {
		out.matches = r.matches.cleared()
	} else {
		out.matches = r.matches.union(rhs.matches)
	}

	return out
}

// MakeSetIntersection combines r and rhs as by AND. Matching sets are
// intersected, except that a scalar operand leaves the other operand's set
// unchanged.
func (r Result) MakeSetIntersection(rhs Result) Result {
	out := Result{satisfied: r.satisfied && rhs.satisfied}

	if !out.satisfied {
		out.matches = r.matches.cleared()
	} else {
		out.matches = r.matches.intersection(rhs.matches)
	}

	return out
}

// Equal reports whether both results agree on outcome and matching wells.
func (r Result) Equal(other Result) bool {
	return r.satisfied == other.satisfied && r.matches.Equal(other.matches)
}

type resultJSON struct {
	Satisfied bool     `json:"satisfied"`
	Kind      string   `json:"kind"`
	Wells     []string `json:"wells"`
}

// MarshalJSON renders the result for the inspection API.
func (r Result) MarshalJSON() ([]byte, error) {
	wells := r.matches.Wells()
	if wells == nil && r.Kind() == ResultSet {
		wells = []string{}
	}

	return json.Marshal(resultJSON{
		Satisfied: r.satisfied,
		Kind:      r.Kind().String(),
		Wells:     wells,
	})
}
