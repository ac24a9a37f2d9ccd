// Package summary holds the summary vector values an ACTIONX condition is
// evaluated against.
package summary

import (
	"maps"
	"slices"
	"time"

	"github.com/ethpandaops/schedeck/pkg/action"
)

var _ action.Context = (*State)(nil)

// State is a snapshot of summary vectors, user defined quantities and the
// well and group registries at one point in simulated time.
type State struct {
	values   map[string]float64
	entities map[string]map[string]float64
	udq      map[string]float64
	matcher  *WellMatcher
	groups   []string
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		values:   make(map[string]float64),
		entities: make(map[string]map[string]float64),
		udq:      make(map[string]float64),
		matcher:  NewWellMatcher(nil, nil),
	}
}

// Set stores a field level quantity.
func (s *State) Set(key string, value float64) {
	s.values[key] = value
}

// SetEntity stores a quantity for one entity. Well and group quantities
// register the entity with the matching registry.
func (s *State) SetEntity(key, entity string, value float64) {
	if _, ok := s.entities[key]; !ok {
		s.entities[key] = make(map[string]float64)
	}

	s.entities[key][entity] = value

	switch action.FuncTypeOf(key) {
	case action.FuncWell:
		s.matcher.AddWell(entity)
	case action.FuncGroup:
		s.AddGroup(entity)
	}
}

// SetUDQ stores a user defined quantity.
func (s *State) SetUDQ(name string, value float64) {
	s.udq[name] = value
}

// SetTime stores the calendar quantities YEAR, MNTH and DAY of t.
func (s *State) SetTime(t time.Time) {
	s.values["YEAR"] = float64(t.Year())
	s.values["MNTH"] = float64(t.Month())
	s.values["DAY"] = float64(t.Day())
}

// AddGroup registers a group.
func (s *State) AddGroup(group string) {
	if !slices.Contains(s.groups, group) {
		s.groups = append(s.groups, group)
	}
}

// Matcher returns the well matcher.
func (s *State) Matcher() *WellMatcher {
	return s.matcher
}

// Keys returns the sorted names of all stored quantities.
func (s *State) Keys() []string {
	keys := slices.Collect(maps.Keys(s.values))
	keys = append(keys, slices.Collect(maps.Keys(s.entities))...)
	keys = append(keys, slices.Collect(maps.Keys(s.udq))...)

	slices.Sort(keys)

	return slices.Compact(keys)
}

// Get implements action.Context.
func (s *State) Get(key string) (float64, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetEntity implements action.Context.
func (s *State) GetEntity(key, entity string) (float64, bool) {
	v, ok := s.entities[key][entity]
	return v, ok
}

// UDQ implements action.Context.
func (s *State) UDQ(name string) (float64, bool) {
	v, ok := s.udq[name]
	return v, ok
}

// Wells implements action.Context.
func (s *State) Wells(pattern string) ([]string, bool) {
	return s.matcher.Wells(pattern)
}

// Groups implements action.Context.
func (s *State) Groups(pattern string) []string {
	return matchNames(s.groups, pattern)
}
