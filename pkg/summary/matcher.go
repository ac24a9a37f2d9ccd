package summary

import (
	"path"
	"slices"
	"strings"
)

// WellMatcher resolves well names, wildcard patterns, well lists and well
// list templates to the wells they denote. Results follow the order in
// which wells were registered.
type WellMatcher struct {
	wells []string
	lists map[string][]string
}

// NewWellMatcher creates a matcher over wells. List names are given without
// the leading '*'.
func NewWellMatcher(wells []string, lists map[string][]string) *WellMatcher {
	m := &WellMatcher{lists: make(map[string][]string, len(lists))}

	for _, well := range wells {
		m.AddWell(well)
	}

	for _, name := range sortedKeys(lists) {
		m.SetList(name, lists[name])
	}

	return m
}

// AddWell registers well if it is not known yet.
func (m *WellMatcher) AddWell(well string) {
	if !slices.Contains(m.wells, well) {
		m.wells = append(m.wells, well)
	}
}

// SetList defines or replaces the well list called name.
func (m *WellMatcher) SetList(name string, members []string) {
	m.lists[strings.TrimPrefix(name, "*")] = slices.Clone(members)

	for _, well := range members {
		m.AddWell(well)
	}
}

// All returns every registered well.
func (m *WellMatcher) All() []string {
	return slices.Clone(m.wells)
}

// Lists returns the names of the defined well lists.
func (m *WellMatcher) Lists() []string {
	names := make([]string, 0, len(m.lists))
	for name := range m.lists {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Wells resolves pattern. A pattern starting with '*' and followed by more
// characters names a well list, or with wildcards a template matching
// several lists; it reports false when no such list exists. Anything else
// is matched against the well names.
func (m *WellMatcher) Wells(pattern string) ([]string, bool) {
	if len(pattern) > 1 && pattern[0] == '*' {
		return m.listWells(pattern[1:])
	}

	return matchNames(m.wells, pattern), true
}

func (m *WellMatcher) listWells(name string) ([]string, bool) {
	if members, ok := m.lists[name]; ok {
		return m.Sort(members), true
	}

	if !strings.ContainsAny(name, "*?") {
		return nil, false
	}

	var members []string

	for list, wells := range m.lists {
		if ok, _ := path.Match(name, list); ok {
			members = append(members, wells...)
		}
	}

	return m.Sort(members), true
}

// Sort orders wells by registration order and drops duplicates. Unknown
// wells are dropped.
func (m *WellMatcher) Sort(wells []string) []string {
	out := make([]string, 0, len(wells))

	for _, well := range m.wells {
		if slices.Contains(wells, well) {
			out = append(out, well)
		}
	}

	return out
}

func matchNames(names []string, pattern string) []string {
	var out []string

	for _, name := range names {
		if ok, _ := path.Match(pattern, name); ok {
			out = append(out, name)
		}
	}

	return out
}
