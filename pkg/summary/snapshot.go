package summary

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTime is returned for a snapshot time in an unknown layout.
var ErrInvalidTime = errors.New("invalid snapshot time")

//nolint:gochecknoglobals // Accepted snapshot time layouts
var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", time.DateOnly}

// Snapshot is the file representation of a State. JSON input is accepted as
// well since it is valid YAML.
type Snapshot struct {
	Time      string                        `yaml:"time,omitempty" json:"time,omitempty"`
	Wells     []string                      `yaml:"wells,omitempty" json:"wells,omitempty"`
	Groups    []string                      `yaml:"groups,omitempty" json:"groups,omitempty"`
	WellLists map[string][]string           `yaml:"wellLists,omitempty" json:"wellLists,omitempty"`
	Values    map[string]float64            `yaml:"values,omitempty" json:"values,omitempty"`
	Entities  map[string]map[string]float64 `yaml:"entities,omitempty" json:"entities,omitempty"`
	UDQ       map[string]float64            `yaml:"udq,omitempty" json:"udq,omitempty"`
}

// ParseSnapshot decodes a snapshot document.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse summary snapshot: %w", err)
	}

	return &snap, nil
}

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary snapshot %s: %w", path, err)
	}

	return ParseSnapshot(data)
}

// State builds the evaluation state. Declared wells come first so they
// keep their order; wells only seen in entity values follow.
func (s *Snapshot) State() (*State, error) {
	state := NewState()

	for _, well := range s.Wells {
		state.matcher.AddWell(well)
	}

	for _, name := range sortedKeys(s.WellLists) {
		state.matcher.SetList(name, s.WellLists[name])
	}

	for _, group := range s.Groups {
		state.AddGroup(group)
	}

	for key, v := range s.Values {
		state.Set(key, v)
	}

	for _, key := range sortedKeys(s.Entities) {
		for _, entity := range sortedKeys(s.Entities[key]) {
			state.SetEntity(key, entity, s.Entities[key][entity])
		}
	}

	for name, v := range s.UDQ {
		state.SetUDQ(name, v)
	}

	if s.Time != "" {
		t, err := parseTime(s.Time)
		if err != nil {
			return nil, err
		}

		state.SetTime(t)
	}

	return state, nil
}

func parseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, value)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
