package state

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/ethpandaops/schedeck/pkg/action"
)

// MemoryTracker keeps run state in process memory
type MemoryTracker struct {
	mu   sync.RWMutex
	runs map[string]action.RunState
}

// NewMemoryTracker creates an empty in-memory tracker
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{runs: make(map[string]action.RunState)}
}

// Get returns the run state of an action
func (m *MemoryTracker) Get(_ context.Context, name string) (action.RunState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return cloneRun(m.runs[name]), nil
}

// Record registers a run of an action
func (m *MemoryTracker) Record(_ context.Context, name string, simTime time.Time, wells []string) (action.RunState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run := m.runs[name]
	run.Count++
	run.LastTime = simTime
	run.Wells = slices.Clone(wells)
	m.runs[name] = run

	return cloneRun(run), nil
}

// Reset forgets all runs of an action
func (m *MemoryTracker) Reset(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.runs, name)

	return nil
}

// All returns the run state of every action that has run
func (m *MemoryTracker) All(_ context.Context) (map[string]action.RunState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := maps.Clone(m.runs)
	for name, run := range out {
		out[name] = cloneRun(run)
	}

	return out, nil
}

// Close is a no-op
func (m *MemoryTracker) Close() error {
	return nil
}

func cloneRun(run action.RunState) action.RunState {
	run.Wells = slices.Clone(run.Wells)
	return run
}

var _ Tracker = (*MemoryTracker)(nil)
