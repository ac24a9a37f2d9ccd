// Package dependencies tracks which summary vectors each ACTIONX condition
// reads, so the vectors can be kept live during a simulation.
package dependencies

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ethpandaops/schedeck/pkg/action"
	"github.com/heimdalr/dag"
)

const (
	vectorPrefix = "vector:"
	actionPrefix = "action:"
)

var (
	// ErrDuplicateAction is returned when two actions share a name
	ErrDuplicateAction = errors.New("duplicate action in dependency graph")
)

// Graph is a bipartite DAG with an edge from every summary vector to each
// action whose condition reads it.
type Graph struct {
	dag     *dag.DAG
	vectors map[string][]string
	actions map[string][]string
	mutex   sync.RWMutex
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		dag:     dag.NewDAG(),
		vectors: make(map[string][]string),
		actions: make(map[string][]string),
	}
}

// Build replaces the graph with the dependencies of actions
func (g *Graph) Build(actions []*action.ActionX) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.dag = dag.NewDAG()
	g.vectors = make(map[string][]string)
	g.actions = make(map[string][]string)

	for _, act := range actions {
		if _, exists := g.actions[act.Name()]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateAction, act.Name())
		}

		required := make(map[string]struct{})
		act.RequiredSummary(required)

		vectors := make([]string, 0, len(required))
		for vector := range required {
			vectors = append(vectors, vector)
		}

		sort.Strings(vectors)
		g.actions[act.Name()] = vectors

		if err := g.dag.AddVertexByID(actionPrefix+act.Name(), act.Name()); err != nil {
			return fmt.Errorf("failed to add action vertex %s: %w", act.Name(), err)
		}

		for _, vector := range vectors {
			if _, known := g.vectors[vector]; !known {
				if err := g.dag.AddVertexByID(vectorPrefix+vector, vector); err != nil {
					return fmt.Errorf("failed to add vector vertex %s: %w", vector, err)
				}
			}

			g.vectors[vector] = append(g.vectors[vector], act.Name())

			if err := g.dag.AddEdge(vectorPrefix+vector, actionPrefix+act.Name()); err != nil {
				return fmt.Errorf("invalid dependency %s → %s: %w", vector, act.Name(), err)
			}
		}
	}

	return nil
}

// Vectors returns every summary vector read by at least one action
func (g *Graph) Vectors() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return sortedNames(g.vectors)
}

// Actions returns every action in the graph
func (g *Graph) Actions() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return sortedNames(g.actions)
}

// Readers returns the actions whose condition reads vector
func (g *Graph) Readers(vector string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return g.neighbours(g.dag.GetChildren, vectorPrefix+vector)
}

// Requires returns the summary vectors the condition of the named action reads
func (g *Graph) Requires(name string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return g.neighbours(g.dag.GetParents, actionPrefix+name)
}

func (g *Graph) neighbours(lookup func(string) (map[string]interface{}, error), id string) []string {
	vertices, err := lookup(id)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(vertices))
	for vertexID := range vertices {
		names = append(names, vertexName(vertexID))
	}

	sort.Strings(names)

	return names
}

// Order returns the number of vertices
func (g *Graph) Order() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return g.dag.GetOrder()
}

// Size returns the number of edges
func (g *Graph) Size() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return g.dag.GetSize()
}

func vertexName(id string) string {
	if name, ok := strings.CutPrefix(id, vectorPrefix); ok {
		return name
	}

	return strings.TrimPrefix(id, actionPrefix)
}

func sortedNames(m map[string][]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
