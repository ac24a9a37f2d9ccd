package dependencies

import (
	"fmt"
	"strings"
)

// Info summarises the graph for reports and the API
type Info struct {
	Vectors      []string            `json:"vectors"`
	Actions      []string            `json:"actions"`
	Readers      map[string][]string `json:"readers"`
	Requires     map[string][]string `json:"requires"`
	Shared       []string            `json:"shared"`
	TotalEdges   int                 `json:"totalEdges"`
	TotalActions int                 `json:"totalActions"`
}

// GetInfo returns the graph summary. Shared lists the vectors read by more
// than one action.
func (g *Graph) GetInfo() *Info {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	info := &Info{
		Vectors:      sortedNames(g.vectors),
		Actions:      sortedNames(g.actions),
		Readers:      make(map[string][]string, len(g.vectors)),
		Requires:     make(map[string][]string, len(g.actions)),
		Shared:       []string{},
		TotalEdges:   g.dag.GetSize(),
		TotalActions: len(g.actions),
	}

	for _, vector := range info.Vectors {
		readers := g.neighbours(g.dag.GetChildren, vectorPrefix+vector)
		info.Readers[vector] = readers

		if len(readers) > 1 {
			info.Shared = append(info.Shared, vector)
		}
	}

	for _, name := range info.Actions {
		info.Requires[name] = g.actions[name]
	}

	return info
}

// GenerateDOTFormat generates a DOT format representation of the graph.
// Vectors are drawn as boxes on the left, actions as ellipses.
func (g *Graph) GenerateDOTFormat() string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var sb strings.Builder
	sb.WriteString("digraph actionx {\n")
	sb.WriteString("  rankdir=LR;\n")

	for _, vector := range sortedNames(g.vectors) {
		fmt.Fprintf(&sb, "  \"%s\" [shape=box, style=filled, fillcolor=lightblue];\n", vector)
	}

	for _, name := range sortedNames(g.actions) {
		fmt.Fprintf(&sb, "  \"%s\";\n", name)

		for _, vector := range g.actions[name] {
			fmt.Fprintf(&sb, "  \"%s\" -> \"%s\";\n", vector, name)
		}
	}

	sb.WriteString("}")

	return sb.String()
}
