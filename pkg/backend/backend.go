// Package backend implements the layout backends the orchestrator chooses
// between.
//
// Every backend takes a sanitized [graph.Graph] plus resolved
// [graph.Options] and returns a new graph in which every node has a
// position. Inputs are never modified. Pinned nodes keep the position they
// arrived with.
//
// # Backends
//
//   - [Constraint]: builds a [Description] and delegates to a [Solver]
//     (in production [GraphvizSolver]). It is the only backend that can fail.
//   - [Layered]: an in-process Sugiyama-style layout (cycle removal,
//     longest-path ranks, barycenter ordering).
//   - [Grid]: deterministic row/column placement; the fallback that
//     cannot fail.
package backend

import (
	"context"
	"fmt"

	"github.com/matzehuels/archlayout/pkg/graph"
)

// Backend computes node positions for a graph.
type Backend interface {
	// Name identifies the backend in results, logs and metrics.
	Name() string
	// Layout returns a copy of g with every node positioned.
	Layout(ctx context.Context, g graph.Graph, opts graph.Options) (graph.Graph, error)
}

// Registry maps engine kinds to backend instances.
type Registry struct {
	Constraint Backend
	Layered    Backend
	Fallback   Backend
}

// NewRegistry returns the standard backends. The constraint backend uses
// solver; a nil solver selects [GraphvizSolver].
func NewRegistry(solver Solver) Registry {
	if solver == nil {
		solver = NewGraphvizSolver()
	}
	return Registry{
		Constraint: NewConstraint(solver),
		Layered:    NewLayered(),
		Fallback:   NewGrid(),
	}
}

// For returns the backend registered for kind.
func (r Registry) For(kind graph.EngineKind) (Backend, error) {
	var b Backend
	switch kind {
	case graph.EngineConstraint:
		b = r.Constraint
	case graph.EngineLayered:
		b = r.Layered
	case graph.EngineFallback:
		b = r.Fallback
	default:
		return nil, fmt.Errorf("no backend for engine %q", kind)
	}
	if b == nil {
		return nil, fmt.Errorf("backend %q not configured", kind)
	}
	return b, nil
}

// place returns a copy of g with positions taken from pos. Pinned nodes
// that already carry a position keep it.
func place(g graph.Graph, pos func(i int, n graph.Node) (float64, float64)) graph.Graph {
	nodes := make([]graph.Node, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.Pinned && n.Position != nil {
			nodes[i] = n.Clone()
			continue
		}
		x, y := pos(i, n)
		nodes[i] = n.WithPosition(x, y)
	}
	return graph.Graph{Nodes: nodes, Edges: graph.CloneEdges(g.Edges)}
}
