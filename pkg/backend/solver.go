package backend

import (
	"context"
	"fmt"

	"github.com/matzehuels/archlayout/pkg/errors"
	"github.com/matzehuels/archlayout/pkg/graph"
)

// =============================================================================
// Layout description
// =============================================================================

// Routing and ordering hints understood by solvers.
const (
	RoutingOrthogonal         = "orthogonal"
	LayeringNetworkSimplex    = "network-simplex"
	CrossingMinimizationSweep = "layer-sweep"
)

// Spacing defaults for constraint layouts, in pixels.
const (
	DefaultNodeSpacing     = 120.0
	DefaultLayerSpacing    = 200.0
	DefaultEdgeNodeSpacing = 50.0
	DefaultEdgeEdgeSpacing = 30.0
	DefaultPaddingTop      = 80.0
	DefaultPaddingLeft     = 100.0
)

// Description is the solver-independent request a [Solver] lays out.
type Description struct {
	Direction            graph.Direction
	EdgeRouting          string
	Layering             string
	CrossingMinimization string

	NodeSpacing     float64 // between nodes of the same rank
	LayerSpacing    float64 // between ranks
	EdgeNodeSpacing float64
	EdgeEdgeSpacing float64
	PaddingTop      float64
	PaddingLeft     float64

	Nodes []NodeSpec
	Edges []EdgeSpec
}

// NodeSpec describes one node to the solver. Fixed is set for pinned nodes
// and holds the top-left position the node must keep.
type NodeSpec struct {
	ID     string
	Width  float64
	Height float64
	Fixed  *graph.Position
}

// EdgeSpec describes one edge to the solver.
type EdgeSpec struct {
	ID     string
	Source string
	Target string
}

// Describe builds the solver request for g under opts. Options must already
// carry defaults.
func Describe(g graph.Graph, opts graph.Options) Description {
	d := Description{
		Direction:            opts.Direction,
		EdgeRouting:          RoutingOrthogonal,
		Layering:             LayeringNetworkSimplex,
		CrossingMinimization: CrossingMinimizationSweep,
		NodeSpacing:          DefaultNodeSpacing,
		LayerSpacing:         DefaultLayerSpacing,
		EdgeNodeSpacing:      DefaultEdgeNodeSpacing,
		EdgeEdgeSpacing:      DefaultEdgeEdgeSpacing,
		PaddingTop:           DefaultPaddingTop,
		PaddingLeft:          DefaultPaddingLeft,
		Nodes:                make([]NodeSpec, len(g.Nodes)),
		Edges:                make([]EdgeSpec, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		w, h := n.Dimensions(opts.NodeWidth, opts.NodeHeight)
		spec := NodeSpec{ID: n.ID, Width: w, Height: h}
		if n.Pinned && n.Position != nil {
			p := *n.Position
			spec.Fixed = &p
		}
		d.Nodes[i] = spec
	}
	for i, e := range g.Edges {
		d.Edges[i] = EdgeSpec{ID: e.Key(), Source: e.Source, Target: e.Target}
	}
	return d
}

// =============================================================================
// Solver contract
// =============================================================================

// Positions maps node IDs to top-left coordinates.
type Positions map[string]graph.Position

// Solver computes positions for a description. Implementations must honor
// ctx cancellation where they can; the constraint backend enforces its
// deadline either way.
type Solver interface {
	Solve(ctx context.Context, d Description) (Positions, error)
}

// SolverFunc adapts a function to the [Solver] interface.
type SolverFunc func(ctx context.Context, d Description) (Positions, error)

// Solve calls f.
func (f SolverFunc) Solve(ctx context.Context, d Description) (Positions, error) {
	return f(ctx, d)
}

// SolverError reports a failed solver call. It always carries one of the
// SOLVER_* error codes.
type SolverError struct {
	Backend string
	Err     *errors.Error
}

func newSolverError(backend string, code errors.Code, cause error, format string, args ...any) *SolverError {
	return &SolverError{Backend: backend, Err: errors.Wrap(code, cause, format, args...)}
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Backend, e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }

// Code returns the structured error code.
func (e *SolverError) Code() errors.Code { return e.Err.Code }
