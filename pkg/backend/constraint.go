package backend

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"time"

	"github.com/matzehuels/archlayout/pkg/errors"
	"github.com/matzehuels/archlayout/pkg/graph"
)

// Constraint delegates layout to a [Solver] and validates what comes back.
// It never returns partial positions: either every node is placed or the
// call fails with a [*SolverError].
type Constraint struct {
	solver Solver
}

// NewConstraint returns a constraint backend using solver.
func NewConstraint(solver Solver) *Constraint {
	return &Constraint{solver: solver}
}

// Name implements [Backend].
func (c *Constraint) Name() string { return string(graph.EngineConstraint) }

type solveResult struct {
	pos Positions
	err error
}

// Layout implements [Backend]. The solver call is bounded by
// opts.SolverTimeout; a solver that ignores its context is abandoned when
// the deadline passes.
func (c *Constraint) Layout(ctx context.Context, g graph.Graph, opts graph.Options) (graph.Graph, error) {
	opts.SetDefaults()
	desc := Describe(g, opts)

	sctx, cancel := context.WithTimeout(ctx, opts.SolverTimeout)
	defer cancel()

	done := make(chan solveResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- solveResult{err: fmt.Errorf("solver panic: %v", r)}
			}
		}()
		pos, err := c.solver.Solve(sctx, desc)
		done <- solveResult{pos: pos, err: err}
	}()

	var res solveResult
	select {
	case <-sctx.Done():
		return graph.Graph{}, c.contextError(sctx.Err(), opts.SolverTimeout)
	case res = <-done:
	}

	if res.err != nil {
		if stderrors.Is(res.err, context.DeadlineExceeded) {
			return graph.Graph{}, c.contextError(res.err, opts.SolverTimeout)
		}
		return graph.Graph{}, newSolverError(c.Name(), errors.ErrCodeSolverFailed, res.err, "solver failed")
	}

	for _, n := range g.Nodes {
		p, ok := res.pos[n.ID]
		if !ok {
			return graph.Graph{}, newSolverError(c.Name(), errors.ErrCodeSolverMalformed, nil, "no position for node %q", n.ID)
		}
		if !finite(p.X) || !finite(p.Y) {
			return graph.Graph{}, newSolverError(c.Name(), errors.ErrCodeSolverMalformed, nil, "non-finite position for node %q", n.ID)
		}
	}

	return place(g, func(_ int, n graph.Node) (float64, float64) {
		p := res.pos[n.ID]
		return p.X, p.Y
	}), nil
}

func (c *Constraint) contextError(err error, timeout time.Duration) *SolverError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return newSolverError(c.Name(), errors.ErrCodeSolverTimeout, err, "solver exceeded %s", timeout)
	}
	return newSolverError(c.Name(), errors.ErrCodeSolverFailed, err, "solver cancelled")
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
