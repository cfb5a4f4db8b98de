package backend

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "github.com/matzehuels/archlayout/pkg/errors"
	"github.com/matzehuels/archlayout/pkg/graph"
)

func nodes(ids ...string) []graph.Node {
	out := make([]graph.Node, len(ids))
	for i, id := range ids {
		out[i] = graph.Node{ID: id}
	}
	return out
}

func defaults() graph.Options { return graph.Options{}.WithDefaults() }

// =============================================================================
// Grid
// =============================================================================

func TestGridLeftToRight(t *testing.T) {
	g := graph.Graph{Nodes: nodes("a", "b", "c")}
	out, err := NewGrid().Layout(context.Background(), g, defaults())
	require.NoError(t, err)

	want := [][2]float64{{100, 100}, {452, 100}, {804, 100}}
	for i, n := range out.Nodes {
		x, y := n.XY()
		assert.Equal(t, want[i], [2]float64{x, y}, "node %s", n.ID)
	}
	assert.Nil(t, g.Nodes[0].Position, "input must not be mutated")
}

func TestGridDirections(t *testing.T) {
	g := graph.Graph{Nodes: nodes("a", "b", "c", "d")}
	// n=4: ceil(sqrt(6)) = 3 along the long axis.
	tests := []struct {
		dir   graph.Direction
		first [2]float64
		last  [2]float64
	}{
		{graph.LeftToRight, [2]float64{100, 100}, [2]float64{100, 356}},
		{graph.RightToLeft, [2]float64{804, 100}, [2]float64{804, 356}},
		{graph.TopToBottom, [2]float64{100, 100}, [2]float64{452, 100}},
		{graph.BottomToTop, [2]float64{100, 612}, [2]float64{452, 612}},
	}
	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			out := NewGrid().Place(g, graph.Options{Direction: tt.dir})
			x0, y0 := out.Nodes[0].XY()
			x3, y3 := out.Nodes[3].XY()
			assert.Equal(t, tt.first, [2]float64{x0, y0})
			assert.Equal(t, tt.last, [2]float64{x3, y3})
		})
	}
}

func TestGridKeepsPinned(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{
		{ID: "a", Pinned: true, Position: &graph.Position{X: 7, Y: 9}},
		{ID: "b"},
	}}
	out := NewGrid().Place(g, graph.Options{})
	x, y := out.Nodes[0].XY()
	assert.Equal(t, [2]float64{7, 9}, [2]float64{x, y})
	assert.NotNil(t, out.Nodes[1].Position)
}

func TestGridEmpty(t *testing.T) {
	out := NewGrid().Place(graph.Graph{}, graph.Options{})
	assert.Empty(t, out.Nodes)
}

// =============================================================================
// Layered
// =============================================================================

func TestLayeredRanksFollowEdges(t *testing.T) {
	g := graph.Graph{
		Nodes: nodes("web", "api", "db", "cache"),
		Edges: []graph.Edge{
			{Source: "web", Target: "api"},
			{Source: "api", Target: "db"},
			{Source: "api", Target: "cache"},
		},
	}
	out, err := NewLayered().Layout(context.Background(), g, defaults())
	require.NoError(t, err)

	x := func(id string) float64 {
		n, _ := out.NodeByID(id)
		v, _ := n.XY()
		return v
	}
	assert.Less(t, x("web"), x("api"))
	assert.Less(t, x("api"), x("db"))
	assert.Equal(t, x("db"), x("cache"))
	assertNoOverlap(t, out, defaults())
}

func TestLayeredKeepsPinned(t *testing.T) {
	for _, dir := range []graph.Direction{graph.LeftToRight, graph.TopToBottom, graph.RightToLeft, graph.BottomToTop} {
		t.Run(string(dir), func(t *testing.T) {
			g := graph.Graph{
				Nodes: []graph.Node{
					{ID: "web"},
					{ID: "api", Pinned: true, Position: &graph.Position{X: -40, Y: 1234.5}},
					{ID: "db"},
				},
				Edges: []graph.Edge{{Source: "web", Target: "api"}, {Source: "api", Target: "db"}},
			}
			out, err := NewLayered().Layout(context.Background(), g, graph.Options{Direction: dir})
			require.NoError(t, err)

			api, ok := out.NodeByID("api")
			require.True(t, ok)
			x, y := api.XY()
			assert.Equal(t, [2]float64{-40, 1234.5}, [2]float64{x, y})
			for _, n := range out.Nodes {
				assert.NotNil(t, n.Position, "node %s", n.ID)
			}
		})
	}
}

func TestLayeredDirections(t *testing.T) {
	g := graph.Graph{Nodes: nodes("a", "b"), Edges: []graph.Edge{{Source: "a", Target: "b"}}}
	tests := []struct {
		dir   graph.Direction
		check func(ax, ay, bx, by float64) bool
	}{
		{graph.LeftToRight, func(ax, ay, bx, by float64) bool { return ax < bx && ay == by }},
		{graph.RightToLeft, func(ax, ay, bx, by float64) bool { return ax > bx && ay == by }},
		{graph.TopToBottom, func(ax, ay, bx, by float64) bool { return ay < by && ax == bx }},
		{graph.BottomToTop, func(ax, ay, bx, by float64) bool { return ay > by && ax == bx }},
	}
	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			out, _ := NewLayered().Layout(context.Background(), g, graph.Options{Direction: tt.dir})
			ax, ay := out.Nodes[0].XY()
			bx, by := out.Nodes[1].XY()
			assert.True(t, tt.check(ax, ay, bx, by), "a=(%v,%v) b=(%v,%v)", ax, ay, bx, by)
		})
	}
}

func TestLayeredHandlesCycles(t *testing.T) {
	g := graph.Graph{
		Nodes: nodes("a", "b", "c"),
		Edges: []graph.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
			{Source: "c", Target: "a"},
			{Source: "b", Target: "b"},
		},
	}
	out, err := NewLayered().Layout(context.Background(), g, defaults())
	require.NoError(t, err)
	for _, n := range out.Nodes {
		require.NotNil(t, n.Position, "node %s unplaced", n.ID)
	}
	assertNoOverlap(t, out, defaults())
	assert.Len(t, out.Edges, 4, "edges are returned unchanged")
}

func TestLayeredBarycenterUncrosses(t *testing.T) {
	// a1->b2 and a2->b1 cross in input order; one sweep fixes it.
	g := graph.Graph{
		Nodes: nodes("a1", "a2", "b1", "b2"),
		Edges: []graph.Edge{{Source: "a1", Target: "b2"}, {Source: "a2", Target: "b1"}},
	}
	out, _ := NewLayered().Layout(context.Background(), g, defaults())
	y := func(id string) float64 {
		n, _ := out.NodeByID(id)
		_, v := n.XY()
		return v
	}
	assert.Equal(t, y("a1") < y("a2"), y("b2") < y("b1"))
}

// =============================================================================
// Constraint
// =============================================================================

func TestConstraintUsesSolverPositions(t *testing.T) {
	var got Description
	solver := SolverFunc(func(_ context.Context, d Description) (Positions, error) {
		got = d
		pos := Positions{}
		for i, n := range d.Nodes {
			pos[n.ID] = graph.Position{X: float64(i) * 300, Y: 50}
		}
		return pos, nil
	})

	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "a", Size: &graph.Size{Width: 100, Height: 40}},
			{ID: "b", Pinned: true, Position: &graph.Position{X: 11, Y: 22}},
		},
		Edges: []graph.Edge{{Source: "a", Target: "b"}},
	}
	out, err := NewConstraint(solver).Layout(context.Background(), g, graph.Options{Direction: graph.TopToBottom})
	require.NoError(t, err)

	assert.Equal(t, graph.TopToBottom, got.Direction)
	assert.Equal(t, RoutingOrthogonal, got.EdgeRouting)
	assert.Equal(t, 100.0, got.Nodes[0].Width)
	assert.Equal(t, graph.DefaultNodeWidth, got.Nodes[1].Width)
	require.NotNil(t, got.Nodes[1].Fixed)
	assert.Nil(t, got.Nodes[0].Fixed)
	assert.Equal(t, "a->b", got.Edges[0].ID)

	ax, ay := out.Nodes[0].XY()
	assert.Equal(t, [2]float64{0, 50}, [2]float64{ax, ay})
	bx, by := out.Nodes[1].XY()
	assert.Equal(t, [2]float64{11, 22}, [2]float64{bx, by}, "pinned node keeps its position")
}

func TestConstraintFailures(t *testing.T) {
	g := graph.Graph{Nodes: nodes("a", "b")}
	tests := []struct {
		name   string
		solver SolverFunc
		code   aerrors.Code
	}{
		{
			name: "SolverError",
			solver: func(context.Context, Description) (Positions, error) {
				return nil, errors.New("boom")
			},
			code: aerrors.ErrCodeSolverFailed,
		},
		{
			name: "MissingNode",
			solver: func(context.Context, Description) (Positions, error) {
				return Positions{"a": {X: 1, Y: 1}}, nil
			},
			code: aerrors.ErrCodeSolverMalformed,
		},
		{
			name: "NaN",
			solver: func(context.Context, Description) (Positions, error) {
				return Positions{"a": {X: math.NaN()}, "b": {}}, nil
			},
			code: aerrors.ErrCodeSolverMalformed,
		},
		{
			name: "Panic",
			solver: func(context.Context, Description) (Positions, error) {
				panic("solver crashed")
			},
			code: aerrors.ErrCodeSolverFailed,
		},
		{
			name: "IgnoresDeadline",
			solver: func(context.Context, Description) (Positions, error) {
				time.Sleep(200 * time.Millisecond)
				return Positions{"a": {}, "b": {}}, nil
			},
			code: aerrors.ErrCodeSolverTimeout,
		},
		{
			name: "ReturnsDeadline",
			solver: func(ctx context.Context, _ Description) (Positions, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
			code: aerrors.ErrCodeSolverTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := graph.Options{SolverTimeout: 20 * time.Millisecond}
			out, err := NewConstraint(tt.solver).Layout(context.Background(), g, opts)
			require.Error(t, err)
			assert.Empty(t, out.Nodes, "no partial positions")

			var se *SolverError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.code, se.Code())
			assert.True(t, aerrors.Is(err, tt.code))
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(SolverFunc(func(context.Context, Description) (Positions, error) { return Positions{}, nil }))
	for _, k := range []graph.EngineKind{graph.EngineConstraint, graph.EngineLayered, graph.EngineFallback} {
		b, err := r.For(k)
		require.NoError(t, err)
		assert.Equal(t, string(k), b.Name())
	}
	_, err := r.For(graph.EngineAuto)
	assert.Error(t, err)
	_, err = Registry{}.For(graph.EngineLayered)
	assert.Error(t, err)
}

// =============================================================================
// Graphviz DOT and plain output
// =============================================================================

func TestToDOT(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "web app"},
			{ID: "db", Pinned: true, Position: &graph.Position{X: 0, Y: 0}},
		},
		Edges: []graph.Edge{{Source: "web app", Target: "db"}, {Source: "web app", Target: "ghost"}},
	}
	dot := ToDOT(Describe(g, graph.Options{Direction: graph.TopToBottom}.WithDefaults()))

	assert.Contains(t, dot, "rankdir=TB;")
	assert.Contains(t, dot, "splines=ortho;")
	assert.Contains(t, dot, "n0 -> n1;")
	assert.Contains(t, dot, "pin=true")
	assert.NotContains(t, dot, "web app", "ids are replaced by positional names")
	assert.Equal(t, 1, strings.Count(dot, "->"))
}

func TestParsePlain(t *testing.T) {
	d := Description{
		PaddingTop:  80,
		PaddingLeft: 100,
		Nodes: []NodeSpec{
			{ID: "a", Width: 72, Height: 36},
			{ID: "b", Width: 72, Height: 36},
		},
	}
	out := []byte(`graph 1 3 2
node n0 0.5 1.75 1 0.5 "" solid box black lightgrey
node n1 2.5 0.25 1 0.5 "" solid box black lightgrey
edge n0 n1 4 0.5 1.5 1 1 2 0.5 2.5 0.5 solid black
stop
`)
	pos, err := parsePlain(out, d)
	require.NoError(t, err)
	// a: center (36, 2-1.75=0.25in -> 18px) -> top-left (0, 0) + padding.
	assert.InDelta(t, 100, pos["a"].X, 1e-9)
	assert.InDelta(t, 80, pos["a"].Y, 1e-9)
	// b: center (180, 126) -> top-left (144, 108) + padding.
	assert.InDelta(t, 244, pos["b"].X, 1e-9)
	assert.InDelta(t, 188, pos["b"].Y, 1e-9)

	_, err = parsePlain([]byte("node n0 x 1\n"), d)
	assert.Error(t, err)
}

func assertNoOverlap(t *testing.T, g graph.Graph, opts graph.Options) {
	t.Helper()
	for i := range g.Nodes {
		for j := i + 1; j < len(g.Nodes); j++ {
			a := g.Nodes[i].Bounds(opts.NodeWidth, opts.NodeHeight)
			b := g.Nodes[j].Bounds(opts.NodeWidth, opts.NodeHeight)
			if a.Intersects(b) {
				t.Errorf("nodes %s and %s overlap", g.Nodes[i].ID, g.Nodes[j].ID)
			}
		}
	}
}
