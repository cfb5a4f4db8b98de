package complexity

import (
	"fmt"
	"math"
	"testing"

	"github.com/matzehuels/archlayout/pkg/graph"
)

func chain(ids ...string) graph.Graph {
	var g graph.Graph
	for _, id := range ids {
		g.Nodes = append(g.Nodes, graph.Node{ID: id})
	}
	for i := 1; i < len(ids); i++ {
		g.Edges = append(g.Edges, graph.Edge{Source: ids[i-1], Target: ids[i]})
	}
	return g
}

func TestAnalyzeCycles(t *testing.T) {
	tests := []struct {
		name   string
		g      graph.Graph
		cyclic bool
	}{
		{"Chain", chain("A", "B", "C"), false},
		{"Ring", func() graph.Graph {
			g := chain("A", "B", "C")
			g.Edges = append(g.Edges, graph.Edge{Source: "C", Target: "A"})
			return g
		}(), true},
		{"SelfLoop", graph.Graph{
			Nodes: []graph.Node{{ID: "A"}},
			Edges: []graph.Edge{{Source: "A", Target: "A"}},
		}, true},
		{"Diamond", graph.Graph{
			Nodes: []graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
			Edges: []graph.Edge{
				{Source: "a", Target: "b"}, {Source: "a", Target: "c"},
				{Source: "b", Target: "d"}, {Source: "c", Target: "d"},
			},
		}, false},
		{"CycleInSecondComponent", graph.Graph{
			Nodes: []graph.Node{{ID: "a"}, {ID: "b"}, {ID: "x"}, {ID: "y"}},
			Edges: []graph.Edge{
				{Source: "a", Target: "b"},
				{Source: "x", Target: "y"}, {Source: "y", Target: "x"},
			},
		}, true},
		{"DanglingEdgeIgnored", graph.Graph{
			Nodes: []graph.Node{{ID: "a"}},
			Edges: []graph.Edge{{Source: "a", Target: "ghost"}, {Source: "ghost", Target: "a"}},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Analyze(tt.g)
			if m.HasCycles != tt.cyclic {
				t.Errorf("HasCycles = %v, want %v", m.HasCycles, tt.cyclic)
			}
		})
	}
}

func TestAnalyzeRingScoresHigherThanChain(t *testing.T) {
	acyclic := Analyze(chain("A", "B", "C"))
	g := chain("A", "B", "C")
	g.Edges = append(g.Edges, graph.Edge{Source: "C", Target: "A"})
	cyclic := Analyze(g)

	if cyclic.CompositeScore <= acyclic.CompositeScore {
		t.Errorf("cyclic score %v should exceed acyclic %v", cyclic.CompositeScore, acyclic.CompositeScore)
	}
}

func TestLayerDepth(t *testing.T) {
	tests := []struct {
		name string
		g    graph.Graph
		want int
	}{
		{"Empty", graph.Graph{}, 1},
		{"NoEdges", graph.Graph{Nodes: []graph.Node{{ID: "a"}, {ID: "b"}}}, 1},
		{"ChainOfFour", chain("a", "b", "c", "d"), 4},
		{"PureCycle", graph.Graph{
			Nodes: []graph.Node{{ID: "a"}, {ID: "b"}},
			Edges: []graph.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}},
		}, 1},
		{"CycleAfterSource", func() graph.Graph {
			g := chain("s", "a", "b")
			g.Edges = append(g.Edges, graph.Edge{Source: "b", Target: "a"})
			return g
		}(), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LayerDepth(graph.NewIndex(tt.g)); got != tt.want {
				t.Errorf("LayerDepth = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDensity(t *testing.T) {
	if d := Density(1, 5); d != 0 {
		t.Errorf("Density(1,5) = %v, want 0", d)
	}
	if d := Density(4, 6); d != 1 {
		t.Errorf("Density(4,6) = %v, want 1", d)
	}
	if d := Density(3, 1); math.Abs(d-1.0/3) > 1e-9 {
		t.Errorf("Density(3,1) = %v, want 1/3", d)
	}
}

func TestScoreFormula(t *testing.T) {
	got := Score(40, 0.5, 10, true)
	want := 2.0 + 0.75 + 1.0 + 0.5
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", got, want)
	}
	if got := Score(0, 0, 1, false); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("Score(empty) = %v, want 0.2", got)
	}
}

func TestScoreMonotonic(t *testing.T) {
	for n := 0; n < 60; n += 7 {
		for _, d := range []float64{0, 0.1, 0.5, 1} {
			for depth := 1; depth < 8; depth++ {
				base := Score(n, d, depth, false)
				checks := map[string]float64{
					"nodes":  Score(n+1, d, depth, false),
					"dense":  Score(n, d+0.1, depth, false),
					"depth":  Score(n, d, depth+1, false),
					"cyclic": Score(n, d, depth, true),
				}
				for name, v := range checks {
					if v < base {
						t.Fatalf("%s: score decreased from %v to %v at n=%d d=%v depth=%d", name, base, v, n, d, depth)
					}
				}
			}
		}
	}
}

func TestHasCyclesDeepChain(t *testing.T) {
	ids := make([]string, 50000)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%d", i)
	}
	g := chain(ids...)
	if HasCycles(graph.NewIndex(g)) {
		t.Error("long chain reported as cyclic")
	}
	g.Edges = append(g.Edges, graph.Edge{Source: ids[len(ids)-1], Target: ids[0]})
	if !HasCycles(graph.NewIndex(g)) {
		t.Error("long ring not detected")
	}
}

func TestBackEdges(t *testing.T) {
	g := chain("a", "b", "c")
	g.Edges = append(g.Edges,
		graph.Edge{Source: "c", Target: "a"},
		graph.Edge{Source: "b", Target: "b"},
	)
	back := BackEdges(graph.NewIndex(g))
	if len(back) != 2 {
		t.Fatalf("back edges = %v, want 2", back)
	}
	for _, e := range back {
		if !(e == [2]int{2, 0} || e == [2]int{1, 1}) {
			t.Errorf("unexpected back edge %v", e)
		}
	}
}
