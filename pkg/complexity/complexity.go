package complexity

import (
	"math"

	"github.com/matzehuels/archlayout/pkg/graph"
)

// Metrics summarizes the structure of a graph for engine selection.
type Metrics struct {
	NodeCount      int     `json:"node_count"`
	EdgeCount      int     `json:"edge_count"`
	EdgeDensity    float64 `json:"edge_density"`
	LayerDepth     int     `json:"layer_depth"`
	HasCycles      bool    `json:"has_cycles"`
	CompositeScore float64 `json:"composite_score"`
}

// Analyze computes complexity metrics for g. Edges whose endpoints are not in
// the node set do not count. Analyze never fails; an empty graph yields a
// depth of 1 and a score of 0.2.
func Analyze(g graph.Graph) Metrics {
	return AnalyzeIndex(graph.NewIndex(g))
}

// AnalyzeIndex is [Analyze] over a prebuilt adjacency index.
func AnalyzeIndex(idx *graph.Index) Metrics {
	n := idx.Len()
	m := Metrics{
		NodeCount:   n,
		EdgeCount:   idx.EdgeCount(),
		EdgeDensity: Density(n, idx.EdgeCount()),
		LayerDepth:  LayerDepth(idx),
		HasCycles:   HasCycles(idx),
	}
	m.CompositeScore = Score(m.NodeCount, m.EdgeDensity, m.LayerDepth, m.HasCycles)
	return m
}

// Density returns edges / (n(n-1)/2), or 0 for fewer than two nodes.
// Multigraphs can exceed 1.
func Density(nodes, edges int) float64 {
	if nodes < 2 {
		return 0
	}
	return float64(edges) / (float64(nodes) * float64(nodes-1) / 2)
}

// Score combines the individual metrics into one number. It is monotonically
// non-decreasing in each argument (cycles count as 0 or 1).
//
//	min(2, n/20) + density*1.5 + min(1, depth/5) + 0.5 if cyclic
func Score(nodes int, density float64, depth int, cyclic bool) float64 {
	score := math.Min(2, float64(nodes)/20)
	score += density * 1.5
	score += math.Min(1, float64(depth)/5)
	if cyclic {
		score += 0.5
	}
	return score
}
