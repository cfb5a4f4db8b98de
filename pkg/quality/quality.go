// Package quality scores the visual quality of a positioned layout.
//
// The score starts at 1 and is reduced by three independent factors:
//
//   - overlap: the share of node pairs whose boxes intersect, weighted 0.3
//   - spacing: how uniform the pairwise center distances are (coefficient
//     of variation, floored at 0.1)
//   - alignment: the share of nodes sharing the most common X or Y
//     coordinate within a 10px tolerance
//
// The result is clamped to [0, 1]. Layouts with fewer than two nodes score 1.
package quality

import (
	"math"
	"slices"

	"github.com/matzehuels/archlayout/pkg/graph"
)

// Scoring constants.
const (
	OverlapWeight      = 0.3
	MinSpacingScore    = 0.1
	AlignmentTolerance = 10.0
)

// Report breaks a quality score into its factors.
type Report struct {
	Nodes            int     `json:"nodes"`
	OverlappingPairs int     `json:"overlapping_pairs"`
	OverlapPenalty   float64 `json:"overlap_penalty"`
	Spacing          float64 `json:"spacing"`
	Alignment        float64 `json:"alignment"`
	Score            float64 `json:"score"`
}

// Assess returns the quality score of nodes. Missing sizes use the default
// node dimensions; missing positions count as (0, 0).
func Assess(nodes []graph.Node) float64 {
	return Breakdown(nodes).Score
}

// Breakdown is Assess with the individual factors.
func Breakdown(nodes []graph.Node) Report {
	r := Report{Nodes: len(nodes), Spacing: 1, Alignment: 1, Score: 1}
	if len(nodes) < 2 {
		return r
	}

	boxes := make([]graph.Rect, len(nodes))
	for i, n := range nodes {
		boxes[i] = n.Bounds(graph.DefaultNodeWidth, graph.DefaultNodeHeight)
	}

	r.OverlappingPairs, r.OverlapPenalty = overlap(boxes)
	r.Spacing = spacing(boxes)
	r.Alignment = alignment(boxes)

	score := 1 - r.OverlapPenalty*OverlapWeight
	score *= r.Spacing
	score *= r.Alignment
	r.Score = math.Max(0, math.Min(1, score))
	return r
}

func overlap(boxes []graph.Rect) (int, float64) {
	pairs, hits := 0, 0
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			pairs++
			if boxes[i].Intersects(boxes[j]) {
				hits++
			}
		}
	}
	return hits, float64(hits) / float64(pairs)
}

// spacing scores the uniformity of pairwise distances between box origins.
// A layout whose nodes all sit on one point has an undefined coefficient of
// variation and scores the minimum.
func spacing(boxes []graph.Rect) float64 {
	var dists []float64
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			dists = append(dists, math.Hypot(boxes[i].X-boxes[j].X, boxes[i].Y-boxes[j].Y))
		}
	}

	var sum float64
	for _, d := range dists {
		sum += d
	}
	mean := sum / float64(len(dists))

	cv := 1.0
	if mean > 0 {
		var variance float64
		for _, d := range dists {
			variance += (d - mean) * (d - mean)
		}
		variance /= float64(len(dists))
		cv = math.Sqrt(variance) / mean
	}
	return math.Max(MinSpacingScore, 1-math.Min(1, cv))
}

// alignment is 1 for fewer than three nodes.
func alignment(boxes []graph.Rect) float64 {
	if len(boxes) < 3 {
		return 1
	}
	xs := make([]float64, len(boxes))
	ys := make([]float64, len(boxes))
	for i, b := range boxes {
		xs[i], ys[i] = b.X, b.Y
	}
	best := max(largestGroup(xs, AlignmentTolerance), largestGroup(ys, AlignmentTolerance))
	return float64(best) / float64(len(boxes))
}

// largestGroup sorts values and chains neighbors no further apart than tol
// into groups, returning the size of the largest.
func largestGroup(values []float64, tol float64) int {
	slices.Sort(values)
	best, size := 1, 1
	for i := 1; i < len(values); i++ {
		if math.Abs(values[i]-values[i-1]) <= tol {
			size++
		} else {
			size = 1
		}
		best = max(best, size)
	}
	return best
}
