package backend

import (
	"context"
	"slices"

	"github.com/matzehuels/archlayout/pkg/complexity"
	"github.com/matzehuels/archlayout/pkg/graph"
)

// Layered spacing, in pixels.
const (
	LayeredOrigin       = 100.0
	LayeredNodeSpacing  = 60.0
	LayeredLayerSpacing = 120.0
)

// orderingSweeps is the number of down+up barycenter passes.
const orderingSweeps = 4

// Layered is an in-process Sugiyama-style layout:
//
//  1. Cycle removal: DFS back edges are reversed, self-loops dropped.
//  2. Ranking: longest path from the sources (Kahn's algorithm).
//  3. Ordering: alternating barycenter sweeps reduce crossings.
//  4. Coordinates: ranks advance along the direction, nodes within a rank
//     are spread across it and centered against the widest rank.
//
// Long edges are not subdivided, so barycenters of nodes with edges spanning
// several ranks use the far endpoint directly.
type Layered struct{}

// NewLayered returns the layered backend.
func NewLayered() *Layered { return &Layered{} }

// Name implements [Backend].
func (*Layered) Name() string { return string(graph.EngineLayered) }

// Layout implements [Backend]. The returned error is always nil.
func (*Layered) Layout(_ context.Context, g graph.Graph, opts graph.Options) (graph.Graph, error) {
	opts.SetDefaults()
	idx := graph.NewIndex(g)
	out, in := acyclicAdjacency(idx)
	ranks := longestPathRanks(out, in)
	layers := groupByRank(ranks)
	orderLayers(layers, out, in)

	// Cell size is the largest node so mixed sizes never overlap.
	var cellW, cellH float64
	for _, n := range g.Nodes {
		w, h := n.Dimensions(opts.NodeWidth, opts.NodeHeight)
		cellW, cellH = max(cellW, w), max(cellH, h)
	}

	along, across := cellW+LayeredLayerSpacing, cellH+LayeredNodeSpacing
	if !opts.Direction.IsHorizontal() {
		along, across = cellH+LayeredLayerSpacing, cellW+LayeredNodeSpacing
	}

	widest := 0
	for _, l := range layers {
		widest = max(widest, len(l))
	}

	type slot struct{ rank, order int }
	slots := make([]slot, idx.Len())
	for r, l := range layers {
		for o, v := range l {
			slots[v] = slot{rank: r, order: o}
		}
	}

	return place(g, func(_ int, n graph.Node) (float64, float64) {
		s := slots[idx.Pos[n.ID]]
		rank := s.rank
		if opts.Direction.IsReversed() {
			rank = len(layers) - 1 - rank
		}
		offset := float64(widest-len(layers[s.rank])) * across / 2
		a := LayeredOrigin + float64(rank)*along
		c := LayeredOrigin + offset + float64(s.order)*across
		if opts.Direction.IsHorizontal() {
			return a, c
		}
		return c, a
	}), nil
}

// acyclicAdjacency copies the index adjacency with back edges reversed and
// self-loops removed.
func acyclicAdjacency(idx *graph.Index) (out, in [][]int) {
	reversed := make(map[[2]int]int)
	for _, e := range complexity.BackEdges(idx) {
		reversed[e]++
	}

	out = make([][]int, idx.Len())
	in = make([][]int, idx.Len())
	for src, succs := range idx.Out {
		for _, dst := range succs {
			if src == dst {
				continue
			}
			from, to := src, dst
			if reversed[[2]int{src, dst}] > 0 {
				reversed[[2]int{src, dst}]--
				from, to = dst, src
			}
			out[from] = append(out[from], to)
			in[to] = append(in[to], from)
		}
	}
	return out, in
}

// longestPathRanks places every node one rank below its deepest parent.
// The adjacency must be acyclic.
func longestPathRanks(out, in [][]int) []int {
	ranks := make([]int, len(out))
	inDegree := make([]int, len(out))
	queue := make([]int, 0, len(out))
	for v := range out {
		inDegree[v] = len(in[v])
		if inDegree[v] == 0 {
			queue = append(queue, v)
		}
	}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range out[curr] {
			if r := ranks[curr] + 1; r > ranks[child] {
				ranks[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return ranks
}

func groupByRank(ranks []int) [][]int {
	depth := 0
	for _, r := range ranks {
		depth = max(depth, r+1)
	}
	layers := make([][]int, depth)
	for v, r := range ranks {
		layers[r] = append(layers[r], v)
	}
	return layers
}

// orderLayers reorders each rank by the barycenter of its neighbors in the
// adjacent rank, sweeping down then up. Nodes without neighbors in the
// reference rank keep their current position as barycenter.
func orderLayers(layers [][]int, out, in [][]int) {
	if len(layers) < 2 {
		return
	}
	pos := make([]float64, len(out))
	for _, l := range layers {
		for i, v := range l {
			pos[v] = float64(i)
		}
	}

	sweep := func(l []int, neighbors [][]int) {
		bary := make(map[int]float64, len(l))
		for _, v := range l {
			sum, count := 0.0, 0
			for _, u := range neighbors[v] {
				sum += pos[u]
				count++
			}
			if count > 0 {
				bary[v] = sum / float64(count)
			} else {
				bary[v] = pos[v]
			}
		}
		slices.SortStableFunc(l, func(a, b int) int {
			switch {
			case bary[a] < bary[b]:
				return -1
			case bary[a] > bary[b]:
				return 1
			}
			return 0
		})
		for i, v := range l {
			pos[v] = float64(i)
		}
	}

	for range orderingSweeps {
		for r := 1; r < len(layers); r++ {
			sweep(layers[r], in)
		}
		for r := len(layers) - 2; r >= 0; r-- {
			sweep(layers[r], out)
		}
	}
}
