package backend

import (
	"context"
	"math"

	"github.com/matzehuels/archlayout/pkg/graph"
)

// Grid spacing, in pixels.
const (
	GridOrigin       = 100.0
	GridNodeSpacing  = 180.0
	GridLayerSpacing = 220.0
)

// Grid places nodes on a rectangular grid in input order. It ignores edges
// and cannot fail, which makes it the last-resort backend.
//
// For horizontal directions the grid is wider than tall
// (cols = ceil(sqrt(1.5n))) and filled row by row; for vertical directions
// it is taller than wide and filled column by column. RL mirrors columns and
// BT mirrors rows.
type Grid struct{}

// NewGrid returns the grid backend.
func NewGrid() *Grid { return &Grid{} }

// Name implements [Backend].
func (*Grid) Name() string { return string(graph.EngineFallback) }

// Layout implements [Backend]. The returned error is always nil.
func (gr *Grid) Layout(_ context.Context, g graph.Graph, opts graph.Options) (graph.Graph, error) {
	return gr.Place(g, opts), nil
}

// Place is Layout without the context and error.
func (*Grid) Place(g graph.Graph, opts graph.Options) graph.Graph {
	opts.SetDefaults()
	n := len(g.Nodes)
	stepX := opts.NodeWidth + GridNodeSpacing
	stepY := opts.NodeHeight + GridLayerSpacing

	long := max(1, int(math.Ceil(math.Sqrt(float64(n)*1.5))))

	return place(g, func(i int, _ graph.Node) (float64, float64) {
		var row, col int
		if opts.Direction.IsHorizontal() {
			cols := long
			row, col = i/cols, i%cols
			if opts.Direction == graph.RightToLeft {
				col = cols - 1 - col
			}
		} else {
			rows := long
			col, row = i/rows, i%rows
			if opts.Direction == graph.BottomToTop {
				row = rows - 1 - row
			}
		}
		return GridOrigin + float64(col)*stepX, GridOrigin + float64(row)*stepY
	})
}
