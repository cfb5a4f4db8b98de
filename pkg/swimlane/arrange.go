package swimlane

import (
	"cmp"
	"slices"

	"github.com/matzehuels/archlayout/pkg/graph"
)

// ArrangeOptions controls band geometry. Zero fields take the defaults.
type ArrangeOptions struct {
	BaseX        float64 `json:"base_x" toml:"base_x" yaml:"base_x"`
	LayerGap     float64 `json:"layer_gap" toml:"layer_gap" yaml:"layer_gap"`
	MinBandWidth float64 `json:"min_band_width" toml:"min_band_width" yaml:"min_band_width"`
	TopMargin    float64 `json:"top_margin" toml:"top_margin" yaml:"top_margin"`
	RowHeight    float64 `json:"row_height" toml:"row_height" yaml:"row_height"`
	RowGap       float64 `json:"row_gap" toml:"row_gap" yaml:"row_gap"`
	NodeWidth    float64 `json:"node_width" toml:"node_width" yaml:"node_width"`
}

// SetDefaults fills in zero fields.
func (o *ArrangeOptions) SetDefaults() {
	if o.BaseX == 0 {
		o.BaseX = 150
	}
	if o.LayerGap <= 0 {
		o.LayerGap = 300
	}
	if o.MinBandWidth <= 0 {
		o.MinBandWidth = 200
	}
	if o.TopMargin == 0 {
		o.TopMargin = 100
	}
	if o.RowHeight <= 0 {
		o.RowHeight = 50
	}
	if o.RowGap <= 0 {
		o.RowGap = 35
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = graph.DefaultNodeWidth
	}
}

// Arrange returns a copy of nodes with classified nodes moved into layer
// bands. Unclassified and pinned nodes keep their position, and pinned
// nodes do not take a row in their band.
func Arrange(nodes []graph.Node, opts ArrangeOptions) []graph.Node {
	opts.SetDefaults()
	out := graph.CloneNodes(nodes)

	byLayer := map[int][]int{}
	for i, n := range out {
		if !n.HasLayer() || n.Pinned {
			continue
		}
		byLayer[n.Layer()] = append(byLayer[n.Layer()], i)
	}

	layers := make([]int, 0, len(byLayer))
	for l := range byLayer {
		layers = append(layers, l)
	}
	slices.Sort(layers)

	x := opts.BaseX
	for _, l := range layers {
		members := byLayer[l]
		slices.SortStableFunc(members, func(a, b int) int {
			na, nb := out[a], out[b]
			return cmp.Or(
				cmp.Compare(na.Signals.Domain, nb.Signals.Domain),
				cmp.Compare(na.Signals.Label, nb.Signals.Label),
				cmp.Compare(na.ID, nb.ID),
			)
		})

		band := opts.MinBandWidth
		for _, i := range members {
			w, _ := out[i].Dimensions(opts.NodeWidth, 0)
			band = max(band, w)
		}

		center := x + band/2
		for row, i := range members {
			w, _ := out[i].Dimensions(opts.NodeWidth, 0)
			out[i].Position = &graph.Position{
				X: center - w/2,
				Y: opts.TopMargin + float64(row)*(opts.RowHeight+opts.RowGap),
			}
		}
		x += band + opts.LayerGap
	}
	return out
}
