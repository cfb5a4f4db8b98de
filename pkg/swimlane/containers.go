package swimlane

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/archlayout/pkg/graph"
	"github.com/matzehuels/archlayout/pkg/theme"
)

// Container is the themed box drawn behind the nodes of one layer.
type Container struct {
	ID     string  `json:"id"`
	Layer  int     `json:"layer"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// NodeIDs lists the member nodes in input order.
	NodeIDs []string `json:"child_node_ids"`

	Theme theme.Theme       `json:"theme"`
	Meta  map[string]string `json:"meta,omitempty"` // caller-owned, preserved across rebuilds
}

// ContainerID returns the container ID for a layer.
func ContainerID(layer int) string { return fmt.Sprintf("layer_%d", layer) }

// Bounds returns the container rectangle.
func (c *Container) Bounds() graph.Rect {
	return graph.Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height}
}

// clone copies c including its Meta map.
func (c *Container) clone() *Container {
	out := *c
	out.NodeIDs = slices.Clone(c.NodeIDs)
	if c.Meta != nil {
		out.Meta = maps.Clone(c.Meta)
	}
	return &out
}

// BuilderOptions controls container geometry. Zero fields take the defaults.
type BuilderOptions struct {
	BasePadding  float64 `json:"base_padding" toml:"base_padding" yaml:"base_padding"`
	PaddingScale float64 `json:"padding_scale" toml:"padding_scale" yaml:"padding_scale"`
	PaddingCap   float64 `json:"padding_cap" toml:"padding_cap" yaml:"padding_cap"`
	HeaderHeight float64 `json:"header_height" toml:"header_height" yaml:"header_height"`
	MinHeight    float64 `json:"min_height" toml:"min_height" yaml:"min_height"`
	Tolerance    float64 `json:"tolerance" toml:"tolerance" yaml:"tolerance"`
	NodeWidth    float64 `json:"node_width" toml:"node_width" yaml:"node_width"`
	NodeHeight   float64 `json:"node_height" toml:"node_height" yaml:"node_height"`
}

// SetDefaults fills in zero fields.
func (o *BuilderOptions) SetDefaults() {
	if o.BasePadding <= 0 {
		o.BasePadding = 70
	}
	if o.PaddingScale <= 0 {
		o.PaddingScale = 20
	}
	if o.PaddingCap <= 0 {
		o.PaddingCap = 80
	}
	if o.HeaderHeight <= 0 {
		o.HeaderHeight = 40
	}
	if o.MinHeight <= 0 {
		o.MinHeight = 180
	}
	if o.Tolerance <= 0 {
		o.Tolerance = 1
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = graph.DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = graph.DefaultNodeHeight
	}
}

// Padding returns the padding around a layer with n nodes:
// base + min(cap, scale*ln(n+1)).
func (o BuilderOptions) Padding(n int) float64 {
	return o.BasePadding + math.Min(o.PaddingCap, o.PaddingScale*math.Log(float64(n)+1))
}

// Builder computes layer containers. It is safe for concurrent use.
type Builder struct {
	themes *theme.Registry
	opts   BuilderOptions
}

// NewBuilder returns a builder drawing themes from themes. A nil registry
// selects [theme.Default].
func NewBuilder(themes *theme.Registry, opts BuilderOptions) *Builder {
	if themes == nil {
		themes = theme.Default()
	}
	opts.SetDefaults()
	return &Builder{themes: themes, opts: opts}
}

// Options returns the resolved builder options.
func (b *Builder) Options() BuilderOptions { return b.opts }

type bounds struct {
	minX, minY, maxX, maxY float64
	ids                    []string
}

// Build returns one container per layer present in nodes, sorted by layer.
// Unclassified nodes are ignored.
//
// For a layer that also appears in previous, Build returns the previous
// pointer itself when X, Y, Width and Height all differ by at most the
// tolerance and its members are unchanged; otherwise it returns a copy of the
// previous container with new geometry and members, keeping its theme and
// Meta. Layers without a previous container
// get a fresh one themed from the registry.
func (b *Builder) Build(nodes []graph.Node, previous []*Container) []*Container {
	layers := map[int]*bounds{}
	for _, n := range nodes {
		if !n.HasLayer() {
			continue
		}
		r := n.Bounds(b.opts.NodeWidth, b.opts.NodeHeight)
		bb := layers[n.Layer()]
		if bb == nil {
			bb = &bounds{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1)}
			layers[n.Layer()] = bb
		}
		bb.minX = min(bb.minX, r.X)
		bb.minY = min(bb.minY, r.Y)
		bb.maxX = max(bb.maxX, r.X+r.Width)
		bb.maxY = max(bb.maxY, r.Y+r.Height)
		bb.ids = append(bb.ids, n.ID)
	}

	prev := make(map[int]*Container, len(previous))
	for _, c := range previous {
		if c != nil {
			prev[c.Layer] = c
		}
	}

	out := make([]*Container, 0, len(layers))
	for _, layer := range slices.Sorted(maps.Keys(layers)) {
		fresh := b.geometry(layer, layers[layer])
		old, ok := prev[layer]
		switch {
		case !ok:
			fresh.Theme = b.themes.Lookup(layer)
			out = append(out, fresh)
		case b.sameGeometry(old, fresh) && slices.Equal(old.NodeIDs, fresh.NodeIDs):
			out = append(out, old)
		default:
			c := old.clone()
			c.ID = fresh.ID
			c.X, c.Y, c.Width, c.Height = fresh.X, fresh.Y, fresh.Width, fresh.Height
			c.NodeIDs = fresh.NodeIDs
			out = append(out, c)
		}
	}
	return out
}

func (b *Builder) geometry(layer int, bb *bounds) *Container {
	p := b.opts.Padding(len(bb.ids))
	return &Container{
		ID:      ContainerID(layer),
		Layer:   layer,
		NodeIDs: bb.ids,
		X:       bb.minX - p,
		Y:       bb.minY - p - b.opts.HeaderHeight,
		Width:   bb.maxX - bb.minX + 2*p,
		Height:  max(bb.maxY-bb.minY+2*p+b.opts.HeaderHeight, b.opts.MinHeight),
	}
}

func (b *Builder) sameGeometry(a, c *Container) bool {
	tol := b.opts.Tolerance
	return math.Abs(a.X-c.X) <= tol &&
		math.Abs(a.Y-c.Y) <= tol &&
		math.Abs(a.Width-c.Width) <= tol &&
		math.Abs(a.Height-c.Height) <= tol
}
