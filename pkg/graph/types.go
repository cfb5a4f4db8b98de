package graph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Default node dimensions used when a node carries no explicit size.
const (
	DefaultNodeWidth  = 172.0
	DefaultNodeHeight = 36.0
)

// =============================================================================
// Geometry
// =============================================================================

// Size is the rendered extent of a node in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Position is the top-left corner of a node in diagram coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Intersects reports whether r and o overlap with a non-zero area.
// Rectangles that merely touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && r.X+r.Width > o.X &&
		r.Y < o.Y+o.Height && r.Y+r.Height > o.Y
}

// =============================================================================
// Node
// =============================================================================

// Signals holds the free-text fields a diagram node carries. They are read
// only by the layer classifier; layout backends ignore them.
type Signals struct {
	Type        string `json:"type,omitempty"` // Declared node type, e.g. "database"
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Technology  string `json:"technology,omitempty"`
	Provider    string `json:"provider,omitempty"`
	Icon        string `json:"icon,omitempty"`   // Icon identifier, e.g. "mdi:database"
	Domain      string `json:"domain,omitempty"` // Grouping tag used to order nodes within a layer
}

// Node is a vertex of an architecture diagram.
//
// Size, Position and LayerIndex are pointers because their absence is
// meaningful: a nil Size falls back to the layout defaults, a nil Position
// means the node was never placed, and a nil LayerIndex means the node has
// not been classified yet. Once LayerIndex is set it is authoritative.
type Node struct {
	ID         string    `json:"id"`
	Size       *Size     `json:"size,omitempty"`
	Position   *Position `json:"position,omitempty"`
	Pinned     bool      `json:"pinned,omitempty"`
	Signals    Signals   `json:"signals,omitempty"`
	LayerIndex *int      `json:"layer_index,omitempty"`
}

// Clone returns a deep copy of the node. Pointer fields are duplicated so the
// copy can be repositioned or classified without touching the original.
func (n Node) Clone() Node {
	out := n
	if n.Size != nil {
		s := *n.Size
		out.Size = &s
	}
	if n.Position != nil {
		p := *n.Position
		out.Position = &p
	}
	if n.LayerIndex != nil {
		l := *n.LayerIndex
		out.LayerIndex = &l
	}
	return out
}

// WithPosition returns a copy of the node placed at (x, y).
func (n Node) WithPosition(x, y float64) Node {
	out := n.Clone()
	out.Position = &Position{X: x, Y: y}
	return out
}

// WithLayer returns a copy of the node assigned to the given layer.
func (n Node) WithLayer(layer int) Node {
	out := n.Clone()
	out.LayerIndex = &layer
	return out
}

// Dimensions returns the node size, falling back to the given defaults for
// a missing or non-positive width or height.
func (n Node) Dimensions(defaultWidth, defaultHeight float64) (float64, float64) {
	w, h := defaultWidth, defaultHeight
	if n.Size != nil {
		if n.Size.Width > 0 {
			w = n.Size.Width
		}
		if n.Size.Height > 0 {
			h = n.Size.Height
		}
	}
	return w, h
}

// XY returns the node position, or (0, 0) for an unplaced node.
func (n Node) XY() (float64, float64) {
	if n.Position == nil {
		return 0, 0
	}
	return n.Position.X, n.Position.Y
}

// Bounds returns the bounding box of the node using the given default size.
func (n Node) Bounds(defaultWidth, defaultHeight float64) Rect {
	x, y := n.XY()
	w, h := n.Dimensions(defaultWidth, defaultHeight)
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// HasLayer reports whether the node has been assigned a semantic layer.
func (n Node) HasLayer() bool { return n.LayerIndex != nil }

// Layer returns the layer index, or -1 for an unclassified node.
func (n Node) Layer() int {
	if n.LayerIndex == nil {
		return -1
	}
	return *n.LayerIndex
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Signals.Label != "" {
		return n.Signals.Label
	}
	return n.ID
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a directed connection between two nodes.
type Edge struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Key returns a stable identifier for the edge. Edges without an explicit
// ID are keyed by their endpoints.
func (e Edge) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Source + "->" + e.Target
}

// =============================================================================
// Graph
// =============================================================================

// Graph is an ordered node set plus an edge set. A Graph handed to the
// layout engine is treated as an immutable snapshot: every operation in this
// module returns new slices instead of modifying the caller's.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Len returns the number of nodes.
func (g Graph) Len() int { return len(g.Nodes) }

// IsEmpty reports whether the graph has no nodes.
func (g Graph) IsEmpty() bool { return len(g.Nodes) == 0 }

// Clone returns a deep copy of the graph.
func (g Graph) Clone() Graph {
	return Graph{Nodes: CloneNodes(g.Nodes), Edges: CloneEdges(g.Edges)}
}

// NodeByID returns the first node with the given ID.
func (g Graph) NodeByID(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// CloneNodes deep-copies a node slice. A nil input yields an empty slice.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// CloneEdges copies an edge slice. A nil input yields an empty slice.
func CloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// =============================================================================
// Direction
// =============================================================================

// Direction is the primary flow direction of a layout.
type Direction string

// Supported directions.
const (
	LeftToRight Direction = "LR"
	RightToLeft Direction = "RL"
	TopToBottom Direction = "TB"
	BottomToTop Direction = "BT"
)

// IsHorizontal reports whether ranks advance along the X axis.
func (d Direction) IsHorizontal() bool { return d == LeftToRight || d == RightToLeft }

// IsReversed reports whether ranks advance toward negative coordinates.
func (d Direction) IsReversed() bool { return d == RightToLeft || d == BottomToTop }

// Valid reports whether d is one of the four supported directions.
func (d Direction) Valid() bool {
	switch d {
	case LeftToRight, RightToLeft, TopToBottom, BottomToTop:
		return true
	}
	return false
}

// ParseDirection parses a case-insensitive direction string.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("invalid direction: %q (must be one of: LR, RL, TB, BT)", s)
	}
	return d, nil
}

// UnmarshalJSON accepts directions in any letter case.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = ""
		return nil
	}
	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// Engine kinds
// =============================================================================

// EngineKind identifies a layout backend, or the request to pick one.
type EngineKind string

// Engine identifiers. EngineAuto is only valid as a preference; the others
// name concrete backends.
const (
	EngineAuto       EngineKind = "auto"
	EngineConstraint EngineKind = "constraint"
	EngineLayered    EngineKind = "layered"
	EngineFallback   EngineKind = "fallback"
)

// Result engine labels that do not correspond to a selectable backend.
const (
	EngineNone          = "none"
	EngineGridFallback  = "grid-fallback"
	engineFallbackAlias = "basic"
)

// Valid reports whether k is a known engine kind.
func (k EngineKind) Valid() bool {
	switch k {
	case EngineAuto, EngineConstraint, EngineLayered, EngineFallback:
		return true
	}
	return false
}

// ParseEngine parses an engine preference. The legacy aliases "elk",
// "dagre" and "basic" map to constraint, layered and fallback.
func ParseEngine(s string) (EngineKind, error) {
	switch k := strings.ToLower(strings.TrimSpace(s)); k {
	case "", string(EngineAuto):
		return EngineAuto, nil
	case "elk":
		return EngineConstraint, nil
	case "dagre":
		return EngineLayered, nil
	case engineFallbackAlias, "grid":
		return EngineFallback, nil
	default:
		if EngineKind(k).Valid() {
			return EngineKind(k), nil
		}
		return "", fmt.Errorf("invalid engine: %q (must be one of: auto, constraint, layered, fallback)", s)
	}
}
