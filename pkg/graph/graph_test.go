package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func intPtr(i int) *int { return &i }

func TestMarshalGraph(t *testing.T) {
	tests := []struct {
		name      string
		g         Graph
		wantNodes int
		wantEdges int
		check     func(t *testing.T, g Graph)
	}{
		{
			name: "Empty",
			g:    Graph{},
		},
		{
			name: "Simple",
			g: Graph{
				Nodes: []Node{{ID: "a"}, {ID: "b"}},
				Edges: []Edge{{Source: "a", Target: "b"}},
			},
			wantNodes: 2,
			wantEdges: 1,
		},
		{
			name: "PreservesFields",
			g: Graph{
				Nodes: []Node{{
					ID:         "db",
					Size:       &Size{Width: 120, Height: 60},
					Position:   &Position{X: 10, Y: 20},
					Pinned:     true,
					Signals:    Signals{Type: "database", Label: "Orders", Domain: "shop"},
					LayerIndex: intPtr(6),
				}},
			},
			wantNodes: 1,
			check: func(t *testing.T, g Graph) {
				n := g.Nodes[0]
				if n.Size == nil || n.Size.Width != 120 || n.Size.Height != 60 {
					t.Errorf("size = %+v, want 120x60", n.Size)
				}
				if n.Position == nil || n.Position.X != 10 || n.Position.Y != 20 {
					t.Errorf("position = %+v, want (10,20)", n.Position)
				}
				if !n.Pinned {
					t.Error("pinned flag lost")
				}
				if n.Layer() != 6 {
					t.Errorf("layer = %d, want 6", n.Layer())
				}
				if n.Signals.Type != "database" || n.Signals.Domain != "shop" {
					t.Errorf("signals = %+v", n.Signals)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalGraph(tt.g)
			if err != nil {
				t.Fatalf("MarshalGraph: %v", err)
			}
			got, err := UnmarshalGraph(data)
			if err != nil {
				t.Fatalf("UnmarshalGraph: %v", err)
			}
			if len(got.Nodes) != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", len(got.Nodes), tt.wantNodes)
			}
			if len(got.Edges) != tt.wantEdges {
				t.Errorf("edges = %d, want %d", len(got.Edges), tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestMarshalGraphEmptyArrays(t *testing.T) {
	data, err := MarshalGraph(Graph{})
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `"nodes": []`) || !strings.Contains(s, `"edges": []`) {
		t.Errorf("expected empty arrays, got %s", s)
	}
}

func TestReadGraph(t *testing.T) {
	input := `{"nodes":[{"id":"a","signals":{"label":"A"}},{"id":"b"}],"edges":[{"source":"a","target":"b"}]}`
	g, err := ReadGraph(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if g.Len() != 2 || len(g.Edges) != 1 {
		t.Fatalf("got %d nodes %d edges", g.Len(), len(g.Edges))
	}
	if g.Nodes[0].DisplayLabel() != "A" || g.Nodes[1].DisplayLabel() != "b" {
		t.Errorf("labels = %q, %q", g.Nodes[0].DisplayLabel(), g.Nodes[1].DisplayLabel())
	}
}

func TestReadGraphInvalid(t *testing.T) {
	if _, err := ReadGraph(strings.NewReader("{not json")); err == nil {
		t.Error("expected error for malformed input")
	}
	if _, err := ReadGraph(strings.NewReader(`{"nodes":[]}`)); err != nil {
		t.Errorf("missing edges should be accepted: %v", err)
	}
}

func TestReadGraphDirectionCase(t *testing.T) {
	var o struct {
		Direction Direction `json:"direction"`
	}
	if err := jsonUnmarshal(`{"direction":"tb"}`, &o); err != nil {
		t.Fatal(err)
	}
	if o.Direction != TopToBottom {
		t.Errorf("direction = %q, want TB", o.Direction)
	}
	if err := jsonUnmarshal(`{"direction":"diagonal"}`, &o); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	g := Graph{
		Nodes: []Node{{ID: "x"}, {ID: "y"}},
		Edges: []Edge{{ID: "e", Source: "x", Target: "y"}},
	}
	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if got.Edges[0].Key() != "e" {
		t.Errorf("edge key = %q, want e", got.Edges[0].Key())
	}

	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteGraph(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGraph(Graph{Nodes: []Node{{ID: "n"}}}, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"id": "n"`) {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestNodeCloneIsDeep(t *testing.T) {
	orig := Node{
		ID:         "a",
		Size:       &Size{Width: 1, Height: 2},
		Position:   &Position{X: 3, Y: 4},
		LayerIndex: intPtr(2),
	}
	c := orig.Clone()
	c.Size.Width = 99
	c.Position.X = 99
	*c.LayerIndex = 7

	if orig.Size.Width != 1 || orig.Position.X != 3 || *orig.LayerIndex != 2 {
		t.Errorf("clone shares memory with original: %+v", orig)
	}

	moved := orig.WithPosition(50, 60)
	if orig.Position.X != 3 {
		t.Error("WithPosition mutated the receiver")
	}
	if x, y := moved.XY(); x != 50 || y != 60 {
		t.Errorf("moved = (%v,%v), want (50,60)", x, y)
	}
}

func TestNodeDimensions(t *testing.T) {
	tests := []struct {
		name  string
		size  *Size
		wantW float64
		wantH float64
	}{
		{"Nil", nil, DefaultNodeWidth, DefaultNodeHeight},
		{"Explicit", &Size{Width: 100, Height: 50}, 100, 50},
		{"ZeroWidth", &Size{Width: 0, Height: 50}, DefaultNodeWidth, 50},
		{"NegativeHeight", &Size{Width: 80, Height: -1}, 80, DefaultNodeHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Node{ID: "n", Size: tt.size}.Dimensions(DefaultNodeWidth, DefaultNodeHeight)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("got %vx%v, want %vx%v", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRectIntersects(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 50}
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"Same", a, true},
		{"Overlap", Rect{X: 50, Y: 25, Width: 100, Height: 50}, true},
		{"TouchingEdge", Rect{X: 100, Y: 0, Width: 10, Height: 10}, false},
		{"Apart", Rect{X: 500, Y: 500, Width: 10, Height: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEngine(t *testing.T) {
	tests := []struct {
		in      string
		want    EngineKind
		wantErr bool
	}{
		{"", EngineAuto, false},
		{"auto", EngineAuto, false},
		{"ELK", EngineConstraint, false},
		{"dagre", EngineLayered, false},
		{"basic", EngineFallback, false},
		{"grid", EngineFallback, false},
		{"layered", EngineLayered, false},
		{"force", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEngine(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseEngine(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	if o.Direction != LeftToRight || o.Engine != EngineAuto {
		t.Errorf("direction/engine = %q/%q", o.Direction, o.Engine)
	}
	if o.NodeWidth != 172 || o.NodeHeight != 36 {
		t.Errorf("node size = %vx%v, want 172x36", o.NodeWidth, o.NodeHeight)
	}
	if !o.MonitoringEnabled() {
		t.Error("monitoring should default to enabled")
	}
	if o.SolverTimeout != DefaultSolverTimeout {
		t.Errorf("solver timeout = %v", o.SolverTimeout)
	}

	off := false
	o2 := Options{EnablePerformanceMonitoring: &off}.WithDefaults()
	if o2.MonitoringEnabled() {
		t.Error("explicit false must survive SetDefaults")
	}

	if err := (Options{Direction: "XX"}).Validate(); err == nil {
		t.Error("expected invalid direction error")
	}
	if err := (Options{Engine: "force"}).Validate(); err == nil {
		t.Error("expected invalid engine error")
	}
	if err := (Options{}).Validate(); err != nil {
		t.Errorf("zero options should validate: %v", err)
	}
}
