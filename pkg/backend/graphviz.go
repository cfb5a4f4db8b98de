package backend

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archlayout/pkg/graph"
)

// pointsPerInch converts Graphviz inch units to pixels (1px == 1pt).
const pointsPerInch = 72.0

// formatPlain is Graphviz's line-oriented text output carrying node
// geometry in inches.
const formatPlain graphviz.Format = "plain"

// GraphvizSolver lays out descriptions with the Graphviz "dot" engine.
//
// Node names in the generated DOT are positional (n0, n1, ...) so arbitrary
// IDs never need quoting in the plain output. The dot engine ignores pinned
// coordinates; the emitted pos/pin attributes only matter to engines that
// honor them, and [Constraint] re-applies pinned positions afterwards.
type GraphvizSolver struct{}

// NewGraphvizSolver returns the production solver.
func NewGraphvizSolver() *GraphvizSolver { return &GraphvizSolver{} }

// Solve implements [Solver].
func (s *GraphvizSolver) Solve(ctx context.Context, d Description) (Positions, error) {
	if len(d.Nodes) == 0 {
		return Positions{}, nil
	}

	dot := ToDOT(d)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, formatPlain, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return parsePlain(buf.Bytes(), d)
}

// ToDOT renders a description as a Graphviz digraph. Sizes and spacings are
// converted from pixels to inches.
func ToDOT(d Description) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir(d.Direction))
	if d.EdgeRouting == RoutingOrthogonal {
		buf.WriteString("  splines=ortho;\n")
	}
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(d.NodeSpacing))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(d.LayerSpacing))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	names := make(map[string]string, len(d.Nodes))
	for i, n := range d.Nodes {
		name := "n" + strconv.Itoa(i)
		names[n.ID] = name
		attrs := []string{
			"width=" + inches(n.Width),
			"height=" + inches(n.Height),
		}
		if n.Fixed != nil {
			cx := (n.Fixed.X + n.Width/2) / pointsPerInch
			cy := (n.Fixed.Y + n.Height/2) / pointsPerInch
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", num(cx), num(-cy)), "pin=true")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		src, ok := names[e.Source]
		if !ok {
			continue
		}
		dst, ok := names[e.Target]
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", src, dst)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// parsePlain reads "node" lines from Graphviz plain output. Coordinates are
// node centers in inches with the origin at the bottom-left; they are
// converted to top-left pixel positions offset by the description padding.
func parsePlain(out []byte, d Description) (Positions, error) {
	var height float64
	centers := make(map[string][2]float64, len(d.Nodes))

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, fmt.Errorf("malformed graph line: %q", sc.Text())
			}
			h, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, fmt.Errorf("graph height: %w", err)
			}
			height = h
		case "node":
			if len(fields) < 4 {
				return nil, fmt.Errorf("malformed node line: %q", sc.Text())
			}
			x, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("node %s x: %w", fields[1], err)
			}
			y, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, fmt.Errorf("node %s y: %w", fields[1], err)
			}
			centers[fields[1]] = [2]float64{x, y}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read plain output: %w", err)
	}

	pos := make(Positions, len(d.Nodes))
	for i, n := range d.Nodes {
		c, ok := centers["n"+strconv.Itoa(i)]
		if !ok {
			continue
		}
		pos[n.ID] = graph.Position{
			X: c[0]*pointsPerInch - n.Width/2 + d.PaddingLeft,
			Y: (height-c[1])*pointsPerInch - n.Height/2 + d.PaddingTop,
		}
	}
	return pos, nil
}

func rankdir(d graph.Direction) string {
	if d.Valid() {
		return string(d)
	}
	return string(graph.LeftToRight)
}

func inches(px float64) string { return num(px / pointsPerInch) }

func num(f float64) string { return strconv.FormatFloat(f, 'f', 4, 64) }
