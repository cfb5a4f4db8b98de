package graph

import (
	"io"

	"github.com/charmbracelet/log"
)

// SanitizeReport describes what [Sanitize] removed from a graph.
type SanitizeReport struct {
	MissingIDs    int      // Nodes dropped because their ID was empty
	DuplicateIDs  []string // IDs that appeared more than once (later copies dropped)
	DanglingEdges []string // Keys of edges whose source or target is unknown
	NodesRetained int
	EdgesRetained int
}

// Clean reports whether nothing was removed.
func (r SanitizeReport) Clean() bool {
	return r.MissingIDs == 0 && len(r.DuplicateIDs) == 0 && len(r.DanglingEdges) == 0
}

// Sanitize returns a working copy of g that satisfies the layout invariants:
// every node has a non-empty unique ID and every edge connects two existing
// nodes. Nodes without an ID are dropped with a warning; for duplicate IDs the
// first occurrence wins. Dangling edges are dropped silently (debug level) as
// they are not an error.
//
// The returned graph shares no memory with g. A nil logger discards output.
func Sanitize(g Graph, logger *log.Logger) (Graph, SanitizeReport) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	var report SanitizeReport
	seen := make(map[string]bool, len(g.Nodes))
	nodes := make([]Node, 0, len(g.Nodes))

	for i, n := range g.Nodes {
		if n.ID == "" {
			report.MissingIDs++
			logger.Warn("dropping node without id", "index", i, "label", n.Signals.Label)
			continue
		}
		if seen[n.ID] {
			report.DuplicateIDs = append(report.DuplicateIDs, n.ID)
			logger.Warn("dropping node with duplicate id", "id", n.ID)
			continue
		}
		seen[n.ID] = true
		nodes = append(nodes, n.Clone())
	}

	edges := make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			report.DanglingEdges = append(report.DanglingEdges, e.Key())
			logger.Debug("ignoring dangling edge", "edge", e.Key(), "source", e.Source, "target", e.Target)
			continue
		}
		edges = append(edges, e)
	}

	report.NodesRetained = len(nodes)
	report.EdgesRetained = len(edges)
	return Graph{Nodes: nodes, Edges: edges}, report
}
