package graph

// Index is an arena-style adjacency structure over a sanitized graph.
// Nodes are addressed by their position in the original node slice, so
// algorithms can use plain slices (colors, degrees, ranks) instead of maps
// keyed by ID.
//
// Edges whose endpoints are unknown are skipped, which makes Index safe to
// build over an unsanitized graph as well. Parallel edges are kept; a
// self-loop appears in both Out and In of its node.
type Index struct {
	IDs []string       // Node IDs in graph order
	Pos map[string]int // Node ID -> position in IDs
	Out [][]int        // Successors per node, in edge order
	In  [][]int        // Predecessors per node, in edge order

	edgeCount int
}

// NewIndex builds an index over g. Duplicate node IDs resolve to their first
// occurrence.
func NewIndex(g Graph) *Index {
	idx := &Index{
		IDs: make([]string, 0, len(g.Nodes)),
		Pos: make(map[string]int, len(g.Nodes)),
	}
	for _, n := range g.Nodes {
		if _, dup := idx.Pos[n.ID]; dup {
			continue
		}
		idx.Pos[n.ID] = len(idx.IDs)
		idx.IDs = append(idx.IDs, n.ID)
	}

	idx.Out = make([][]int, len(idx.IDs))
	idx.In = make([][]int, len(idx.IDs))
	for _, e := range g.Edges {
		src, ok := idx.Pos[e.Source]
		if !ok {
			continue
		}
		dst, ok := idx.Pos[e.Target]
		if !ok {
			continue
		}
		idx.Out[src] = append(idx.Out[src], dst)
		idx.In[dst] = append(idx.In[dst], src)
		idx.edgeCount++
	}
	return idx
}

// Len returns the number of indexed nodes.
func (idx *Index) Len() int { return len(idx.IDs) }

// EdgeCount returns the number of edges whose endpoints both exist.
func (idx *Index) EdgeCount() int { return idx.edgeCount }

// InDegree returns the number of incoming edges of node i.
func (idx *Index) InDegree(i int) int { return len(idx.In[i]) }

// OutDegree returns the number of outgoing edges of node i.
func (idx *Index) OutDegree(i int) int { return len(idx.Out[i]) }

// HasIncoming reports whether node i has a predecessor other than itself.
func (idx *Index) HasIncoming(i int) bool {
	for _, p := range idx.In[i] {
		if p != i {
			return true
		}
	}
	return false
}

// HasOutgoing reports whether node i has a successor other than itself.
func (idx *Index) HasOutgoing(i int) bool {
	for _, s := range idx.Out[i] {
		if s != i {
			return true
		}
	}
	return false
}
