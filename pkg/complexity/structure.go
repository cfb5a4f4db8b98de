package complexity

import "github.com/matzehuels/archlayout/pkg/graph"

// LayerDepth counts the waves of a topological sort (Kahn's algorithm): all
// nodes with in-degree zero form the first wave, their newly freed successors
// the second, and so on. Nodes on a cycle never reach in-degree zero, so the
// count stalls there instead of looping. The result is at least 1, and a
// graph without edges has depth 1.
func LayerDepth(idx *graph.Index) int {
	if idx.Len() == 0 || idx.EdgeCount() == 0 {
		return 1
	}

	inDegree := make([]int, idx.Len())
	queue := make([]int, 0, idx.Len())
	for i := range inDegree {
		inDegree[i] = idx.InDegree(i)
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	layers := 0
	for len(queue) > 0 {
		layers++
		var next []int
		for _, curr := range queue {
			for _, child := range idx.Out[curr] {
				inDegree[child]--
				if inDegree[child] == 0 {
					next = append(next, child)
				}
			}
		}
		queue = next
	}
	return max(1, layers)
}

// HasCycles reports whether the graph contains a directed cycle, including
// self-loops. It runs a white/gray/black depth-first search from every
// unvisited node with an explicit stack, so deep chains cannot overflow the
// goroutine stack.
func HasCycles(idx *graph.Index) bool {
	if idx.EdgeCount() == 0 {
		return false
	}

	const (
		white = iota
		gray
		black
	)

	type frame struct {
		node int
		next int // position in Out[node] to visit next
	}

	color := make([]int, idx.Len())
	stack := make([]frame, 0, idx.Len())

	for root := range color {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stack = append(stack[:0], frame{node: root})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(idx.Out[top.node]) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := idx.Out[top.node][top.next]
			top.next++
			switch color[child] {
			case gray:
				return true
			case white:
				color[child] = gray
				stack = append(stack, frame{node: child})
			}
		}
	}
	return false
}

// BackEdges returns the edges (as index pairs) that close a cycle during a
// depth-first search rooted at source nodes first, then at any node left
// unvisited. Reversing every returned edge makes the graph acyclic apart from
// self-loops, which are always returned.
func BackEdges(idx *graph.Index) [][2]int {
	const (
		white = iota
		gray
		black
	)

	type frame struct {
		node int
		next int
	}

	color := make([]int, idx.Len())
	var back [][2]int
	var stack []frame

	visit := func(root int) {
		color[root] = gray
		stack = append(stack[:0], frame{node: root})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(idx.Out[top.node]) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			from := top.node
			child := idx.Out[from][top.next]
			top.next++
			switch color[child] {
			case gray:
				back = append(back, [2]int{from, child})
			case white:
				color[child] = gray
				stack = append(stack, frame{node: child})
			}
		}
	}

	for i := range color {
		if color[i] == white && !idx.HasIncoming(i) {
			visit(i)
		}
	}
	for i := range color {
		if color[i] == white {
			visit(i)
		}
	}
	return back
}
