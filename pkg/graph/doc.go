// Package graph defines the data model shared by every stage of the layout
// engine: nodes, edges, layout options and the JSON wire format.
//
// # Core Types
//
//   - [Node]: a diagram vertex with optional size, position, pinned flag,
//     free-text [Signals] and an optional semantic layer index
//   - [Edge]: a directed connection between two node IDs
//   - [Graph]: an ordered node slice plus an edge slice
//   - [Options]: direction, engine preference and default node size
//   - [Index]: an arena + index adjacency structure for graph algorithms
//
// # Immutability
//
// A Graph passed into the engine is a snapshot. Functions in this module
// never modify the caller's slices or the values their pointer fields
// reference; use [Node.Clone], [Node.WithPosition] and [Node.WithLayer] to
// derive new nodes.
//
// # Sanitization
//
// [Sanitize] turns arbitrary input into a working graph: nodes with an empty
// ID are dropped with a warning, duplicate IDs keep their first occurrence and
// edges that reference unknown nodes are ignored.
//
// # Serialization
//
// Graphs use a simple node-link JSON format:
//
//	{
//	  "nodes": [
//	    {"id": "web", "signals": {"type": "client", "label": "Web App"}},
//	    {"id": "db", "size": {"width": 120, "height": 60}, "layer_index": 6}
//	  ],
//	  "edges": [{"id": "e1", "source": "web", "target": "db"}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("diagram.json")
//	graph.WriteGraphFile(g, "output.json")
//	data, _ := graph.MarshalGraph(g)
package graph
