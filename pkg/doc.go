// Package pkg provides the core libraries for archlayout, a complexity-adaptive
// layout engine for architecture diagrams.
//
// # Overview
//
// archlayout takes a graph of diagram nodes and edges, measures how complex
// it is and picks the cheapest layout backend likely to give a readable
// result. Nodes can be sorted into semantic architecture layers (clients,
// network, services, data, ...) and drawn in horizontal swim lanes with a
// themed container behind each layer.
//
// The typical data flow:
//
//	node-link JSON
//	     ↓
//	[graph] sanitize (drop empty IDs, duplicates, dangling edges)
//	     ↓
//	[complexity] metrics → [engine] backend choice
//	     ↓
//	[backend] constraint solver / layered / grid fallback
//	     ↓
//	[swimlane] layer bands + containers     [classify] layer assignment
//	     ↓
//	[quality] score → [history] performance record
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/archlayout/pkg/graph"
//	    "github.com/matzehuels/archlayout/pkg/layout"
//	)
//
//	g, _ := graph.ReadGraphFile("diagram.json")
//	res := layout.New().Layout(context.Background(), g, graph.Options{})
//	fmt.Println(res.EngineUsed, res.QualityScore)
//
// # Main Packages
//
// [layout] - The orchestrator. Runs the state machine, applies the failure
// policy (grid fallback, never an error) and records performance history.
//
// [backend] - Layout backends: the constraint backend (driving a Graphviz
// solver), an in-house Sugiyama-style layered backend and the grid fallback.
//
// [classify] - Rule-based layer classifier with per-rule explanations.
//
// [swimlane] - Band arrangement, container building and debounced refresh.
//
// [pipeline] - Cached entry point shared by the CLI and the HTTP server.
//
// ## Infrastructure
//
// [cache] - File, Redis and no-op result caches.
//
// [config] - TOML/YAML configuration with validation.
//
// [observability] - Hook registry with a Prometheus implementation.
//
// [errors] - Coded errors mapped to HTTP statuses.
package pkg
