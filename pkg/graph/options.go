package graph

import (
	"fmt"
	"time"
)

// DefaultSolverTimeout bounds a single call into the external layout solver.
const DefaultSolverTimeout = 10 * time.Second

// Options configures a layout run.
//
// The zero value is usable: call [Options.SetDefaults] (or let the layout
// engine do it) to fill in direction, engine and node dimensions.
type Options struct {
	Direction  Direction  `json:"direction,omitempty" toml:"direction" yaml:"direction"`
	Engine     EngineKind `json:"engine,omitempty" toml:"engine" yaml:"engine"`
	NodeWidth  float64    `json:"node_width,omitempty" toml:"node_width" yaml:"node_width"`
	NodeHeight float64    `json:"node_height,omitempty" toml:"node_height" yaml:"node_height"`

	// EnablePerformanceMonitoring appends a record to the performance
	// history after each run. Nil means enabled.
	EnablePerformanceMonitoring *bool `json:"enable_performance_monitoring,omitempty" toml:"enable_performance_monitoring" yaml:"enable_performance_monitoring"`

	// LayerBanding re-bands classified nodes into swim lanes after the
	// backend has run. It only applies when every node has a layer index.
	LayerBanding bool `json:"layer_banding,omitempty" toml:"layer_banding" yaml:"layer_banding"`

	// SolverTimeout bounds the external solver call of the constraint backend.
	SolverTimeout time.Duration `json:"solver_timeout,omitempty" toml:"solver_timeout" yaml:"solver_timeout"`
}

// SetDefaults fills in unset fields. It is idempotent.
func (o *Options) SetDefaults() {
	if o.Direction == "" {
		o.Direction = LeftToRight
	}
	if o.Engine == "" {
		o.Engine = EngineAuto
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.EnablePerformanceMonitoring == nil {
		enabled := true
		o.EnablePerformanceMonitoring = &enabled
	}
	if o.SolverTimeout <= 0 {
		o.SolverTimeout = DefaultSolverTimeout
	}
}

// WithDefaults returns a copy of o with defaults applied.
func (o Options) WithDefaults() Options {
	o.SetDefaults()
	return o
}

// MonitoringEnabled reports whether the run should be recorded.
func (o Options) MonitoringEnabled() bool {
	return o.EnablePerformanceMonitoring == nil || *o.EnablePerformanceMonitoring
}

// Validate checks that direction and engine are recognized values.
// Empty values are accepted and resolved by SetDefaults.
func (o Options) Validate() error {
	if o.Direction != "" && !o.Direction.Valid() {
		return fmt.Errorf("invalid direction: %q", o.Direction)
	}
	if o.Engine != "" && !o.Engine.Valid() {
		return fmt.Errorf("invalid engine: %q", o.Engine)
	}
	return nil
}
