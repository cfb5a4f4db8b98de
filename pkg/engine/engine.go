// Package engine picks the layout backend for a graph.
//
// Selection is a pure function of the complexity metrics and the caller's
// preference: any explicit preference wins, and "auto" maps the composite
// complexity score onto the three backends through two thresholds.
package engine

import (
	"fmt"

	"github.com/matzehuels/archlayout/pkg/complexity"
	"github.com/matzehuels/archlayout/pkg/graph"
)

// Default score thresholds for automatic selection.
const (
	DefaultConstraintThreshold = 2.0
	DefaultLayeredThreshold    = 1.0
)

// Thresholds holds the minimum composite scores at which the constraint and
// layered backends are chosen.
type Thresholds struct {
	Constraint float64 `json:"constraint" toml:"constraint" yaml:"constraint" validate:"gte=0"`
	Layered    float64 `json:"layered" toml:"layered" yaml:"layered" validate:"gte=0"`
}

// DefaultThresholds returns the standard thresholds (2.0 and 1.0).
func DefaultThresholds() Thresholds {
	return Thresholds{
		Constraint: DefaultConstraintThreshold,
		Layered:    DefaultLayeredThreshold,
	}
}

// Validate reports an error when the layered threshold exceeds the
// constraint threshold, which would make the layered band unreachable.
func (t Thresholds) Validate() error {
	if t.Layered < 0 || t.Constraint < 0 {
		return fmt.Errorf("thresholds must be non-negative (layered=%v, constraint=%v)", t.Layered, t.Constraint)
	}
	if t.Layered > t.Constraint {
		return fmt.Errorf("layered threshold %v exceeds constraint threshold %v", t.Layered, t.Constraint)
	}
	return nil
}

// Select returns the backend to run. A preference other than auto (or empty)
// is returned unchanged.
func Select(m complexity.Metrics, pref graph.EngineKind, t Thresholds) graph.EngineKind {
	if pref != "" && pref != graph.EngineAuto {
		return pref
	}
	switch {
	case m.CompositeScore >= t.Constraint:
		return graph.EngineConstraint
	case m.CompositeScore >= t.Layered:
		return graph.EngineLayered
	default:
		return graph.EngineFallback
	}
}
