package engine

import (
	"testing"

	"github.com/matzehuels/archlayout/pkg/complexity"
	"github.com/matzehuels/archlayout/pkg/graph"
)

func TestSelect(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name  string
		score float64
		pref  graph.EngineKind
		want  graph.EngineKind
	}{
		{"HighScore", 2.5, graph.EngineAuto, graph.EngineConstraint},
		{"AtConstraintBoundary", 2.0, graph.EngineAuto, graph.EngineConstraint},
		{"Middle", 1.4, graph.EngineAuto, graph.EngineLayered},
		{"AtLayeredBoundary", 1.0, "", graph.EngineLayered},
		{"LowScore", 0.5, graph.EngineAuto, graph.EngineFallback},
		{"ExplicitOverridesLow", 0.1, graph.EngineConstraint, graph.EngineConstraint},
		{"ExplicitOverridesHigh", 9, graph.EngineFallback, graph.EngineFallback},
		{"ExplicitLayered", 3, graph.EngineLayered, graph.EngineLayered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(complexity.Metrics{CompositeScore: tt.score}, tt.pref, th)
			if got != tt.want {
				t.Errorf("Select(%v, %q) = %q, want %q", tt.score, tt.pref, got, tt.want)
			}
		})
	}
}

func TestSelectCustomThresholds(t *testing.T) {
	th := Thresholds{Constraint: 5, Layered: 3}
	if got := Select(complexity.Metrics{CompositeScore: 2.5}, graph.EngineAuto, th); got != graph.EngineFallback {
		t.Errorf("got %q, want fallback", got)
	}
	if got := Select(complexity.Metrics{CompositeScore: 4}, graph.EngineAuto, th); got != graph.EngineLayered {
		t.Errorf("got %q, want layered", got)
	}
}

func TestThresholdsValidate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
	if err := (Thresholds{Constraint: 1, Layered: 2}).Validate(); err == nil {
		t.Error("expected error for inverted thresholds")
	}
	if err := (Thresholds{Constraint: 1, Layered: -1}).Validate(); err == nil {
		t.Error("expected error for negative threshold")
	}
}
