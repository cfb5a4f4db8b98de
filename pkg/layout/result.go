package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/matzehuels/archlayout/pkg/complexity"
	"github.com/matzehuels/archlayout/pkg/graph"
)

// DegradedQuality is the quality reported for runs that fell back to the
// grid after a backend failure.
const DegradedQuality = 0.5

// Result is the outcome of one layout run. It is never modified after
// Layout returns it.
type Result struct {
	RunID string       `json:"run_id"`
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`

	// EngineSelected is what the selector chose; EngineUsed is what
	// actually produced the positions ("none" for an empty graph,
	// "grid-fallback" after a backend failure).
	EngineSelected graph.EngineKind `json:"engine_selected,omitempty"`
	EngineUsed     string           `json:"engine_used"`

	ExecutionTimeMs float64            `json:"execution_time_ms"`
	QualityScore    float64            `json:"quality_score"`
	AssessedScore   float64            `json:"assessed_score"`
	Complexity      complexity.Metrics `json:"complexity"`
	Success         bool               `json:"success"`
	ErrorMessage    string             `json:"error_message,omitempty"`
	Banded          bool               `json:"banded,omitempty"`

	Trace     []State              `json:"trace"`
	Sanitized graph.SanitizeReport `json:"-"`
}

// ExecutionTime returns the end-to-end run time.
func (r *Result) ExecutionTime() time.Duration {
	return time.Duration(r.ExecutionTimeMs * float64(time.Millisecond))
}

// Final returns the terminal state of the run.
func (r *Result) Final() State {
	if len(r.Trace) == 0 {
		return Idle
	}
	return r.Trace[len(r.Trace)-1]
}

// Graph returns the positioned graph.
func (r *Result) Graph() graph.Graph {
	return graph.Graph{Nodes: r.Nodes, Edges: r.Edges}
}

// Clone returns a deep copy of r.
func (r *Result) Clone() *Result {
	out := *r
	out.Nodes = graph.CloneNodes(r.Nodes)
	out.Edges = graph.CloneEdges(r.Edges)
	out.Trace = append([]State(nil), r.Trace...)
	return &out
}

// MarshalResult encodes r as indented JSON.
func MarshalResult(r *Result) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteResult writes r as JSON to w.
func WriteResult(r *Result, w io.Writer) error {
	data, err := MarshalResult(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ReadResult decodes a JSON result.
func ReadResult(rd io.Reader) (*Result, error) {
	var r Result
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &r, nil
}
