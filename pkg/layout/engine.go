package layout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/archlayout/pkg/backend"
	"github.com/matzehuels/archlayout/pkg/complexity"
	"github.com/matzehuels/archlayout/pkg/engine"
	"github.com/matzehuels/archlayout/pkg/errors"
	"github.com/matzehuels/archlayout/pkg/graph"
	"github.com/matzehuels/archlayout/pkg/history"
	"github.com/matzehuels/archlayout/pkg/observability"
	"github.com/matzehuels/archlayout/pkg/quality"
	"github.com/matzehuels/archlayout/pkg/swimlane"
)

// Engine runs layouts. The zero value is not usable; create one with New.
type Engine struct {
	logger     *log.Logger
	backends   backend.Registry
	grid       *backend.Grid
	thresholds engine.Thresholds
	arrange    swimlane.ArrangeOptions
	history    *history.Ring

	flight singleflight.Group
	runMu  sync.Mutex
	active atomic.Int32
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Nil keeps the discard logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSolver replaces the constraint backend's solver.
func WithSolver(s backend.Solver) Option {
	return func(e *Engine) { e.backends = backend.NewRegistry(s) }
}

// WithBackends replaces the whole backend registry.
func WithBackends(r backend.Registry) Option {
	return func(e *Engine) { e.backends = r }
}

// WithThresholds sets the engine selection thresholds.
func WithThresholds(t engine.Thresholds) Option {
	return func(e *Engine) { e.thresholds = t }
}

// WithArrangeOptions sets the swim-lane geometry used when banding.
func WithArrangeOptions(o swimlane.ArrangeOptions) Option {
	return func(e *Engine) { e.arrange = o }
}

// WithHistoryCapacity sets the size of the performance history.
func WithHistoryCapacity(n int) Option {
	return func(e *Engine) { e.history = history.NewRing(n) }
}

// New returns an engine with the standard backends.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
		thresholds: engine.DefaultThresholds(),
		grid:       backend.NewGrid(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.backends.Constraint == nil && e.backends.Layered == nil && e.backends.Fallback == nil {
		e.backends = backend.NewRegistry(nil)
	}
	if e.history == nil {
		e.history = history.NewRing(history.DefaultCapacity)
	}
	return e
}

// =============================================================================
// Public API
// =============================================================================

// Layout positions g. It never fails: backend errors degrade to the grid
// backend and are reported in the result. The caller's graph is not
// modified.
//
// Concurrent calls with the same graph and options share one run; the
// context of the call that started the run governs it.
func (e *Engine) Layout(ctx context.Context, g graph.Graph, opts graph.Options) *Result {
	key, err := Fingerprint(g, opts)
	if err != nil {
		// Unhashable input (e.g. NaN coordinates) gets its own run.
		key = history.NewRunID()
	}
	v, _, _ := e.flight.Do(key, func() (any, error) {
		return e.run(ctx, g, opts), nil
	})
	return v.(*Result).Clone()
}

// IsLayouting reports whether a run is in flight.
func (e *Engine) IsLayouting() bool { return e.active.Load() > 0 }

// Stats summarizes the performance history.
func (e *Engine) Stats() history.Stats { return e.history.Stats() }

// History returns the recorded runs, oldest first.
func (e *Engine) History() []history.Record { return e.history.Snapshot() }

// ResetStats clears the performance history.
func (e *Engine) ResetStats() { e.history.Reset() }

// Thresholds returns the selection thresholds in use.
func (e *Engine) Thresholds() engine.Thresholds { return e.thresholds }

// Fingerprint returns a stable digest of a graph and its options.
func Fingerprint(g graph.Graph, opts graph.Options) (string, error) {
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return "", err
	}
	o, err := json.Marshal(opts.WithDefaults())
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write(data)
	h.Write(o)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// =============================================================================
// Run
// =============================================================================

type run struct {
	ctx    context.Context
	id     string
	state  State
	result *Result
}

func (r *run) to(s State) {
	observability.Layout().OnStateChange(r.ctx, r.id, r.state.String(), s.String())
	r.state = s
	r.result.Trace = append(r.result.Trace, s)
}

func (e *Engine) run(ctx context.Context, g graph.Graph, opts graph.Options) *Result {
	e.active.Add(1)
	defer e.active.Add(-1)
	e.runMu.Lock()
	defer e.runMu.Unlock()

	start := time.Now()
	res := &Result{RunID: history.NewRunID(), Trace: []State{Idle}}
	r := &run{ctx: ctx, id: res.RunID, state: Idle, result: res}
	logger := e.logger.With("run", res.RunID[:8])

	opts = e.normalizeOptions(opts, logger)
	work, report := graph.Sanitize(g, logger)
	res.Sanitized = report

	r.to(Analyzing)
	if work.IsEmpty() {
		res.Nodes, res.Edges = []graph.Node{}, []graph.Edge{}
		res.EngineUsed = string(graph.EngineNone)
		res.QualityScore, res.AssessedScore = 1, 1
		res.Success = true
		res.ExecutionTimeMs = elapsedMs(start)
		r.to(Done)
		return res
	}

	metrics := complexity.Analyze(work)
	res.Complexity = metrics
	kind := engine.Select(metrics, opts.Engine, e.thresholds)
	res.EngineSelected = kind
	logger.Debug("selected engine", "engine", kind, "score", metrics.CompositeScore, "nodes", metrics.NodeCount, "edges", metrics.EdgeCount)

	r.to(BackendExecuting)
	placed, used, err := e.execute(ctx, kind, work, opts)
	if err != nil {
		logger.Warn("layout backend failed, using grid", "engine", kind, "err", err)
		observability.Layout().OnFallback(ctx, string(kind), err)

		placed = e.grid.Place(work, opts)
		res.Nodes, res.Edges = placed.Nodes, placed.Edges
		res.EngineUsed = string(graph.EngineGridFallback)
		res.ErrorMessage = err.Error()
		res.QualityScore = DegradedQuality
		res.AssessedScore = quality.Assess(placed.Nodes)
		res.ExecutionTimeMs = elapsedMs(start)
		r.to(Degraded)
		e.finish(ctx, res, opts, logger)
		return res
	}

	r.to(PostProcessing)
	if opts.LayerBanding && allClassified(placed.Nodes) {
		placed.Nodes = swimlane.Arrange(placed.Nodes, e.arrange)
		res.Banded = true
	}
	res.Nodes, res.Edges = placed.Nodes, placed.Edges
	res.EngineUsed = used

	r.to(Scoring)
	res.QualityScore = quality.Assess(res.Nodes)
	res.AssessedScore = res.QualityScore
	res.Success = true
	res.ExecutionTimeMs = elapsedMs(start)
	r.to(Done)
	e.finish(ctx, res, opts, logger)
	return res
}

// execute runs the backend for kind, converting panics into errors.
func (e *Engine) execute(ctx context.Context, kind graph.EngineKind, g graph.Graph, opts graph.Options) (out graph.Graph, name string, err error) {
	b, err := e.backends.For(kind)
	if err != nil {
		return graph.Graph{}, "", errors.Wrap(errors.ErrCodeInternal, err, "resolve backend")
	}
	defer func() {
		if p := recover(); p != nil {
			err = errors.New(errors.ErrCodeInternal, "backend %s panicked: %v", b.Name(), p)
		}
	}()
	out, err = b.Layout(ctx, g, opts)
	if err != nil {
		return graph.Graph{}, "", err
	}
	if len(out.Nodes) != len(g.Nodes) {
		return graph.Graph{}, "", errors.New(errors.ErrCodeSolverMalformed,
			"backend %s returned %d nodes for %d", b.Name(), len(out.Nodes), len(g.Nodes))
	}
	return out, b.Name(), nil
}

func (e *Engine) finish(ctx context.Context, res *Result, opts graph.Options, logger *log.Logger) {
	logger.Info("layout complete",
		"engine", res.EngineUsed,
		"nodes", len(res.Nodes),
		"quality", fmt.Sprintf("%.3f", res.QualityScore),
		"duration", res.ExecutionTime(),
		"success", res.Success)
	observability.Layout().OnLayoutComplete(ctx, res.EngineUsed, len(res.Nodes), res.ExecutionTime(), res.QualityScore, res.Success)

	if !opts.MonitoringEnabled() {
		return
	}
	e.history.Append(history.Record{
		RunID:         res.RunID,
		Engine:        res.EngineUsed,
		ExecutionTime: res.ExecutionTime(),
		QualityScore:  res.QualityScore,
		NodeCount:     len(res.Nodes),
		EdgeCount:     len(res.Edges),
		Success:       res.Success,
		Timestamp:     time.Now(),
	})
}

// normalizeOptions applies defaults and replaces unrecognized direction or
// engine values with the defaults.
func (e *Engine) normalizeOptions(opts graph.Options, logger *log.Logger) graph.Options {
	if opts.Direction != "" && !opts.Direction.Valid() {
		logger.Warn("unknown direction, using default", "direction", opts.Direction)
		opts.Direction = ""
	}
	if opts.Engine != "" && !opts.Engine.Valid() {
		logger.Warn("unknown engine, using auto", "engine", opts.Engine)
		opts.Engine = ""
	}
	return opts.WithDefaults()
}

func allClassified(nodes []graph.Node) bool {
	for _, n := range nodes {
		if !n.HasLayer() {
			return false
		}
	}
	return len(nodes) > 0
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
