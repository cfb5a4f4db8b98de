package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archlayout/pkg/cache"
	"github.com/matzehuels/archlayout/pkg/classify"
	"github.com/matzehuels/archlayout/pkg/graph"
	"github.com/matzehuels/archlayout/pkg/layout"
	"github.com/matzehuels/archlayout/pkg/observability"
	"github.com/matzehuels/archlayout/pkg/swimlane"
)

// Runner runs layouts with caching.
//
// The Runner holds no per-run state; multiple goroutines can share one.
type Runner struct {
	Cache      cache.Cache
	Keyer      cache.Keyer
	Logger     *log.Logger
	Engine     *layout.Engine
	Classifier *classify.Classifier
	Builder    *swimlane.Builder

	// TTL overrides the default cache lifetimes when positive.
	TTL time.Duration
	// Retry bounds cache write attempts; zero fields take the defaults.
	Retry cache.RetryPolicy
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithEngine sets the layout engine.
func WithEngine(e *layout.Engine) RunnerOption {
	return func(r *Runner) { r.Engine = e }
}

// WithClassifier sets the layer classifier.
func WithClassifier(c *classify.Classifier) RunnerOption {
	return func(r *Runner) { r.Classifier = c }
}

// WithBuilder sets the container builder.
func WithBuilder(b *swimlane.Builder) RunnerOption {
	return func(r *Runner) { r.Builder = b }
}

// WithTTL sets the lifetime of cached results.
func WithTTL(d time.Duration) RunnerOption {
	return func(r *Runner) { r.TTL = d }
}

// WithRetry sets the retry policy for cache writes.
func WithRetry(p cache.RetryPolicy) RunnerOption {
	return func(r *Runner) { r.Retry = p }
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects [cache.DefaultKeyer] and a nil logger discards output. Components
// not set through options get their defaults.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, opts ...RunnerOption) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	r := &Runner{Cache: c, Keyer: keyer, Logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	if r.Engine == nil {
		r.Engine = layout.New(layout.WithLogger(logger))
	}
	if r.Classifier == nil {
		r.Classifier = classify.New(classify.WithLogger(logger))
	}
	if r.Builder == nil {
		r.Builder = swimlane.NewBuilder(nil, swimlane.BuilderOptions{})
	}
	return r
}

// Layout runs the orchestrator, serving repeated requests from the cache.
// It reports whether the result came from the cache. Only successful runs
// are cached.
func (r *Runner) Layout(ctx context.Context, g graph.Graph, opts Options) (*layout.Result, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	logger := r.logger(opts)

	key := ""
	if fp, err := layout.Fingerprint(g, opts.Layout); err == nil {
		key = r.Keyer.LayoutKey(fp)
	}

	var res *layout.Result
	decode := func(data []byte) (err error) {
		res, err = layout.ReadResult(bytes.NewReader(data))
		return err
	}
	if r.lookup(ctx, key, KeyTypeLayout, opts, logger, decode) {
		return res, true, nil
	}

	res = r.Engine.Layout(ctx, g, opts.Layout)
	if res.Success {
		r.store(ctx, key, KeyTypeLayout, TTLLayout, logger, func() ([]byte, error) {
			return layout.MarshalResult(res)
		})
	}
	return res, false, nil
}

// groupedEntry is the cached part of a grouped view.
type groupedEntry struct {
	Layout     *layout.Result `json:"layout"`
	Classified int            `json:"classified"`
	Fallbacks  int            `json:"fallbacks"`
}

// Grouped classifies g, lays it out in layer bands and builds layer
// containers, diffed against previous. The classified layout is cached
// together with the classification counts; containers are always rebuilt
// so that previous can be honored.
func (r *Runner) Grouped(ctx context.Context, g graph.Graph, opts Options, previous []*swimlane.Container) (*Grouped, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	logger := r.logger(opts)

	lopts := opts.Layout
	lopts.LayerBanding = true

	key := ""
	if fp, err := layout.Fingerprint(g, lopts); err == nil {
		bo := r.Builder.Options()
		key = r.Keyer.GroupedKey(fp, cache.GroupedKeyOpts{
			Threshold:   r.Classifier.Threshold(),
			Rules:       r.Classifier.Signature(),
			BasePadding: bo.BasePadding,
			MinHeight:   bo.MinHeight,
		})
	}

	var entry groupedEntry
	decode := func(data []byte) error {
		if err := json.Unmarshal(data, &entry); err != nil {
			return err
		}
		if entry.Layout == nil {
			return fmt.Errorf("grouped entry without layout")
		}
		return nil
	}
	hit := r.lookup(ctx, key, KeyTypeGrouped, opts, logger, decode)
	if !hit {
		explanations := r.Classifier.ExplainAll(g.Nodes, g.Edges)
		for _, e := range explanations {
			if e.Preassigned {
				continue
			}
			entry.Classified++
			if e.Fallback != "" {
				entry.Fallbacks++
			}
		}
		observability.Layout().OnClassify(ctx, entry.Classified, entry.Fallbacks)
		logger.Debug("classified nodes", "classified", entry.Classified, "fallbacks", entry.Fallbacks)

		classified := graph.Graph{Nodes: classify.Apply(g.Nodes, explanations), Edges: g.Edges}
		entry.Layout = r.Engine.Layout(ctx, classified, lopts)
		if entry.Layout.Success {
			r.store(ctx, key, KeyTypeGrouped, TTLGrouped, logger, func() ([]byte, error) {
				return json.Marshal(entry)
			})
		}
	}

	return &Grouped{
		Layout:     entry.Layout,
		Containers: r.Builder.Build(entry.Layout.Nodes, previous),
		Classified: entry.Classified,
		Fallbacks:  entry.Fallbacks,
	}, hit, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// lookup reads key and hands the entry to decode. Entries that fail to
// decode are deleted and reported as a miss.
func (r *Runner) lookup(ctx context.Context, key, keyType string, opts Options, logger *log.Logger, decode func([]byte) error) bool {
	if key == "" || opts.Refresh {
		return false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "key", key, "err", err)
		return false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	if err := decode(data); err != nil {
		logger.Warn("discarding unreadable cache entry", "key", key, "err", err)
		_ = r.Cache.Delete(ctx, key)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	logger.Debug("cache hit", "key", key)
	return true
}

func (r *Runner) store(ctx context.Context, key, keyType string, ttl time.Duration, logger *log.Logger, encode func() ([]byte, error)) {
	if key == "" {
		return
	}
	if r.TTL > 0 {
		ttl = r.TTL
	}
	data, err := encode()
	if err != nil {
		logger.Warn("result not cacheable", "err", err)
		return
	}
	err = cache.RetryWithBackoff(ctx, r.Retry, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
	if err != nil {
		logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
