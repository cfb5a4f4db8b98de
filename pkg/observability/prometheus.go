package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	Transitions   *prometheus.CounterVec
	Fallbacks     *prometheus.CounterVec
	Runs          *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	Quality       *prometheus.HistogramVec
	Classified    prometheus.Counter
	ClassifyFalls prometheus.Counter
	CacheEvents   *prometheus.CounterVec
	CacheBytes    *prometheus.CounterVec
	Requests      *prometheus.CounterVec
	ReqDuration   *prometheus.HistogramVec
	InFlight      prometheus.Gauge
}

var (
	_ LayoutHooks = (*Prometheus)(nil)
	_ CacheHooks  = (*Prometheus)(nil)
	_ HTTPHooks   = (*Prometheus)(nil)
)

// NewPrometheus creates the collectors and registers them with reg. A nil
// reg skips registration, which is useful in tests that read the
// collectors directly.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "archlayout_state_transitions_total",
			Help: "Layout state machine transitions.",
		}, []string{"from", "to"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "archlayout_fallbacks_total",
			Help: "Backend failures recovered with the grid backend.",
		}, []string{"engine"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "archlayout_runs_total",
			Help: "Completed layout runs.",
		}, []string{"engine", "success"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "archlayout_run_duration_seconds",
			Help:    "End-to-end layout duration.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"engine"}),
		Quality: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "archlayout_quality_score",
			Help:    "Quality score of completed runs.",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}, []string{"engine"}),
		Classified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "archlayout_classified_nodes_total",
			Help: "Nodes assigned a layer by the classifier.",
		}),
		ClassifyFalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "archlayout_classify_fallbacks_total",
			Help: "Classified nodes that fell back to a topology or default layer.",
		}),
		CacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "archlayout_cache_events_total",
			Help: "Cache hits, misses and writes.",
		}, []string{"key_type", "event"}),
		CacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "archlayout_cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}, []string{"key_type"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "archlayout_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		ReqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "archlayout_http_request_duration_seconds",
			Help:    "HTTP request duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "archlayout_http_in_flight_requests",
			Help: "Requests currently being served.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			p.Transitions, p.Fallbacks, p.Runs, p.RunDuration, p.Quality,
			p.Classified, p.ClassifyFalls, p.CacheEvents, p.CacheBytes,
			p.Requests, p.ReqDuration, p.InFlight,
		)
	}
	return p
}

// Install registers p as the layout, cache and HTTP hooks.
func (p *Prometheus) Install() {
	SetLayoutHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
}

func (p *Prometheus) OnStateChange(_ context.Context, _, from, to string) {
	p.Transitions.WithLabelValues(from, to).Inc()
}

func (p *Prometheus) OnFallback(_ context.Context, engine string, _ error) {
	p.Fallbacks.WithLabelValues(engine).Inc()
}

func (p *Prometheus) OnLayoutComplete(_ context.Context, engine string, _ int, d time.Duration, quality float64, success bool) {
	p.Runs.WithLabelValues(engine, strconv.FormatBool(success)).Inc()
	p.RunDuration.WithLabelValues(engine).Observe(d.Seconds())
	p.Quality.WithLabelValues(engine).Observe(quality)
}

func (p *Prometheus) OnClassify(_ context.Context, nodeCount, fallbackCount int) {
	p.Classified.Add(float64(nodeCount))
	p.ClassifyFalls.Add(float64(fallbackCount))
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.CacheEvents.WithLabelValues(keyType, "set").Inc()
	p.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {
	p.InFlight.Inc()
}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.InFlight.Dec()
	p.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.ReqDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
