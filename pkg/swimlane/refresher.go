package swimlane

import (
	"sync"
	"time"

	"github.com/matzehuels/archlayout/pkg/graph"
)

// DefaultQuietPeriod is how long the refresher waits after the last trigger.
const DefaultQuietPeriod = 100 * time.Millisecond

// Timer is the subset of *time.Timer the refresher needs.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. [RealClock] wraps the time package; tests use a
// manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock is the wall clock.
type RealClock struct{}

// AfterFunc calls time.AfterFunc.
func (RealClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Refresher rebuilds containers after triggers stop arriving for the quiet
// period. Every Trigger replaces the pending snapshot and restarts the
// timer, so a burst of triggers yields one rebuild from the last snapshot.
type Refresher struct {
	builder  *Builder
	quiet    time.Duration
	clock    Clock
	onUpdate func([]*Container)

	mu      sync.Mutex
	pending Timer
	gen     uint64 // incremented per Trigger; stale timers compare and bail
	latest  []graph.Node
	dirty   bool
	current []*Container
	stopped bool
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithClock replaces the wall clock.
func WithClock(c Clock) RefresherOption {
	return func(r *Refresher) { r.clock = c }
}

// WithQuietPeriod sets the debounce window.
func WithQuietPeriod(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.quiet = d
		}
	}
}

// WithInitial seeds the previous containers used for diffing.
func WithInitial(containers []*Container) RefresherOption {
	return func(r *Refresher) { r.current = containers }
}

// NewRefresher returns a refresher that rebuilds with b and passes every
// result to onUpdate. onUpdate runs on the timer goroutine (or the caller of
// Flush) and must not call back into the refresher.
func NewRefresher(b *Builder, onUpdate func([]*Container), opts ...RefresherOption) *Refresher {
	r := &Refresher{
		builder:  b,
		quiet:    DefaultQuietPeriod,
		clock:    RealClock{},
		onUpdate: onUpdate,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Trigger schedules a rebuild from nodes, cancelling any pending one.
func (r *Refresher) Trigger(nodes []graph.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	if r.pending != nil {
		r.pending.Stop()
	}
	r.gen++
	gen := r.gen
	r.latest = graph.CloneNodes(nodes)
	r.dirty = true
	r.pending = r.clock.AfterFunc(r.quiet, func() { r.fire(gen) })
}

// Flush runs a pending rebuild immediately. It does nothing when no trigger
// is pending.
func (r *Refresher) Flush() {
	r.mu.Lock()
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	r.mu.Unlock()
	r.run(func() bool { return true })
}

// Stop cancels any pending rebuild and ignores further triggers.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	r.dirty = false
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
}

// Containers returns the most recent rebuild result.
func (r *Refresher) Containers() []*Container {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Refresher) fire(gen uint64) {
	r.run(func() bool { return gen == r.gen })
}

// run rebuilds when a snapshot is pending and valid reports true under the
// lock. The callback is invoked outside the lock.
func (r *Refresher) run(valid func() bool) {
	r.mu.Lock()
	if !r.dirty || r.stopped || !valid() {
		r.mu.Unlock()
		return
	}
	r.dirty = false
	r.pending = nil
	next := r.builder.Build(r.latest, r.current)
	r.current = next
	r.mu.Unlock()

	if r.onUpdate != nil {
		r.onUpdate(next)
	}
}
