// Package pipeline wraps the layout engine with result caching and provides
// the grouped (swim-lane) view pipeline.
//
// The CLI and the HTTP server both go through a [Runner], so caching and
// logging behave the same for every entry point.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, hit, err := runner.Layout(ctx, g, pipeline.Options{})
//
// The grouped pipeline classifies nodes, lays them out in layer bands and
// builds one container per layer:
//
//	view, _, err := runner.Grouped(ctx, g, pipeline.Options{}, previous)
//	for _, c := range view.Containers { ... }
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archlayout/pkg/errors"
	"github.com/matzehuels/archlayout/pkg/graph"
	"github.com/matzehuels/archlayout/pkg/layout"
	"github.com/matzehuels/archlayout/pkg/swimlane"
)

// Cache lifetimes.
const (
	TTLLayout  = 24 * time.Hour
	TTLGrouped = 24 * time.Hour
)

// Cache key types reported to the cache hooks.
const (
	KeyTypeLayout  = "layout"
	KeyTypeGrouped = "grouped"
)

// Options controls a pipeline run.
type Options struct {
	Layout graph.Options

	// Refresh skips the cache lookup; the fresh result is still stored.
	Refresh bool

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger
}

// Validate rejects unknown direction or engine values.
func (o Options) Validate() error {
	if err := o.Layout.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid layout options")
	}
	return nil
}

// Grouped is the result of the grouped-view pipeline.
type Grouped struct {
	Layout     *layout.Result        `json:"layout"`
	Containers []*swimlane.Container `json:"containers"`

	// Classified counts nodes that were assigned a layer rather than
	// carrying one; Fallbacks counts those that fell back to a topology or
	// default layer. Both are restored from the cache on a hit.
	Classified int `json:"classified"`
	Fallbacks  int `json:"fallbacks"`
}
