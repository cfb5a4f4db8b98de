// Package cli implements the archlayout command-line interface.
//
// Commands read node-link JSON graphs from disk, run them through a
// [pipeline.Runner] and write JSON results next to the input (or to stdout
// with -o -). The same runner backs the HTTP API started by "serve".
//
// # Commands
//
//   - layout: run the adaptive layout engine
//   - grouped: classify, band and build layer containers
//   - classify: assign semantic layers, optionally explaining the scores
//   - containers: build layer containers for an already positioned graph
//   - quality: score the positions of a graph
//   - serve: start the HTTP API
//   - cache: manage the result cache
//   - config: print the effective configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Without it
// the level comes from the [log] section of the config file.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Classified 42 nodes (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
