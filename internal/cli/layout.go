package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archlayout/pkg/graph"
	"github.com/matzehuels/archlayout/pkg/pipeline"
	"github.com/matzehuels/archlayout/pkg/swimlane"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute node positions with the adaptive layout engine",
		Long: `Compute node positions with the adaptive layout engine.

The engine measures the graph's complexity and picks the constraint solver,
the layered backend or the grid fallback. If the chosen backend fails, the
grid is used and the result is marked as degraded.

The output is the full layout result (positions, engine used, timing and
quality score) written to <input>.layout.json unless -o is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(c.Config.Layout)
			if err != nil {
				return err
			}
			return c.runLayout(cmd, args[0], output, pipeline.Options{Layout: opts, Refresh: refresh}, noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.banding, "banding", false, "re-band classified nodes into swim lanes")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runLayout(cmd *cobra.Command, input, output string, opts pipeline.Options, noCache bool) error {
	ctx := cmd.Context()
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	p := printer{cmd.ErrOrStderr()}
	opts.Logger = c.Logger

	spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Computing layout...")
	spinner.Start()
	res, cacheHit, err := runner.Layout(ctx, g, opts)
	spinner.Stop()
	if err != nil {
		p.errorf("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	path := outputPath(input, output, "layout")
	if err := writeOutput(cmd.OutOrStdout(), path, res); err != nil {
		return err
	}

	if res.Success {
		p.success("Layout complete")
	} else {
		p.warning("Layout degraded: %s", res.ErrorMessage)
	}
	if path != "" {
		p.file(path)
	}
	p.runStats(len(res.Nodes), len(res.Edges), res.EngineUsed, res.QualityScore, cacheHit, !res.Success)
	return nil
}

// groupedCommand creates the grouped (swim-lane) view command.
func (c *CLI) groupedCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		watch   bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "grouped [graph.json]",
		Short: "Classify nodes into layers and lay them out in swim lanes",
		Long: `Classify nodes into layers and lay them out in swim lanes.

Nodes without a layer_index are classified first. The layout is re-banded so
each layer occupies its own band, and one themed container is built per
non-empty layer.

With --watch the input is polled for changes and the output rewritten after
each burst of edits settles.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(c.Config.Layout)
			if err != nil {
				return err
			}
			popts := pipeline.Options{Layout: opts, Refresh: refresh}
			if watch {
				return c.watchGrouped(cmd, args[0], output, popts, noCache)
			}
			return c.runGrouped(cmd, args[0], output, popts, noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.grouped.json, - for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rebuild when the input changes")

	return cmd
}

func (c *CLI) runGrouped(cmd *cobra.Command, input, output string, opts pipeline.Options, noCache bool) error {
	ctx := cmd.Context()
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	p := printer{cmd.ErrOrStderr()}
	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	view, cacheHit, err := runner.Grouped(ctx, g, opts, nil)
	if err != nil {
		return fmt.Errorf("grouped layout: %w", err)
	}
	prog.done(fmt.Sprintf("Built %d containers", len(view.Containers)))

	path := outputPath(input, output, "grouped")
	if err := writeOutput(cmd.OutOrStdout(), path, view); err != nil {
		return err
	}

	res := view.Layout
	if res.Success {
		p.success("Grouped layout complete")
	} else {
		p.warning("Layout degraded: %s", res.ErrorMessage)
	}
	if path != "" {
		p.file(path)
	}
	p.runStats(len(res.Nodes), len(res.Edges), res.EngineUsed, res.QualityScore, cacheHit, !res.Success)
	p.detail("%d nodes classified, %d by fallback", view.Classified, view.Fallbacks)
	return nil
}

// watchGrouped re-runs the grouped pipeline whenever input changes. Layout
// results feed a [swimlane.Refresher] so that a burst of saves produces a
// single container rebuild, diffed against the previous containers.
func (c *CLI) watchGrouped(cmd *cobra.Command, input, output string, opts pipeline.Options, noCache bool) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	p := printer{cmd.ErrOrStderr()}
	path := outputPath(input, output, "grouped")
	opts.Logger = c.Logger

	var (
		mu     sync.Mutex
		latest *pipeline.Grouped
	)
	refresher := swimlane.NewRefresher(runner.Builder, func(containers []*swimlane.Container) {
		mu.Lock()
		defer mu.Unlock()
		if latest == nil {
			return
		}
		view := *latest
		view.Containers = containers
		if err := writeOutput(cmd.OutOrStdout(), path, &view); err != nil {
			c.Logger.Error("write output", "err", err)
			return
		}
		p.success("Updated %d containers", len(containers))
	}, swimlane.WithQuietPeriod(c.Config.Swimlane.QuietPeriod))
	defer refresher.Stop()

	rebuild := func() {
		g, err := graph.ReadGraphFile(input)
		if err != nil {
			c.Logger.Warn("skipping unreadable input", "path", input, "err", err)
			return
		}
		view, _, err := runner.Grouped(ctx, g, opts, refresher.Containers())
		if err != nil {
			c.Logger.Error("grouped layout", "err", err)
			return
		}
		mu.Lock()
		latest = view
		mu.Unlock()
		refresher.Trigger(view.Layout.Nodes)
	}

	p.info("Watching %s", input)
	err = watchFile(ctx, input, c.Logger, rebuild)
	refresher.Flush()
	return err
}

// watchFile calls onChange once immediately and again for every write,
// create or rename touching path, until ctx is done. The parent directory is
// watched so that editors which save by renaming a temp file over path are
// still seen.
func watchFile(ctx context.Context, path string, logger *log.Logger, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	onChange()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isInputChange(event, abs) {
				onChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "path", abs, "err", err)
		}
	}
}

// isInputChange reports whether event modified the watched file.
func isInputChange(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
