package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archlayout/pkg/cache"
	"github.com/matzehuels/archlayout/pkg/classify"
	"github.com/matzehuels/archlayout/pkg/config"
	"github.com/matzehuels/archlayout/pkg/graph"
	"github.com/matzehuels/archlayout/pkg/layout"
	"github.com/matzehuels/archlayout/pkg/pipeline"
	"github.com/matzehuels/archlayout/pkg/swimlane"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "archlayout"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config     config.Config
	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the --config file (or $ARCHLAYOUT_CONFIG) and applies
// its log level unless --verbose was given.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.verbose {
		c.SetLogLevel(LogDebug)
	} else if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		c.SetLogLevel(level)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner builds a pipeline runner from the loaded configuration.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	cfg := c.Config

	engine := layout.New(
		layout.WithLogger(c.Logger),
		layout.WithThresholds(cfg.Thresholds),
		layout.WithArrangeOptions(cfg.Swimlane.Arrange),
		layout.WithHistoryCapacity(cfg.History.Capacity),
	)
	classifier := classify.New(
		classify.WithThreshold(cfg.Classifier.Threshold),
		classify.WithLogger(c.Logger),
	)
	builder := swimlane.NewBuilder(cfg.ThemeRegistry(), cfg.Swimlane.Containers)

	return pipeline.NewRunner(store, nil, c.Logger,
		pipeline.WithEngine(engine),
		pipeline.WithClassifier(classifier),
		pipeline.WithBuilder(builder),
		pipeline.WithTTL(cfg.Cache.TTL),
		pipeline.WithRetry(cfg.Cache.Retry),
	), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cc := c.Config.Cache
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cc.Backend {
	case config.CacheFile:
		dir := cc.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	case config.CacheRedis:
		var opts []cache.RedisOption
		if cc.RedisPrefix != "" {
			opts = append(opts, cache.WithRedisPrefix(cc.RedisPrefix))
		}
		rc := cache.NewRedisCache(cc.RedisAddr, cc.RedisPassword, cc.RedisDB, opts...)
		if err := rc.Ping(ctx); err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "addr", cc.RedisAddr, "err", err)
			_ = rc.Close()
			return cache.NewNullCache(), nil
		}
		return rc, nil
	default:
		return cache.NewNullCache(), nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/archlayout/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// outputPath derives "<input>.<suffix>.json" when no explicit output is set.
// An output of "-" means stdout and yields "".
func outputPath(input, output, suffix string) string {
	switch output {
	case "-":
		return ""
	case "":
		return strings.TrimSuffix(input, filepath.Ext(input)) + "." + suffix + ".json"
	default:
		return output
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags binds the layout option flags shared by layout and grouped.
type layoutFlags struct {
	direction  string
	engine     string
	nodeWidth  float64
	nodeHeight float64
	noMonitor  bool
	banding    bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.direction, "direction", "d", "", "layout direction: TB, BT, LR (default), RL")
	cmd.Flags().StringVarP(&f.engine, "engine", "e", "", "engine preference: auto (default), constraint, layered, fallback")
	cmd.Flags().Float64Var(&f.nodeWidth, "node-width", 0, "default node width")
	cmd.Flags().Float64Var(&f.nodeHeight, "node-height", 0, "default node height")
	cmd.Flags().BoolVar(&f.noMonitor, "no-monitoring", false, "do not record the run in the performance history")
}

// options overlays the flags on the configured layout defaults.
func (f *layoutFlags) options(base graph.Options) (graph.Options, error) {
	opts := base
	if f.direction != "" {
		d := graph.Direction(strings.ToUpper(f.direction))
		if !d.Valid() {
			return opts, fmt.Errorf("invalid direction %q", f.direction)
		}
		opts.Direction = d
	}
	if f.engine != "" {
		e, err := graph.ParseEngine(f.engine)
		if err != nil {
			return opts, err
		}
		opts.Engine = e
	}
	if f.nodeWidth > 0 {
		opts.NodeWidth = f.nodeWidth
	}
	if f.nodeHeight > 0 {
		opts.NodeHeight = f.nodeHeight
	}
	if f.noMonitor {
		off := false
		opts.EnablePerformanceMonitoring = &off
	}
	if f.banding {
		opts.LayerBanding = true
	}
	return opts, nil
}
