// Package config loads archlayout settings from TOML or YAML files.
//
// Defaults live in code ([Default]); a file only needs the keys it wants to
// change. The file is picked by extension (.toml, .yaml, .yml). When no path
// is given, the ARCHLAYOUT_CONFIG environment variable is consulted.
//
//	[layout]
//	direction = "TB"
//	solver_timeout = "5s"
//
//	[thresholds]
//	constraint = 2.5
//	layered = 1.2
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/archlayout/pkg/cache"
	"github.com/matzehuels/archlayout/pkg/classify"
	"github.com/matzehuels/archlayout/pkg/engine"
	"github.com/matzehuels/archlayout/pkg/errors"
	"github.com/matzehuels/archlayout/pkg/graph"
	"github.com/matzehuels/archlayout/pkg/history"
	"github.com/matzehuels/archlayout/pkg/swimlane"
	"github.com/matzehuels/archlayout/pkg/theme"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "ARCHLAYOUT_CONFIG"

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the complete configuration.
type Config struct {
	Layout     graph.Options     `toml:"layout" yaml:"layout"`
	Thresholds engine.Thresholds `toml:"thresholds" yaml:"thresholds"`
	Classifier ClassifierConfig  `toml:"classifier" yaml:"classifier"`
	Swimlane   SwimlaneConfig    `toml:"swimlane" yaml:"swimlane"`
	History    HistoryConfig     `toml:"history" yaml:"history"`
	Cache      CacheConfig       `toml:"cache" yaml:"cache"`
	Server     ServerConfig      `toml:"server" yaml:"server"`
	Log        LogConfig         `toml:"log" yaml:"log"`

	// Themes overrides layer themes; keys are layer indices. Empty fields
	// keep the default.
	Themes map[string]theme.Theme `toml:"themes" yaml:"themes"`
}

// ClassifierConfig tunes the layer classifier.
type ClassifierConfig struct {
	Threshold int `toml:"threshold" yaml:"threshold" validate:"gte=0"`
}

// SwimlaneConfig holds band and container geometry.
type SwimlaneConfig struct {
	Arrange     swimlane.ArrangeOptions `toml:"arrange" yaml:"arrange"`
	Containers  swimlane.BuilderOptions `toml:"containers" yaml:"containers"`
	QuietPeriod time.Duration           `toml:"quiet_period" yaml:"quiet_period" validate:"gte=0"`
}

// HistoryConfig sizes the performance history.
type HistoryConfig struct {
	Capacity int `toml:"capacity" yaml:"capacity" validate:"gte=1,lte=100000"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend       string        `toml:"backend" yaml:"backend" validate:"oneof=none file redis"`
	Dir           string        `toml:"dir" yaml:"dir" validate:"required_if=Backend file"`
	RedisAddr     string        `toml:"redis_addr" yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `toml:"redis_password" yaml:"redis_password"`
	RedisDB       int           `toml:"redis_db" yaml:"redis_db" validate:"gte=0"`
	RedisPrefix   string        `toml:"redis_prefix" yaml:"redis_prefix"`
	TTL           time.Duration `toml:"ttl" yaml:"ttl" validate:"gte=0"`

	// Retry bounds attempts for cache writes that fail on the connection.
	Retry cache.RetryPolicy `toml:"retry" yaml:"retry"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `toml:"addr" yaml:"addr" validate:"required"`
	ReadTimeout     time.Duration `toml:"read_timeout" yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `toml:"write_timeout" yaml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `toml:"max_body_bytes" yaml:"max_body_bytes" validate:"gt=0"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration.
func Default() Config {
	cfg := Config{
		Layout:     graph.Options{}.WithDefaults(),
		Thresholds: engine.DefaultThresholds(),
		Classifier: ClassifierConfig{Threshold: classify.DefaultThreshold},
		Swimlane:   SwimlaneConfig{QuietPeriod: swimlane.DefaultQuietPeriod},
		History:    HistoryConfig{Capacity: history.DefaultCapacity},
		Cache: CacheConfig{
			Backend: CacheNone,
			Dir:     defaultCacheDir(),
			TTL:     24 * time.Hour,
			Retry: cache.RetryPolicy{
				Attempts: cache.DefaultRetryAttempts,
				Delay:    cache.DefaultRetryDelay,
			},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    4 << 20,
		},
		Log: LogConfig{Level: "info"},
	}
	cfg.Swimlane.Arrange.SetDefaults()
	cfg.Swimlane.Containers.SetDefaults()
	return cfg
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "archlayout")
	}
	return filepath.Join(os.TempDir(), "archlayout-cache")
}

// =============================================================================
// Loading
// =============================================================================

// Load reads the file at path over the defaults. An empty path falls back
// to $ARCHLAYOUT_CONFIG; when that is empty too the defaults are returned.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data, formatOf(path))
}

// Format is a config file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Parse decodes data over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse yaml")
		}
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
		}
	}
	cfg.Layout.SetDefaults()
	cfg.Swimlane.Arrange.SetDefaults()
	cfg.Swimlane.Containers.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// =============================================================================
// Validation
// =============================================================================

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-field rules.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}
	if err := c.Layout.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout")
	}
	if err := c.Thresholds.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "thresholds")
	}
	if _, err := c.ThemeOverrides(); err != nil {
		return err
	}
	return nil
}

// ThemeOverrides converts the string-keyed theme table to layer indices.
func (c Config) ThemeOverrides() (map[int]theme.Theme, error) {
	out := make(map[int]theme.Theme, len(c.Themes))
	for k, t := range c.Themes {
		layer, err := strconv.Atoi(k)
		if err != nil || layer < 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "theme key %q is not a layer index", k)
		}
		out[layer] = t
	}
	return out, nil
}

// ThemeRegistry returns the default themes with the configured overrides applied.
func (c Config) ThemeRegistry() *theme.Registry {
	overrides, err := c.ThemeOverrides()
	if err != nil || len(overrides) == 0 {
		return theme.Default()
	}
	return theme.Default().With(overrides)
}

// String renders the configuration as TOML.
func (c Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return buf.String()
}
