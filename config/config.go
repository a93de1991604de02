// Package config loads and validates parser configuration from YAML files
// with environment-variable overrides, and converts it into a search
// strategy and gparse options.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"gopkg.in/yaml.v3"

	gparse "github.com/jayantk/jklol-sub002"
	"github.com/jayantk/jklol-sub002/search"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Strategy names.
const (
	StrategyInterleaved = "interleaved"
	StrategyPipelined   = "pipelined"
)

// Config is the top-level parser configuration.
type Config struct {
	// Lexicon is the path of an arith lexicon file. Empty selects the
	// built-in lexicon.
	Lexicon string        `yaml:"lexicon"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// SearchConfig selects and sizes the search strategy.
type SearchConfig struct {
	Strategy         string `yaml:"strategy"`
	BeamSize         int    `yaml:"beamSize"`
	MaxStackSize     int    `yaml:"maxStackSize"`
	TempCapacity     int    `yaml:"tempCapacity"`
	DisableLookahead bool   `yaml:"disableLookahead"`

	// Pipelined only.
	NumLogicalForms  int  `yaml:"numLogicalForms"`
	EvalBeamSize     int  `yaml:"evalBeamSize"`
	LocallyNormalize bool `yaml:"locallyNormalize"`
	Parallelism      int  `yaml:"parallelism"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls Prometheus metrics collection.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// TracingConfig controls OpenTelemetry spans for search phases.
type TracingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Tracer  string `yaml:"tracer"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns a Config with the library defaults.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			Strategy:        StrategyInterleaved,
			BeamSize:        gparse.DefaultBeamSize,
			TempCapacity:    search.DefaultTempCapacity,
			NumLogicalForms: 10,
			EvalBeamSize:    gparse.DefaultBeamSize,
			Parallelism:     1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Namespace: "gparse",
		},
		Tracing: TracingConfig{
			Tracer: "github.com/jayantk/jklol-sub002",
		},
	}
}

// applyEnvOverrides reads GPARSE_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GPARSE_LEXICON"); v != "" {
		cfg.Lexicon = v
	}
	if v := os.Getenv("GPARSE_SEARCH_STRATEGY"); v != "" {
		cfg.Search.Strategy = v
	}
	if v := os.Getenv("GPARSE_SEARCH_BEAM_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.BeamSize = n
		}
	}
	if v := os.Getenv("GPARSE_SEARCH_MAX_STACK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxStackSize = n
		}
	}
	if v := os.Getenv("GPARSE_SEARCH_DISABLE_LOOKAHEAD"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Search.DisableLookahead = b
		}
	}
	if v := os.Getenv("GPARSE_SEARCH_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.Parallelism = n
		}
	}
	if v := os.Getenv("GPARSE_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GPARSE_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("GPARSE_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("GPARSE_TRACING_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tracing.Enabled = b
		}
	}
}

// Validate reports every invalid field, joined.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	s := c.Search
	switch s.Strategy {
	case StrategyInterleaved:
	case StrategyPipelined:
		if s.NumLogicalForms <= 0 {
			invalid("search.numLogicalForms must be positive, got %d", s.NumLogicalForms)
		}
		if s.EvalBeamSize <= 0 {
			invalid("search.evalBeamSize must be positive, got %d", s.EvalBeamSize)
		}
	default:
		invalid("unknown search.strategy %q", s.Strategy)
	}
	if s.BeamSize <= 0 {
		invalid("search.beamSize must be positive, got %d", s.BeamSize)
	}
	if s.MaxStackSize < 0 {
		invalid("search.maxStackSize must not be negative, got %d", s.MaxStackSize)
	}
	if s.TempCapacity < 0 {
		invalid("search.tempCapacity must not be negative, got %d", s.TempCapacity)
	}
	if _, err := c.LogLevel(); err != nil {
		invalid("logging.level: %v", err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		invalid("unknown logging.format %q", c.Logging.Format)
	}
	return errors.Join(errs...)
}

// Strategy builds the configured search strategy.
func (c *Config) Strategy() (search.Strategy, error) {
	s := c.Search
	switch s.Strategy {
	case StrategyInterleaved:
		return &search.Interleaved{
			BeamSize:         s.BeamSize,
			MaxStackSize:     s.MaxStackSize,
			TempCapacity:     s.TempCapacity,
			DisableLookahead: s.DisableLookahead,
		}, nil
	case StrategyPipelined:
		return &search.Pipelined{
			BeamSize:         s.BeamSize,
			MaxStackSize:     s.MaxStackSize,
			NumLogicalForms:  s.NumLogicalForms,
			EvalBeamSize:     s.EvalBeamSize,
			LocallyNormalize: s.LocallyNormalize,
			Parallelism:      s.Parallelism,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown search.strategy %q", ErrInvalidConfig, s.Strategy)
}

// LogLevel parses the configured level name.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, err
	}
	return level, nil
}

// Logger builds the configured logger writing to w.
func (c *Config) Logger(w io.Writer) (*gparse.Logger, error) {
	level, err := c.LogLevel()
	if err != nil {
		return nil, fmt.Errorf("%w: logging.level: %w", ErrInvalidConfig, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Logging.Format, "json") {
		return gparse.NewLogger(slog.NewJSONHandler(w, opts)), nil
	}
	return gparse.NewLogger(slog.NewTextHandler(w, opts)), nil
}

// Options validates the config and converts it into parser options. Logs
// go to w. Metrics are not included; see the promcollector package.
func (c *Config) Options(w io.Writer) ([]gparse.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	strategy, err := c.Strategy()
	if err != nil {
		return nil, err
	}
	logger, err := c.Logger(w)
	if err != nil {
		return nil, err
	}
	opts := []gparse.Option{
		gparse.WithStrategy(strategy),
		gparse.WithLogger(logger),
	}
	if c.Tracing.Enabled {
		opts = append(opts, gparse.WithTracer(otel.Tracer(c.Tracing.Tracer)))
	}
	return opts, nil
}

// Marshal encodes the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
