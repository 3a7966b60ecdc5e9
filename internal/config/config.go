// Package config loads tracecov configuration from YAML with environment
// overrides for the knobs CI systems most often need to set.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all tracecov configuration.
type Config struct {
	// TraceFolder is the default folder searched for trace files when a
	// command names none.
	TraceFolder string `yaml:"trace_folder"`

	// Parallelism bounds concurrent reconciliations during tree walks.
	// Zero means unbounded.
	Parallelism int `yaml:"parallelism"`

	// DatabasePath is where run history is persisted. Empty disables
	// persistence.
	DatabasePath string `yaml:"database_path"`

	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// Debounce is how long to wait after the last trace-file event
	// before re-reconciling, as a Go duration string.
	Debounce string `yaml:"debounce"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		TraceFolder: ".",
		Parallelism: 8,
		Watch:       WatchConfig{Debounce: "500ms"},
		Logging:     LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error; the defaults
// (plus environment) are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TRACECOV_TRACE_FOLDER"); v != "" {
		cfg.TraceFolder = v
	}
	if v := os.Getenv("TRACECOV_DATABASE"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("TRACECOV_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Parallelism = n
		}
	}
}

func (c Config) validate() error {
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative, got %d", c.Parallelism)
	}
	if _, err := c.DebounceDuration(); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

// DebounceDuration parses the watch debounce setting.
func (c Config) DebounceDuration() (time.Duration, error) {
	if c.Watch.Debounce == "" {
		return 500 * time.Millisecond, nil
	}
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, fmt.Errorf("bad watch debounce %q: %w", c.Watch.Debounce, err)
	}
	return d, nil
}
