// Package config loads mibench configuration from YAML. Every field has a
// default, so a partial file is valid; command-line flags override what is
// loaded.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the complete mibench configuration.
type Config struct {
	Generation    GenerationConfig    `yaml:"generation"`
	Runner        RunnerConfig        `yaml:"runner"`
	Temporal      TemporalConfig      `yaml:"temporal"`
	Results       ResultsConfig       `yaml:"results"`
	Observability ObservabilityConfig `yaml:"observability"`

	// Estimators are external estimator programs offered by the worker.
	Estimators []EstimatorConfig `yaml:"estimators" validate:"dive"`
}

// GenerationConfig controls task generation.
type GenerationConfig struct {
	Seeds   int `yaml:"seeds" validate:"min=1"`
	Workers int `yaml:"workers" validate:"min=0"` // 0 = GOMAXPROCS
}

// RunnerConfig bounds estimator runs.
type RunnerConfig struct {
	Timeout       time.Duration `yaml:"timeout" validate:"min=0"`
	RatePerSecond float64       `yaml:"rate_per_second" validate:"min=0"`
	Burst         int           `yaml:"burst" validate:"min=0"`
}

// TemporalConfig locates the Temporal frontend.
type TemporalConfig struct {
	HostPort  string `yaml:"host_port" validate:"required,hostname_port"`
	Namespace string `yaml:"namespace" validate:"required"`
	TaskQueue string `yaml:"task_queue" validate:"required"`
}

// ResultsConfig selects where run results are stored.
type ResultsConfig struct {
	Backend       string        `yaml:"backend" validate:"oneof=memory redis"`
	RedisAddr     string        `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `yaml:"-"`
	RedisDB       int           `yaml:"redis_db" validate:"min=0"`
	TTL           time.Duration `yaml:"ttl" validate:"min=0"`
	DialTimeout   time.Duration `yaml:"dial_timeout" validate:"min=0"`
}

// ObservabilityConfig controls logging and metrics.
type ObservabilityConfig struct {
	MetricsEnabled   bool   `yaml:"metrics_enabled"`
	MetricsPort      int    `yaml:"metrics_port" validate:"min=0,max=65535"`
	MetricsNamespace string `yaml:"metrics_namespace"`
	LogLevel         string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat        string `yaml:"log_format" validate:"oneof=text json"`
}

// EstimatorConfig declares a command estimator.
type EstimatorConfig struct {
	ID      string         `yaml:"id" validate:"required"`
	Command []string       `yaml:"command" validate:"required,min=1"`
	Params  map[string]any `yaml:"params"`
}

// RedisPasswordEnv is read into ResultsConfig.RedisPassword by Load.
const RedisPasswordEnv = "MIBENCH_REDIS_PASSWORD"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads path over the defaults. An empty path returns the defaults.
// A missing file is an error; unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.Results.RedisPassword = os.Getenv(RedisPasswordEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	seen := make(map[string]struct{}, len(c.Estimators))
	for _, e := range c.Estimators {
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("invalid configuration: duplicate estimator id %q", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
