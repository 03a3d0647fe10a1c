// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/ascentd/ascent/internal/search"
)

// Config is the full service configuration.
type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Search struct {
		PopulationSize    int           `env:"SEARCH_POP_SIZE" envDefault:"1"`
		Maximize          bool          `env:"SEARCH_MAXIMIZE" envDefault:"false"`
		ErrorPolicy       string        `env:"SEARCH_ERROR_POLICY" envDefault:"continue"`
		EvaluationTimeout time.Duration `env:"SEARCH_EVALUATION_TIMEOUT" envDefault:"5m"`
		MemoryLimitBytes  int64         `env:"SEARCH_MEMORY_LIMIT_BYTES" envDefault:"4294967296"`
		EarlyStop         int           `env:"SEARCH_EARLY_STOP" envDefault:"0"`
		SearchTimeout     time.Duration `env:"SEARCH_TIMEOUT" envDefault:"1h"`
	}
}

// Load parses and validates the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	if cfg.Search.PopulationSize < 1 {
		return nil, fmt.Errorf("config: SEARCH_POP_SIZE must be >= 1, got %d", cfg.Search.PopulationSize)
	}
	switch search.ErrorPolicy(cfg.Search.ErrorPolicy) {
	case search.ErrorPolicyRaise, search.ErrorPolicyContinue:
	default:
		return nil, fmt.Errorf("config: SEARCH_ERROR_POLICY must be raise or continue, got %q", cfg.Search.ErrorPolicy)
	}
	if cfg.Search.EvaluationTimeout < 0 || cfg.Search.SearchTimeout < 0 {
		return nil, fmt.Errorf("config: search timeouts must be >= 0")
	}
	if cfg.Search.MemoryLimitBytes < 0 {
		return nil, fmt.Errorf("config: SEARCH_MEMORY_LIMIT_BYTES must be >= 0, got %d", cfg.Search.MemoryLimitBytes)
	}
	if cfg.Search.EarlyStop < 0 {
		return nil, fmt.Errorf("config: SEARCH_EARLY_STOP must be >= 0, got %d", cfg.Search.EarlyStop)
	}

	return cfg, nil
}

// SearchConfig maps the service defaults onto an engine configuration.
func (c *Config) SearchConfig() search.Config {
	return search.Config{
		PopulationSize:    c.Search.PopulationSize,
		Maximize:          c.Search.Maximize,
		ErrorPolicy:       search.ErrorPolicy(c.Search.ErrorPolicy),
		EvaluationTimeout: c.Search.EvaluationTimeout,
		MemoryLimit:       c.Search.MemoryLimitBytes,
		EarlyStop:         c.Search.EarlyStop,
		SearchTimeout:     c.Search.SearchTimeout,
	}
}
