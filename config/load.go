package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads configuration from an optional yaml file and then applies
// environment overrides. An empty path means environment-only.
func Load(path string) (SimulationConfig, error) {
	var cfg SimulationConfig
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Default returns the built-in defaults without touching the environment.
func Default() SimulationConfig {
	return SimulationConfig{
		Delays:     DelayConfig{Enabled: true, MinMs: 150, MaxMs: 400},
		Errors:     ErrorConfig{Enabled: false, NetworkFailureRate: 0.05},
		Pagination: PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100},
		Logging:    LoggingConfig{Enabled: true, Verbose: false},
	}
}

func (c SimulationConfig) Validate() error {
	if c.Delays.MinMs < 0 || c.Delays.MaxMs < 0 {
		return fmt.Errorf("delays must be non-negative, got min=%d max=%d", c.Delays.MinMs, c.Delays.MaxMs)
	}
	if c.Delays.MinMs > c.Delays.MaxMs {
		return fmt.Errorf("delays.min %d exceeds delays.max %d", c.Delays.MinMs, c.Delays.MaxMs)
	}
	if c.Errors.NetworkFailureRate < 0 || c.Errors.NetworkFailureRate > 1 {
		return fmt.Errorf("errors.network_failure_rate must be in [0,1], got %v", c.Errors.NetworkFailureRate)
	}
	if c.Pagination.DefaultPageSize <= 0 || c.Pagination.MaxPageSize <= 0 {
		return fmt.Errorf("pagination sizes must be positive, got default=%d max=%d",
			c.Pagination.DefaultPageSize, c.Pagination.MaxPageSize)
	}
	if c.Pagination.DefaultPageSize > c.Pagination.MaxPageSize {
		return fmt.Errorf("pagination.default_page_size %d exceeds max_page_size %d",
			c.Pagination.DefaultPageSize, c.Pagination.MaxPageSize)
	}
	return nil
}
