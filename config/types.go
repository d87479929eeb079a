package config

// SimulationConfig drives how the mock API behaves at runtime: artificial
// latency, injected transient failures, pagination limits and logging.
// All state lives in process memory, so this is the only knob surface.
type SimulationConfig struct {
	Delays     DelayConfig      `yaml:"delays"`
	Errors     ErrorConfig      `yaml:"errors"`
	Pagination PaginationConfig `yaml:"pagination"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type DelayConfig struct {
	Enabled bool `yaml:"enabled" env:"OSPREY_DELAYS_ENABLED" env-default:"true"`
	MinMs   int  `yaml:"min" env:"OSPREY_DELAYS_MIN" env-default:"150"`
	MaxMs   int  `yaml:"max" env:"OSPREY_DELAYS_MAX" env-default:"400"`
}

type ErrorConfig struct {
	Enabled bool `yaml:"enabled" env:"OSPREY_ERRORS_ENABLED" env-default:"false"`
	// NetworkFailureRate is the probability in [0,1] that a call fails with a
	// simulated network error before the wrapped operation runs.
	NetworkFailureRate float64 `yaml:"network_failure_rate" env:"OSPREY_ERRORS_FAILURE_RATE" env-default:"0.05"`
}

type PaginationConfig struct {
	DefaultPageSize int `yaml:"default_page_size" env:"OSPREY_PAGINATION_DEFAULT" env-default:"20"`
	MaxPageSize     int `yaml:"max_page_size" env:"OSPREY_PAGINATION_MAX" env-default:"100"`
}

type LoggingConfig struct {
	Enabled bool `yaml:"enabled" env:"OSPREY_LOGGING_ENABLED" env-default:"true"`
	Verbose bool `yaml:"verbose" env:"OSPREY_LOGGING_VERBOSE" env-default:"false"`
}
