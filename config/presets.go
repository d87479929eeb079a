package config

import (
	"fmt"
	"sort"
)

// Presets are named shortcuts for common simulation profiles. "fast" is what
// the test suites use, "demo" is the default interactive profile.
var presets = map[string]SimulationConfig{
	"fast": {
		Delays:     DelayConfig{Enabled: false},
		Errors:     ErrorConfig{Enabled: false, NetworkFailureRate: 0},
		Pagination: PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100},
		Logging:    LoggingConfig{Enabled: false},
	},
	"demo": {
		Delays:     DelayConfig{Enabled: true, MinMs: 150, MaxMs: 400},
		Errors:     ErrorConfig{Enabled: false, NetworkFailureRate: 0},
		Pagination: PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100},
		Logging:    LoggingConfig{Enabled: true},
	},
	"realistic": {
		Delays:     DelayConfig{Enabled: true, MinMs: 200, MaxMs: 800},
		Errors:     ErrorConfig{Enabled: true, NetworkFailureRate: 0.05},
		Pagination: PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100},
		Logging:    LoggingConfig{Enabled: true},
	},
	"stress": {
		Delays:     DelayConfig{Enabled: true, MinMs: 500, MaxMs: 2000},
		Errors:     ErrorConfig{Enabled: true, NetworkFailureRate: 0.25},
		Pagination: PaginationConfig{DefaultPageSize: 10, MaxPageSize: 50},
		Logging:    LoggingConfig{Enabled: true, Verbose: true},
	},
}

// Preset returns the configuration for a named profile.
func Preset(name string) (SimulationConfig, error) {
	cfg, ok := presets[name]
	if !ok {
		return SimulationConfig{}, fmt.Errorf("unknown preset %q, valid presets: %v", name, PresetNames())
	}
	return cfg, nil
}

// PresetNames lists the known preset names in stable order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
