// Package cli implements the osprey command line: inspect presets, check
// seed bundles and run a scripted demo against the in-memory API.
package cli

import (
	"github.com/spf13/cobra"

	"osprey-ehs/config"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Config  string
	Preset  string
	Verbose bool
}

// NewRootCommand creates the osprey root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "osprey",
		Short:         "Osprey EHS mock API",
		Long:          "In-memory mock of the Osprey EHS incident-management API with configurable latency and failure injection.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to a yaml config file")
	cmd.PersistentFlags().StringVar(&opts.Preset, "preset", "", "named simulation preset (overrides --config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")

	cmd.AddCommand(NewPresetsCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))

	return cmd
}

// loadConfig resolves the effective configuration from the global flags:
// preset wins over config file, which wins over environment defaults.
func loadConfig(opts *RootOptions) (config.SimulationConfig, error) {
	var cfg config.SimulationConfig
	var err error
	if opts.Preset != "" {
		cfg, err = config.Preset(opts.Preset)
	} else {
		cfg, err = config.Load(opts.Config)
	}
	if err != nil {
		return cfg, err
	}
	if opts.Verbose {
		cfg.Logging.Enabled = true
		cfg.Logging.Verbose = true
	}
	return cfg, nil
}
