package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"osprey-ehs/config"
)

// NewPresetsCommand creates the presets command.
func NewPresetsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the named simulation presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDELAY\tFAILURE RATE\tPAGE SIZE")
			for _, name := range config.PresetNames() {
				cfg, err := config.Preset(name)
				if err != nil {
					return err
				}
				delay := "off"
				if cfg.Delays.Enabled {
					delay = fmt.Sprintf("%d-%dms", cfg.Delays.MinMs, cfg.Delays.MaxMs)
				}
				rate := "off"
				if cfg.Errors.Enabled {
					rate = fmt.Sprintf("%.0f%%", cfg.Errors.NetworkFailureRate*100)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\n",
					name, delay, rate, cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize)
			}
			return w.Flush()
		},
	}
}
