package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"osprey-ehs/api"
	"osprey-ehs/core/incidents"
	"osprey-ehs/core/query"
	"osprey-ehs/core/store"
)

// NewDemoCommand creates the demo command: it seeds the built-in dataset and
// walks one incident from report to closure, printing each call. With a
// lossy preset some calls fail with simulated network errors, which is the
// point of running it.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted incident walkthrough against the mock API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			a, err := api.New(cfg, nil, nil)
			if err != nil {
				return err
			}
			a.SeedDefault()
			return runDemo(cmd, a)
		},
	}
}

func runDemo(cmd *cobra.Command, a *api.API) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()
	step := func(name string, fn func() error) {
		start := time.Now()
		if err := fn(); err != nil {
			fmt.Fprintf(out, "  %-28s FAILED after %s: %v\n", name, time.Since(start).Round(time.Millisecond), err)
			return
		}
		fmt.Fprintf(out, "  %-28s ok in %s\n", name, time.Since(start).Round(time.Millisecond))
	}

	fmt.Fprintln(out, "incident walkthrough:")

	var incidentID string
	step("list zone locations", func() error {
		resp, err := a.Locations.List(ctx, query.Params{Filters: []query.Filter{query.Eq("type", "zone")}})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "    %d zones found\n", resp.Pagination.Total)
		return nil
	})
	step("report incident", func() error {
		resp, err := a.Incidents.Create(ctx, incidents.CreateInput{
			Title:      "Demo: unsecured ladder on mezzanine",
			Severity:   store.SeverityMedium,
			Type:       store.IncidentTypeNearMiss,
			LocationID: "loc-warehouse",
			ReporterID: "user-reporter",
			AssigneeID: "user-manager",
			OccurredAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		incidentID = resp.Data.ID
		fmt.Fprintf(out, "    registered as %s\n", resp.Data.Number)
		return nil
	})
	if incidentID == "" {
		fmt.Fprintln(out, "  incident creation failed, stopping walkthrough")
		return nil
	}

	var stepID string
	step("add investigation step", func() error {
		resp, err := a.Incidents.CreateStep(ctx, incidentID, incidents.StepCreateInput{
			Title: "Secure the ladder and inspect anchor points",
		})
		if err != nil {
			return err
		}
		stepID = resp.Data.ID
		return nil
	})
	if stepID != "" {
		step("complete the step", func() error {
			done := store.StepStatusCompleted
			_, err := a.Incidents.UpdateStep(ctx, incidentID, stepID, incidents.StepUpdateInput{Status: &done})
			return err
		})
	}
	step("close the incident", func() error {
		closed := store.IncidentStatusClosed
		_, err := a.Incidents.Update(ctx, incidentID, incidents.UpdateInput{Status: &closed})
		return err
	})
	step("read back with progress", func() error {
		resp, err := a.Incidents.Get(ctx, incidentID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "    %s: %s, steps %d/%d\n",
			resp.Data.Number, resp.Data.Status, resp.Data.StepsCompleted, resp.Data.StepsTotal)
		return nil
	})
	return nil
}
