package cmd

import (
	"encoding/json"
	"fmt"

	dashboardrender "github.com/bnema/growth-dashboard/internal/adapters/render/dashboard"
	"github.com/bnema/growth-dashboard/internal/application"
	"github.com/spf13/cobra"
)

type statsOutput struct {
	Stats   application.Stats         `json:"stats"`
	Monthly []application.MonthBucket `json:"monthly"`
}

func newStatsCmd(app *app) *cobra.Command {
	var asJSON bool
	var months int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress and monthly activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withSession(cmd.Context(), cmd.ErrOrStderr(), func(s *session) error {
				now := app.clock.Now()
				snap := s.dashboard.Current()
				out := statsOutput{
					Stats:   s.dashboard.Stats(),
					Monthly: application.Monthly(snap, now, months),
				}

				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(out)
				}

				rendered, err := dashboardrender.RenderOverview(dashboardrender.Overview{
					Stats:   out.Stats,
					Monthly: out.Monthly,
					History: s.dashboard.History(),
					Unsaved: s.dashboard.Unsaved(),
				}, dashboardrender.RenderOptions{Now: now})
				if err != nil {
					return fmt.Errorf("render overview: %w", err)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().IntVar(&months, "months", application.DefaultMonthlyWindow, "Months of activity to show")

	return cmd
}
