package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/growth-dashboard/internal/application"
	"github.com/spf13/cobra"
)

func newInsightsCmd(app *app) *cobra.Command {
	var noSpinner bool

	cmd := &cobra.Command{
		Use:   "insights [overview|books|career|vocabulary]",
		Short: "Ask the AI gateway for insights about your progress",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			}
			kind, err := application.ParseInsightKind(raw)
			if err != nil {
				return err
			}

			return app.withSession(cmd.Context(), cmd.ErrOrStderr(), func(s *session) error {
				req := application.RequestFor(kind, s.dashboard.Current())

				var insight string
				if noSpinner {
					insight, err = s.insights.Generate(cmd.Context(), req)
				} else {
					var result application.InsightResult
					result, err = runInsightSpinner(cmd.Context(), cmd.ErrOrStderr(), "Generating insights...", s.insights.Request(cmd.Context(), req))
					if err == nil {
						insight, err = result.Insight, result.Err
					}
				}
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(insight))
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "Do not show a progress spinner")
	cmd.AddCommand(newInsightsKeyCmd(app))

	return cmd
}

func newInsightsKeyCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the AI gateway API key in the secret store",
	}

	cmd.AddCommand(newInsightsKeySetCmd(app), newInsightsKeyRemoveCmd(app))

	return cmd
}

func newInsightsKeySetCmd(app *app) *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the API key (pass first, file fallback)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.credentials.SetAPIKey(cmd.Context(), value); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "api key stored")
			return err
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "API key value")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newInsightsKeyRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.credentials.RemoveAPIKey(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "api key removed")
			return err
		},
	}
}
