package cmd

import (
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var configPath string
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "gd",
		Short:         "Growth dashboard (gd): track reading, job applications and vocabulary",
		Long:          "gd keeps your reading list, job applications and vocabulary in a local record store, with undo/redo history, import/export, an HTTP API and AI insights.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			wired, err := wireApp(configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			*app = *wired
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.growth-dashboard/config.toml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(app),
		newServeCmd(app),
		newShellCmd(app),
		newInsightsCmd(app),
	)
	rootCmd.AddCommand(newSessionCmds(app)...)

	return rootCmd
}

// newSessionCmds are the commands that act on a loaded dashboard. The shell
// registers the same set on its own per-line command tree.
func newSessionCmds(app *app) []*cobra.Command {
	return []*cobra.Command{
		newListCmd(app),
		newAddCmd(app),
		newUpdateCmd(app),
		newDeleteCmd(app),
		newImportCmd(app),
		newExportCmd(app),
		newStatsCmd(app),
	}
}
