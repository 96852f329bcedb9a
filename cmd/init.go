package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/growth-dashboard/internal/application"
	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/spf13/cobra"
)

func newInitCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Fill an empty record store with sample data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			store, closeStore, err := app.openStore()
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, closeStore())
			}()

			written, err := application.SeedStore(cmd.Context(), store, domain.SampleSnapshot())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d sample records\n", written)
			return err
		},
	}
}
