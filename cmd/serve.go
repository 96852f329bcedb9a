package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/bnema/growth-dashboard/internal/adapters/httpapi"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(app *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard JSON API and Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = app.cfg.Server.Addr
			}
			if app.cfg.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// The session outlives the signal so queued sync work can flush
			// after shutdown.
			return app.withSession(context.WithoutCancel(ctx), cmd.ErrOrStderr(), func(s *session) error {
				server := httpapi.NewServer(s.dashboard, s.insights,
					httpapi.WithLogger(app.logger),
					httpapi.WithClock(app.clock),
				)

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "listening on http://%s\n", addr)
				return server.Serve(ctx, addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")

	return cmd
}
