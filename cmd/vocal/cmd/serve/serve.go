package serve

import (
	"github.com/spf13/cobra"

	"vocal-assistant/cmd/vocal/cmd/cli"
	"vocal-assistant/internal/app"
)

var addr string

func init() {
	Cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from server.addr)")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the pipeline over an HTTP JSON API",
	Long: `Serve runs an HTTP server until interrupted:

  POST /api/v1/runs        run an operation (same names as the commands)
  GET  /api/v1/runs        recent runs from the history
  GET  /api/v1/documents   document types
  GET  /metrics            Prometheus metrics
  GET  /health`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := cli.EnvFrom(ctx)
		if err != nil {
			return err
		}
		if addr != "" {
			env.Settings.Server.Addr = addr
		}

		srv, cleanup, err := app.InitializeServer(ctx, env.Settings, env.Logger)
		if err != nil {
			return err
		}
		defer cleanup()
		return srv.ListenAndServe(ctx)
	},
}
