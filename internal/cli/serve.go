package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/museum/internal/api"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the museum HTTP API",
		Long: `Serve the museum over HTTP.

  GET  /v1/museum   build a museum for the bearer token's listener
  GET  /v1/me       the listener's profile
  POST /v1/layout   lay out caller-supplied items
  GET  /healthz     liveness

Defaults for canvas and layout come from the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := api.NewServer(runner, c.Logger,
				api.WithTimeout(c.Config.Server.Timeout()),
				api.WithDefaults(c.defaultOptions()))

			printInfo("Listening on %s", StyleLink.Render(addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default [server] addr or :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache")
	return cmd
}
