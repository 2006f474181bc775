package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratestack/internal/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the packing HTTP API",
		Long: `Run the packing HTTP API.

Endpoints:
  POST   /api/pack               pack a catalog and store the run
  GET    /api/runs               list stored runs
  GET    /api/runs/{id}          fetch a stored run
  DELETE /api/runs/{id}          delete a stored run
  GET    /api/runs/{id}/record   the placement record as JSON
  GET    /api/runs/{id}/svg      the layer plan as SVG
  GET    /api/runs/{id}/charts   packing statistics charts
  GET    /api/runs/{id}/graph    support graph as SVG
  GET    /api/runs/{id}/replay   interactive step-through page
  GET    /healthz                liveness probe

The server shares the CLI's cache and store configuration, so runs
packed over HTTP appear in "cratestack history list".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if addr == "" {
				addr = c.Config.Serve.Addr
			}
			srv := server.New(server.Options{
				Addr:   addr,
				Runner: runner,
				Store:  st,
				Logger: c.Logger,
			})
			c.Logger.Info("serving", "addr", addr)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")
	return cmd
}
