package main

import (
	"fmt"
	"log/slog"

	"github.com/spboyer/leaderboard/internal/webapi"
	"github.com/spboyer/leaderboard/internal/webserver"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		dir  string
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dashboards and the JSON API for a directory of results",
		Long: `Serve the dashboards and JSON API for every results document in a
directory (*.json, *.json.gz, *.json.zst, *.yaml). The run ID of a document
is its file name without the extension.

Pages:
  /                    Dashboard of the most recent run
  /runs/{id}           Dashboard of a run (?sort=&order=)

API:
  GET /api/health
  GET /api/summary
  GET /api/runs                        ?sort=timestamp|cost|evaluations|duration|models|accuracy&order=
  GET /api/runs/{id}
  GET /api/runs/{id}/rankings          ?sort=&order=&limit=&toggle=
  GET /api/runs/{id}/costs
  GET /api/runs/{id}/leaderboards      ?limit=

The server binds to loopback by default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.cfg.Results.Dir
			}
			if port == 0 {
				port = a.cfg.Server.Port
			}

			logger := slog.Default()
			srv, err := webserver.New(webserver.Config{
				Host:           host,
				Port:           port,
				ResultsDir:     dir,
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				Logger:         logger,
				Store:          webapi.NewFileStore(dir, logger),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "leaderboard dashboard: %s\n", srv.URL()) //nolint:errcheck
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory of results documents (default from config, results/)")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Address to bind")
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from config, 3000)")

	return cmd
}
