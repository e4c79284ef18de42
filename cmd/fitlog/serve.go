// ABOUTME: CLI command for starting the HTTP API.
// ABOUTME: Serves REST routes, WebSocket streams and Prometheus metrics until interrupted.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/fitlog/internal/api"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API for web and mobile clients.

ROUTES:

  GET    /api/v1/days/{date}/diet                 Diet log
  POST   /api/v1/days/{date}/meals                Add a meal
  DELETE /api/v1/days/{date}/meals/{mealId}       Remove a meal
  POST   /api/v1/days/{date}/meals/estimate       Estimate a meal (never logs)
  GET    /api/v1/days/{date}/plan                 Saved workout plan
  POST   /api/v1/days/{date}/plan                 Generate a plan
  GET    /api/v1/days/{date}/workout              Logged workout
  POST   /api/v1/days/{date}/workout              Finish a workout
  GET    /api/v1/days/{date}/summary              Dashboard
  GET    /api/v1/progress                         Weight series and trend
  POST   /api/v1/progress                         Log a weigh-in
  POST   /api/v1/progress/summary                 Summarize the trend
  GET    /ws/days/{date}                          Live dashboard stream
  GET    /ws/progress                             Live weight stream
  GET    /metrics                                 Prometheus metrics

{date} accepts YYYY-MM-DD or "today".

EXAMPLES:

  fitlog serve
  fitlog serve --addr 127.0.0.1:9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := api.New(api.Params{
			Aggregator:     agg,
			Reader:         reader,
			Coach:          coach,
			Session:        session,
			Logger:         logger,
			Metrics:        metrics,
			Gatherer:       registry,
			AllowedOrigins: cfg.AllowedOrigins,
		})
		if err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = cfg.GetListenAddr()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}
