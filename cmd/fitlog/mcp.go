// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for Claude integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/fitlog/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to read and update your fitlog through
a standardized protocol. The server communicates via stdin/stdout; logs go
to stderr or the configured log file.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "fitlog": {
        "command": "fitlog",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_meal            Log a meal
  delete_meal         Remove a meal by id
  get_diet_log        Read a day's meals and totals
  estimate_nutrition  Estimate a meal, optionally logging it
  generate_workout    Generate and save a day's plan
  get_workout_plan    Read a day's saved plan
  finish_workout      Log sets against the saved plan
  get_workout_log     Read a day's logged sets
  log_weight          Log a weigh-in
  get_progress        Read the weight series and trend
  summarize_progress  Summarize the weight trend
  get_dashboard       Read a day's totals against targets

AVAILABLE RESOURCES:

  fitlog://today      Today's dashboard
  fitlog://progress   Weight series and trend`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(mcp.Deps{
			Aggregator: agg,
			Reader:     reader,
			Coach:      coach,
			Session:    session,
			Logger:     logger,
		})
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
