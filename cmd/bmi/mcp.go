// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio MCP server exposing BMI tools and history resources.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/harperreed/bmi/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout; logs go to stderr.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "bmi": {
        "command": "bmi",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  calculate_adult_bmi          Adult BMI and category
  calculate_minor_percentile   BMI-for-age percentile (5-19 years)
  convert_units                kg/lb, cm/in, cm to feet and inches
  list_history                 Saved measurements, most recent first
  clear_history                Delete adult, minor, or all history
  delete_measurement           Delete by ID or prefix

AVAILABLE RESOURCES:

  bmi://history/adults   Adult history with trend
  bmi://history/minors   Minor history with trend
  bmi://bands            Interpretation bands and display ranges`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}

		server, err := mcp.NewServer(r, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("mcp server starting", "backend", cfg.GetBackend())
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
