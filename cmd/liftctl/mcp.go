package main

import (
	"os"
	"os/signal"
	"syscall"

	liftdiarymcp "github.com/2beens/liftdiary/internal/mcp"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over stdio",
	Long: `Start the Model Context Protocol server on stdin/stdout, for local AI assistants.
The backend serves the same tools over HTTP at /mcp.

  {
    "mcpServers": {
      "liftdiary": { "command": "liftctl", "args": ["mcp", "--env", "production"] }
    }
  }

TOOLS:

  get_liftdiary_schema    Tables, columns and types
  get_workouts_for_date   A user's workouts of a day, with exercises and sets
  get_daily_stats         A user's completed workouts, duration and exercises of a day`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		server := liftdiarymcp.NewServer(liftdiarymcp.NewPoolSchemaRepo(dbPool), workoutsService)

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

