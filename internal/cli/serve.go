package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/usestring/formjson-mcp/pkg/mcpsrv"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Start the Model Context Protocol server. It communicates over stdio using
JSON-RPC; logs go to stderr or LOG_FILE.

MCP client configuration:
  {
    "mcpServers": {
      "formjson": {
        "command": "/path/to/formjson-mcp",
        "args": ["serve"]
      }
    }
  }`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	server, err := mcpsrv.NewServer(
		mcpsrv.WithPageURL(cfg.PageURL),
		mcpsrv.WithLogLevel(cfg.LogLevel),
	)
	if err != nil {
		return err
	}
	defer server.Close()

	slog.Info("starting formjson MCP server on stdio")
	if err := server.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("server stopped")
	return nil
}
