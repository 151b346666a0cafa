// Package cli implements the formjson-mcp command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usestring/formjson-mcp/internal/config"
	"github.com/usestring/formjson-mcp/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "formjson-mcp",
	Short: "Form widgets that render JSON, served over MCP",
	Long: `formjson-mcp renders JSON-backed form widgets: it loads an inline or
fetched JSON document, selects a value with JSONPath and renders it as a
label, a dropdown or a Mustache template.

Without a subcommand it serves the widget tools over MCP on stdio.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().String("page-url", "", "form page URL with mode, SPHostUrl and SPAppWebUrl parameters (default $FORMJSON_PAGE_URL)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL)")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the environment and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Load()
	pageURL, err := cmd.Flags().GetString("page-url")
	if err != nil {
		return nil, fmt.Errorf("getting page-url flag: %w", err)
	}
	if pageURL != "" {
		cfg.PageURL = pageURL
	}
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("getting log-level flag: %w", err)
	}
	if level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) (func() error, error) {
	return logging.Setup(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	})
}
