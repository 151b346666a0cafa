package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/usestring/formjson-mcp/internal/config"
	"github.com/usestring/formjson-mcp/internal/mcp/tools"
	"github.com/usestring/formjson-mcp/internal/widgetfile"
	"github.com/usestring/formjson-mcp/internal/widgets"
	"github.com/usestring/formjson-mcp/pkg/mcpsrv"
	"github.com/usestring/formjson-mcp/pkg/types"
)

// cliWidgetID names the single widget driven by run and watch.
const cliWidgetID = "cli"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a widget file once",
	Long: `Load a widget configuration file (.toml, .yaml, .yml, .json or .jsonc),
run it and print the resulting state as JSON: markup, outcome, options,
error and the change events emitted.

Examples:
  formjson-mcp run --config widget.toml
  formjson-mcp run --config status.yaml --page-url "https://host/Lists/X/EditForm.aspx?mode=1"
  formjson-mcp run --config api.json --fetch`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringP("config", "c", "", "widget configuration file")
	runCmd.Flags().Bool("fetch", false, "run the WebApi Request control instead of Parse JSON")
	_ = runCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, path, fetch, err := widgetFlags(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupLogging(cfg)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer cleanup()

	widgetCfg, err := widgetfile.Load(path)
	if err != nil {
		return err
	}
	w, err := openWidget(cfg)
	if err != nil {
		return err
	}
	return printState(cmd.OutOrStdout(), runWidget(cmd.Context(), w, widgetCfg, fetch))
}

func widgetFlags(cmd *cobra.Command) (*config.Config, string, bool, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", false, err
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", false, fmt.Errorf("getting config flag: %w", err)
	}
	fetch, err := cmd.Flags().GetBool("fetch")
	if err != nil {
		return nil, "", false, fmt.Errorf("getting fetch flag: %w", err)
	}
	return cfg, path, fetch, nil
}

func openWidget(cfg *config.Config) (*widgets.Widget, error) {
	registry, err := mcpsrv.NewRegistry(cfg, nil, nil)
	if err != nil {
		return nil, err
	}
	return registry.Open(cliWidgetID, cfg.PageURL)
}

// runWidget runs cfg on w and reports the events emitted by this run.
func runWidget(ctx context.Context, w *widgets.Widget, cfg types.WidgetConfig, fetch bool) types.WidgetState {
	mark := w.Events.Len()
	control := w.Pipeline.Run
	if fetch {
		control = w.Pipeline.Fetch
	}
	state := control(ctx, cfg)
	w.SetConfig(cfg)
	return tools.WidgetStateOf(w, state, w.Events.Since(mark))
}

func printState(out io.Writer, state types.WidgetState) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}
