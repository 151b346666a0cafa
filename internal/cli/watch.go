package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/usestring/formjson-mcp/internal/widgetfile"
	"github.com/usestring/formjson-mcp/internal/widgets"
	"github.com/usestring/formjson-mcp/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rerun a widget file whenever it changes",
	Long: `Run a widget configuration file, then rerun it after every save and
print each resulting state as JSON. Invalid edits are logged and skipped.
Stops on interrupt.

Example:
  formjson-mcp watch --config widget.yaml --page-url "https://host/NewForm.aspx?mode=0"`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringP("config", "c", "", "widget configuration file")
	watchCmd.Flags().Bool("fetch", false, "run the WebApi Request control instead of Parse JSON")
	_ = watchCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, path, fetch, err := widgetFlags(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupLogging(cfg)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer cleanup()

	w, err := openWidget(cfg)
	if err != nil {
		return err
	}
	return watchWidget(cmd.Context(), path, w, fetch, cmd.OutOrStdout())
}

// watchWidget runs the file once, then on every reload until ctx is done.
// Reloads are queued to a single runner so runs never overlap.
func watchWidget(ctx context.Context, path string, w *widgets.Widget, fetch bool, out io.Writer) error {
	initial, err := widgetfile.Load(path)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	reloads := make(chan types.WidgetConfig, 1)
	reloads <- initial

	g.Go(func() error {
		return widgetfile.Watch(ctx, path, func(cfg types.WidgetConfig, err error) {
			if err != nil {
				slog.Warn("skipping invalid widget file",
					slog.String("path", path),
					slog.String("error", err.Error()),
				)
				return
			}
			// Keep only the newest pending configuration.
			select {
			case <-reloads:
			default:
			}
			select {
			case reloads <- cfg:
			case <-ctx.Done():
			}
		})
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case cfg := <-reloads:
				if err := printState(out, runWidget(ctx, w, cfg, fetch)); err != nil {
					return err
				}
			}
		}
	})

	return g.Wait()
}
