package widgetfile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/usestring/formjson-mcp/pkg/types"
)

// Watch reloads the widget file at path after every write or create and
// passes the result to fn. The parent directory is watched so that editors
// replacing the file are seen. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, fn func(types.WidgetConfig, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving widget path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	slog.Info("watching widget file", slog.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			slog.Debug("widget file changed",
				slog.String("path", abs),
				slog.String("op", ev.Op.String()),
			)
			fn(Load(abs))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("widget watcher error", slog.String("error", err.Error()))
		}
	}
}
