package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/usestring/formjson-mcp/internal/cli"
)

func main() {
	// Set up context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Configuration is loaded from environment variables and flags:
	// - FORMJSON_PAGE_URL / --page-url: form page with mode and app-web parameters
	// - LOG_LEVEL / --log-level: debug, info, warn, error (default: info)
	// - LOG_FILE: path to log file (default: stderr only)
	// - etc. (see internal/config for all options)
	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
