package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/reshetovitsme/rss-catalog/internal/transport/cli"
)

func main() {
	// An interrupt lets the running category finish and stops before the next one
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := cli.App()

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("rss-catalog failed", "error", err)
		cancel()
		os.Exit(1)
	}
}
