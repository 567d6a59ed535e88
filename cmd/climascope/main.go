package main

import (
	"context"
	"log/slog"
	"os"
)

func main() {
	if err := run(); err != nil {
		slog.Error("climascope exited with error", "err", err)
		os.Exit(1)
	}
}

func run() error {
	c := &cli{}
	// PersistentPostRunE is skipped when a command fails.
	defer func() { _ = c.close() }()

	return newRootCommand(c).ExecuteContext(context.Background())
}
