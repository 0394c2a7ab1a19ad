// Command portfolio serves the portfolio admin dashboard and public API,
// and carries the maintenance commands that operate on the same store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"portfolio/internal/adapters/http/perf"
	"portfolio/internal/adapters/storage"
	"portfolio/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "portfolio",
	Short:         "Portfolio content service with admin dashboard",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, exportCmd, seedCmd, passwdCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "portfolio:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and installs the process logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	slog.SetDefault(cfg.NewLogger(os.Stderr))
	return cfg, nil
}

// openStore opens the configured backend. collector may be nil.
func openStore(ctx context.Context, cfg config.Config, collector *perf.Collector) (*storage.Backend, func(), error) {
	backend, err := storage.Open(ctx, cfg, collector)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	closeFn := func() {
		if err := backend.Close(context.Background()); err != nil {
			slog.Warn("store_close_failed", "backend", backend.Name, "error", err)
		}
	}
	return backend, closeFn, nil
}
