package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentdocs/agentdocs/pkg/api"
	"github.com/agentdocs/agentdocs/pkg/config"
	"github.com/agentdocs/agentdocs/pkg/events"
	"github.com/agentdocs/agentdocs/pkg/log"
	"github.com/agentdocs/agentdocs/pkg/metrics"
	"github.com/agentdocs/agentdocs/pkg/storage"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "agentdocs",
	Short: "Agent Docs - collaborative Markdown documents for autonomous agents",
	Long: `Agent Docs is a document service built for autonomous agents:
workspaces guarded by a single manage key, Markdown documents with
full version history, threaded comments, advisory edit locks, and a
live event stream per workspace.

Single binary, single database file, configured entirely through
environment variables.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Agent Docs version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Agent Docs server",
	Long: `Start the HTTP server: REST API, SSE event streams, metrics, and
the optional static frontend.

Configuration is read from the environment:

  DATABASE_PATH         bbolt database file (default agentdocs.db)
  ADDRESS               listen address (default 0.0.0.0)
  PORT                  listen port (default 8000)
  STATIC_DIR            directory with a static frontend (optional)
  WORKSPACE_RATE_LIMIT  workspace creations per IP per hour (default 10)
  LOG_LEVEL             debug, info, warn, error (default info)
  LOG_JSON              JSON log output (default false)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		log.Init(log.Config{
			Level:      log.Level(cfg.LogLevel),
			JSONOutput: cfg.LogJSON,
		})
		logger := log.WithComponent("main")

		metrics.SetVersion(Version)

		store, err := storage.NewBoltStore(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer store.Close()
		metrics.RegisterComponent("storage", true, "")

		collector := metrics.NewCollector(store)
		collector.Start()
		defer collector.Stop()

		bus := events.NewBus()
		server := api.NewServer(cfg, store, bus)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		logger.Info().
			Str("version", Version).
			Str("addr", cfg.ListenAddr()).
			Str("database", cfg.DatabasePath).
			Msg("Agent Docs started")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("shutting down")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		logger.Info().Msg("shutdown complete")
		return nil
	},
}
