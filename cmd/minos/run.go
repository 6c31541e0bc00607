package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"veritas-hq/minos/pkg/audit"
	"veritas-hq/minos/pkg/config"
	"veritas-hq/minos/pkg/judges"
	"veritas-hq/minos/pkg/judges/ruleengine"
	"veritas-hq/minos/pkg/judges/semantic"
	"veritas-hq/minos/pkg/pipeline"
	"veritas-hq/minos/pkg/server"
	"veritas-hq/minos/pkg/server/handlers"
	"veritas-hq/minos/pkg/store"
	"veritas-hq/minos/pkg/store/retention"
	"veritas-hq/minos/pkg/telemetry/logging"
	"veritas-hq/minos/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Minos review server",
	Long: `Start the Minos review server with the specified configuration.

The server accepts contract review batches, classifies each rule,
confirms them against the semantic judge and the rule engine, and
streams progress events back to the caller.

Examples:
  # Start with default config
  minos run

  # Start with custom config
  minos run --config /etc/minos/config.yaml

  # Override listen address
  minos run --listen 0.0.0.0:8080

  # Validate config without starting server
  minos run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.InstallAsDefault()

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Minos v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Metrics
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(metrics.Config{
			Namespace:       cfg.Telemetry.Metrics.Namespace,
			EnableGoMetrics: true,
		})
	}

	// Result store
	var resultStore store.Store
	switch cfg.Storage.Backend {
	case "sqlite":
		resultStore, err = store.NewSQLiteStore(cfg.Storage.Path, logger.Slog())
		if err != nil {
			return fmt.Errorf("failed to open result store: %w", err)
		}
	case "memory":
		resultStore = store.NewMemoryStore()
	default:
		return fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
	defer resultStore.Close()
	fmt.Printf("✓ Result store initialized (%s)\n", cfg.Storage.Backend)

	// Audit trail
	var trail *audit.Trail
	if cfg.Audit.Enabled {
		trail, err = audit.Open(cfg.Audit.Path, logger.Slog())
		if err != nil {
			logger.Warn("failed to open audit trail, continuing without it", "error", err)
		} else {
			defer trail.Close()
			fmt.Println("✓ Audit trail initialized")
		}
	}

	// Judge clients
	semanticClient := semantic.NewClient(judges.Config{
		Name:     "semantic",
		Endpoint: cfg.Judges.Semantic.Endpoint,
		Timeout:  cfg.Judges.Semantic.Timeout,
		Headers:  cfg.Judges.Semantic.Headers,
	}, logger.Slog())
	defer semanticClient.Close()

	engineClient := ruleengine.NewClient(judges.Config{
		Name:     "rule_engine",
		Endpoint: cfg.Judges.RuleEngine.Endpoint,
		Timeout:  cfg.Judges.RuleEngine.Timeout,
		Headers:  cfg.Judges.RuleEngine.Headers,
	}, logger.Slog())
	defer engineClient.Close()
	fmt.Println("✓ Judge clients initialized")

	// Orchestrator
	orchestrator := pipeline.New(pipeline.Config{
		SemanticTimeout: cfg.Judges.Semantic.Timeout,
		EngineTimeout:   cfg.Judges.RuleEngine.Timeout,
	}, semanticClient, engineClient, resultStore, trail, collector, logger.Slog())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Config hot reload: judge endpoints and timeouts follow the file.
	watcher, err := config.NewWatcher(cfgFile, logger.Slog())
	if err != nil {
		logger.Warn("config watcher unavailable, hot reload disabled", "error", err)
	} else {
		go func() {
			watchErr := watcher.Watch(ctx, func() error {
				updated, err := config.LoadConfigWithEnvOverrides(cfgFile)
				if err != nil {
					return fmt.Errorf("reload config: %w", err)
				}
				semanticClient.Reconfigure(judges.Config{
					Endpoint: updated.Judges.Semantic.Endpoint,
					Timeout:  updated.Judges.Semantic.Timeout,
					Headers:  updated.Judges.Semantic.Headers,
				})
				engineClient.Reconfigure(judges.Config{
					Endpoint: updated.Judges.RuleEngine.Endpoint,
					Timeout:  updated.Judges.RuleEngine.Timeout,
					Headers:  updated.Judges.RuleEngine.Headers,
				})
				orchestrator.SetTimeouts(updated.Judges.Semantic.Timeout, updated.Judges.RuleEngine.Timeout)
				logger.Info("judge configuration reloaded", "path", cfgFile)
				return nil
			})
			if watchErr != nil {
				logger.Warn("config watcher stopped", "error", watchErr)
			}
		}()
		defer watcher.Stop()
		fmt.Println("✓ Config watcher started")
	}

	// Retention scheduler
	if cfg.Storage.Retention.GraceDays > 0 && cfg.Storage.Retention.PruneSchedule != "" {
		pruner := retention.NewPruner(resultStore, &retention.Config{
			GraceDays:     cfg.Storage.Retention.GraceDays,
			PruneSchedule: cfg.Storage.Retention.PruneSchedule,
		})
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			logger.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
			fmt.Println("✓ Retention scheduler started")
		}
	}

	// HTTP server
	srv := server.NewServer(&cfg.Server, &cfg.Telemetry.Metrics, server.Dependencies{
		Runner:    orchestrator,
		Store:     resultStore,
		Trail:     trail,
		Collector: collector,
		Judges:    []handlers.JudgeStatus{semanticClient, engineClient},
	})

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	return srv.Start(ctx)
}
