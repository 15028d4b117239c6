package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"glow-hq/glow/pkg/cli"
	"glow-hq/glow/pkg/config"
	"glow-hq/glow/pkg/keystore"
	"glow-hq/glow/pkg/ledger"
	"glow-hq/glow/pkg/security/authz"
	"glow-hq/glow/pkg/server"
	"glow-hq/glow/pkg/storage"
	"glow-hq/glow/pkg/telemetry/logging"
	"glow-hq/glow/pkg/wallet"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	watch         bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the glow API server",
	Long: `Start the glow API server with the specified configuration.

The server listens on the configured address and serves the payment
API backed by the configured wallet daemon.

Examples:
  # Start with default config
  glow run

  # Start with custom config
  glow run --config /etc/glow/config.yaml

  # Override listen address
  glow run --listen 0.0.0.0:8080

  # Reload config automatically on file changes
  glow run --watch

  # Validate config without starting the server
  glow run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload configuration on file changes")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

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

	if _, err := logging.Setup(cfg.Telemetry.Logging, os.Stdout); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Glow v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Open storage
	if dir := filepath.Dir(cfg.Storage.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := storage.Open(storage.Config{
		Path:        cfg.Storage.Path,
		BusyTimeout: cfg.Storage.BusyTimeout,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer db.Close()
	fmt.Println("✓ Database opened")

	// Key store and ledger
	keys, err := keystore.NewStore(db)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer keys.Close()

	lgr := ledger.New(db)
	auth := authz.New(keys, lgr)

	// Wallet
	var w wallet.Wallet
	if cfg.Wallet.Dev {
		slog.Warn("using in-memory dev wallet, no real payments will be made")
		w = wallet.NewDevWallet(cfg.Wallet.DevBalanceSats)
	} else {
		w, err = wallet.NewClient(wallet.ClientConfig{
			BaseURL:    cfg.Wallet.BaseURL,
			APIKey:     cfg.Wallet.APIKey,
			Timeout:    cfg.Wallet.Timeout,
			MaxRetries: cfg.Wallet.MaxRetries,
		})
		if err != nil {
			return cli.NewConfigError("wallet", err.Error())
		}
	}
	fmt.Println("✓ Wallet configured")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stale reservation reaper
	reaper := ledger.NewReaper(lgr, ledger.ReaperConfig{
		Schedule: cfg.Ledger.ReapSchedule,
		TTL:      cfg.Ledger.ReservationTTL,
	})
	if err := reaper.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer reaper.Stop()

	// Optional config watcher
	if runFlags.watch {
		watcher, err := config.NewWatcher(cfgFile)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go func() {
			if err := watcher.Watch(ctx, nil); err != nil {
				slog.Error("config watcher exited", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	srv := server.NewServer(&cfg.Server, &cfg.Telemetry.Metrics, auth, keys, w)

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until a signal arrives or the listener fails.
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}
