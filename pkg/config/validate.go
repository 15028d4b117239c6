package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for errors. It returns a combined
// error describing every problem found, or nil when the configuration
// is usable.
func Validate(cfg *Config) error {
	var errs []string

	if err := validateServer(&cfg.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(&cfg.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWallet(&cfg.Wallet); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLedger(&cfg.Ledger); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTelemetry(&cfg.Telemetry); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.ListenAddress == "" {
		return fmt.Errorf("server.listen_address cannot be empty")
	}
	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		return fmt.Errorf("server.listen_address %q is not a valid host:port: %w", cfg.ListenAddress, err)
	}
	if cfg.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout cannot be negative")
	}
	if cfg.WriteTimeout < 0 {
		return fmt.Errorf("server.write_timeout cannot be negative")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return fmt.Errorf("server.max_header_bytes must be positive")
	}
	return nil
}

func validateStorage(cfg *StorageConfig) error {
	if cfg.Path == "" {
		return fmt.Errorf("storage.path cannot be empty")
	}
	if cfg.BusyTimeout <= 0 {
		return fmt.Errorf("storage.busy_timeout must be positive")
	}
	return nil
}

func validateWallet(cfg *WalletConfig) error {
	if cfg.Dev {
		if cfg.DevBalanceSats < 0 {
			return fmt.Errorf("wallet.dev_balance_sats cannot be negative")
		}
		return nil
	}

	if cfg.BaseURL == "" {
		return fmt.Errorf("wallet.base_url is required (or set wallet.dev: true)")
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return fmt.Errorf("wallet.base_url %q must start with http:// or https://", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("wallet.timeout must be positive")
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("wallet.max_retries cannot be negative")
	}
	return nil
}

func validateLedger(cfg *LedgerConfig) error {
	if _, err := cron.ParseStandard(cfg.ReapSchedule); err != nil {
		return fmt.Errorf("ledger.reap_schedule %q is not a valid cron expression: %w", cfg.ReapSchedule, err)
	}
	if cfg.ReservationTTL <= 0 {
		return fmt.Errorf("ledger.reservation_ttl must be positive")
	}
	return nil
}

func validateTelemetry(cfg *TelemetryConfig) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level %q is invalid (use debug, info, warn, or error)", cfg.Logging.Level)
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format %q is invalid (use json or text)", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("telemetry.metrics.path %q must start with /", cfg.Metrics.Path)
	}

	return nil
}
