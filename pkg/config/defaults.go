package config

import "time"

// Default values for server configuration.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 120 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20
)

// Default values for storage configuration.
const (
	DefaultStoragePath = "data/glow.db"
	DefaultBusyTimeout = 5 * time.Second
)

// Default values for wallet configuration.
const (
	DefaultWalletTimeout    = 60 * time.Second
	DefaultWalletMaxRetries = 3
	DefaultDevBalanceSats   = 100000
)

// Default values for ledger configuration.
const (
	DefaultReapSchedule   = "*/5 * * * *"
	DefaultReservationTTL = 15 * time.Minute
)

// Default values for telemetry configuration.
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultMetricsPath = "/metrics"
)

// ApplyDefaults fills in default values for any configuration field
// that was not set. It modifies the config in place.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyStorageDefaults(&cfg.Storage)
	applyWalletDefaults(&cfg.Wallet)
	applyLedgerDefaults(&cfg.Ledger)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.MaxHeaderBytes == 0 {
		cfg.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
}

func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.Path == "" {
		cfg.Path = DefaultStoragePath
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = DefaultBusyTimeout
	}
}

func applyWalletDefaults(cfg *WalletConfig) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultWalletTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultWalletMaxRetries
	}
	if cfg.DevBalanceSats == 0 {
		cfg.DevBalanceSats = DefaultDevBalanceSats
	}
}

func applyLedgerDefaults(cfg *LedgerConfig) {
	if cfg.ReapSchedule == "" {
		cfg.ReapSchedule = DefaultReapSchedule
	}
	if cfg.ReservationTTL == 0 {
		cfg.ReservationTTL = DefaultReservationTTL
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Path = DefaultMetricsPath
	}
}
