package config

import "time"

// Config is the root configuration structure for glow. It contains all
// configuration sections for the HTTP server, storage, the wallet
// daemon connection, the budget ledger, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen
	// address, timeouts, and header limits.
	Server ServerConfig `yaml:"server"`

	// Storage contains SQLite database configuration.
	Storage StorageConfig `yaml:"storage"`

	// Wallet contains wallet daemon connection configuration.
	Wallet WalletConfig `yaml:"wallet"`

	// Ledger contains budget ledger configuration.
	Ledger LedgerConfig `yaml:"ledger"`

	// Telemetry contains observability configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire
	// request, including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response. Lightning payments can take a while to route, so
	// this needs headroom over the wallet timeout.
	// Default: 120s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request when
	// keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before forcing it.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes caps the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// StorageConfig contains SQLite database configuration. Keys, budget
// usage, and reservations share one database file.
type StorageConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/glow.db"
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// WalletConfig contains wallet daemon connection configuration.
type WalletConfig struct {
	// BaseURL is the base URL of the wallet daemon's REST API.
	// Example: "http://127.0.0.1:9737"
	// Required unless Dev is true.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates glow to the wallet daemon.
	// This should typically be loaded from an environment variable.
	APIKey string `yaml:"api_key"`

	// Timeout is the maximum duration for wallet daemon requests.
	// Payments may legitimately take most of this.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the maximum number of retry attempts for failed
	// idempotent requests. Spends are never retried.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// Dev replaces the wallet daemon with an in-memory wallet. For
	// local development only; no real payments are made.
	// Default: false
	Dev bool `yaml:"dev"`

	// DevBalanceSats is the starting balance of the dev wallet.
	// Default: 100000
	DevBalanceSats int64 `yaml:"dev_balance_sats"`
}

// LedgerConfig contains budget ledger configuration.
type LedgerConfig struct {
	// ReapSchedule is a cron expression for sweeping stale
	// reservations left behind by crashed requests.
	// Default: "*/5 * * * *" (every 5 minutes)
	ReapSchedule string `yaml:"reap_schedule"`

	// ReservationTTL is the age after which a pending reservation is
	// considered abandoned and released. It must comfortably exceed
	// the longest possible payment attempt.
	// Default: 15m
	ReservationTTL time.Duration `yaml:"reservation_ttl"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics endpoint configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics endpoint configuration.
type MetricsConfig struct {
	// Enabled controls whether the Prometheus endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
