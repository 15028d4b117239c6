package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Config contains configuration for the SQLite database.
type Config struct {
	// Path is the database file path. ":memory:" opens an in-memory
	// database (used by tests).
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// DB wraps the shared SQLite handle.
type DB struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (and if necessary creates) the glow database at the
// configured path, applies the runtime pragmas, and initializes the
// schema.
func Open(cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("storage: db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to open database: %w", err)
	}

	// SQLite supports a single writer. One connection serializes all
	// transactions, which the ledger's check-and-reserve relies on.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &DB{
		db:     db,
		path:   cfg.Path,
		logger: slog.Default().With("component", "storage"),
	}

	if err := s.initialize(cfg.BusyTimeout); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("database opened", "path", cfg.Path)
	return s, nil
}

// initialize applies pragmas, creates the schema, and verifies the
// schema version.
func (s *DB) initialize(busyTimeout time.Duration) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds()),
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("storage: failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("storage: failed to create schema: %w", err)
	}

	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("storage: failed to record schema version: %w", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return fmt.Errorf("storage: failed to read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("storage: schema version mismatch: expected %d, got %d", SchemaVersion, version)
	}

	return nil
}

// Handle returns the underlying *sql.DB for components that own their
// own queries (key store, ledger).
func (s *DB) Handle() *sql.DB {
	return s.db
}

// Close checkpoints the WAL and closes the database.
func (s *DB) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}
