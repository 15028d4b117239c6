/*
Package storage provides the shared SQLite database used by the key
store and the budget ledger.

The database is opened once at startup and handed to both components.
It runs in WAL mode with a busy timeout and foreign keys enabled, and
the connection pool is capped at a single connection: SQLite only
supports one writer, and the single connection is what serializes the
ledger's check-and-reserve transactions across goroutines.

# Basic Usage

	db, err := storage.Open(storage.Config{Path: "data/glow.db"})
	if err != nil {
	    log.Fatal(err)
	}
	defer db.Close()

The schema is created on first open and versioned through the
schema_version table. Opening a database with an unexpected schema
version fails rather than migrating silently.
*/
package storage
