package storage

// SchemaVersion is the current database schema version.
// Opening a database created with a different version is an error.
const SchemaVersion = 1

// Schema contains the DDL for all glow tables.
//
// Timestamps are stored as Unix seconds. Capability sets are stored as
// JSON arrays. The partial index on key_hash covers the hot lookup path
// (resolving an active key by its hashed credential); revoked keys fall
// out of the index the moment is_active flips.
const Schema = `
CREATE TABLE IF NOT EXISTS api_keys (
	id              TEXT PRIMARY KEY,
	key_hash        TEXT NOT NULL UNIQUE,
	name            TEXT NOT NULL,
	permissions     TEXT NOT NULL,
	max_amount_sats INTEGER,
	budget_sats     INTEGER,
	budget_period   TEXT,
	is_active       INTEGER NOT NULL DEFAULT 1,
	created_at      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_api_keys_active_hash
	ON api_keys(key_hash) WHERE is_active = 1;

CREATE TABLE IF NOT EXISTS budget_usage (
	id           TEXT PRIMARY KEY,
	api_key_id   TEXT NOT NULL REFERENCES api_keys(id) ON DELETE CASCADE,
	amount_sats  INTEGER NOT NULL,
	operation    TEXT NOT NULL,
	period_start INTEGER NOT NULL,
	created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_budget_usage_key_period
	ON budget_usage(api_key_id, period_start);

CREATE TABLE IF NOT EXISTS budget_reservations (
	id           TEXT PRIMARY KEY,
	api_key_id   TEXT NOT NULL REFERENCES api_keys(id) ON DELETE CASCADE,
	amount_sats  INTEGER NOT NULL,
	operation    TEXT NOT NULL,
	period_start INTEGER NOT NULL,
	created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_budget_reservations_key_period
	ON budget_reservations(api_key_id, period_start);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);
`

// insertSchemaVersion records the schema version on first initialization.
const insertSchemaVersion = `
INSERT INTO schema_version (version)
SELECT ? WHERE NOT EXISTS (SELECT 1 FROM schema_version)
`

// getSchemaVersion reads the recorded schema version.
const getSchemaVersion = `SELECT version FROM schema_version LIMIT 1`
