// Package config provides configuration management for glow.
//
// Configuration is loaded from a YAML file, defaults are applied for
// any omitted field, environment variables of the form
// GLOW_SECTION_FIELD override the file, and the result is validated
// before use.
//
// # Loading Sequence
//
//  1. Read and parse the YAML file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate the final configuration
//
// # Sections
//
//   - server: listen address, timeouts, header limits
//   - storage: SQLite database path and busy timeout
//   - wallet: wallet daemon endpoint, credentials, retry policy
//   - ledger: stale reservation reaping
//   - telemetry: logging level and format, metrics
//
// # Global Access
//
// Initialize loads the configuration once at startup; GetConfig returns
// the singleton afterwards. Tests should construct Config values
// directly instead of going through the singleton.
package config
