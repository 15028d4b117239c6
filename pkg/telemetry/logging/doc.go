// Package logging configures structured logging for glow.
//
// Logs are emitted through log/slog. Setup installs the process-wide
// default logger from configuration; packages obtain component loggers
// via slog.Default().With("component", ...).
//
// Credential material must never reach the logs. The redactor scrubs
// anything that looks like an API key or bearer token as a last line
// of defense; the primary defense is that no code path logs secrets in
// the first place.
package logging
