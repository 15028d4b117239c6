// Package telemetry groups glow's observability concerns. Structured
// logging lives in the logging subpackage; ledger metrics are
// registered by the ledger package itself and exposed through the
// server's Prometheus endpoint.
package telemetry
