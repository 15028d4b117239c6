// Package server wires the glow HTTP API together: routes, middleware,
// graceful shutdown, and the Prometheus metrics endpoint.
package server
