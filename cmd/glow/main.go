// Glow is a personal Lightning payment API.
//
// It fronts a Lightning wallet daemon with an HTTP API protected by
// API keys, capability permissions, and rolling spend budgets, so that
// scripts and agents can hold a narrowly scoped credential instead of
// full wallet access.
//
// Usage:
//
//	# Start the server with default configuration
//	glow run
//
//	# Start with a custom configuration file
//	glow run --config /etc/glow/config.yaml
//
//	# Provision the first admin key
//	glow keys create --name "admin" --permissions admin
//
//	# List active keys
//	glow keys list
//
//	# Show version information
//	glow version
package main

func main() {
	Execute()
}
