package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "glow",
	Short: "Glow - personal Lightning payment API",
	Long: `Glow is a personal Lightning payment API.

It fronts a Lightning wallet daemon with an HTTP API, providing:
  - API key authentication with capability permissions
  - Rolling daily/weekly/monthly spend budgets per key
  - Per-payment amount caps
  - A provisioning CLI for admin keys

Agents and scripts get a credential scoped to exactly what they need;
the wallet's own credentials never leave this process.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
