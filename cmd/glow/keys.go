package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"glow-hq/glow/pkg/cli"
	"glow-hq/glow/pkg/config"
	"glow-hq/glow/pkg/keystore"
	"glow-hq/glow/pkg/storage"
)

var keysFlags struct {
	name          string
	permissions   []string
	maxAmountSats int64
	budgetSats    int64
	budgetPeriod  string
	format        string
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys",
	Long: `Create, list, revoke, and delete API keys.

This is the trusted provisioning path: unlike the HTTP API it may mint
keys with the admin capability, because whoever can run this command
already has the database file.

Subcommands:
  create - Create a new API key
  list   - List active keys
  revoke - Deactivate a key
  delete - Hard-delete a key and its usage history

Examples:
  # Provision the first admin key
  glow keys create --name "admin" --permissions admin

  # Create a scoped agent key with a daily budget
  glow keys create --name "agent" --permissions balance,receive,send \
    --budget-sats 10000 --budget-period daily --max-amount-sats 5000

  # List active keys as JSON
  glow keys list --format json`,
}

var keysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new API key",
	Long: `Create a new API key and print its secret.

The secret is shown exactly once; only its hash is stored. A budget
requires both --budget-sats and --budget-period.`,
	RunE: createKey,
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active keys",
	RunE:  listKeysCmd,
}

var keysRevokeCmd = &cobra.Command{
	Use:   "revoke <key-id>",
	Short: "Deactivate a key",
	Long: `Deactivate a key. The key stops authenticating on the next request.
Usage history is kept; use delete to remove it.`,
	Args: cobra.ExactArgs(1),
	RunE: revokeKey,
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <key-id>",
	Short: "Hard-delete a key and its usage history",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteKey,
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysCreateCmd, keysListCmd, keysRevokeCmd, keysDeleteCmd)

	keysCreateCmd.Flags().StringVar(&keysFlags.name, "name", "", "display name for the key (required)")
	keysCreateCmd.Flags().StringSliceVar(&keysFlags.permissions, "permissions", nil,
		"comma-separated capabilities (balance, receive, send, admin); default balance,receive")
	keysCreateCmd.Flags().Int64Var(&keysFlags.maxAmountSats, "max-amount-sats", 0, "cap on any single payment")
	keysCreateCmd.Flags().Int64Var(&keysFlags.budgetSats, "budget-sats", 0, "rolling spend budget")
	keysCreateCmd.Flags().StringVar(&keysFlags.budgetPeriod, "budget-period", "", "budget window: daily, weekly, monthly")
	_ = keysCreateCmd.MarkFlagRequired("name")

	keysListCmd.Flags().StringVar(&keysFlags.format, "format", "text", "output format: text, json")
}

// openKeystore opens the configured database and key store for a CLI
// command. The returned close function releases both.
func openKeystore() (*keystore.Store, func(), error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, nil, cli.NewConfigError("", err.Error())
	}

	db, err := storage.Open(storage.Config{
		Path:        cfg.Storage.Path,
		BusyTimeout: cfg.Storage.BusyTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	keys, err := keystore.NewStore(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return keys, func() {
		keys.Close()
		db.Close()
	}, nil
}

func createKey(cmd *cobra.Command, args []string) error {
	keys, closeFn, err := openKeystore()
	if err != nil {
		return err
	}
	defer closeFn()

	params := keystore.CreateParams{
		Name: keysFlags.name,
		// RequestedBy stays nil: the CLI is the provisioning path and
		// may grant admin.
	}
	for _, p := range keysFlags.permissions {
		c, err := keystore.ParseCapability(strings.TrimSpace(p))
		if err != nil {
			return cli.NewConfigError("permissions", err.Error())
		}
		params.Capabilities = append(params.Capabilities, c)
	}
	if keysFlags.maxAmountSats > 0 {
		params.MaxAmountSats = &keysFlags.maxAmountSats
	}
	if keysFlags.budgetSats > 0 {
		params.BudgetSats = &keysFlags.budgetSats
	}
	if keysFlags.budgetPeriod != "" {
		period, err := keystore.ParsePeriod(keysFlags.budgetPeriod)
		if err != nil {
			return cli.NewConfigError("budget-period", err.Error())
		}
		params.BudgetPeriod = &period
	}

	created, err := keys.Create(context.Background(), params)
	if err != nil {
		return cli.NewCommandError("keys create", err)
	}

	fmt.Printf("Key ID:  %s\n", created.Record.ID)
	fmt.Printf("Name:    %s\n", created.Record.Name)
	fmt.Printf("Permissions: %s\n", joinCapabilities(created.Record.Capabilities))
	if created.Record.BudgetSats != nil {
		fmt.Printf("Budget:  %d sats per %s window\n", *created.Record.BudgetSats, *created.Record.BudgetPeriod)
	}
	if created.Record.MaxAmountSats != nil {
		fmt.Printf("Max payment: %d sats\n", *created.Record.MaxAmountSats)
	}
	fmt.Println()
	fmt.Printf("API key: %s\n", created.Secret)
	fmt.Println()
	fmt.Println("⚠️  This key is shown once and cannot be recovered. Store it securely.")

	return nil
}

// keyListing is the list command's output row.
type keyListing struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Permissions  []string `json:"permissions"`
	BudgetSats   *int64   `json:"budget_sats,omitempty"`
	BudgetPeriod string   `json:"budget_period,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

func listKeysCmd(cmd *cobra.Command, args []string) error {
	keys, closeFn, err := openKeystore()
	if err != nil {
		return err
	}
	defer closeFn()

	records, err := keys.List(context.Background())
	if err != nil {
		return cli.NewCommandError("keys list", err)
	}

	if keysFlags.format == string(cli.FormatJSON) {
		listings := make([]keyListing, 0, len(records))
		for _, rec := range records {
			l := keyListing{
				ID:         rec.ID,
				Name:       rec.Name,
				BudgetSats: rec.BudgetSats,
				CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
			}
			for _, c := range rec.Capabilities {
				l.Permissions = append(l.Permissions, string(c))
			}
			if rec.BudgetPeriod != nil {
				l.BudgetPeriod = string(*rec.BudgetPeriod)
			}
			listings = append(listings, l)
		}
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, listings)
	}

	if len(records) == 0 {
		fmt.Println("No active keys.")
		return nil
	}
	for _, rec := range records {
		budget := "-"
		if rec.BudgetSats != nil && rec.BudgetPeriod != nil {
			budget = fmt.Sprintf("%d/%s", *rec.BudgetSats, *rec.BudgetPeriod)
		}
		fmt.Printf("%s  %-20s  %-30s  budget=%s  created=%s\n",
			rec.ID,
			rec.Name,
			joinCapabilities(rec.Capabilities),
			budget,
			rec.CreatedAt.Format("2006-01-02"),
		)
	}
	return nil
}

func revokeKey(cmd *cobra.Command, args []string) error {
	keys, closeFn, err := openKeystore()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := keys.Revoke(context.Background(), args[0]); err != nil {
		return cli.NewCommandError("keys revoke", err)
	}
	fmt.Printf("✓ Key %s revoked\n", args[0])
	return nil
}

func deleteKey(cmd *cobra.Command, args []string) error {
	keys, closeFn, err := openKeystore()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := keys.Delete(context.Background(), args[0]); err != nil {
		return cli.NewCommandError("keys delete", err)
	}
	fmt.Printf("✓ Key %s deleted\n", args[0])
	return nil
}

func joinCapabilities(caps []keystore.Capability) string {
	parts := make([]string, len(caps))
	for i, c := range caps {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}
