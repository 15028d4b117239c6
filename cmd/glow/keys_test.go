package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"glow-hq/glow/pkg/keystore"
	"glow-hq/glow/pkg/storage"
)

// setupTestConfig writes a config pointing storage at a temp database
// and points the CLI at it.
func setupTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "glow.db")
	cfgPath := filepath.Join(dir, "config.yaml")

	content := fmt.Sprintf("storage:\n  path: %q\nwallet:\n  dev: true\n", dbPath)
	if err := os.WriteFile(cfgPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	origCfgFile := cfgFile
	cfgFile = cfgPath
	t.Cleanup(func() { cfgFile = origCfgFile })

	return dbPath
}

func TestCreateKeyCommand(t *testing.T) {
	dbPath := setupTestConfig(t)

	keysFlags.name = "test-agent"
	keysFlags.permissions = []string{"balance", "send"}
	keysFlags.maxAmountSats = 5000
	keysFlags.budgetSats = 10000
	keysFlags.budgetPeriod = "daily"
	defer func() {
		keysFlags.name = ""
		keysFlags.permissions = nil
		keysFlags.maxAmountSats = 0
		keysFlags.budgetSats = 0
		keysFlags.budgetPeriod = ""
	}()

	if err := createKey(nil, nil); err != nil {
		t.Fatalf("createKey() error = %v", err)
	}

	// Verify the key landed in the database
	db, err := storage.Open(storage.Config{Path: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	keys, err := keystore.NewStore(db)
	if err != nil {
		t.Fatal(err)
	}
	defer keys.Close()

	records, err := keys.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 key, got %d", len(records))
	}
	rec := records[0]
	if rec.Name != "test-agent" {
		t.Errorf("Name = %q, want %q", rec.Name, "test-agent")
	}
	if len(rec.Capabilities) != 2 {
		t.Errorf("Expected 2 capabilities, got %v", rec.Capabilities)
	}
	if rec.BudgetSats == nil || *rec.BudgetSats != 10000 {
		t.Errorf("Expected budget 10000, got %v", rec.BudgetSats)
	}
}

func TestCreateKeyCommandAdminAllowed(t *testing.T) {
	// The CLI is the provisioning path; admin keys are allowed here
	setupTestConfig(t)

	keysFlags.name = "admin"
	keysFlags.permissions = []string{"admin"}
	defer func() { keysFlags.name = ""; keysFlags.permissions = nil }()

	if err := createKey(nil, nil); err != nil {
		t.Fatalf("createKey() error = %v", err)
	}
}

func TestCreateKeyCommandBadPermission(t *testing.T) {
	setupTestConfig(t)

	keysFlags.name = "broken"
	keysFlags.permissions = []string{"launch-missiles"}
	defer func() { keysFlags.name = ""; keysFlags.permissions = nil }()

	if err := createKey(nil, nil); err == nil {
		t.Error("Expected error for unknown permission, got nil")
	}
}

func TestRevokeKeyCommand(t *testing.T) {
	dbPath := setupTestConfig(t)

	// Seed a key directly
	db, err := storage.Open(storage.Config{Path: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	keys, err := keystore.NewStore(db)
	if err != nil {
		t.Fatal(err)
	}
	created, err := keys.Create(context.Background(), keystore.CreateParams{Name: "doomed"})
	if err != nil {
		t.Fatal(err)
	}
	keys.Close()
	db.Close()

	if err := revokeKey(nil, []string{created.Record.ID}); err != nil {
		t.Fatalf("revokeKey() error = %v", err)
	}

	if err := revokeKey(nil, []string{"no-such-id"}); err == nil {
		t.Error("Expected error for unknown key, got nil")
	}
}
