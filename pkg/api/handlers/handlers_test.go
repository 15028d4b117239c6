package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"glow-hq/glow/pkg/api/types"
	"glow-hq/glow/pkg/keystore"
	"glow-hq/glow/pkg/ledger"
	"glow-hq/glow/pkg/security/authz"
	"glow-hq/glow/pkg/storage"
	"glow-hq/glow/pkg/wallet"
)

// testEnv wires real storage, keystore, ledger, and authorizer around a
// dev wallet so handlers are exercised end to end.
type testEnv struct {
	keys   *keystore.Store
	auth   *authz.Authorizer
	wallet *wallet.DevWallet
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := storage.Open(storage.Config{
		Path: filepath.Join(t.TempDir(), "handlers.db"),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	keys, err := keystore.NewStore(db)
	if err != nil {
		t.Fatalf("failed to create key store: %v", err)
	}
	t.Cleanup(func() { keys.Close() })

	lgr := ledger.New(db)
	return &testEnv{
		keys:   keys,
		auth:   authz.New(keys, lgr),
		wallet: wallet.NewDevWallet(1_000_000),
	}
}

// createKey provisions a key directly through the store, the way the
// CLI would.
func (e *testEnv) createKey(t *testing.T, params keystore.CreateParams) string {
	t.Helper()
	created, err := e.keys.Create(context.Background(), params)
	if err != nil {
		t.Fatalf("failed to create key: %v", err)
	}
	return created.Secret
}

// doJSON performs a request against the handler and decodes the body.
func doJSON(t *testing.T, h http.Handler, method, path, apiKey string, body, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reqBody = bytes.NewBuffer(payload)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 && rec.Code != http.StatusNoContent {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return rec
}

// errorDetail decodes the error envelope.
func errorDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp types.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	return resp.Detail
}

// TestHealthHandler tests the unauthenticated health endpoint.
func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)
	h := NewHealthHandler(env.wallet)

	var resp types.HealthResponse
	rec := doJSON(t, h, http.MethodGet, "/health", "", nil, &resp)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if resp.Status != "ok" {
		t.Errorf("Expected status ok, got %q", resp.Status)
	}
	if !resp.WalletOnline {
		t.Error("Expected wallet_online true")
	}
}

// TestBalanceHandler_Unauthenticated tests the missing-credential path.
func TestBalanceHandler_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)
	h := NewBalanceHandler(env.auth, env.wallet)

	rec := doJSON(t, h, http.MethodGet, "/balance", "", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

// TestBalanceHandler tests a successful balance read.
func TestBalanceHandler(t *testing.T) {
	env := newTestEnv(t)
	h := NewBalanceHandler(env.auth, env.wallet)
	key := env.createKey(t, keystore.CreateParams{Name: "reader"})

	var info wallet.Info
	rec := doJSON(t, h, http.MethodGet, "/balance", key, nil, &info)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if info.BalanceSats != 1_000_000 {
		t.Errorf("Expected balance 1000000, got %d", info.BalanceSats)
	}
}

// TestBalanceHandler_BearerFallback tests Authorization bearer auth.
func TestBalanceHandler_BearerFallback(t *testing.T) {
	env := newTestEnv(t)
	h := NewBalanceHandler(env.auth, env.wallet)
	key := env.createKey(t, keystore.CreateParams{Name: "bearer"})

	req := httptest.NewRequest(http.MethodGet, "/balance", nil)
	req.Header.Set("Authorization", "Bearer "+key)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with bearer token, got %d", rec.Code)
	}
}

// TestSendHandler tests a successful payment.
func TestSendHandler(t *testing.T) {
	env := newTestEnv(t)
	h := NewSendHandler(env.auth, env.wallet)
	key := env.createKey(t, keystore.CreateParams{
		Name:         "payer",
		Capabilities: []keystore.Capability{keystore.CapabilitySend},
	})

	var resp types.SendResponse
	rec := doJSON(t, h, http.MethodPost, "/send", key,
		types.SendRequest{Destination: "dev:2500"}, &resp)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp.AmountSats != 2500 {
		t.Errorf("Expected amount 2500, got %d", resp.AmountSats)
	}
	if resp.Status != "complete" {
		t.Errorf("Expected status complete, got %q", resp.Status)
	}
	if len(env.wallet.Payments()) != 1 {
		t.Errorf("Expected 1 payment, got %d", len(env.wallet.Payments()))
	}
}

// TestSendHandler_CommitsBudget tests that a settled payment consumes
// budget permanently.
func TestSendHandler_CommitsBudget(t *testing.T) {
	env := newTestEnv(t)
	h := NewSendHandler(env.auth, env.wallet)

	budget := int64(5000)
	period := keystore.PeriodDaily
	key := env.createKey(t, keystore.CreateParams{
		Name:         "budgeted",
		Capabilities: []keystore.Capability{keystore.CapabilitySend},
		BudgetSats:   &budget,
		BudgetPeriod: &period,
	})

	rec := doJSON(t, h, http.MethodPost, "/send", key,
		types.SendRequest{Destination: "dev:3000"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// 2000 remains; 2001 must be refused.
	rec = doJSON(t, h, http.MethodPost, "/send", key,
		types.SendRequest{Destination: "dev:2001"}, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 over budget, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/send", key,
		types.SendRequest{Destination: "dev:2000"}, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for remaining budget, got %d: %s", rec.Code, rec.Body.String())
	}
}

// TestSendHandler_RollsBackOnWalletFailure tests that a failed payment
// returns its reservation to the budget.
func TestSendHandler_RollsBackOnWalletFailure(t *testing.T) {
	env := newTestEnv(t)
	h := NewSendHandler(env.auth, env.wallet)

	budget := int64(5000)
	period := keystore.PeriodDaily
	key := env.createKey(t, keystore.CreateParams{
		Name:         "unlucky",
		Capabilities: []keystore.Capability{keystore.CapabilitySend},
		BudgetSats:   &budget,
		BudgetPeriod: &period,
	})

	env.wallet.FailNextSpend()
	rec := doJSON(t, h, http.MethodPost, "/send", key,
		types.SendRequest{Destination: "dev:4000"}, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502 on wallet failure, got %d: %s", rec.Code, rec.Body.String())
	}

	// The full budget is available again.
	rec = doJSON(t, h, http.MethodPost, "/send", key,
		types.SendRequest{Destination: "dev:5000"}, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected rollback to free the budget, got %d: %s", rec.Code, rec.Body.String())
	}
}

// TestSendHandler_AmountCap tests the per-operation cap with the
// amount resolved from the destination.
func TestSendHandler_AmountCap(t *testing.T) {
	env := newTestEnv(t)
	h := NewSendHandler(env.auth, env.wallet)

	maxAmount := int64(1000)
	key := env.createKey(t, keystore.CreateParams{
		Name:          "capped",
		Capabilities:  []keystore.Capability{keystore.CapabilitySend},
		MaxAmountSats: &maxAmount,
	})

	rec := doJSON(t, h, http.MethodPost, "/send", key,
		types.SendRequest{Destination: "dev:1001"}, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 over cap, got %d", rec.Code)
	}
	if len(env.wallet.Payments()) != 0 {
		t.Error("Expected no payment past the cap")
	}
}

// TestSendHandler_MissingCapability tests that read-only keys cannot send.
func TestSendHandler_MissingCapability(t *testing.T) {
	env := newTestEnv(t)
	h := NewSendHandler(env.auth, env.wallet)
	key := env.createKey(t, keystore.CreateParams{Name: "reader"})

	rec := doJSON(t, h, http.MethodPost, "/send", key,
		types.SendRequest{Destination: "dev:100"}, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rec.Code)
	}
}

// TestSendHandler_Validation tests request body validation.
func TestSendHandler_Validation(t *testing.T) {
	env := newTestEnv(t)
	h := NewSendHandler(env.auth, env.wallet)
	key := env.createKey(t, keystore.CreateParams{
		Name:         "payer",
		Capabilities: []keystore.Capability{keystore.CapabilitySend},
	})

	rec := doJSON(t, h, http.MethodPost, "/send", key,
		types.SendRequest{Destination: ""}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty destination, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader("{not json"))
	req.Header.Set("X-API-Key", key)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed JSON, got %d", w.Code)
	}
}

// TestReceiveHandler tests invoice creation.
func TestReceiveHandler(t *testing.T) {
	env := newTestEnv(t)
	h := NewReceiveHandler(env.auth, env.wallet)
	key := env.createKey(t, keystore.CreateParams{Name: "inbound"})

	amount := int64(1500)
	var invoice wallet.Invoice
	rec := doJSON(t, h, http.MethodPost, "/receive", key,
		types.ReceiveRequest{AmountSats: &amount, Description: "coffee"}, &invoice)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if invoice.PaymentRequest == "" {
		t.Error("Expected a payment request")
	}
}

// TestReceiveHandler_Validation tests amount validation.
func TestReceiveHandler_Validation(t *testing.T) {
	env := newTestEnv(t)
	h := NewReceiveHandler(env.auth, env.wallet)
	key := env.createKey(t, keystore.CreateParams{Name: "inbound"})

	amount := int64(0)
	rec := doJSON(t, h, http.MethodPost, "/receive", key,
		types.ReceiveRequest{AmountSats: &amount}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for zero amount, got %d", rec.Code)
	}
}

// adminKey provisions an admin-capable key the way the CLI does.
func adminKey(t *testing.T, env *testEnv) (string, string) {
	t.Helper()
	created, err := env.keys.Create(context.Background(), keystore.CreateParams{
		Name:         "admin",
		Capabilities: []keystore.Capability{keystore.CapabilityAdmin},
	})
	if err != nil {
		t.Fatalf("failed to create admin key: %v", err)
	}
	return created.Secret, created.Record.ID
}

// TestKeysHandler_Create tests key creation over HTTP.
func TestKeysHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	h := NewKeysHandler(env.auth, env.keys)
	admin, _ := adminKey(t, env)

	budget := int64(10000)
	periodName := "weekly"
	var resp types.CreateKeyResponse
	rec := doJSON(t, h, http.MethodPost, "/keys", admin, types.CreateKeyRequest{
		Name:         "agent",
		Permissions:  []string{"balance", "send"},
		BudgetSats:   &budget,
		BudgetPeriod: &periodName,
	}, &resp)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp.Key == "" {
		t.Error("Expected the raw secret in the create response")
	}
	if len(resp.Permissions) != 2 {
		t.Errorf("Expected 2 permissions, got %v", resp.Permissions)
	}
	if resp.BudgetSats == nil || *resp.BudgetSats != 10000 {
		t.Errorf("Expected budget 10000, got %v", resp.BudgetSats)
	}

	// The minted key works immediately.
	if _, err := env.keys.Resolve(context.Background(), keystore.HashKey(resp.Key)); err != nil {
		t.Errorf("Expected minted key to resolve, got %v", err)
	}
}

// TestKeysHandler_AdminEscalationRefused tests that admin keys cannot
// be minted over HTTP.
func TestKeysHandler_AdminEscalationRefused(t *testing.T) {
	env := newTestEnv(t)
	h := NewKeysHandler(env.auth, env.keys)
	admin, _ := adminKey(t, env)

	rec := doJSON(t, h, http.MethodPost, "/keys", admin, types.CreateKeyRequest{
		Name:        "sneaky",
		Permissions: []string{"admin"},
	}, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for admin escalation, got %d", rec.Code)
	}
}

// TestKeysHandler_NonAdminRefused tests the capability gate on /keys.
func TestKeysHandler_NonAdminRefused(t *testing.T) {
	env := newTestEnv(t)
	h := NewKeysHandler(env.auth, env.keys)
	key := env.createKey(t, keystore.CreateParams{Name: "plain"})

	rec := doJSON(t, h, http.MethodGet, "/keys", key, nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rec.Code)
	}
}

// TestKeysHandler_List tests listing active keys.
func TestKeysHandler_List(t *testing.T) {
	env := newTestEnv(t)
	h := NewKeysHandler(env.auth, env.keys)
	admin, _ := adminKey(t, env)
	env.createKey(t, keystore.CreateParams{Name: "one"})
	env.createKey(t, keystore.CreateParams{Name: "two"})

	var out []types.KeyResponse
	rec := doJSON(t, h, http.MethodGet, "/keys", admin, nil, &out)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if len(out) != 3 {
		t.Errorf("Expected 3 keys, got %d", len(out))
	}
}

// TestKeysHandler_Revoke tests revocation over HTTP.
func TestKeysHandler_Revoke(t *testing.T) {
	env := newTestEnv(t)
	h := NewKeysHandler(env.auth, env.keys)
	admin, _ := adminKey(t, env)

	created, err := env.keys.Create(context.Background(), keystore.CreateParams{Name: "doomed"})
	if err != nil {
		t.Fatalf("failed to create key: %v", err)
	}

	rec := doJSON(t, h, http.MethodDelete, "/keys/"+created.Record.ID, admin, nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	// The revoked credential no longer resolves.
	if _, err := env.keys.Resolve(context.Background(), keystore.HashKey(created.Secret)); err == nil {
		t.Error("Expected revoked key to stop resolving")
	}
}

// TestKeysHandler_SelfRevokeRefused tests that a key cannot revoke itself.
func TestKeysHandler_SelfRevokeRefused(t *testing.T) {
	env := newTestEnv(t)
	h := NewKeysHandler(env.auth, env.keys)
	admin, adminID := adminKey(t, env)

	rec := doJSON(t, h, http.MethodDelete, "/keys/"+adminID, admin, nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for self revocation, got %d", rec.Code)
	}
	if detail := errorDetail(t, rec); !strings.Contains(detail, "cannot revoke") {
		t.Errorf("Expected self-revocation detail, got %q", detail)
	}
}

// TestKeysHandler_RevokeUnknown tests the not-found path.
func TestKeysHandler_RevokeUnknown(t *testing.T) {
	env := newTestEnv(t)
	h := NewKeysHandler(env.auth, env.keys)
	admin, _ := adminKey(t, env)

	rec := doJSON(t, h, http.MethodDelete, "/keys/no-such-id", admin, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}
