package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// newTestClient creates a client pointed at a test server.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

// TestClient_RequiresBaseURL tests constructor validation.
func TestClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Error("Expected error for missing base URL, got nil")
	}
}

// TestClient_Info tests a successful info call and the auth header.
func TestClient_Info(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/info" {
			t.Errorf("Expected /v1/info, got %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(Info{BalanceSats: 42000, PendingIncomingSats: 100})
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "daemon-key"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	info, err := client.Info(context.Background())
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.BalanceSats != 42000 {
		t.Errorf("Expected balance 42000, got %d", info.BalanceSats)
	}
	if gotAuth != "Bearer daemon-key" {
		t.Errorf("Expected bearer auth, got %q", gotAuth)
	}
}

// TestClient_DaemonError tests that a 4xx response surfaces as a
// SpendError carrying the daemon's detail.
func TestClient_DaemonError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{"detail": "route not found"})
	}))

	_, err := client.Prepare(context.Background(), "lnbc...", nil)
	var spendErr *SpendError
	if !errors.As(err, &spendErr) {
		t.Fatalf("Expected SpendError, got %v", err)
	}
	if spendErr.Reason != "route not found" {
		t.Errorf("Expected daemon detail, got %q", spendErr.Reason)
	}
}

// TestClient_ServerErrorUnavailable tests the 5xx mapping.
func TestClient_ServerErrorUnavailable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Info(context.Background())
	if !errors.Is(err, ErrWalletUnavailable) {
		t.Errorf("Expected ErrWalletUnavailable, got %v", err)
	}
}

// TestClient_RetriesTransientFailure tests that idempotent calls retry
// past a transient 5xx.
func TestClient_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(Info{BalanceSats: 1})
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 2})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	info, err := client.Info(context.Background())
	if err != nil {
		t.Fatalf("Info failed after retry: %v", err)
	}
	if info.BalanceSats != 1 {
		t.Errorf("Expected balance 1, got %d", info.BalanceSats)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 2 attempts, got %d", calls.Load())
	}
}

// TestClient_SpendNeverRetries tests that a failing spend makes exactly
// one attempt even with retries configured.
func TestClient_SpendNeverRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 3})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.Spend(context.Background(), &PreparedSpend{Destination: "lnbc...", AmountSats: 100})
	if !errors.Is(err, ErrWalletUnavailable) {
		t.Errorf("Expected ErrWalletUnavailable, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected a single attempt, got %d", calls.Load())
	}
}

// TestClient_ConnectionRefused tests the network-failure mapping.
func TestClient_ConnectionRefused(t *testing.T) {
	client, err := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1", MaxRetries: 0})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if _, err := client.Info(context.Background()); !errors.Is(err, ErrWalletUnavailable) {
		t.Errorf("Expected ErrWalletUnavailable, got %v", err)
	}
}
