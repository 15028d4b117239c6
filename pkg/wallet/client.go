package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// ClientConfig configures the HTTP wallet client.
type ClientConfig struct {
	// BaseURL is the wallet daemon's REST endpoint.
	BaseURL string

	// APIKey authenticates to the daemon (optional for local daemons).
	APIKey string

	// Timeout is the per-request timeout. Default: 60 seconds; payment
	// settlement can legitimately take a while.
	Timeout time.Duration

	// MaxRetries bounds retries for idempotent calls (Info, Prepare,
	// Receive). Spend is never retried: its outcome would be unknown.
	MaxRetries int

	// MaxIdleConns configures the connection pool. Default: 10.
	MaxIdleConns int
}

// Client is an HTTP client for a wallet daemon's REST API.
type Client struct {
	config ClientConfig
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a wallet client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("wallet: base URL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 10
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConns,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: slog.Default().With("component", "wallet.client"),
	}, nil
}

// Info returns current wallet balances.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.doJSON(ctx, http.MethodGet, "/v1/info", nil, &info, true); err != nil {
		return nil, err
	}
	return &info, nil
}

// Prepare resolves a spend without executing it.
func (c *Client) Prepare(ctx context.Context, destination string, amountSats *int64) (*PreparedSpend, error) {
	req := map[string]interface{}{"destination": destination}
	if amountSats != nil {
		req["amount_sats"] = *amountSats
	}

	var prepared PreparedSpend
	if err := c.doJSON(ctx, http.MethodPost, "/v1/payments/prepare", req, &prepared, true); err != nil {
		return nil, err
	}
	return &prepared, nil
}

// Spend executes a prepared spend. It is never retried: a timed-out
// payment may still settle, and the caller's rollback path plus the
// reservation reaper handle the uncertainty.
func (c *Client) Spend(ctx context.Context, prepared *PreparedSpend) (*Payment, error) {
	var payment Payment
	if err := c.doJSON(ctx, http.MethodPost, "/v1/payments/send", prepared, &payment, false); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Receive creates an invoice.
func (c *Client) Receive(ctx context.Context, amountSats *int64, description string) (*Invoice, error) {
	req := map[string]interface{}{"description": description}
	if amountSats != nil {
		req["amount_sats"] = *amountSats
	}

	var invoice Invoice
	if err := c.doJSON(ctx, http.MethodPost, "/v1/invoices", req, &invoice, true); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// doJSON performs a JSON request against the daemon with optional
// retries and exponential backoff for transient failures.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, respBody interface{}, retryable bool) error {
	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("wallet: failed to marshal request: %w", err)
		}
	}

	retries := 0
	if retryable {
		retries = c.config.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			c.logger.Debug("retrying wallet request",
				"path", path,
				"attempt", attempt,
				"backoff", backoff,
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrWalletUnavailable, ctx.Err())
			}
		}

		err := c.doOnce(ctx, method, path, payload, respBody)
		if err == nil {
			return nil
		}
		lastErr = err

		// Only connection-level trouble is retried; a daemon-reported
		// payment failure is final.
		var spendErr *SpendError
		if !retryable || errors.As(err, &spendErr) {
			return err
		}
	}

	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, respBody interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("wallet: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWalletUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: daemon returned %d", ErrWalletUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var daemonErr struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&daemonErr)
		if daemonErr.Detail == "" {
			daemonErr.Detail = resp.Status
		}
		return &SpendError{Reason: daemonErr.Detail}
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("wallet: failed to decode response: %w", err)
		}
	}
	return nil
}
