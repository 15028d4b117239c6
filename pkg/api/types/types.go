// Package types defines the request and response bodies of the glow
// HTTP API, plus the error envelope shared by every endpoint.
package types

import "fmt"

const (
	// MaxDestinationLength caps the destination string of a send.
	MaxDestinationLength = 2000

	// MaxDescriptionLength caps invoice descriptions (BOLT11 limit).
	MaxDescriptionLength = 639

	// MaxNameLength caps key display names.
	MaxNameLength = 100
)

// ErrorResponse is the error envelope for all endpoints.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ValidationError reports an invalid request body field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// SendRequest is the body of POST /send. AmountSats may be omitted
// when the destination encodes an amount.
type SendRequest struct {
	Destination string `json:"destination"`
	AmountSats  *int64 `json:"amount_sats,omitempty"`
}

// Validate checks the request fields.
func (r *SendRequest) Validate() error {
	if r.Destination == "" {
		return &ValidationError{Field: "destination", Message: "cannot be empty"}
	}
	if len(r.Destination) > MaxDestinationLength {
		return &ValidationError{Field: "destination", Message: fmt.Sprintf("cannot exceed %d characters", MaxDestinationLength)}
	}
	if r.AmountSats != nil && *r.AmountSats < 1 {
		return &ValidationError{Field: "amount_sats", Message: "must be at least 1"}
	}
	return nil
}

// SendResponse is the body of a successful POST /send.
type SendResponse struct {
	PaymentID  string `json:"payment_id"`
	AmountSats int64  `json:"amount_sats"`
	FeeSats    int64  `json:"fee_sats"`
	Status     string `json:"status"`
}

// ReceiveRequest is the body of POST /receive.
type ReceiveRequest struct {
	AmountSats  *int64 `json:"amount_sats,omitempty"`
	Description string `json:"description,omitempty"`
}

// Validate checks the request fields.
func (r *ReceiveRequest) Validate() error {
	if r.AmountSats != nil && *r.AmountSats < 1 {
		return &ValidationError{Field: "amount_sats", Message: "must be at least 1"}
	}
	if len(r.Description) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Message: fmt.Sprintf("cannot exceed %d characters", MaxDescriptionLength)}
	}
	return nil
}

// CreateKeyRequest is the body of POST /keys.
type CreateKeyRequest struct {
	Name          string   `json:"name"`
	Permissions   []string `json:"permissions,omitempty"`
	BudgetSats    *int64   `json:"budget_sats,omitempty"`
	BudgetPeriod  *string  `json:"budget_period,omitempty"`
	MaxAmountSats *int64   `json:"max_amount_sats,omitempty"`
}

// KeyResponse is the public view of a key record. It never carries the
// key hash or the raw secret.
type KeyResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Permissions   []string `json:"permissions"`
	BudgetSats    *int64   `json:"budget_sats"`
	BudgetPeriod  *string  `json:"budget_period"`
	MaxAmountSats *int64   `json:"max_amount_sats"`
	CreatedAt     string   `json:"created_at"`
}

// CreateKeyResponse is the body of a successful POST /keys. Key holds
// the raw secret and is returned exactly once.
type CreateKeyResponse struct {
	Key string `json:"key"`
	KeyResponse
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string `json:"status"`
	WalletOnline bool   `json:"wallet_online"`
	Timestamp    string `json:"timestamp"`
}
