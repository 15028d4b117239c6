package wallet

import (
	"context"
	"errors"
	"fmt"
)

// ErrWalletUnavailable means the wallet daemon could not be reached.
var ErrWalletUnavailable = errors.New("wallet unavailable")

// SpendError is a payment failure reported by the wallet daemon.
type SpendError struct {
	Reason string
}

func (e *SpendError) Error() string {
	return fmt.Sprintf("payment failed: %s", e.Reason)
}

// Info is a snapshot of the wallet's balances.
type Info struct {
	BalanceSats         int64 `json:"balance_sats"`
	PendingIncomingSats int64 `json:"pending_incoming_sats"`
	PendingOutgoingSats int64 `json:"pending_outgoing_sats"`
	MaxPayableSats      int64 `json:"max_payable_sats"`
	MaxReceivableSats   int64 `json:"max_receivable_sats"`
}

// PreparedSpend is a spend that the wallet has resolved but not yet
// executed. AmountSats is the effective amount, including amounts
// decoded from the destination when the caller left it unset.
type PreparedSpend struct {
	Destination string `json:"destination"`
	AmountSats  int64  `json:"amount_sats"`
	FeeSats     int64  `json:"fee_sats"`

	// ProviderRef is the daemon's opaque handle for the prepared
	// payment; it is passed back verbatim on Spend.
	ProviderRef string `json:"provider_ref,omitempty"`
}

// Payment is the result of an executed spend.
type Payment struct {
	ID         string `json:"payment_id"`
	AmountSats int64  `json:"amount_sats"`
	FeeSats    int64  `json:"fee_sats"`
}

// Invoice is a payment request created by Receive.
type Invoice struct {
	PaymentRequest string `json:"payment_request"`
	FeeSats        int64  `json:"fee_sats"`
}

// Wallet is the interface to the Lightning wallet daemon. All calls
// may block on network I/O; implementations honor ctx cancellation.
type Wallet interface {
	// Info returns current balances.
	Info(ctx context.Context) (*Info, error)

	// Prepare resolves a spend without executing it. amountSats may be
	// nil when the destination encodes an amount.
	Prepare(ctx context.Context, destination string, amountSats *int64) (*PreparedSpend, error)

	// Spend executes a prepared spend.
	Spend(ctx context.Context, prepared *PreparedSpend) (*Payment, error)

	// Receive creates an invoice for the given amount (nil for any
	// amount) and description.
	Receive(ctx context.Context, amountSats *int64, description string) (*Invoice, error)
}
