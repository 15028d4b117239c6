package wallet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DevWallet is an in-memory wallet for tests and --dev runs. It keeps
// a fake balance, accepts destinations of the form "dev:<sats>" (amount
// encoded in the destination, exercising the amount-resolution path),
// and can be told to fail the next spend.
type DevWallet struct {
	mu          sync.Mutex
	balanceSats int64
	failNext    bool
	payments    []*Payment
}

// NewDevWallet creates a dev wallet with the given starting balance.
func NewDevWallet(balanceSats int64) *DevWallet {
	return &DevWallet{balanceSats: balanceSats}
}

// FailNextSpend makes the next Spend call fail with a SpendError.
func (w *DevWallet) FailNextSpend() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failNext = true
}

// Payments returns all executed payments, oldest first.
func (w *DevWallet) Payments() []*Payment {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*Payment(nil), w.payments...)
}

// Info returns the fake balance snapshot.
func (w *DevWallet) Info(ctx context.Context) (*Info, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return &Info{
		BalanceSats:       w.balanceSats,
		MaxPayableSats:    w.balanceSats,
		MaxReceivableSats: 1_000_000_000,
	}, nil
}

// Prepare resolves the effective amount: an explicit amount wins,
// otherwise "dev:<sats>" destinations decode it.
func (w *DevWallet) Prepare(ctx context.Context, destination string, amountSats *int64) (*PreparedSpend, error) {
	amount, err := resolveDevAmount(destination, amountSats)
	if err != nil {
		return nil, err
	}
	return &PreparedSpend{
		Destination: destination,
		AmountSats:  amount,
		FeeSats:     1,
		ProviderRef: uuid.NewString(),
	}, nil
}

// Spend executes the prepared spend against the fake balance.
func (w *DevWallet) Spend(ctx context.Context, prepared *PreparedSpend) (*Payment, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.failNext {
		w.failNext = false
		return nil, &SpendError{Reason: "simulated payment failure"}
	}

	total := prepared.AmountSats + prepared.FeeSats
	if total > w.balanceSats {
		return nil, &SpendError{Reason: "insufficient balance"}
	}
	w.balanceSats -= total

	payment := &Payment{
		ID:         uuid.NewString(),
		AmountSats: prepared.AmountSats,
		FeeSats:    prepared.FeeSats,
	}
	w.payments = append(w.payments, payment)
	return payment, nil
}

// Receive hands back a fake invoice.
func (w *DevWallet) Receive(ctx context.Context, amountSats *int64, description string) (*Invoice, error) {
	return &Invoice{
		PaymentRequest: "lndev1" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		FeeSats:        0,
	}, nil
}

func resolveDevAmount(destination string, amountSats *int64) (int64, error) {
	if amountSats != nil {
		if *amountSats <= 0 {
			return 0, &SpendError{Reason: "amount must be positive"}
		}
		return *amountSats, nil
	}
	if rest, ok := strings.CutPrefix(destination, "dev:"); ok {
		amount, err := strconv.ParseInt(rest, 10, 64)
		if err == nil && amount > 0 {
			return amount, nil
		}
	}
	return 0, &SpendError{Reason: fmt.Sprintf("could not determine payment amount for %q", destination)}
}
