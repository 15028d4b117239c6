package ledger

import (
	"errors"
	"time"
)

var (
	// ErrBudgetExceeded means the prospective spend would push the
	// period total over the configured budget. Nothing was reserved.
	ErrBudgetExceeded = errors.New("budget exceeded")

	// ErrLedgerUnavailable means the store could not be consulted.
	// Callers must treat it as a denial, never as permission.
	ErrLedgerUnavailable = errors.New("budget ledger unavailable")

	// ErrReservationSpent means Commit was called on a handle that was
	// already committed, rolled back, or reaped.
	ErrReservationSpent = errors.New("reservation already spent")

	// ErrInvalidAmount means the requested amount was zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Reservation is a provisional hold against a key's budget. It carries
// everything Commit and Rollback need so that neither has to re-derive
// the window.
//
// A reservation with no backing row (key without a budget) is a no-op
// handle: Commit and Rollback succeed without touching the store.
type Reservation struct {
	// ID is the provisional row id; empty for no-op handles.
	ID string

	// KeyID is the owning API key.
	KeyID string

	// AmountSats is the reserved amount.
	AmountSats int64

	// Operation labels the spend in the usage record.
	Operation string

	// PeriodStart is the window the reservation was attributed to.
	PeriodStart time.Time

	noop bool
}

// NoOp reports whether the reservation holds no budget (the key has no
// budget configured).
func (r *Reservation) NoOp() bool {
	return r.noop
}
