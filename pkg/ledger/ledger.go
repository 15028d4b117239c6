package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"glow-hq/glow/pkg/keystore"
	"glow-hq/glow/pkg/storage"
)

// Ledger tracks committed and provisional spend per key per period.
//
// All cross-request coordination happens through the store's
// transactional guarantees; the ledger holds no in-memory counters.
type Ledger struct {
	db      *sql.DB
	logger  *slog.Logger
	metrics *Metrics

	// now is replaced in tests to pin period boundaries.
	now func() time.Time
}

// New creates a budget ledger backed by db.
func New(db *storage.DB) *Ledger {
	return &Ledger{
		db:      db.Handle(),
		logger:  slog.Default().With("component", "ledger"),
		metrics: ledgerMetrics(),
		now:     time.Now,
	}
}

// Reserve atomically checks amountSats against the key's remaining
// budget for the current period and places a provisional hold.
//
// For keys without a budget it returns a no-op handle without touching
// the store; callers still enforce the per-operation max amount
// separately. On store failure it fails closed with
// ErrLedgerUnavailable.
func (l *Ledger) Reserve(ctx context.Context, rec *keystore.Record, amountSats int64, operation string) (*Reservation, error) {
	if amountSats <= 0 {
		return nil, ErrInvalidAmount
	}

	if !rec.HasBudget() {
		l.metrics.reserveChecks.WithLabelValues("no_budget").Inc()
		return &Reservation{
			KeyID:      rec.ID,
			AmountSats: amountSats,
			Operation:  operation,
			noop:       true,
		}, nil
	}

	timer := time.Now()
	defer func() {
		l.metrics.reserveDuration.Observe(time.Since(timer).Seconds())
	}()

	periodStart := PeriodStart(*rec.BudgetPeriod, l.now())

	// The pool holds a single connection, so this transaction owns the
	// database until it commits; the sum and the insert are atomic with
	// respect to every other Reserve.
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, l.unavailable("begin", err)
	}
	defer tx.Rollback()

	spent, err := sumTx(ctx, tx, "budget_usage", rec.ID, periodStart)
	if err != nil {
		return nil, l.unavailable("sum usage", err)
	}
	pending, err := sumTx(ctx, tx, "budget_reservations", rec.ID, periodStart)
	if err != nil {
		return nil, l.unavailable("sum reservations", err)
	}

	if spent+pending+amountSats > *rec.BudgetSats {
		l.metrics.reserveChecks.WithLabelValues("denied").Inc()
		l.logger.Warn("budget exceeded",
			"key_id", rec.ID,
			"period", string(*rec.BudgetPeriod),
			"requested_sats", amountSats,
		)
		return nil, ErrBudgetExceeded
	}

	res := &Reservation{
		ID:          uuid.NewString(),
		KeyID:       rec.ID,
		AmountSats:  amountSats,
		Operation:   operation,
		PeriodStart: periodStart,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO budget_reservations (id, api_key_id, amount_sats, operation, period_start, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, res.ID, res.KeyID, res.AmountSats, res.Operation, res.PeriodStart.Unix(), l.now().Unix())
	if err != nil {
		return nil, l.unavailable("insert reservation", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, l.unavailable("commit", err)
	}

	l.metrics.reserveChecks.WithLabelValues("reserved").Inc()
	return res, nil
}

// Commit finalizes a reservation: the provisional row is consumed and
// the permanent usage row is written, both in one transaction. Handles
// are single-use; committing a handle that was already committed,
// rolled back, or reaped returns ErrReservationSpent and writes
// nothing.
func (l *Ledger) Commit(ctx context.Context, res *Reservation) error {
	if res.noop {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger: commit begin failed: %w", err)
	}
	defer tx.Rollback()

	// Consuming the provisional row is the single-use check: whoever
	// deletes it owns the right to insert the usage row.
	result, err := tx.ExecContext(ctx,
		`DELETE FROM budget_reservations WHERE id = ?`, res.ID)
	if err != nil {
		return fmt.Errorf("ledger: commit failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger: commit failed: %w", err)
	}
	if affected == 0 {
		return ErrReservationSpent
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO budget_usage (id, api_key_id, amount_sats, operation, period_start, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), res.KeyID, res.AmountSats, res.Operation, res.PeriodStart.Unix(), l.now().Unix())
	if err != nil {
		return fmt.Errorf("ledger: commit failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ledger: commit failed: %w", err)
	}

	l.metrics.commits.Inc()
	l.metrics.commitedSats.Add(float64(res.AmountSats))
	return nil
}

// Rollback releases a provisional hold. It is idempotent: rolling back
// twice, or rolling back a handle that was never persisted, succeeds.
// It never creates a usage row.
func (l *Ledger) Rollback(ctx context.Context, res *Reservation) error {
	if res.noop {
		return nil
	}

	result, err := l.db.ExecContext(ctx,
		`DELETE FROM budget_reservations WHERE id = ?`, res.ID)
	if err != nil {
		return fmt.Errorf("ledger: rollback failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger: rollback failed: %w", err)
	}
	if affected > 0 {
		l.metrics.rollbacks.Inc()
	}
	return nil
}

// Spent returns the committed spend for a key within the window
// starting at periodStart.
func (l *Ledger) Spent(ctx context.Context, keyID string, periodStart time.Time) (int64, error) {
	var total int64
	err := l.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_sats), 0) FROM budget_usage
		WHERE api_key_id = ? AND period_start = ?
	`, keyID, periodStart.Unix()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("ledger: spent query failed: %w", err)
	}
	return total, nil
}

// ReapStale deletes pending reservations created more than ttl ago and
// returns how many were removed. Abandoned holds (caller died between
// Reserve and Commit/Rollback) stop pinning budget once reaped.
func (l *Ledger) ReapStale(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := l.now().Add(-ttl).Unix()
	result, err := l.db.ExecContext(ctx,
		`DELETE FROM budget_reservations WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("ledger: reap failed: %w", err)
	}
	reaped, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ledger: reap failed: %w", err)
	}
	if reaped > 0 {
		l.metrics.reaped.Add(float64(reaped))
		l.logger.Warn("reaped stale budget reservations", "count", reaped)
	}
	return reaped, nil
}

// unavailable wraps a storage error into the fail-closed sentinel.
func (l *Ledger) unavailable(op string, err error) error {
	l.metrics.reserveChecks.WithLabelValues("unavailable").Inc()
	l.logger.Error("ledger store unavailable, denying spend", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %v", ErrLedgerUnavailable, op, err)
}

func sumTx(ctx context.Context, tx *sql.Tx, table, keyID string, periodStart time.Time) (int64, error) {
	var total int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_sats), 0) FROM `+table+` WHERE api_key_id = ? AND period_start = ?`,
		keyID, periodStart.Unix()).Scan(&total)
	return total, err
}
