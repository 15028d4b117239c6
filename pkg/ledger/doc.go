/*
Package ledger enforces per-key spending budgets over rolling calendar
windows.

# Reservation Lifecycle

Money-moving operations go through three steps:

	res, err := ledger.Reserve(ctx, record, amount, "send")
	// ... perform the external payment ...
	if paymentOK {
	    err = ledger.Commit(ctx, res)
	} else {
	    err = ledger.Rollback(ctx, res)
	}

Reserve atomically checks the committed usage plus all pending
reservations for the key's current period against the configured
budget, and inserts a provisional reservation row when the spend fits.
Two concurrent requests that are each within budget but together would
exceed it can never both pass: the check-and-insert runs inside a
single transaction on the single SQLite write connection.

Commit consumes the provisional row and writes the permanent usage row.
Handles are single-use: a second Commit fails instead of double
counting. Rollback deletes the provisional row and is idempotent; a
rolled-back reservation never produces a usage row.

# Period Windows

The current period start is recomputed from the wall clock on every
call: daily windows start at midnight UTC, weekly windows at midnight
UTC of the most recent Monday, monthly windows at midnight UTC of the
1st. No window identifier is ever stored, so every node evaluating the
same instant attributes spend to the same window.

# Failure Semantics

Budget enforcement fails closed. If the store is unreachable during
Reserve the operation is denied (ErrLedgerUnavailable), never
permitted.

# Stale Reservations

A request that dies between Reserve and Commit/Rollback would otherwise
pin budget forever. The Reaper deletes pending reservations older than
a configurable TTL on a cron schedule.
*/
package ledger
