package authz

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"glow-hq/glow/pkg/keystore"
	"glow-hq/glow/pkg/ledger"
)

// Outcome is the result of the external operation a reservation was
// held for.
type Outcome int

const (
	// OutcomeFailure rolls the reservation back.
	OutcomeFailure Outcome = iota
	// OutcomeSuccess commits the reservation.
	OutcomeSuccess
)

// Context is the per-request authorization result: the resolved key,
// the capability that was granted, and the open budget reservation for
// spend-classified operations. It is owned by one request and never
// outlives it.
type Context struct {
	Record      *keystore.Record
	Capability  keystore.Capability
	Reservation *ledger.Reservation

	// Outcome is set by the handler once the external operation's
	// result is known. It defaults to failure so that abandoned
	// contexts roll back.
	Outcome Outcome

	finalizeOnce sync.Once
}

// Authorizer combines the key store and the budget ledger into the
// composite check the HTTP layer calls.
type Authorizer struct {
	keys   *keystore.Store
	ledger *ledger.Ledger
	logger *slog.Logger
}

// New creates an Authorizer.
func New(keys *keystore.Store, lgr *ledger.Ledger) *Authorizer {
	return &Authorizer{
		keys:   keys,
		ledger: lgr,
		logger: slog.Default().With("component", "authz"),
	}
}

// AuthorizeAndReserve authorizes a request end to end: hash the
// credential, resolve the key, check the capability, and, when
// amountSats is positive (a spend-classified operation), check the
// per-operation cap and reserve budget.
//
// Unknown and revoked credentials both surface as ErrUnauthenticated,
// as do store failures during resolution; budget errors pass through
// from the ledger.
func (a *Authorizer) AuthorizeAndReserve(ctx context.Context, credential string, required keystore.Capability, amountSats int64, operation string) (*Context, error) {
	rec, err := a.keys.Resolve(ctx, keystore.HashKey(credential))
	if err != nil {
		switch {
		case errors.Is(err, keystore.ErrKeyNotFound):
			a.logger.Warn("authentication failed", "reason", "unknown key")
		case errors.Is(err, keystore.ErrKeyRevoked):
			a.logger.Warn("authentication failed", "reason", "revoked key")
		default:
			// Store trouble: deny rather than guess.
			a.logger.Error("key resolution failed, denying request", "error", err)
		}
		return nil, ErrUnauthenticated
	}

	if err := Authorize(rec, required); err != nil {
		a.logger.Warn("authorization failed",
			"key_id", rec.ID,
			"required", string(required),
		)
		return nil, err
	}

	actx := &Context{
		Record:     rec,
		Capability: required,
	}

	if amountSats > 0 {
		if err := a.Reserve(ctx, actx, amountSats, operation); err != nil {
			return nil, err
		}
	}

	return actx, nil
}

// Reserve checks the per-operation amount cap and places a budget hold
// on an already-authorized context. Handlers that only learn the
// effective amount after the wallet resolves it (invoices with encoded
// amounts) call this separately from AuthorizeAndReserve.
func (a *Authorizer) Reserve(ctx context.Context, actx *Context, amountSats int64, operation string) error {
	rec := actx.Record
	if rec.MaxAmountSats != nil && amountSats > *rec.MaxAmountSats {
		return ErrAmountTooLarge
	}

	res, err := a.ledger.Reserve(ctx, rec, amountSats, operation)
	if err != nil {
		return err
	}
	actx.Reservation = res
	return nil
}

// Finalize settles the context's reservation according to its Outcome:
// commit on success, rollback on anything else. It runs at most once
// per context, so handlers can defer it unconditionally and still set
// the outcome late.
//
// The passed ctx may already be cancelled (client gone); Finalize must
// still settle the hold, so it detaches from the caller's cancellation.
func (a *Authorizer) Finalize(ctx context.Context, actx *Context) {
	if actx == nil || actx.Reservation == nil {
		return
	}

	actx.finalizeOnce.Do(func() {
		settleCtx := context.WithoutCancel(ctx)

		var err error
		if actx.Outcome == OutcomeSuccess {
			err = a.ledger.Commit(settleCtx, actx.Reservation)
		} else {
			err = a.ledger.Rollback(settleCtx, actx.Reservation)
		}
		if err != nil {
			// The reaper will expire the hold if this ever happens.
			a.logger.Error("failed to settle reservation",
				"key_id", actx.Record.ID,
				"reservation_id", actx.Reservation.ID,
				"outcome", actx.Outcome,
				"error", err,
			)
		}
	})
}
