/*
Package authz composes credential resolution, capability checking, and
budget reservation into the single authorization decision the HTTP
layer consumes.

# Request Flow

For every authenticated operation:

	actx, err := authorizer.AuthorizeAndReserve(ctx, credential, keystore.CapabilitySend, amount, "send")
	if err != nil {
	    // map to 401 / 403 per the error taxonomy below
	}
	defer authorizer.Finalize(ctx, actx, authz.OutcomeFailure)

	// ... call the wallet ...
	actx.Outcome = authz.OutcomeSuccess

The ordering is fixed: resolve key, check capability, check the
per-operation amount cap, reserve budget, and only then run the
external operation. Budget is committed only for operations that
actually completed; every other exit path, including panics and client
disconnects, rolls the reservation back through the deferred Finalize.

# Error Taxonomy

ErrUnauthenticated covers both unknown and revoked credentials; callers
must not be able to distinguish the two. It also covers store failures
during resolution (fail closed). ErrForbidden means the key lacks the
required capability. ErrAmountTooLarge means the stateless per-spend
cap was hit before any budget check. Ledger errors (ErrBudgetExceeded,
ErrLedgerUnavailable) pass through untouched.
*/
package authz
