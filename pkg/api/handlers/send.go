package handlers

import (
	"log/slog"
	"net/http"

	"glow-hq/glow/pkg/api/middleware"
	"glow-hq/glow/pkg/api/types"
	"glow-hq/glow/pkg/keystore"
	"glow-hq/glow/pkg/security/authz"
	"glow-hq/glow/pkg/wallet"
)

// SendHandler executes outgoing payments under budget enforcement.
//
// The order of operations matters: the wallet first resolves the
// effective amount (destinations may encode one), only then is budget
// reserved, and only under a live reservation does the payment execute.
// The reservation commits when the wallet confirms and rolls back on
// any other exit, including panics, via the deferred Finalize.
type SendHandler struct {
	auth   *authz.Authorizer
	wallet wallet.Wallet
	logger *slog.Logger
}

// NewSendHandler creates a SendHandler.
func NewSendHandler(auth *authz.Authorizer, w wallet.Wallet) *SendHandler {
	return &SendHandler{
		auth:   auth,
		wallet: w,
		logger: slog.Default().With("component", "send"),
	}
}

// ServeHTTP handles POST /send.
func (h *SendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actx, err := h.auth.AuthorizeAndReserve(r.Context(), credential(r), keystore.CapabilitySend, 0, "")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req types.SendRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	// Resolve the effective amount before touching the budget.
	prepared, err := h.wallet.Prepare(r.Context(), req.Destination, req.AmountSats)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.auth.Reserve(r.Context(), actx, prepared.AmountSats, "send"); err != nil {
		h.logger.Warn("send refused",
			"key_id", actx.Record.ID,
			"amount_sats", prepared.AmountSats,
			"error", err,
		)
		writeDomainError(w, r, err)
		return
	}
	defer h.auth.Finalize(r.Context(), actx)

	payment, err := h.wallet.Spend(r.Context(), prepared)
	if err != nil {
		// Outcome stays failure; the deferred Finalize rolls back.
		h.logger.Warn("payment failed",
			"key_id", actx.Record.ID,
			"amount_sats", prepared.AmountSats,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		writeDomainError(w, r, err)
		return
	}

	actx.Outcome = authz.OutcomeSuccess

	h.logger.Info("payment sent",
		"key_id", actx.Record.ID,
		"payment_id", payment.ID,
		"amount_sats", payment.AmountSats,
		"fee_sats", payment.FeeSats,
	)

	writeJSON(w, http.StatusOK, types.SendResponse{
		PaymentID:  payment.ID,
		AmountSats: payment.AmountSats,
		FeeSats:    payment.FeeSats,
		Status:     "complete",
	})
}
