package handlers

import (
	"log/slog"
	"net/http"

	"glow-hq/glow/pkg/api/types"
	"glow-hq/glow/pkg/keystore"
	"glow-hq/glow/pkg/security/authz"
	"glow-hq/glow/pkg/wallet"
)

// ReceiveHandler creates invoices. Receiving never spends, so the
// budget ledger is not involved.
type ReceiveHandler struct {
	auth   *authz.Authorizer
	wallet wallet.Wallet
	logger *slog.Logger
}

// NewReceiveHandler creates a ReceiveHandler.
func NewReceiveHandler(auth *authz.Authorizer, w wallet.Wallet) *ReceiveHandler {
	return &ReceiveHandler{
		auth:   auth,
		wallet: w,
		logger: slog.Default().With("component", "receive"),
	}
}

// ServeHTTP handles POST /receive.
func (h *ReceiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actx, err := h.auth.AuthorizeAndReserve(r.Context(), credential(r), keystore.CapabilityReceive, 0, "")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req types.ReceiveRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	invoice, err := h.wallet.Receive(r.Context(), req.AmountSats, req.Description)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.logger.Info("invoice created", "key_id", actx.Record.ID)
	writeJSON(w, http.StatusOK, invoice)
}
