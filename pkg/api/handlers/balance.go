package handlers

import (
	"log/slog"
	"net/http"

	"glow-hq/glow/pkg/keystore"
	"glow-hq/glow/pkg/security/authz"
	"glow-hq/glow/pkg/wallet"
)

// BalanceHandler serves wallet balance snapshots.
type BalanceHandler struct {
	auth   *authz.Authorizer
	wallet wallet.Wallet
	logger *slog.Logger
}

// NewBalanceHandler creates a BalanceHandler.
func NewBalanceHandler(auth *authz.Authorizer, w wallet.Wallet) *BalanceHandler {
	return &BalanceHandler{
		auth:   auth,
		wallet: w,
		logger: slog.Default().With("component", "balance"),
	}
}

// ServeHTTP handles GET /balance.
func (h *BalanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	_, err := h.auth.AuthorizeAndReserve(r.Context(), credential(r), keystore.CapabilityBalance, 0, "")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	info, err := h.wallet.Info(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}
