package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"glow-hq/glow/pkg/api/types"
	"glow-hq/glow/pkg/wallet"
)

// walletProbeTimeout bounds the health check's wallet probe so a hung
// daemon cannot hang the endpoint.
const walletProbeTimeout = 5 * time.Second

// HealthHandler reports process liveness and wallet reachability.
type HealthHandler struct {
	wallet wallet.Wallet
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(w wallet.Wallet) *HealthHandler {
	return &HealthHandler{
		wallet: w,
		logger: slog.Default().With("component", "health"),
	}
}

// ServeHTTP handles GET /health. No authentication: the response leaks
// nothing beyond reachability.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), walletProbeTimeout)
	defer cancel()

	walletOnline := true
	if _, err := h.wallet.Info(ctx); err != nil {
		walletOnline = false
		h.logger.Warn("wallet probe failed", "error", err)
	}

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:       "ok",
		WalletOnline: walletOnline,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}
