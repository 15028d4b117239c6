package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"glow-hq/glow/pkg/api/middleware"
	"glow-hq/glow/pkg/api/types"
	"glow-hq/glow/pkg/keystore"
	"glow-hq/glow/pkg/ledger"
	"glow-hq/glow/pkg/security/authz"
	"glow-hq/glow/pkg/wallet"
)

// maxBodyBytes caps request bodies. The largest legitimate body is a
// send request with a 2000 character destination.
const maxBodyBytes = 64 * 1024

// credential extracts the API key from the request. X-API-Key wins;
// an Authorization bearer token is accepted for clients that cannot
// set custom headers.
func credential(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &types.ValidationError{Field: "body", Message: "invalid JSON"}
	}
	return nil
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError writes the error envelope with the given status.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, types.ErrorResponse{Detail: detail})
}

// writeDomainError maps domain errors onto HTTP statuses and writes the
// envelope. Internal details never reach the client; anything unmapped
// becomes a plain 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr    *types.ValidationError
		keyValidationErr *keystore.ValidationError
		spendErr         *wallet.SpendError
	)

	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, authz.ErrUnauthenticated.Error())

	case errors.Is(err, authz.ErrForbidden):
		writeError(w, http.StatusForbidden, authz.ErrForbidden.Error())

	case errors.Is(err, authz.ErrAmountTooLarge):
		writeError(w, http.StatusForbidden, authz.ErrAmountTooLarge.Error())

	case errors.Is(err, ledger.ErrBudgetExceeded):
		writeError(w, http.StatusForbidden, ledger.ErrBudgetExceeded.Error())

	case errors.Is(err, keystore.ErrAdminEscalation):
		writeError(w, http.StatusForbidden, keystore.ErrAdminEscalation.Error())

	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())

	case errors.As(err, &keyValidationErr):
		writeError(w, http.StatusBadRequest, keyValidationErr.Error())

	case errors.Is(err, ledger.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, ledger.ErrInvalidAmount.Error())

	case errors.Is(err, keystore.ErrKeyNotFound):
		writeError(w, http.StatusNotFound, "key not found")

	case errors.Is(err, ledger.ErrLedgerUnavailable):
		writeError(w, http.StatusServiceUnavailable, "budget ledger unavailable")

	case errors.Is(err, wallet.ErrWalletUnavailable):
		writeError(w, http.StatusServiceUnavailable, "wallet unavailable")

	case errors.As(err, &spendErr):
		writeError(w, http.StatusBadGateway, spendErr.Error())

	default:
		slog.ErrorContext(r.Context(), "unhandled error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
			"path", r.URL.Path,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// keyResponse converts a record into its public view.
func keyResponse(rec *keystore.Record) types.KeyResponse {
	permissions := make([]string, len(rec.Capabilities))
	for i, c := range rec.Capabilities {
		permissions[i] = string(c)
	}

	var period *string
	if rec.BudgetPeriod != nil {
		p := string(*rec.BudgetPeriod)
		period = &p
	}

	return types.KeyResponse{
		ID:            rec.ID,
		Name:          rec.Name,
		Permissions:   permissions,
		BudgetSats:    rec.BudgetSats,
		BudgetPeriod:  period,
		MaxAmountSats: rec.MaxAmountSats,
		CreatedAt:     rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
