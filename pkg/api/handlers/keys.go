package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"glow-hq/glow/pkg/api/types"
	"glow-hq/glow/pkg/keystore"
	"glow-hq/glow/pkg/security/authz"
)

// KeysHandler manages API keys over HTTP. All routes require the admin
// capability. Admin-capable keys cannot be minted here; that is the
// provisioning CLI's job.
type KeysHandler struct {
	auth   *authz.Authorizer
	keys   *keystore.Store
	logger *slog.Logger
}

// NewKeysHandler creates a KeysHandler.
func NewKeysHandler(auth *authz.Authorizer, keys *keystore.Store) *KeysHandler {
	return &KeysHandler{
		auth:   auth,
		keys:   keys,
		logger: slog.Default().With("component", "keys"),
	}
}

// ServeHTTP routes /keys and /keys/{id}.
func (h *KeysHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	actx, err := h.auth.AuthorizeAndReserve(r.Context(), credential(r), keystore.CapabilityAdmin, 0, "")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/keys")
	id = strings.Trim(id, "/")

	switch {
	case id == "" && r.Method == http.MethodPost:
		h.create(w, r, actx)
	case id == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case id != "" && r.Method == http.MethodDelete:
		h.revoke(w, r, actx, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *KeysHandler) create(w http.ResponseWriter, r *http.Request, actx *authz.Context) {
	var req types.CreateKeyRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	capabilities := make([]keystore.Capability, 0, len(req.Permissions))
	for _, p := range req.Permissions {
		c, err := keystore.ParseCapability(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		capabilities = append(capabilities, c)
	}

	var period *keystore.Period
	if req.BudgetPeriod != nil {
		p, err := keystore.ParsePeriod(*req.BudgetPeriod)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		period = &p
	}

	created, err := h.keys.Create(r.Context(), keystore.CreateParams{
		Name:          req.Name,
		Capabilities:  capabilities,
		MaxAmountSats: req.MaxAmountSats,
		BudgetSats:    req.BudgetSats,
		BudgetPeriod:  period,
		RequestedBy:   actx.Record,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.logger.Info("key created via api",
		"key_id", created.Record.ID,
		"created_by", actx.Record.ID,
	)

	writeJSON(w, http.StatusCreated, types.CreateKeyResponse{
		Key:         created.Secret,
		KeyResponse: keyResponse(created.Record),
	})
}

func (h *KeysHandler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.keys.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]types.KeyResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, keyResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *KeysHandler) revoke(w http.ResponseWriter, r *http.Request, actx *authz.Context, id string) {
	// A key revoking itself would strand in-flight work under a dead
	// credential, so the last admin key can only be removed via the CLI.
	if id == actx.Record.ID {
		writeError(w, http.StatusBadRequest, "cannot revoke the key used for this request")
		return
	}

	if err := h.keys.Revoke(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.logger.Info("key revoked via api",
		"key_id", id,
		"revoked_by", actx.Record.ID,
	)

	w.WriteHeader(http.StatusNoContent)
}
