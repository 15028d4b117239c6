package keystore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"glow-hq/glow/pkg/storage"
)

// maxNameLength caps key display names.
const maxNameLength = 100

// Store persists API key records in the shared SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	resolveStmt *sql.Stmt
	getStmt     *sql.Stmt
	insertStmt  *sql.Stmt
	revokeStmt  *sql.Stmt
	deleteStmt  *sql.Stmt
	listStmt    *sql.Stmt
}

// NewStore creates a key store backed by db.
func NewStore(db *storage.DB) (*Store, error) {
	s := &Store{
		db:     db.Handle(),
		logger: slog.Default().With("component", "keystore"),
	}
	if err := s.prepareStatements(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) prepareStatements() error {
	var err error

	const columns = `id, key_hash, name, permissions, max_amount_sats, budget_sats, budget_period, is_active, created_at`

	s.resolveStmt, err = s.db.Prepare(`SELECT ` + columns + ` FROM api_keys WHERE key_hash = ?`)
	if err != nil {
		return fmt.Errorf("keystore: failed to prepare resolve statement: %w", err)
	}

	s.getStmt, err = s.db.Prepare(`SELECT ` + columns + ` FROM api_keys WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("keystore: failed to prepare get statement: %w", err)
	}

	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO api_keys (id, key_hash, name, permissions, max_amount_sats, budget_sats, budget_period, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
	`)
	if err != nil {
		return fmt.Errorf("keystore: failed to prepare insert statement: %w", err)
	}

	s.revokeStmt, err = s.db.Prepare(`UPDATE api_keys SET is_active = 0 WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("keystore: failed to prepare revoke statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`DELETE FROM api_keys WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("keystore: failed to prepare delete statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`SELECT ` + columns + ` FROM api_keys WHERE is_active = 1 ORDER BY created_at`)
	if err != nil {
		return fmt.Errorf("keystore: failed to prepare list statement: %w", err)
	}

	return nil
}

// Resolve looks up the key record matching a hashed credential.
// It returns ErrKeyNotFound when no record matches and ErrKeyRevoked
// when the record exists but is inactive. There is no caching layer,
// so a revoked key fails on the very next request.
func (s *Store) Resolve(ctx context.Context, keyHash string) (*Record, error) {
	rec, err := scanRecord(s.resolveStmt.QueryRowContext(ctx, keyHash))
	if err == sql.ErrNoRows {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("keystore: resolve failed: %w", err)
	}
	if !rec.Active {
		return nil, ErrKeyRevoked
	}
	return rec, nil
}

// Get returns the record with the given id, active or not.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := scanRecord(s.getStmt.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("keystore: get failed: %w", err)
	}
	return rec, nil
}

// CreateParams are the inputs to Create.
type CreateParams struct {
	// Name is the display name for the key.
	Name string

	// Capabilities is the requested capability set. Empty defaults to
	// {balance, receive}.
	Capabilities []Capability

	// MaxAmountSats caps any single send, independent of the budget.
	MaxAmountSats *int64

	// BudgetSats and BudgetPeriod configure the rolling spend budget.
	// BudgetSats requires BudgetPeriod.
	BudgetSats   *int64
	BudgetPeriod *Period

	// RequestedBy is the authenticated key performing the creation, or
	// nil when creation happens through the trusted provisioning path.
	RequestedBy *Record
}

// Create generates a secret, persists its hash with the requested
// attributes, and returns the record together with the raw secret. The
// secret is not recoverable afterwards.
//
// When RequestedBy is non-nil the admin capability is refused with
// ErrAdminEscalation no matter what capabilities the requesting key
// holds.
func (s *Store) Create(ctx context.Context, params CreateParams) (*NewKey, error) {
	if err := validateParams(&params); err != nil {
		return nil, err
	}

	secret, err := GenerateKey()
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID:            uuid.NewString(),
		KeyHash:       HashKey(secret),
		Name:          params.Name,
		Capabilities:  params.Capabilities,
		MaxAmountSats: params.MaxAmountSats,
		BudgetSats:    params.BudgetSats,
		BudgetPeriod:  params.BudgetPeriod,
		Active:        true,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}

	permissions, err := json.Marshal(rec.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("keystore: failed to marshal capabilities: %w", err)
	}

	var periodVal interface{}
	if rec.BudgetPeriod != nil {
		periodVal = string(*rec.BudgetPeriod)
	}

	_, err = s.insertStmt.ExecContext(ctx,
		rec.ID,
		rec.KeyHash,
		rec.Name,
		string(permissions),
		rec.MaxAmountSats,
		rec.BudgetSats,
		periodVal,
		rec.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("keystore: failed to insert key: %w", err)
	}

	s.logger.Info("api key created",
		"key_id", rec.ID,
		"name", rec.Name,
		"capabilities", rec.Capabilities,
	)

	return &NewKey{Record: rec, Secret: secret}, nil
}

// Revoke flips the active flag off. Revoking an already-inactive key
// succeeds so that callers cannot probe revocation state; an unknown id
// returns ErrKeyNotFound.
func (s *Store) Revoke(ctx context.Context, id string) error {
	result, err := s.revokeStmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("keystore: revoke failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("keystore: revoke failed: %w", err)
	}
	if affected == 0 {
		return ErrKeyNotFound
	}

	s.logger.Info("api key revoked", "key_id", id)
	return nil
}

// Delete hard-deletes a key. Usage and reservation rows cascade.
// Only the provisioning CLI calls this.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.deleteStmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("keystore: delete failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("keystore: delete failed: %w", err)
	}
	if affected == 0 {
		return ErrKeyNotFound
	}

	s.logger.Info("api key deleted", "key_id", id)
	return nil
}

// List returns all active keys ordered by creation time. Hashes are
// part of the returned records but must never leave the process;
// handlers expose only the public fields.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.listStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("keystore: list failed: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("keystore: list scan failed: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("keystore: list failed: %w", err)
	}
	return records, nil
}

// Close releases prepared statements.
func (s *Store) Close() error {
	for _, stmt := range []*sql.Stmt{
		s.resolveStmt, s.getStmt, s.insertStmt, s.revokeStmt, s.deleteStmt, s.listStmt,
	} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}

func validateParams(params *CreateParams) error {
	if params.Name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if len(params.Name) > maxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("cannot exceed %d characters", maxNameLength)}
	}

	if len(params.Capabilities) == 0 {
		params.Capabilities = []Capability{CapabilityBalance, CapabilityReceive}
	}
	seen := make(map[Capability]bool, len(params.Capabilities))
	for _, c := range params.Capabilities {
		if _, err := ParseCapability(string(c)); err != nil {
			return &ValidationError{Field: "permissions", Message: err.Error()}
		}
		if seen[c] {
			return &ValidationError{Field: "permissions", Message: fmt.Sprintf("duplicate capability %q", c)}
		}
		seen[c] = true
	}

	if params.RequestedBy != nil && seen[CapabilityAdmin] {
		return ErrAdminEscalation
	}

	if params.MaxAmountSats != nil && *params.MaxAmountSats <= 0 {
		return &ValidationError{Field: "max_amount_sats", Message: "must be positive"}
	}
	if params.BudgetSats != nil {
		if *params.BudgetSats <= 0 {
			return &ValidationError{Field: "budget_sats", Message: "must be positive"}
		}
		if params.BudgetPeriod == nil {
			return &ValidationError{Field: "budget_period", Message: "required when budget_sats is set"}
		}
	}
	if params.BudgetPeriod != nil {
		if _, err := ParsePeriod(string(*params.BudgetPeriod)); err != nil {
			return &ValidationError{Field: "budget_period", Message: err.Error()}
		}
	}

	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec         Record
		permissions string
		period      sql.NullString
		maxAmount   sql.NullInt64
		budget      sql.NullInt64
		active      int
		createdAt   int64
	)

	err := row.Scan(
		&rec.ID,
		&rec.KeyHash,
		&rec.Name,
		&permissions,
		&maxAmount,
		&budget,
		&period,
		&active,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(permissions), &rec.Capabilities); err != nil {
		return nil, fmt.Errorf("corrupt permissions for key %s: %w", rec.ID, err)
	}
	if maxAmount.Valid {
		rec.MaxAmountSats = &maxAmount.Int64
	}
	if budget.Valid {
		rec.BudgetSats = &budget.Int64
	}
	if period.Valid {
		p := Period(period.String)
		rec.BudgetPeriod = &p
	}
	rec.Active = active == 1
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &rec, nil
}
