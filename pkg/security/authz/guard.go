package authz

import (
	"errors"

	"glow-hq/glow/pkg/keystore"
)

var (
	// ErrUnauthenticated means the credential resolved to nothing
	// usable: unknown, revoked, or the store could not be asked.
	// Deliberately undifferentiated.
	ErrUnauthenticated = errors.New("invalid API key")

	// ErrForbidden means the key is valid but lacks the required
	// capability.
	ErrForbidden = errors.New("missing capability")

	// ErrAmountTooLarge means the spend exceeds the key's
	// per-operation amount cap.
	ErrAmountTooLarge = errors.New("amount exceeds per-transaction limit")
)

// Authorize checks whether the record's capability set contains the
// required capability. The set is flat: no capability implies another.
func Authorize(rec *keystore.Record, required keystore.Capability) error {
	if !rec.Has(required) {
		return ErrForbidden
	}
	return nil
}
