package keystore

import "errors"

var (
	// ErrKeyNotFound means no record matches the presented credential
	// or id.
	ErrKeyNotFound = errors.New("api key not found")

	// ErrKeyRevoked means the record exists but its active flag is
	// false. API callers must not be able to tell this apart from
	// ErrKeyNotFound; the distinction exists for logging only.
	ErrKeyRevoked = errors.New("api key revoked")

	// ErrAdminEscalation means an authenticated key tried to create a
	// key with the admin capability. Only the provisioning path may do
	// that.
	ErrAdminEscalation = errors.New("admin keys can only be created by the provisioning path")
)

// ValidationError reports invalid key-creation parameters.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}
