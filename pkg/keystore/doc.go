/*
Package keystore manages API key records: creation, lookup by hashed
credential, revocation, and listing.

# Capabilities

Every key carries a flat set of capabilities drawn from {balance,
receive, send, admin}. The set is closed and membership is exact:
admin does not imply the other capabilities and no capability implies
admin. Keeping the set flat is what makes the escalation rule below
auditable by inspection.

# Escalation Prevention

Keys are created through one of two paths:

  - The trusted provisioning path (the glow CLI talking directly to the
    store, with no requesting key). This path may grant any capability,
    including admin.
  - The authenticated key-management API, where an admin-capable key
    creates keys for other clients. This path can never grant admin,
    regardless of the requesting key's own capabilities: an admin key
    can create and revoke keys but cannot mint another admin key.

# Secrets

The raw secret is 32 bytes of cryptographic randomness, base64url
encoded. Only its SHA-256 digest is persisted; the raw value is
returned exactly once from Create and never logged.
*/
package keystore
