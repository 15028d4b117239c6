// Package handlers implements the HTTP endpoints of the glow API.
//
// # Endpoints
//
//   - GET  /health    liveness plus wallet reachability, unauthenticated
//   - GET  /balance   wallet balances, requires the balance capability
//   - POST /receive   create an invoice, requires the receive capability
//   - POST /send      pay a destination, requires the send capability
//   - POST /keys      create an API key, requires the admin capability
//   - GET  /keys      list active keys, requires the admin capability
//   - DELETE /keys/{id}  revoke a key, requires the admin capability
//
// # Authentication
//
// Authentication happens inside each handler rather than in middleware
// because the send path can only reserve budget after the wallet has
// resolved the effective amount. Credentials arrive in the X-API-Key
// header or as an Authorization bearer token.
//
// # Errors
//
// Every error is the {"detail": "..."} envelope. Missing, unknown, and
// revoked credentials are indistinguishable to the caller (all 401).
package handlers
