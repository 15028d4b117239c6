/*
Package wallet defines the boundary to the Lightning wallet daemon.

The rest of glow only ever sees the Wallet interface: prepare a spend,
execute it, create an invoice, read balance info. Payment execution,
invoice parsing, and all Lightning network communication live behind
this boundary; the authorization core consumes nothing from it but
success or failure.

Two implementations ship:

  - Client talks to a wallet daemon's REST API over HTTP with pooled
    connections, timeouts, and bounded retries.
  - DevWallet is an in-memory wallet for tests and --dev runs.
*/
package wallet
