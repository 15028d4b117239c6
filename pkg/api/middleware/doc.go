/*
Package middleware provides the HTTP middleware chain for the glow API:
request IDs, structured request logging, panic recovery, and
per-request timeouts.

The chain is assembled in pkg/server, outermost first: recovery,
logging, request ID, timeout. Authentication is not middleware; each
handler runs the authz composite itself because spend handlers only
learn the amount to reserve mid-request.
*/
package middleware
