// Package security groups glow's authorization concerns. The authz
// subpackage combines credential resolution, capability checks, the
// per-payment amount cap, and budget reservation into one composite
// that handlers run per request.
//
// Authentication material itself (key hashing, storage, lifecycle)
// lives in pkg/keystore; this tree only decides what a resolved key is
// allowed to do.
package security
