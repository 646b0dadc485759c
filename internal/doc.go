// Package internal contains the cryptographic primitives that are
// intentionally private to goOTP: secure numeric code generation, per-issuance
// salts, peppered HMAC digests, and constant-time digest comparison.
//
// # What this package must NOT do
//
//   - Export types that appear in the public goOTP API.
//   - Be imported by any package outside the goOTP module.
//   - Hold state: every function is pure apart from reading crypto/rand.
package internal
