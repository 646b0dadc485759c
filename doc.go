// Package goOTP provides a Redis-backed one-time-passcode engine with salted
// HMAC code digests, per-record attempt budgets, and optimistic-lock
// verification semantics.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goOTP is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (Issuance, VerifyResult, MetricsSnapshot, etc.). Cryptographic
// primitives (code generation, salting, digesting, constant-time comparison)
// live under internal/ and are never exported. Delivery channels (SMS, SMTP)
// live in the delivery subpackage and plug in through the [DeliveryChannel]
// interface.
//
// # What this package must NOT do
//
//   - Persist or log a plaintext code, unless Development mode is explicitly
//     enabled (and then only to the configured logger at debug level).
//   - Assume exclusive ownership of the Redis keyspace: keys may be expired
//     or deleted externally at any time, which the engine reports as an
//     expired-or-missing outcome rather than a failure.
//   - Retry aborted verification transactions internally. A concurrent-update
//     outcome is surfaced to the caller, who owns the retry policy.
//
// # Concurrency contract
//
// Issuance is serialized per (purpose, subject) through SET NX; exactly one of
// any number of racing issuances wins. Verification runs under WATCH on the
// record and attempt-counter keys and commits a single MULTI/EXEC; a losing
// party observes a concurrent-update outcome, never a double consume.
package goOTP
