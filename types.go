package goOTP

import (
	"context"
	"time"
)

// Channel identifies which delivery rail an OTP was issued for.
//
// Channel values are stable and safe to persist or log.
type Channel int

const (
	// ChannelEmail is the email rail: subjects are email addresses.
	ChannelEmail Channel = iota
	// ChannelPhone is the phone rail: subjects are E.164 phone numbers.
	ChannelPhone
)

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelPhone:
		return "phone"
	default:
		return "unknown"
	}
}

// Reason is the machine-readable outcome attached to a failed verification.
//
// Reason values are part of the public contract and never change spelling.
type Reason string

const (
	// ReasonExpiredOrMissing means no live record exists for the
	// (purpose, subject) pair: it expired, was consumed, or never existed.
	ReasonExpiredOrMissing Reason = "expired-or-missing"
	// ReasonTooManyAttempts means the attempt budget is exhausted. The record
	// stays until natural expiry; re-issuance is blocked for the same window.
	ReasonTooManyAttempts Reason = "too-many-attempts"
	// ReasonInvalidCode means the submitted code did not match the stored digest.
	ReasonInvalidCode Reason = "invalid-code"
	// ReasonConcurrentUpdate means the verification transaction aborted because
	// a concurrent issue/verify touched the watched keys. The caller may retry.
	ReasonConcurrentUpdate Reason = "concurrent-update"
)

// Issuance is the successful result of an issue operation. Code is the
// plaintext passcode for out-of-band delivery; it is never stored.
type Issuance struct {
	Code string
	TTL  time.Duration
}

// VerifyResult is the structured outcome of a verification. OK is true only
// on a digest match; every other path carries a Reason. Expected conflict
// outcomes are results, not errors (errors are reserved for store failures).
type VerifyResult struct {
	OK     bool
	Reason Reason
}

// DeliveryChannel sends a plaintext code to a subject out of band.
//
// Implementations must not retain the code after Deliver returns. The ttl is
// informational (for message templates such as "valid for 5 minutes").
type DeliveryChannel interface {
	Deliver(ctx context.Context, subject, code string, ttl time.Duration) error
	Name() string
}
