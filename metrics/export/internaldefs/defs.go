package internaldefs

import (
	goOTP "github.com/MrEthical07/goOTP"
)

// CounterDef defines a public type used by goOTP APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goOTP.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goOTP APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goOTP.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the OTP engine.
var CounterDefs = []CounterDef{
	{ID: goOTP.MetricIssueSuccess, Name: "gootp_issue_success_total", Help: "Successful code issuances."},
	{ID: goOTP.MetricIssueConflict, Name: "gootp_issue_conflict_total", Help: "Issuances rejected because an unexpired code already exists."},
	{ID: goOTP.MetricIssueInvalidSubject, Name: "gootp_issue_invalid_subject_total", Help: "Issuances rejected for subject format."},
	{ID: goOTP.MetricIssueRateLimited, Name: "gootp_issue_rate_limited_total", Help: "Rate-limited issuance attempts."},
	{ID: goOTP.MetricIssueDeliveryFailure, Name: "gootp_issue_delivery_failure_total", Help: "Coupled deliveries that failed and were rolled back."},
	{ID: goOTP.MetricIssueUnavailable, Name: "gootp_issue_unavailable_total", Help: "Issuances aborted by backend unavailability."},
	{ID: goOTP.MetricVerifySuccess, Name: "gootp_verify_success_total", Help: "Successful verifications (code consumed)."},
	{ID: goOTP.MetricVerifyExpired, Name: "gootp_verify_expired_total", Help: "Verifications against missing or expired records."},
	{ID: goOTP.MetricVerifyMismatch, Name: "gootp_verify_mismatch_total", Help: "Verifications with a non-matching code."},
	{ID: goOTP.MetricVerifyAttemptsExceeded, Name: "gootp_verify_attempts_exceeded_total", Help: "Verifications rejected by an exhausted attempt budget."},
	{ID: goOTP.MetricVerifyConflict, Name: "gootp_verify_conflict_total", Help: "Verification transactions aborted by concurrent updates."},
	{ID: goOTP.MetricVerifyUnavailable, Name: "gootp_verify_unavailable_total", Help: "Verifications aborted by backend unavailability."},
}

// HistogramDefs is an exported constant or variable used by the OTP engine.
var HistogramDefs = []HistogramDef{
	{ID: goOTP.MetricVerifyLatency, Name: "gootp_verify_latency_seconds", Help: "Verify latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the OTP engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the OTP engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
