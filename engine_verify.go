package goOTP

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goOTP/internal"
)

// Verify describes the verify operation and its observable behavior.
//
// Verify checks a submitted code against the live record for
// (purpose, subject) under an optimistic lock. On a digest match the record
// and its attempt counter are deleted in the same transaction, so a code is
// consumable exactly once. On a mismatch the attempt counter is incremented;
// once it reaches the budget copied into the record at issuance, further
// verification is rejected until the record expires naturally.
//
// Expected outcomes (wrong code, missing or expired record, exhausted
// attempts, a transaction aborted by a concurrent caller) come back as a
// VerifyResult with OK false and a Reason, never as an error. The error
// return is reserved for store connectivity failures.
func (e *Engine) Verify(ctx context.Context, subject, purpose, code string) (VerifyResult, error) {
	if e == nil || e.store == nil {
		return VerifyResult{}, ErrEngineNotReady
	}

	start := time.Now()
	defer func() {
		e.metricObserve(MetricVerifyLatency, time.Since(start))
	}()

	if subject == "" || purpose == "" {
		e.metricInc(MetricVerifyExpired)
		return VerifyResult{OK: false, Reason: ReasonExpiredOrMissing}, nil
	}
	if code == "" {
		e.metricInc(MetricVerifyMismatch)
		e.emitAudit(ctx, auditEventVerify, false, purpose, subject, nil, func() map[string]string {
			return map[string]string{
				"reason": string(ReasonInvalidCode),
			}
		})
		return VerifyResult{OK: false, Reason: ReasonInvalidCode}, nil
	}

	err := e.store.Consume(ctx, purpose, subject, func(salt string) string {
		return internal.Digest(e.config.Pepper, salt, code)
	})
	if err != nil {
		result, infraErr := e.mapVerifyError(err)
		if infraErr != nil {
			e.metricInc(MetricVerifyUnavailable)
			e.emitAudit(ctx, auditEventVerify, false, purpose, subject, infraErr, nil)
			return VerifyResult{}, infraErr
		}
		e.emitAudit(ctx, auditEventVerify, false, purpose, subject, nil, func() map[string]string {
			return map[string]string{
				"reason": string(result.Reason),
			}
		})
		return result, nil
	}

	e.metricInc(MetricVerifySuccess)
	e.emitAudit(ctx, auditEventVerify, true, purpose, subject, nil, nil)
	return VerifyResult{OK: true}, nil
}

func (e *Engine) mapVerifyError(err error) (VerifyResult, error) {
	switch {
	case errors.Is(err, errOtpNotFound):
		e.metricInc(MetricVerifyExpired)
		return VerifyResult{OK: false, Reason: ReasonExpiredOrMissing}, nil
	case errors.Is(err, errOtpAttemptsExceeded):
		e.metricInc(MetricVerifyAttemptsExceeded)
		return VerifyResult{OK: false, Reason: ReasonTooManyAttempts}, nil
	case errors.Is(err, errOtpCodeMismatch):
		e.metricInc(MetricVerifyMismatch)
		return VerifyResult{OK: false, Reason: ReasonInvalidCode}, nil
	case errors.Is(err, errOtpConflict):
		e.metricInc(MetricVerifyConflict)
		return VerifyResult{OK: false, Reason: ReasonConcurrentUpdate}, nil
	case errors.Is(err, errOtpRedisUnavailable):
		return VerifyResult{}, err
	default:
		return VerifyResult{}, fmt.Errorf("%w: %v", ErrOtpUnavailable, err)
	}
}
