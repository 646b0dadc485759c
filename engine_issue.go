package goOTP

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goOTP/internal"
)

// IssueOption adjusts a single issue call without touching engine config.
type IssueOption func(*issueOptions)

type issueOptions struct {
	digits int
}

// WithCodeDigits overrides the configured code length for one issuance.
func WithCodeDigits(n int) IssueOption {
	return func(o *issueOptions) {
		o.digits = n
	}
}

// IssueEmail describes the issueemail operation and its observable behavior.
//
// IssueEmail generates a code for an email subject, stores its record with
// set-if-not-exists semantics, and returns the plaintext code for delivery.
// With the default decoupled email policy the caller sends the email; the
// record is kept regardless of how that delivery goes.
//
// IssueEmail may return ErrInvalidSubject, ErrAlreadyIssued,
// ErrIssueRateLimited, ErrDeliveryFailed (coupled policy only), or
// ErrOtpUnavailable.
func (e *Engine) IssueEmail(ctx context.Context, subject, purpose string, opts ...IssueOption) (Issuance, error) {
	return e.issue(ctx, ChannelEmail, subject, purpose, opts...)
}

// IssuePhone describes the issuephone operation and its observable behavior.
//
// IssuePhone generates a code for an E.164 phone subject. With the default
// coupled phone policy the engine sends the SMS itself; a send failure rolls
// back the just-written record and attempt counter so the subject can retry
// immediately, and IssuePhone returns ErrDeliveryFailed.
func (e *Engine) IssuePhone(ctx context.Context, subject, purpose string, opts ...IssueOption) (Issuance, error) {
	return e.issue(ctx, ChannelPhone, subject, purpose, opts...)
}

func (e *Engine) issue(ctx context.Context, channel Channel, subject, purpose string, opts ...IssueOption) (Issuance, error) {
	if e == nil || e.store == nil || e.limiter == nil || e.validate == nil {
		return Issuance{}, ErrEngineNotReady
	}

	if purpose == "" || strings.ContainsRune(purpose, ':') {
		e.emitAudit(ctx, auditEventIssue, false, purpose, subject, ErrInvalidPurpose, nil)
		return Issuance{}, ErrInvalidPurpose
	}

	if err := e.validateSubject(channel, subject); err != nil {
		e.metricInc(MetricIssueInvalidSubject)
		e.emitAudit(ctx, auditEventIssue, false, purpose, subject, err, func() map[string]string {
			return map[string]string{
				"channel": channel.String(),
				"reason":  "subject_format",
			}
		})
		return Issuance{}, err
	}

	cfg := e.channelConfig(channel)

	options := issueOptions{digits: cfg.CodeDigits}
	for _, opt := range opts {
		opt(&options)
	}
	if options.digits < internal.MinCodeDigits || options.digits > internal.MaxCodeDigits {
		return Issuance{}, ErrInvalidCodeDigits
	}

	if err := e.limiter.CheckIssue(ctx, purpose, subject, clientIPFromContext(ctx)); err != nil {
		mapped := mapIssueLimiterError(err)
		if errors.Is(mapped, ErrIssueRateLimited) {
			e.metricInc(MetricIssueRateLimited)
		} else {
			e.metricInc(MetricIssueUnavailable)
		}
		e.emitAudit(ctx, auditEventIssue, false, purpose, subject, mapped, func() map[string]string {
			return map[string]string{
				"channel": channel.String(),
			}
		})
		return Issuance{}, mapped
	}

	code, err := internal.NewCode(options.digits)
	if err != nil {
		e.metricInc(MetricIssueUnavailable)
		return Issuance{}, fmt.Errorf("%w: %v", ErrOtpUnavailable, err)
	}
	salt, err := internal.NewSalt()
	if err != nil {
		e.metricInc(MetricIssueUnavailable)
		return Issuance{}, fmt.Errorf("%w: %v", ErrOtpUnavailable, err)
	}

	record := &otpRecord{
		Salt:        salt,
		Digest:      internal.Digest(e.config.Pepper, salt, code),
		MaxAttempts: uint16(cfg.MaxAttempts),
	}

	if err := e.store.Create(ctx, purpose, subject, record, cfg.OtpTTL); err != nil {
		mapped := mapIssueStoreError(err)
		if errors.Is(mapped, ErrAlreadyIssued) {
			e.metricInc(MetricIssueConflict)
		} else {
			e.metricInc(MetricIssueUnavailable)
		}
		e.emitAudit(ctx, auditEventIssue, false, purpose, subject, mapped, func() map[string]string {
			return map[string]string{
				"channel": channel.String(),
			}
		})
		return Issuance{}, mapped
	}

	if cfg.DeliveryPolicy == DeliveryCoupled {
		if err := e.deliverCoupled(ctx, channel, subject, purpose, code, cfg); err != nil {
			return Issuance{}, err
		}
	}

	if e.config.Development {
		// Plaintext code logging is gated on the explicit development flag.
		e.logger.Debug().
			Str("purpose", purpose).
			Str("subject", subject).
			Str("code", code).
			Msg("issued otp (development mode)")
	}

	e.metricInc(MetricIssueSuccess)
	e.emitAudit(ctx, auditEventIssue, true, purpose, subject, nil, func() map[string]string {
		return map[string]string{
			"channel": channel.String(),
		}
	})

	return Issuance{Code: code, TTL: cfg.OtpTTL}, nil
}

func (e *Engine) deliverCoupled(ctx context.Context, channel Channel, subject, purpose, code string, cfg ChannelConfig) error {
	ch := e.deliveryChannel(channel)
	if ch == nil {
		_ = e.store.Rollback(ctx, purpose, subject)
		e.metricInc(MetricIssueDeliveryFailure)
		e.emitAudit(ctx, auditEventIssue, false, purpose, subject, ErrChannelNotConfigured, nil)
		return ErrChannelNotConfigured
	}

	if err := ch.Deliver(ctx, subject, code, cfg.OtpTTL); err != nil {
		// Compensating rollback: without it the subject would stay locked
		// behind an undeliverable code for the full ttl.
		_ = e.store.Rollback(ctx, purpose, subject)
		e.metricInc(MetricIssueDeliveryFailure)
		e.emitAudit(ctx, auditEventIssue, false, purpose, subject, ErrDeliveryFailed, func() map[string]string {
			return map[string]string{
				"channel":  channel.String(),
				"delivery": ch.Name(),
			}
		})
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	return nil
}

func (e *Engine) validateSubject(channel Channel, subject string) error {
	switch channel {
	case ChannelPhone:
		if err := e.validate.Var(subject, "required,e164"); err != nil {
			return ErrInvalidSubject
		}
		if cc := e.config.Phone.CountryCallingCode; cc != "" && !strings.HasPrefix(subject, cc) {
			return ErrInvalidSubject
		}
		return nil
	default:
		if err := e.validate.Var(subject, "required,email"); err != nil {
			return ErrInvalidSubject
		}
		return nil
	}
}

func mapIssueLimiterError(err error) error {
	switch {
	case errors.Is(err, errIssueRateLimited):
		return ErrIssueRateLimited
	case errors.Is(err, errIssueLimiterUnavailable):
		return ErrOtpUnavailable
	default:
		return ErrOtpUnavailable
	}
}

func mapIssueStoreError(err error) error {
	switch {
	case errors.Is(err, errOtpAlreadyIssued):
		return ErrAlreadyIssued
	case errors.Is(err, errOtpRedisUnavailable):
		return ErrOtpUnavailable
	default:
		return ErrOtpUnavailable
	}
}
