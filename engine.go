package goOTP

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const (
	auditEventIssue  = "otp_issue"
	auditEventVerify = "otp_verify"
)

// Engine defines a public type used by goOTP APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// Construct exactly one Engine per process through [Builder.Build] and hand it
// to request handlers by reference; the Engine itself holds no mutable state
// beyond the externally owned Redis connection and its counters.
type Engine struct {
	config   Config
	store    *otpStore
	limiter  *issueLimiter
	audit    *auditDispatcher
	metrics  *Metrics
	logger   zerolog.Logger
	validate *validator.Validate

	emailChannel DeliveryChannel
	phoneChannel DeliveryChannel
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	e.metrics.Observe(id, d)
}

// emitAudit builds metadata lazily so disabled audit costs nothing.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	purpose, subject string,
	failure error,
	metadata func() map[string]string,
) {
	if e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Purpose:   purpose,
		Subject:   subject,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if failure != nil {
		event.Error = failure.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) channelConfig(channel Channel) ChannelConfig {
	if channel == ChannelPhone {
		return e.config.Phone
	}
	return e.config.Email
}

func (e *Engine) deliveryChannel(channel Channel) DeliveryChannel {
	if channel == ChannelPhone {
		return e.phoneChannel
	}
	return e.emailChannel
}
