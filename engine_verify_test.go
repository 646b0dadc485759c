package goOTP

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestVerifyRoundTripConsumesOnce(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, testConfig())
	defer engine.Close()

	ctx := context.Background()
	issuance, err := engine.IssueEmail(ctx, "alice@example.com", "login")
	if err != nil {
		t.Fatalf("IssueEmail failed: %v", err)
	}

	result, err := engine.Verify(ctx, "alice@example.com", "login", issuance.Code)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !result.OK {
		t.Fatalf("expected OK verify, got %+v", result)
	}

	// Single use: the same code cannot be consumed twice.
	result, err = engine.Verify(ctx, "alice@example.com", "login", issuance.Code)
	if err != nil {
		t.Fatalf("second Verify errored: %v", err)
	}
	if result.OK || result.Reason != ReasonExpiredOrMissing {
		t.Fatalf("expected expired-or-missing on replay, got %+v", result)
	}
}

func TestVerifyWrongCode(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, testConfig())
	defer engine.Close()

	ctx := context.Background()
	issuance, err := engine.IssueEmail(ctx, "alice@example.com", "login")
	if err != nil {
		t.Fatalf("IssueEmail failed: %v", err)
	}

	wrong := makeDifferentCode(issuance.Code)
	result, err := engine.Verify(ctx, "alice@example.com", "login", wrong)
	if err != nil {
		t.Fatalf("Verify errored: %v", err)
	}
	if result.OK || result.Reason != ReasonInvalidCode {
		t.Fatalf("expected invalid-code, got %+v", result)
	}

	// A mismatch does not burn the record: the right code still works.
	result, err = engine.Verify(ctx, "alice@example.com", "login", issuance.Code)
	if err != nil {
		t.Fatalf("Verify errored: %v", err)
	}
	if !result.OK {
		t.Fatalf("expected OK after one mismatch, got %+v", result)
	}
}

func TestVerifyAttemptProgressionToLockout(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := testConfig()
	cfg.Email.MaxAttempts = 3
	engine := newTestEngine(t, rdb, cfg)
	defer engine.Close()

	ctx := context.Background()
	issuance, err := engine.IssueEmail(ctx, "alice@example.com", "login")
	if err != nil {
		t.Fatalf("IssueEmail failed: %v", err)
	}
	wrong := makeDifferentCode(issuance.Code)

	for i := 0; i < 3; i++ {
		result, err := engine.Verify(ctx, "alice@example.com", "login", wrong)
		if err != nil {
			t.Fatalf("attempt %d errored: %v", i+1, err)
		}
		if result.OK || result.Reason != ReasonInvalidCode {
			t.Fatalf("attempt %d: expected invalid-code, got %+v", i+1, result)
		}
	}

	// Budget exhausted: the correct code is rejected too, and the record
	// survives so re-issuance stays blocked until natural expiry.
	result, err := engine.Verify(ctx, "alice@example.com", "login", issuance.Code)
	if err != nil {
		t.Fatalf("lockout verify errored: %v", err)
	}
	if result.OK || result.Reason != ReasonTooManyAttempts {
		t.Fatalf("expected too-many-attempts, got %+v", result)
	}

	if _, err := engine.IssueEmail(ctx, "alice@example.com", "login"); !errors.Is(err, ErrAlreadyIssued) {
		t.Fatalf("expected re-issue blocked during lockout, got %v", err)
	}

	// Natural expiry ends the lockout.
	mr.FastForward(6 * time.Minute)
	if _, err := engine.IssueEmail(ctx, "alice@example.com", "login"); err != nil {
		t.Fatalf("issue after lockout expiry failed: %v", err)
	}
}

func TestVerifyExpiredCode(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, testConfig())
	defer engine.Close()

	ctx := context.Background()
	issuance, err := engine.IssueEmail(ctx, "alice@example.com", "login")
	if err != nil {
		t.Fatalf("IssueEmail failed: %v", err)
	}

	mr.FastForward(6 * time.Minute)

	result, err := engine.Verify(ctx, "alice@example.com", "login", issuance.Code)
	if err != nil {
		t.Fatalf("Verify errored: %v", err)
	}
	if result.OK || result.Reason != ReasonExpiredOrMissing {
		t.Fatalf("expected expired-or-missing, got %+v", result)
	}
}

func TestVerifyUnknownSubject(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, testConfig())
	defer engine.Close()

	result, err := engine.Verify(context.Background(), "nobody@example.com", "login", "123456")
	if err != nil {
		t.Fatalf("Verify errored: %v", err)
	}
	if result.OK || result.Reason != ReasonExpiredOrMissing {
		t.Fatalf("expected expired-or-missing, got %+v", result)
	}
}

func TestVerifyEmptyInputs(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, testConfig())
	defer engine.Close()

	ctx := context.Background()
	if _, err := engine.IssueEmail(ctx, "alice@example.com", "login"); err != nil {
		t.Fatalf("IssueEmail failed: %v", err)
	}

	result, err := engine.Verify(ctx, "", "login", "123456")
	if err != nil || result.OK || result.Reason != ReasonExpiredOrMissing {
		t.Fatalf("empty subject: expected expired-or-missing, got %+v err=%v", result, err)
	}

	result, err = engine.Verify(ctx, "alice@example.com", "", "123456")
	if err != nil || result.OK || result.Reason != ReasonExpiredOrMissing {
		t.Fatalf("empty purpose: expected expired-or-missing, got %+v err=%v", result, err)
	}

	// An empty submitted code is an invalid code, not a missing record, and
	// must not consume an attempt against the live record.
	result, err = engine.Verify(ctx, "alice@example.com", "login", "")
	if err != nil || result.OK || result.Reason != ReasonInvalidCode {
		t.Fatalf("empty code: expected invalid-code, got %+v err=%v", result, err)
	}
	if got := rdb.Get(ctx, "otpn:login:alice@example.com").Val(); got != "0" {
		t.Fatalf("expected attempt counter untouched, got %q", got)
	}
}

func TestVerifyPurposesIsolated(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, testConfig())
	defer engine.Close()

	ctx := context.Background()
	loginCode, err := engine.IssueEmail(ctx, "alice@example.com", "login")
	if err != nil {
		t.Fatalf("issue login failed: %v", err)
	}
	resetCode, err := engine.IssueEmail(ctx, "alice@example.com", "reset")
	if err != nil {
		t.Fatalf("issue reset failed: %v", err)
	}

	// A login code does not verify against the reset purpose.
	result, err := engine.Verify(ctx, "alice@example.com", "reset", loginCode.Code)
	if err != nil {
		t.Fatalf("cross-purpose verify errored: %v", err)
	}
	if result.OK {
		t.Fatal("login code verified against reset purpose")
	}

	result, err = engine.Verify(ctx, "alice@example.com", "reset", resetCode.Code)
	if err != nil || !result.OK {
		t.Fatalf("reset verify failed: %+v err=%v", result, err)
	}
}

func TestVerifyFailsWhenRedisUnavailable(t *testing.T) {
	mr, rdb := newTestRedis(t)

	engine := newTestEngine(t, rdb, testConfig())
	defer engine.Close()

	mr.Close()

	_, err := engine.Verify(context.Background(), "alice@example.com", "login", "123456")
	if err == nil {
		t.Fatal("expected error when redis is unavailable")
	}
}

func TestVerifyMetricsProgression(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := testConfig()
	cfg.Metrics.Enabled = true
	engine := newTestEngine(t, rdb, cfg)
	defer engine.Close()

	ctx := context.Background()
	issuance, err := engine.IssueEmail(ctx, "alice@example.com", "login")
	if err != nil {
		t.Fatalf("IssueEmail failed: %v", err)
	}

	if _, err := engine.Verify(ctx, "alice@example.com", "login", makeDifferentCode(issuance.Code)); err != nil {
		t.Fatalf("mismatch verify errored: %v", err)
	}
	if _, err := engine.Verify(ctx, "alice@example.com", "login", issuance.Code); err != nil {
		t.Fatalf("success verify errored: %v", err)
	}

	snapshot := engine.MetricsSnapshot()
	if snapshot.Counters[MetricIssueSuccess] != 1 {
		t.Fatalf("expected 1 issue success, got %d", snapshot.Counters[MetricIssueSuccess])
	}
	if snapshot.Counters[MetricVerifyMismatch] != 1 {
		t.Fatalf("expected 1 verify mismatch, got %d", snapshot.Counters[MetricVerifyMismatch])
	}
	if snapshot.Counters[MetricVerifySuccess] != 1 {
		t.Fatalf("expected 1 verify success, got %d", snapshot.Counters[MetricVerifySuccess])
	}
}

func TestVerifyNilEngineNotReady(t *testing.T) {
	var engine *Engine
	if _, err := engine.Verify(context.Background(), "alice@example.com", "login", "123456"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
}

func TestVerifyAuditEventsEmitted(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 16
	sink := NewChannelSink(16)

	engine := newTestEngine(t, rdb, cfg)
	engine.audit = newAuditDispatcher(cfg.Audit, sink)
	defer engine.Close()

	ctx := context.Background()
	issuance, err := engine.IssueEmail(ctx, "alice@example.com", "login")
	if err != nil {
		t.Fatalf("IssueEmail failed: %v", err)
	}
	if _, err := engine.Verify(ctx, "alice@example.com", "login", issuance.Code); err != nil {
		t.Fatalf("Verify errored: %v", err)
	}

	engine.Close()

	var issueEvent, verifyEvent *AuditEvent
	deadline := time.After(2 * time.Second)
	for issueEvent == nil || verifyEvent == nil {
		select {
		case event := <-sink.Events():
			switch event.EventType {
			case auditEventIssue:
				e := event
				issueEvent = &e
			case auditEventVerify:
				e := event
				verifyEvent = &e
			}
		case <-deadline:
			t.Fatal("timed out waiting for audit events")
		}
	}

	if !issueEvent.Success || issueEvent.Subject != "alice@example.com" {
		t.Fatalf("unexpected issue event: %+v", issueEvent)
	}
	if issueEvent.EventID == "" {
		t.Fatal("expected issue event to carry an event ID")
	}
	if !verifyEvent.Success || verifyEvent.Purpose != "login" {
		t.Fatalf("unexpected verify event: %+v", verifyEvent)
	}
}
