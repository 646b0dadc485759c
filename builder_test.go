package goOTP

import (
	"context"
	"testing"
	"time"
)

func TestBuilderBuildsWorkingEngine(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := testConfig()
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	issuance, err := engine.IssueEmail(ctx, "alice@example.com", "login")
	if err != nil {
		t.Fatalf("IssueEmail failed: %v", err)
	}
	result, err := engine.Verify(ctx, "alice@example.com", "login", issuance.Code)
	if err != nil || !result.OK {
		t.Fatalf("Verify failed: result=%+v err=%v", result, err)
	}
}

func TestBuilderRequiresRedis(t *testing.T) {
	if _, err := New().WithConfig(testConfig()).Build(); err == nil {
		t.Fatal("expected error without redis client")
	}
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := testConfig()
	cfg.Pepper = nil
	if _, err := New().WithConfig(cfg).WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestBuilderCoupledPolicyRequiresChannel(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := testConfig()
	cfg.Phone.DeliveryPolicy = DeliveryCoupled
	if _, err := New().WithConfig(cfg).WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected error for coupled phone policy without channel")
	}

	channel := &recordingChannel{}
	engine, err := New().WithConfig(cfg).WithRedis(rdb).WithPhoneChannel(channel).Build()
	if err != nil {
		t.Fatalf("Build with channel failed: %v", err)
	}
	engine.Close()
}

func TestBuilderSingleUse(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	builder := New().WithConfig(testConfig()).WithRedis(rdb)
	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := builder.Build(); err == nil {
		t.Fatal("expected error on second Build")
	}
}

func TestBuilderConfigDetached(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := testConfig()
	engine, err := New().WithConfig(cfg).WithRedis(rdb).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	// Mutating the caller's config after Build must not reach the engine.
	cfg.Email.OtpTTL = time.Second
	cfg.Pepper[0] ^= 0xFF

	issuance, err := engine.IssueEmail(context.Background(), "alice@example.com", "login")
	if err != nil {
		t.Fatalf("IssueEmail failed: %v", err)
	}
	if issuance.TTL != 5*time.Minute {
		t.Fatalf("expected engine to keep its own config copy, got ttl %v", issuance.TTL)
	}

	result, err := engine.Verify(context.Background(), "alice@example.com", "login", issuance.Code)
	if err != nil || !result.OK {
		t.Fatalf("Verify failed after caller pepper mutation: result=%+v err=%v", result, err)
	}
}
