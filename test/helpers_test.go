//go:build integration
// +build integration

package test

import (
	"testing"
	"time"

	goOTP "github.com/MrEthical07/goOTP"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newIntegrationEngine(t *testing.T, mutate func(*goOTP.Config)) (*goOTP.Engine, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := goOTP.DefaultConfig()
	cfg.Pepper = []byte("integration-pepper-0123456789abcdef")
	cfg.Email.DeliveryPolicy = goOTP.DeliveryDecoupled
	cfg.Phone.DeliveryPolicy = goOTP.DeliveryDecoupled
	cfg.Throttle.EnableSubjectThrottle = false
	cfg.Throttle.EnableIPThrottle = false
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := goOTP.New().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	if err != nil {
		_ = rdb.Close()
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return engine, mr, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func newIntegrationEngineWithPhone(t *testing.T, channel goOTP.DeliveryChannel) (*goOTP.Engine, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := goOTP.DefaultConfig()
	cfg.Pepper = []byte("integration-pepper-0123456789abcdef")
	cfg.Email.DeliveryPolicy = goOTP.DeliveryDecoupled
	cfg.Phone.DeliveryPolicy = goOTP.DeliveryCoupled
	cfg.Throttle.EnableSubjectThrottle = false
	cfg.Throttle.EnableIPThrottle = false

	engine, err := goOTP.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithPhoneChannel(channel).
		Build()
	if err != nil {
		_ = rdb.Close()
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return engine, mr, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func withinTTL(ttl, want time.Duration) bool {
	return ttl > 0 && ttl <= want
}
