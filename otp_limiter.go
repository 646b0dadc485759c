package goOTP

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	errIssueRateLimited        = errors.New("issue rate limited")
	errIssueLimiterUnavailable = errors.New("issue limiter unavailable")
)

// issueLimiter applies a fixed-window cap on issue requests, per subject and
// per client IP. Verification is not throttled here; the per-record attempt
// budget covers it.
type issueLimiter struct {
	redis  *redis.Client
	config ThrottleConfig
}

func newIssueLimiter(redisClient *redis.Client, cfg ThrottleConfig) *issueLimiter {
	return &issueLimiter{
		redis:  redisClient,
		config: cfg,
	}
}

func (l *issueLimiter) CheckIssue(ctx context.Context, purpose, subject, ip string) error {
	if l.config.EnableSubjectThrottle {
		if err := l.enforceFixedWindow(ctx, issueSubjectKey(purpose, subject)); err != nil {
			return err
		}
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.enforceFixedWindow(ctx, issueIPKey(purpose, ip)); err != nil {
			return err
		}
	}
	return nil
}

func (l *issueLimiter) enforceFixedWindow(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errIssueLimiterUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", errIssueLimiterUnavailable, err)
		}
	}

	if count > int64(l.config.MaxRequests) {
		return errIssueRateLimited
	}

	return nil
}

func issueSubjectKey(purpose, subject string) string {
	return "otpi:" + purpose + ":" + subject
}

func issueIPKey(purpose, ip string) string {
	return "otpip:" + purpose + ":" + ip
}
