package goOTP

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the OTP engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInvalidSubject is an exported constant or variable used by the OTP engine.
	ErrInvalidSubject = errors.New("invalid subject")
	// ErrInvalidPurpose is an exported constant or variable used by the OTP engine.
	ErrInvalidPurpose = errors.New("invalid purpose")
	// ErrInvalidCodeDigits is an exported constant or variable used by the OTP engine.
	ErrInvalidCodeDigits = errors.New("invalid code digit count")
	// ErrAlreadyIssued is an exported constant or variable used by the OTP engine.
	ErrAlreadyIssued = errors.New("code already issued and unexpired")
	// ErrIssueRateLimited is an exported constant or variable used by the OTP engine.
	ErrIssueRateLimited = errors.New("issue rate limited")
	// ErrDeliveryFailed is an exported constant or variable used by the OTP engine.
	ErrDeliveryFailed = errors.New("code delivery failed")
	// ErrChannelNotConfigured is an exported constant or variable used by the OTP engine.
	ErrChannelNotConfigured = errors.New("delivery channel not configured")
	// ErrOtpUnavailable is an exported constant or variable used by the OTP engine.
	ErrOtpUnavailable = errors.New("otp backend unavailable")
)
