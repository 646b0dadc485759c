package goOTP

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Recognized environment variables. Every value layers on top of
// DefaultConfig; unset variables keep the default.
const (
	envPepper      = "GOOTP_PEPPER"
	envKeyPrefix   = "GOOTP_KEY_PREFIX"
	envOtpTTL      = "GOOTP_OTP_TTL"
	envMaxAttempts = "GOOTP_MAX_ATTEMPTS"
	envCodeDigits  = "GOOTP_CODE_DIGITS"
	envCountryCode = "GOOTP_PHONE_COUNTRY_CODE"
	envDevMode     = "GOOTP_DEV_MODE"
)

// ConfigFromEnv builds a Config from the process environment. A .env file in
// the working directory is loaded first when present (missing files are not
// an error). The result is not validated; Build validates.
//
// GOOTP_OTP_TTL accepts a Go duration ("90s", "5m") or a bare second count
// and applies to both channels.
func ConfigFromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if v := os.Getenv(envPepper); v != "" {
		cfg.Pepper = []byte(v)
	}
	if v := os.Getenv(envKeyPrefix); v != "" {
		cfg.Store.KeyPrefix = v
	}
	if v := os.Getenv(envOtpTTL); v != "" {
		ttl, err := parseTTL(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envOtpTTL, err)
		}
		cfg.Email.OtpTTL = ttl
		cfg.Phone.OtpTTL = ttl
	}
	if v := os.Getenv(envMaxAttempts); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envMaxAttempts, err)
		}
		cfg.Email.MaxAttempts = n
		cfg.Phone.MaxAttempts = n
	}
	if v := os.Getenv(envCodeDigits); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envCodeDigits, err)
		}
		cfg.Email.CodeDigits = n
		cfg.Phone.CodeDigits = n
	}
	if v := os.Getenv(envCountryCode); v != "" {
		cfg.Phone.CountryCallingCode = v
	}
	if v := os.Getenv(envDevMode); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envDevMode, err)
		}
		cfg.Development = enabled
	}

	return cfg, nil
}

func parseTTL(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("not a duration or second count: %q", v)
	}
	return time.Duration(secs) * time.Second, nil
}
