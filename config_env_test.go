package goOTP

import (
	"testing"
	"time"
)

func TestConfigFromEnvDefaultsWhenUnset(t *testing.T) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}
	if cfg.Store.KeyPrefix != "otp" {
		t.Fatalf("expected default key prefix, got %q", cfg.Store.KeyPrefix)
	}
	if cfg.Email.OtpTTL != 5*time.Minute {
		t.Fatalf("expected default email ttl, got %v", cfg.Email.OtpTTL)
	}
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("GOOTP_PEPPER", "env-pepper-0123456789abcdef")
	t.Setenv("GOOTP_KEY_PREFIX", "mfa")
	t.Setenv("GOOTP_OTP_TTL", "90s")
	t.Setenv("GOOTP_MAX_ATTEMPTS", "3")
	t.Setenv("GOOTP_CODE_DIGITS", "8")
	t.Setenv("GOOTP_PHONE_COUNTRY_CODE", "+84")
	t.Setenv("GOOTP_DEV_MODE", "true")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}

	if string(cfg.Pepper) != "env-pepper-0123456789abcdef" {
		t.Fatalf("unexpected pepper %q", cfg.Pepper)
	}
	if cfg.Store.KeyPrefix != "mfa" {
		t.Fatalf("unexpected key prefix %q", cfg.Store.KeyPrefix)
	}
	if cfg.Email.OtpTTL != 90*time.Second || cfg.Phone.OtpTTL != 90*time.Second {
		t.Fatalf("unexpected ttls: email=%v phone=%v", cfg.Email.OtpTTL, cfg.Phone.OtpTTL)
	}
	if cfg.Email.MaxAttempts != 3 || cfg.Phone.MaxAttempts != 3 {
		t.Fatalf("unexpected attempts: email=%d phone=%d", cfg.Email.MaxAttempts, cfg.Phone.MaxAttempts)
	}
	if cfg.Email.CodeDigits != 8 || cfg.Phone.CodeDigits != 8 {
		t.Fatalf("unexpected digits: email=%d phone=%d", cfg.Email.CodeDigits, cfg.Phone.CodeDigits)
	}
	if cfg.Phone.CountryCallingCode != "+84" {
		t.Fatalf("unexpected country code %q", cfg.Phone.CountryCallingCode)
	}
	if !cfg.Development {
		t.Fatal("expected development mode enabled")
	}
}

func TestConfigFromEnvBareSecondsTTL(t *testing.T) {
	t.Setenv("GOOTP_OTP_TTL", "120")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}
	if cfg.Email.OtpTTL != 2*time.Minute {
		t.Fatalf("expected 2m from bare seconds, got %v", cfg.Email.OtpTTL)
	}
}

func TestConfigFromEnvRejectsMalformedValues(t *testing.T) {
	t.Setenv("GOOTP_OTP_TTL", "soon")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected error for malformed ttl")
	}
	t.Setenv("GOOTP_OTP_TTL", "")

	t.Setenv("GOOTP_MAX_ATTEMPTS", "many")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected error for malformed max attempts")
	}
	t.Setenv("GOOTP_MAX_ATTEMPTS", "")

	t.Setenv("GOOTP_DEV_MODE", "maybe")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected error for malformed dev mode flag")
	}
}
