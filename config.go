package goOTP

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by goOTP APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// Pepper is the server-side secret mixed into every code digest. It is
	// distinct from the per-issuance salt and never stored per record.
	Pepper []byte

	Store    StoreConfig
	Email    ChannelConfig
	Phone    ChannelConfig
	Throttle ThrottleConfig
	Audit    AuditConfig
	Metrics  MetricsConfig

	// Development permits plaintext-code logging at debug level. Never enable
	// in production.
	Development bool
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig defines a public type used by goOTP APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	// KeyPrefix namespaces every record key. Attempt counters use
	// KeyPrefix + "n". Must not contain ':'.
	KeyPrefix string
}

/*
====================================
CHANNEL CONFIG
====================================
*/

// DeliveryPolicyType defines a public type used by goOTP APIs.
//
// DeliveryPolicyType instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type DeliveryPolicyType int

const (
	// DeliveryDecoupled is an exported constant or variable used by the OTP engine.
	// The engine returns the plaintext code and the caller delivers it; a
	// delivery failure outside the engine does not roll back the record.
	DeliveryDecoupled DeliveryPolicyType = iota
	// DeliveryCoupled is an exported constant or variable used by the OTP engine.
	// The engine sends the code through the channel inside issue; a send
	// failure rolls back the just-written record and attempt counter.
	DeliveryCoupled
)

// ChannelConfig defines a public type used by goOTP APIs.
//
// ChannelConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ChannelConfig struct {
	OtpTTL         time.Duration
	MaxAttempts    int
	CodeDigits     int
	DeliveryPolicy DeliveryPolicyType

	// CountryCallingCode restricts phone subjects to one country
	// (e.g. "+84"). Empty accepts any valid E.164 number. Ignored on the
	// email channel.
	CountryCallingCode string
}

/*
====================================
THROTTLE CONFIG
====================================
*/

// ThrottleConfig defines a public type used by goOTP APIs.
//
// ThrottleConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ThrottleConfig struct {
	EnableSubjectThrottle bool
	EnableIPThrottle      bool
	Window                time.Duration
	MaxRequests           int
}

// AuditConfig defines a public type used by goOTP APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goOTP APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration. The pepper is empty and
// must be supplied before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Store: StoreConfig{
			KeyPrefix: "otp",
		},
		Email: ChannelConfig{
			OtpTTL:         5 * time.Minute,
			MaxAttempts:    5,
			CodeDigits:     6,
			DeliveryPolicy: DeliveryDecoupled,
		},
		Phone: ChannelConfig{
			OtpTTL:         3 * time.Minute,
			MaxAttempts:    5,
			CodeDigits:     6,
			DeliveryPolicy: DeliveryCoupled,
		},
		Throttle: ThrottleConfig{
			EnableSubjectThrottle: true,
			EnableIPThrottle:      true,
			Window:                15 * time.Minute,
			MaxRequests:           5,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Development: false,
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Pepper = cloneBytes(cfg.Pepper)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

const minPepperBytes = 16

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if len(c.Pepper) < minPepperBytes {
		return errors.New("Pepper must be at least 16 bytes")
	}

	// Store
	if c.Store.KeyPrefix == "" {
		return errors.New("Store KeyPrefix must not be empty")
	}
	if strings.ContainsRune(c.Store.KeyPrefix, ':') {
		return errors.New("Store KeyPrefix must not contain ':'")
	}

	// Channels
	if err := validateChannel("Email", c.Email); err != nil {
		return err
	}
	if err := validateChannel("Phone", c.Phone); err != nil {
		return err
	}
	if cc := c.Phone.CountryCallingCode; cc != "" {
		if !strings.HasPrefix(cc, "+") || len(cc) < 2 || len(cc) > 4 {
			return errors.New("Phone CountryCallingCode must look like \"+NN\"")
		}
	}

	// Throttle
	if c.Throttle.EnableSubjectThrottle || c.Throttle.EnableIPThrottle {
		if c.Throttle.Window <= 0 {
			return errors.New("Throttle Window must be > 0 when throttling is enabled")
		}
		if c.Throttle.MaxRequests <= 0 {
			return errors.New("Throttle MaxRequests must be > 0 when throttling is enabled")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	return nil
}

func validateChannel(name string, cfg ChannelConfig) error {
	if cfg.OtpTTL <= 0 {
		return errors.New(name + " OtpTTL must be > 0")
	}
	if cfg.MaxAttempts <= 0 {
		return errors.New(name + " MaxAttempts must be > 0")
	}
	if cfg.MaxAttempts > 65535 {
		return errors.New(name + " MaxAttempts must fit in 16 bits")
	}
	if cfg.CodeDigits < 4 || cfg.CodeDigits > 10 {
		return errors.New(name + " CodeDigits must be between 4 and 10")
	}
	if cfg.DeliveryPolicy != DeliveryDecoupled && cfg.DeliveryPolicy != DeliveryCoupled {
		return errors.New(name + " DeliveryPolicy is invalid")
	}
	return nil
}
