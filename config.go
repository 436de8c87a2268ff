package betterauth

import (
	"errors"
	"time"
)

// Config is the process-wide policy for the phone-number engine. It is pure
// configuration: no per-request state is held here, and it is treated as
// immutable after [Builder.Build].
type Config struct {
	OTP      OTPConfig
	SignUp   SignUpConfig
	Password PasswordConfig
	Delivery DeliveryConfig
	Audit    AuditConfig
	Metrics  MetricsConfig

	// PhoneNumberValidator accepts or rejects a submitted number. Nil means
	// every number is accepted; internationalized parsing/normalization is
	// deliberately left to this pluggable predicate.
	PhoneNumberValidator func(phoneNumber string) bool

	// OnVerificationComplete runs after a user is finalized by verification,
	// before any session issuance. Best-effort.
	OnVerificationComplete OnVerificationFunc
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig controls code shape and lifetime.
type OTPConfig struct {
	// Length is the number of digits per code. Default 6. Values down to 1
	// are accepted, though operationally anything below 4 is inadvisable.
	Length int
	// ExpiresIn is the validity window of an issued code. Default 5 minutes.
	ExpiresIn time.Duration
	// Retention keeps expired records observable past ExpiresIn so a late
	// submission surfaces [ErrOTPExpired] rather than [ErrOTPNotFound].
	// Removal within the window is lazy, on read. Default 24 hours.
	Retention time.Duration
}

/*
====================================
SIGN-UP CONFIG
====================================
*/

// SignUpConfig is the sign-up-on-verification policy. When Enabled, verifying
// an unregistered number provisions a new user from the phone number.
type SignUpConfig struct {
	Enabled bool
	// TempEmail generates the placeholder email for a provisioned user.
	// Required when Enabled.
	TempEmail func(phoneNumber string) string
	// TempName generates the placeholder display name. Optional; defaults to
	// the phone number itself.
	TempName func(phoneNumber string) string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds parameters for the default Argon2id hasher. Ignored
// when a custom [PasswordHasher] is supplied to the builder.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DeliveryConfig holds the caller-supplied delivery callbacks. Absence of a
// callback is a valid, checked state: issuance fails with
// [ErrOTPDeliveryNotConfigured] rather than crashing.
type DeliveryConfig struct {
	SendVerificationOTP  SendOTPFunc
	SendPasswordResetOTP SendResetOTPFunc
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline policy: 6-digit codes valid for five
// minutes, no sign-up-on-verification, no delivery callbacks.
func DefaultConfig() Config {
	return Config{
		OTP: OTPConfig{
			Length:    6,
			ExpiresIn: 5 * time.Minute,
			Retention: 24 * time.Hour,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks invariants that would otherwise surface as runtime
// failures deep inside a flow.
func (c Config) Validate() error {
	if c.OTP.Length < 1 {
		return errors.New("otp length must be at least 1")
	}
	if c.OTP.Length > 64 {
		return errors.New("otp length must not exceed 64")
	}
	if c.OTP.ExpiresIn <= 0 {
		return errors.New("otp expiry must be positive")
	}
	if c.OTP.Retention < 0 {
		return errors.New("otp retention must not be negative")
	}
	if c.SignUp.Enabled && c.SignUp.TempEmail == nil {
		return errors.New("sign-up on verification requires a temp email generator")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	// All fields are values or immutable funcs; a shallow copy suffices.
	return cfg
}
