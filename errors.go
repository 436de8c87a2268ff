package betterauth

import "errors"

var (
	// ErrUnauthorized is returned when an operation requires an active session
	// and none could be resolved.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidPhoneNumber is returned when the configured phone validator
	// rejects the submitted number.
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	// ErrInvalidPhoneNumberOrPassword is the uniform sign-in failure.
	// Missing user, missing credential account, missing hash, and hash
	// mismatch all collapse into this error so callers cannot enumerate
	// registered numbers.
	ErrInvalidPhoneNumberOrPassword = errors.New("invalid phone number or password")
	// ErrOTPNotFound is returned when no verification record exists for the
	// identifier.
	ErrOTPNotFound = errors.New("otp not found")
	// ErrOTPExpired is returned when the verification record exists but its
	// expiry has passed. Expiry is checked before value comparison, so an
	// expired-but-wrong code still surfaces this error.
	ErrOTPExpired = errors.New("otp expired")
	// ErrInvalidOTP is returned when the submitted code does not match the
	// stored one.
	ErrInvalidOTP = errors.New("invalid otp")
	// ErrOTPDeliveryNotConfigured is returned by issuance operations when no
	// delivery callback was configured; OTP sending is opt-in per deployment.
	ErrOTPDeliveryNotConfigured = errors.New("otp delivery not configured")
	// ErrOTPDeliveryFailed is returned when the verification delivery
	// callback reports a transmission error.
	ErrOTPDeliveryFailed = errors.New("otp delivery failed")
	// ErrOTPGenerationDeclined is returned when the verification delivery
	// callback vetoes code issuance for the phone number. The veto reason,
	// when supplied, is wrapped into the message.
	ErrOTPGenerationDeclined = errors.New("otp generation declined")
	// ErrPhoneNumberNotRegistered is returned by the password recovery flow
	// when no user carries the submitted number.
	ErrPhoneNumberNotRegistered = errors.New("phone number isn't registered")
	// ErrPasswordPolicy is returned when a replacement password fails basic
	// validation.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrUserCreationFailed is returned when the user store rejects
	// sign-up-on-verification provisioning.
	ErrUserCreationFailed = errors.New("failed to create user")
	// ErrUserUpdateFailed is returned when the user store rejects a
	// phone-number or verified-flag update.
	ErrUserUpdateFailed = errors.New("failed to update user")
	// ErrUserLookupFailed is returned when the user store fails a read.
	ErrUserLookupFailed = errors.New("failed to look up user")
	// ErrSessionCreationFailed is returned when the session service cannot
	// issue a session after successful authentication or verification.
	ErrSessionCreationFailed = errors.New("failed to create session")
	// ErrVerificationUnavailable is returned when the verification store
	// backend is unreachable.
	ErrVerificationUnavailable = errors.New("verification backend unavailable")
	// ErrPasswordUpdateFailed is returned when the account store rejects a
	// password replacement.
	ErrPasswordUpdateFailed = errors.New("failed to update password")
	// ErrEngineNotReady is returned when a flow is invoked on an engine
	// missing a collaborator that flow requires.
	ErrEngineNotReady = errors.New("engine not initialized")
)
