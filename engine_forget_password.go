package betterauth

import (
	"context"
	"errors"
	"log"

	"github.com/AlexeyZoz/better-auth/internal"
)

// RequestPasswordReset issues a reset code for a registered number. Unlike
// sign-in verification there is no veto hook: a reset can only be requested
// for an existing account, and the caller learns whether the number is
// registered. Delivery failure after persistence is logged and swallowed so
// the stored code stays usable through an out-of-band resend.
func (e *Engine) RequestPasswordReset(ctx context.Context, phoneNumber string) error {
	if e.verifications == nil || e.users == nil {
		return ErrEngineNotReady
	}
	if e.config.Delivery.SendPasswordResetOTP == nil {
		log.Print("betterauth: password reset requested without a delivery callback configured")
		return ErrOTPDeliveryNotConfigured
	}
	if !e.phoneNumberValid(phoneNumber) {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetRequest, false, "", ErrInvalidPhoneNumber, nil)
		return ErrInvalidPhoneNumber
	}

	user, err := e.users.FindUserByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetRequest, false, "", ErrUserLookupFailed, nil)
		return ErrUserLookupFailed
	}
	if user == nil {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetRequest, false, "", ErrPhoneNumberNotRegistered, func() map[string]string {
			return map[string]string{"phone_number": phoneNumber}
		})
		return ErrPhoneNumberNotRegistered
	}

	code, err := internal.NewOTP(e.config.OTP.Length)
	if err != nil {
		e.metricInc(MetricPasswordResetFailure)
		return ErrVerificationUnavailable
	}

	expiresAt := e.now().Add(e.config.OTP.ExpiresIn)
	if err := e.verifications.Upsert(ctx, passwordResetIdentifier(phoneNumber), code, expiresAt); err != nil {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetRequest, false, user.ID, ErrVerificationUnavailable, nil)
		return ErrVerificationUnavailable
	}

	if err := e.config.Delivery.SendPasswordResetOTP(ctx, phoneNumber, code); err != nil {
		// The code is already stored; the user can still complete the reset
		// if the message arrives late or is resent elsewhere.
		log.Printf("betterauth: password reset delivery failed for %s: %v", phoneNumber, err)
	}

	e.metricInc(MetricPasswordResetRequest)
	e.emitAudit(ctx, auditEventPasswordResetRequest, true, user.ID, nil, func() map[string]string {
		return map[string]string{"phone_number": phoneNumber}
	})
	return nil
}

// ResetPassword redeems a reset code and installs a new password on the
// user's credential account. The code is single-use; it is deleted before
// the new hash is written, so a storage failure after deletion cannot be
// retried with the same code.
func (e *Engine) ResetPassword(ctx context.Context, phoneNumber, otp, newPassword string) error {
	if e.verifications == nil || e.users == nil || e.accounts == nil || e.passwordHash == nil {
		return ErrEngineNotReady
	}
	if !e.phoneNumberValid(phoneNumber) {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, false, "", ErrInvalidPhoneNumber, nil)
		return ErrInvalidPhoneNumber
	}
	if newPassword == "" {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, false, "", ErrPasswordPolicy, nil)
		return ErrPasswordPolicy
	}

	identifier := passwordResetIdentifier(phoneNumber)
	record, err := e.verifications.Find(ctx, identifier)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		e.metricInc(MetricPasswordResetFailure)
		return ErrVerificationUnavailable
	}
	if record == nil {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, false, "", ErrOTPNotFound, nil)
		return ErrOTPNotFound
	}
	// Expiry first. A stale record fails as expired even when the submitted
	// value would not have matched.
	if !e.now().Before(record.ExpiresAt) {
		_ = e.verifications.Delete(ctx, identifier)
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, false, "", ErrOTPExpired, nil)
		return ErrOTPExpired
	}
	if record.Code != otp {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, false, "", ErrInvalidOTP, nil)
		return ErrInvalidOTP
	}
	if err := e.verifications.Delete(ctx, identifier); err != nil {
		e.metricInc(MetricPasswordResetFailure)
		return ErrVerificationUnavailable
	}

	user, err := e.users.FindUserByPhoneNumber(ctx, phoneNumber)
	if err != nil || user == nil {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, false, "", ErrPhoneNumberNotRegistered, nil)
		return ErrPhoneNumberNotRegistered
	}

	hash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, false, user.ID, ErrPasswordUpdateFailed, nil)
		return ErrPasswordUpdateFailed
	}
	if err := e.accounts.UpdatePassword(ctx, user.ID, hash); err != nil {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, false, user.ID, ErrPasswordUpdateFailed, nil)
		return ErrPasswordUpdateFailed
	}

	e.metricInc(MetricPasswordResetSuccess)
	e.emitAudit(ctx, auditEventPasswordReset, true, user.ID, nil, func() map[string]string {
		return map[string]string{"phone_number": phoneNumber}
	})
	return nil
}
