package betterauth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/AlexeyZoz/better-auth/internal"
)

// forgetPasswordSuffix separates password reset codes from sign-in
// verification codes. The two namespaces never collide: a reset code can
// never verify a number and vice versa.
const forgetPasswordSuffix = "-forget-password"

func verificationIdentifier(phoneNumber string) string {
	return phoneNumber
}

func passwordResetIdentifier(phoneNumber string) string {
	return phoneNumber + forgetPasswordSuffix
}

// SendVerificationOTP generates a fresh code for the number, hands it to the
// configured delivery callback, and persists it. A number holds at most one
// live code: re-issuing overwrites the previous one. The code is returned to
// the caller so transports that echo it (development, tests) can do so.
//
// The delivery callback runs before persistence. A callback error or veto
// leaves any previously stored code untouched.
func (e *Engine) SendVerificationOTP(ctx context.Context, phoneNumber string) (string, error) {
	if e.verifications == nil {
		return "", ErrEngineNotReady
	}
	if e.config.Delivery.SendVerificationOTP == nil {
		log.Print("betterauth: send-otp called without a delivery callback configured")
		return "", ErrOTPDeliveryNotConfigured
	}
	if !e.phoneNumberValid(phoneNumber) {
		e.metricInc(MetricOTPSendFailure)
		e.emitAudit(ctx, auditEventOTPSend, false, "", ErrInvalidPhoneNumber, nil)
		return "", ErrInvalidPhoneNumber
	}

	code, err := internal.NewOTP(e.config.OTP.Length)
	if err != nil {
		e.metricInc(MetricOTPSendFailure)
		return "", ErrVerificationUnavailable
	}

	veto, err := e.config.Delivery.SendVerificationOTP(ctx, phoneNumber, code)
	if err != nil {
		e.metricInc(MetricOTPSendFailure)
		e.emitAudit(ctx, auditEventOTPSend, false, "", ErrOTPDeliveryFailed, func() map[string]string {
			return map[string]string{"phone_number": phoneNumber}
		})
		return "", fmt.Errorf("%w: %v", ErrOTPDeliveryFailed, err)
	}
	if veto != nil && veto.Veto {
		e.metricInc(MetricOTPSendFailure)
		e.emitAudit(ctx, auditEventOTPSend, false, "", ErrOTPGenerationDeclined, func() map[string]string {
			return map[string]string{"phone_number": phoneNumber, "reason": veto.Reason}
		})
		if veto.Reason != "" {
			return "", fmt.Errorf("%w: %s", ErrOTPGenerationDeclined, veto.Reason)
		}
		return "", ErrOTPGenerationDeclined
	}

	expiresAt := e.now().Add(e.config.OTP.ExpiresIn)
	if err := e.verifications.Upsert(ctx, verificationIdentifier(phoneNumber), code, expiresAt); err != nil {
		e.metricInc(MetricOTPSendFailure)
		e.emitAudit(ctx, auditEventOTPSend, false, "", ErrVerificationUnavailable, func() map[string]string {
			return map[string]string{"phone_number": phoneNumber}
		})
		return "", ErrVerificationUnavailable
	}

	e.metricInc(MetricOTPSent)
	e.emitAudit(ctx, auditEventOTPSend, true, "", nil, func() map[string]string {
		return map[string]string{"phone_number": phoneNumber}
	})
	return code, nil
}

// VerifyPhoneNumber consumes the stored code for the number and, on match,
// links the verified number to an account. Consumption is atomic and
// single-use: a matching code is deleted in the same step that accepts it,
// so a second submission of the same code fails with [ErrOTPNotFound].
// Expiry is checked before the value, so an expired code reports
// [ErrOTPExpired] even when the submitted value is wrong.
//
// After consumption the outcome depends on options and state, in order:
//
//  1. opts.UpdatePhoneNumber moves the number onto the caller's current
//     session user. Requires a resolvable session, otherwise
//     [ErrUnauthorized]. The completion callback does not run.
//  2. A user already holding the number is marked verified.
//  3. With sign-up enabled, an unknown number provisions a new user with a
//     placeholder email and name.
//  4. Otherwise the verification stands alone: status true, no user, no
//     session.
func (e *Engine) VerifyPhoneNumber(ctx context.Context, phoneNumber, code string, opts VerifyOptions) (*VerifyResult, error) {
	if e.verifications == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}
	if !e.phoneNumberValid(phoneNumber) {
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, auditEventOTPVerify, false, "", ErrInvalidPhoneNumber, nil)
		return nil, ErrInvalidPhoneNumber
	}

	if err := e.verifications.Consume(ctx, verificationIdentifier(phoneNumber), code); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		mapped := mapConsumeError(err)
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, auditEventOTPVerify, false, "", mapped, func() map[string]string {
			return map[string]string{"phone_number": phoneNumber}
		})
		return nil, mapped
	}

	if opts.UpdatePhoneNumber {
		return e.verifyIntoSession(ctx, phoneNumber, opts)
	}

	user, err := e.users.FindUserByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, auditEventOTPVerify, false, "", ErrUserLookupFailed, nil)
		return nil, ErrUserLookupFailed
	}

	switch {
	case user != nil:
		userID := user.ID
		verified := true
		user, err = e.users.UpdateUser(ctx, userID, UpdateUserInput{PhoneNumberVerified: &verified})
		if err != nil {
			e.metricInc(MetricOTPVerifyFailure)
			e.emitAudit(ctx, auditEventOTPVerify, false, userID, ErrUserUpdateFailed, nil)
			return nil, ErrUserUpdateFailed
		}

	case e.config.SignUp.Enabled:
		user, err = e.provisionUser(ctx, phoneNumber)
		if err != nil {
			e.metricInc(MetricOTPVerifyFailure)
			e.emitAudit(ctx, auditEventOTPVerify, false, "", err, nil)
			return nil, err
		}
		e.metricInc(MetricUserProvisioned)

	default:
		// Verification succeeded but no account is involved. The caller
		// decides what a bare verified number means.
		e.metricInc(MetricOTPVerifySuccess)
		e.emitAudit(ctx, auditEventOTPVerify, true, "", nil, func() map[string]string {
			return map[string]string{"phone_number": phoneNumber, "linked": "false"}
		})
		return &VerifyResult{Status: true}, nil
	}

	if e.config.OnVerificationComplete != nil {
		e.config.OnVerificationComplete(ctx, phoneNumber, user)
	}

	result := &VerifyResult{Status: true, User: user}
	if !opts.DisableSession && e.sessions != nil {
		sess, err := e.sessions.CreateSession(ctx, user.ID, e.sessionOptions(ctx, false))
		if err != nil {
			e.metricInc(MetricOTPVerifyFailure)
			e.emitAudit(ctx, auditEventOTPVerify, false, user.ID, ErrSessionCreationFailed, nil)
			return nil, ErrSessionCreationFailed
		}
		e.metricInc(MetricSessionCreated)
		result.Session = sess
	}

	e.metricInc(MetricOTPVerifySuccess)
	e.emitAudit(ctx, auditEventOTPVerify, true, user.ID, nil, func() map[string]string {
		return map[string]string{"phone_number": phoneNumber}
	})
	return result, nil
}

// verifyIntoSession handles the update-phone-number branch: the consumed
// code attaches the number to the session's user instead of resolving a
// user from the number.
func (e *Engine) verifyIntoSession(ctx context.Context, phoneNumber string, opts VerifyOptions) (*VerifyResult, error) {
	if e.sessions == nil || opts.SessionToken == "" {
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, auditEventOTPVerify, false, "", ErrUnauthorized, func() map[string]string {
			return map[string]string{"reason": "missing_session"}
		})
		return nil, ErrUnauthorized
	}
	sess, err := e.sessions.GetSession(ctx, opts.SessionToken)
	if err != nil || sess == nil {
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, auditEventOTPVerify, false, "", ErrUnauthorized, func() map[string]string {
			return map[string]string{"reason": "invalid_session"}
		})
		return nil, ErrUnauthorized
	}

	verified := true
	user, err := e.users.UpdateUser(ctx, sess.UserID, UpdateUserInput{
		PhoneNumber:         &phoneNumber,
		PhoneNumberVerified: &verified,
	})
	if err != nil {
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, auditEventOTPVerify, false, sess.UserID, ErrUserUpdateFailed, nil)
		return nil, ErrUserUpdateFailed
	}

	e.metricInc(MetricOTPVerifySuccess)
	e.emitAudit(ctx, auditEventOTPVerify, true, user.ID, nil, func() map[string]string {
		return map[string]string{"phone_number": phoneNumber, "updated_session_user": "true"}
	})
	return &VerifyResult{Status: true, User: user, Session: sess}, nil
}

func (e *Engine) provisionUser(ctx context.Context, phoneNumber string) (*User, error) {
	name := phoneNumber
	if e.config.SignUp.TempName != nil {
		name = e.config.SignUp.TempName(phoneNumber)
	}
	user, err := e.users.CreateUser(ctx, CreateUserInput{
		Email:               e.config.SignUp.TempEmail(phoneNumber),
		Name:                name,
		PhoneNumber:         phoneNumber,
		PhoneNumberVerified: true,
	})
	if err != nil {
		return nil, ErrUserCreationFailed
	}
	return user, nil
}

func mapConsumeError(err error) error {
	switch {
	case errors.Is(err, ErrOTPNotFound),
		errors.Is(err, ErrOTPExpired),
		errors.Is(err, ErrInvalidOTP):
		return err
	default:
		return ErrVerificationUnavailable
	}
}
