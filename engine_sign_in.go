package betterauth

import (
	"context"
	"errors"
)

// SignInPhoneNumber authenticates a user by phone number and password and
// issues a session. Every credential failure, whether the number is unknown,
// the user has no password account, or the password is wrong, collapses to
// [ErrInvalidPhoneNumberOrPassword] so callers cannot enumerate registered
// numbers.
func (e *Engine) SignInPhoneNumber(ctx context.Context, phoneNumber, password string, remember bool) (*SignInResult, error) {
	if e.users == nil || e.accounts == nil || e.passwordHash == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}
	if !e.phoneNumberValid(phoneNumber) {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignIn, false, "", ErrInvalidPhoneNumber, func() map[string]string {
			return map[string]string{"reason": "invalid_phone_number"}
		})
		return nil, ErrInvalidPhoneNumber
	}

	user, err := e.users.FindUserByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, e.signInRejected(ctx, "", "user_lookup_failed")
	}
	if user == nil {
		return nil, e.signInRejected(ctx, "", "unknown_phone_number")
	}

	hash, err := e.credentialPasswordHash(ctx, user.ID)
	if err != nil {
		return nil, e.signInRejected(ctx, user.ID, "account_lookup_failed")
	}
	if hash == "" {
		return nil, e.signInRejected(ctx, user.ID, "no_credential_account")
	}

	ok, err := e.passwordHash.Verify(password, hash)
	if err != nil || !ok {
		return nil, e.signInRejected(ctx, user.ID, "password_mismatch")
	}

	sess, err := e.sessions.CreateSession(ctx, user.ID, e.sessionOptions(ctx, remember))
	if err != nil {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignIn, false, user.ID, ErrSessionCreationFailed, nil)
		return nil, ErrSessionCreationFailed
	}

	e.metricInc(MetricSignInSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventSignIn, true, user.ID, nil, nil)
	return &SignInResult{User: user, Session: sess}, nil
}

// credentialPasswordHash returns the password hash of the user's credential
// account, or "" when the user has no password-capable account.
func (e *Engine) credentialPasswordHash(ctx context.Context, userID string) (string, error) {
	accounts, err := e.accounts.FindAccountsByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	for _, acct := range accounts {
		if acct.ProviderID == CredentialProviderID && acct.PasswordHash != "" {
			return acct.PasswordHash, nil
		}
	}
	return "", nil
}

func (e *Engine) signInRejected(ctx context.Context, userID, reason string) error {
	e.metricInc(MetricSignInFailure)
	e.emitAudit(ctx, auditEventSignIn, false, userID, ErrInvalidPhoneNumberOrPassword, func() map[string]string {
		return map[string]string{"reason": reason}
	})
	return ErrInvalidPhoneNumberOrPassword
}

func (e *Engine) phoneNumberValid(phoneNumber string) bool {
	if phoneNumber == "" {
		return false
	}
	if e.config.PhoneNumberValidator != nil {
		return e.config.PhoneNumberValidator(phoneNumber)
	}
	return true
}
