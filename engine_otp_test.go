package betterauth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSendVerificationOTPReturnsNumericCode(t *testing.T) {
	env := newTestEngine(t, nil)

	code, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if err != nil {
		t.Fatalf("SendVerificationOTP error: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("non-numeric code %q", code)
		}
	}
}

func TestSendVerificationOTPCustomLength(t *testing.T) {
	env := newTestEngine(t, func(cfg *Config) {
		cfg.OTP.Length = 8
	})

	code, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if err != nil {
		t.Fatalf("SendVerificationOTP error: %v", err)
	}
	if len(code) != 8 {
		t.Fatalf("expected 8-digit code, got %q", code)
	}
}

func TestSendVerificationOTPDeliversBeforePersisting(t *testing.T) {
	var delivered string
	env := newTestEngine(t, func(cfg *Config) {
		cfg.Delivery.SendVerificationOTP = func(_ context.Context, phone, code string) (*DeliveryVeto, error) {
			delivered = phone + ":" + code
			return nil, nil
		}
	})

	code, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if err != nil {
		t.Fatalf("SendVerificationOTP error: %v", err)
	}
	if delivered != "+15550100:"+code {
		t.Fatalf("delivery saw %q, want code %q", delivered, code)
	}
}

func TestSendVerificationOTPNoDeliveryConfigured(t *testing.T) {
	env := newTestEngine(t, func(cfg *Config) {
		cfg.Delivery.SendVerificationOTP = nil
	})

	_, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if !errors.Is(err, ErrOTPDeliveryNotConfigured) {
		t.Fatalf("expected ErrOTPDeliveryNotConfigured, got %v", err)
	}
}

func TestSendVerificationOTPDeliveryFailureDoesNotPersist(t *testing.T) {
	env := newTestEngine(t, func(cfg *Config) {
		cfg.Delivery.SendVerificationOTP = func(context.Context, string, string) (*DeliveryVeto, error) {
			return nil, errors.New("carrier down")
		}
	})

	_, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if !errors.Is(err, ErrOTPDeliveryFailed) {
		t.Fatalf("expected ErrOTPDeliveryFailed, got %v", err)
	}

	record, err := env.store.Find(context.Background(), "+15550100")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if record != nil {
		t.Fatal("failed delivery must not persist a code")
	}
}

func TestSendVerificationOTPVeto(t *testing.T) {
	env := newTestEngine(t, func(cfg *Config) {
		cfg.Delivery.SendVerificationOTP = func(context.Context, string, string) (*DeliveryVeto, error) {
			return &DeliveryVeto{Veto: true, Reason: "blocked region"}, nil
		}
	})

	_, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if !errors.Is(err, ErrOTPGenerationDeclined) {
		t.Fatalf("expected ErrOTPGenerationDeclined, got %v", err)
	}

	record, err := env.store.Find(context.Background(), "+15550100")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if record != nil {
		t.Fatal("vetoed issuance must not persist a code")
	}
}

func TestSendVerificationOTPInvalidNumber(t *testing.T) {
	env := newTestEngine(t, func(cfg *Config) {
		cfg.PhoneNumberValidator = func(p string) bool { return p == "+15550100" }
	})

	_, err := env.engine.SendVerificationOTP(context.Background(), "not-a-number")
	if !errors.Is(err, ErrInvalidPhoneNumber) {
		t.Fatalf("expected ErrInvalidPhoneNumber, got %v", err)
	}
}

func TestVerifyPhoneNumberMarksExistingUserVerified(t *testing.T) {
	env := newTestEngine(t, nil)
	user := env.users.addUser(User{PhoneNumber: "+15550100"})

	code, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if err != nil {
		t.Fatalf("SendVerificationOTP error: %v", err)
	}

	result, err := env.engine.VerifyPhoneNumber(context.Background(), "+15550100", code, VerifyOptions{})
	if err != nil {
		t.Fatalf("VerifyPhoneNumber error: %v", err)
	}
	if !result.Status {
		t.Fatal("expected status true")
	}
	if result.User == nil || result.User.ID != user.ID {
		t.Fatalf("expected user %s, got %+v", user.ID, result.User)
	}
	if !result.User.PhoneNumberVerified {
		t.Fatal("expected user marked verified")
	}
	if result.Session == nil {
		t.Fatal("expected a session")
	}
}

func TestVerifyPhoneNumberIsSingleUse(t *testing.T) {
	env := newTestEngine(t, nil)
	env.users.addUser(User{PhoneNumber: "+15550100"})

	code, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if err != nil {
		t.Fatalf("SendVerificationOTP error: %v", err)
	}

	if _, err := env.engine.VerifyPhoneNumber(context.Background(), "+15550100", code, VerifyOptions{}); err != nil {
		t.Fatalf("first verify error: %v", err)
	}

	_, err = env.engine.VerifyPhoneNumber(context.Background(), "+15550100", code, VerifyOptions{})
	if !errors.Is(err, ErrOTPNotFound) {
		t.Fatalf("second verify: expected ErrOTPNotFound, got %v", err)
	}
}

func TestVerifyPhoneNumberWrongCode(t *testing.T) {
	env := newTestEngine(t, nil)
	env.users.addUser(User{PhoneNumber: "+15550100"})

	code, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if err != nil {
		t.Fatalf("SendVerificationOTP error: %v", err)
	}

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err = env.engine.VerifyPhoneNumber(context.Background(), "+15550100", wrong, VerifyOptions{})
	if !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}

	// A wrong submission does not consume the stored code.
	if _, err := env.engine.VerifyPhoneNumber(context.Background(), "+15550100", code, VerifyOptions{}); err != nil {
		t.Fatalf("correct code after wrong attempt: %v", err)
	}
}

func TestVerifyPhoneNumberExpiredBeatsWrongCode(t *testing.T) {
	env := newTestEngine(t, nil)
	env.users.addUser(User{PhoneNumber: "+15550100"})

	code, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if err != nil {
		t.Fatalf("SendVerificationOTP error: %v", err)
	}

	env.clock.Advance(6 * time.Minute)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err = env.engine.VerifyPhoneNumber(context.Background(), "+15550100", wrong, VerifyOptions{})
	if !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expired record with wrong code: expected ErrOTPExpired, got %v", err)
	}

	// Expiry consumed the record; even the right code is gone now.
	_, err = env.engine.VerifyPhoneNumber(context.Background(), "+15550100", code, VerifyOptions{})
	if !errors.Is(err, ErrOTPNotFound) {
		t.Fatalf("expected ErrOTPNotFound after lazy delete, got %v", err)
	}
}

func TestVerifyPhoneNumberReissueInvalidatesOldCode(t *testing.T) {
	env := newTestEngine(t, nil)
	env.users.addUser(User{PhoneNumber: "+15550100"})

	first, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if err != nil {
		t.Fatalf("SendVerificationOTP error: %v", err)
	}
	second, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if err != nil {
		t.Fatalf("SendVerificationOTP error: %v", err)
	}

	if first != second {
		_, err = env.engine.VerifyPhoneNumber(context.Background(), "+15550100", first, VerifyOptions{})
		if !errors.Is(err, ErrInvalidOTP) {
			t.Fatalf("old code after reissue: expected ErrInvalidOTP, got %v", err)
		}
	}

	if _, err := env.engine.VerifyPhoneNumber(context.Background(), "+15550100", second, VerifyOptions{}); err != nil {
		t.Fatalf("latest code must verify: %v", err)
	}
}

func TestVerifyPhoneNumberUnknownNumberWithoutSignUp(t *testing.T) {
	env := newTestEngine(t, nil)

	code, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if err != nil {
		t.Fatalf("SendVerificationOTP error: %v", err)
	}

	result, err := env.engine.VerifyPhoneNumber(context.Background(), "+15550100", code, VerifyOptions{})
	if err != nil {
		t.Fatalf("VerifyPhoneNumber error: %v", err)
	}
	if !result.Status {
		t.Fatal("expected status true")
	}
	if result.User != nil || result.Session != nil {
		t.Fatalf("soft success must not carry user or session, got %+v", result)
	}
	if env.users.createCalls != 0 {
		t.Fatal("sign-up disabled must not create users")
	}
}

func TestVerifyPhoneNumberSignUpOnVerification(t *testing.T) {
	env := newTestEngine(t, func(cfg *Config) {
		cfg.SignUp.Enabled = true
		cfg.SignUp.TempEmail = func(phone string) string { return phone + "@temp.local" }
	})

	code, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if err != nil {
		t.Fatalf("SendVerificationOTP error: %v", err)
	}

	result, err := env.engine.VerifyPhoneNumber(context.Background(), "+15550100", code, VerifyOptions{})
	if err != nil {
		t.Fatalf("VerifyPhoneNumber error: %v", err)
	}
	if result.User == nil {
		t.Fatal("expected a provisioned user")
	}
	if result.User.Email != "+15550100@temp.local" {
		t.Fatalf("unexpected temp email %q", result.User.Email)
	}
	if result.User.Name != "+15550100" {
		t.Fatalf("temp name should default to the number, got %q", result.User.Name)
	}
	if !result.User.PhoneNumberVerified {
		t.Fatal("provisioned user must be verified")
	}
	if result.Session == nil {
		t.Fatal("expected a session for the new user")
	}
}

func TestVerifyPhoneNumberSignUpCustomTempName(t *testing.T) {
	env := newTestEngine(t, func(cfg *Config) {
		cfg.SignUp.Enabled = true
		cfg.SignUp.TempEmail = func(phone string) string { return phone + "@temp.local" }
		cfg.SignUp.TempName = func(string) string { return "new user" }
	})

	code, _ := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	result, err := env.engine.VerifyPhoneNumber(context.Background(), "+15550100", code, VerifyOptions{})
	if err != nil {
		t.Fatalf("VerifyPhoneNumber error: %v", err)
	}
	if result.User.Name != "new user" {
		t.Fatalf("unexpected temp name %q", result.User.Name)
	}
}

func TestVerifyPhoneNumberDisableSession(t *testing.T) {
	env := newTestEngine(t, nil)
	env.users.addUser(User{PhoneNumber: "+15550100"})

	code, _ := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	result, err := env.engine.VerifyPhoneNumber(context.Background(), "+15550100", code, VerifyOptions{DisableSession: true})
	if err != nil {
		t.Fatalf("VerifyPhoneNumber error: %v", err)
	}
	if result.Session != nil {
		t.Fatal("DisableSession must suppress session creation")
	}
	if env.sessions.createCalls != 0 {
		t.Fatal("no session should have been created")
	}
}

func TestVerifyPhoneNumberUpdatesSessionUser(t *testing.T) {
	env := newTestEngine(t, nil)
	owner := env.users.addUser(User{PhoneNumber: "+15550999", Email: "owner@example.com"})
	sess, err := env.sessions.CreateSession(context.Background(), owner.ID, SessionOptions{})
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}

	code, _ := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	result, err := env.engine.VerifyPhoneNumber(context.Background(), "+15550100", code, VerifyOptions{
		UpdatePhoneNumber: true,
		SessionToken:      sess.ID,
	})
	if err != nil {
		t.Fatalf("VerifyPhoneNumber error: %v", err)
	}
	if result.User.ID != owner.ID {
		t.Fatalf("expected session user %s, got %s", owner.ID, result.User.ID)
	}
	if result.User.PhoneNumber != "+15550100" || !result.User.PhoneNumberVerified {
		t.Fatalf("number not moved onto session user: %+v", result.User)
	}
	if result.Session == nil || result.Session.ID != sess.ID {
		t.Fatal("update branch must return the existing session, not a new one")
	}
}

func TestVerifyPhoneNumberUpdateWithoutSession(t *testing.T) {
	env := newTestEngine(t, nil)

	code, _ := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	_, err := env.engine.VerifyPhoneNumber(context.Background(), "+15550100", code, VerifyOptions{UpdatePhoneNumber: true})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyPhoneNumberUpdateBranchSkipsCallback(t *testing.T) {
	callbackRan := false
	env := newTestEngine(t, func(cfg *Config) {
		cfg.OnVerificationComplete = func(context.Context, string, *User) {
			callbackRan = true
		}
	})
	owner := env.users.addUser(User{PhoneNumber: "+15550999"})
	sess, _ := env.sessions.CreateSession(context.Background(), owner.ID, SessionOptions{})

	code, _ := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if _, err := env.engine.VerifyPhoneNumber(context.Background(), "+15550100", code, VerifyOptions{
		UpdatePhoneNumber: true,
		SessionToken:      sess.ID,
	}); err != nil {
		t.Fatalf("VerifyPhoneNumber error: %v", err)
	}
	if callbackRan {
		t.Fatal("completion callback must not run on the update branch")
	}
}

func TestVerifyPhoneNumberCompletionCallback(t *testing.T) {
	var gotPhone string
	var gotUser *User
	env := newTestEngine(t, func(cfg *Config) {
		cfg.OnVerificationComplete = func(_ context.Context, phone string, user *User) {
			gotPhone = phone
			gotUser = user
		}
	})
	existing := env.users.addUser(User{PhoneNumber: "+15550100"})

	code, _ := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if _, err := env.engine.VerifyPhoneNumber(context.Background(), "+15550100", code, VerifyOptions{}); err != nil {
		t.Fatalf("VerifyPhoneNumber error: %v", err)
	}
	if gotPhone != "+15550100" {
		t.Fatalf("callback phone %q", gotPhone)
	}
	if gotUser == nil || gotUser.ID != existing.ID {
		t.Fatalf("callback user %+v", gotUser)
	}
}

func TestVerificationAndResetNamespacesAreIndependent(t *testing.T) {
	env := newTestEngine(t, nil)
	user := env.users.addUser(User{PhoneNumber: "+15550100"})
	env.accounts.setPassword(user.ID, "hashed:old")

	verifyCode, err := env.engine.SendVerificationOTP(context.Background(), "+15550100")
	if err != nil {
		t.Fatalf("SendVerificationOTP error: %v", err)
	}
	if err := env.engine.RequestPasswordReset(context.Background(), "+15550100"); err != nil {
		t.Fatalf("RequestPasswordReset error: %v", err)
	}

	resetRecord, err := env.store.Find(context.Background(), "+15550100-forget-password")
	if err != nil || resetRecord == nil {
		t.Fatalf("reset record missing: %v", err)
	}

	// A reset code never verifies a number.
	if resetRecord.Code != verifyCode {
		_, err = env.engine.VerifyPhoneNumber(context.Background(), "+15550100", resetRecord.Code, VerifyOptions{})
		if !errors.Is(err, ErrInvalidOTP) {
			t.Fatalf("reset code against verify: expected ErrInvalidOTP, got %v", err)
		}
	}

	// The verification code is still live after the reset request.
	if _, err := env.engine.VerifyPhoneNumber(context.Background(), "+15550100", verifyCode, VerifyOptions{}); err != nil {
		t.Fatalf("verification code should survive reset request: %v", err)
	}
}
