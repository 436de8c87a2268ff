package betterauth

import (
	"context"
	"io"
	"net/http"
	"time"

	internalaudit "github.com/AlexeyZoz/better-auth/internal/audit"
	internalmetrics "github.com/AlexeyZoz/better-auth/internal/metrics"
	"github.com/AlexeyZoz/better-auth/session"
)

// CredentialProviderID marks the password account among a user's linked
// accounts. Phone+password sign-in resolves its hash from this account.
const CredentialProviderID = "credential"

// User is the host identity record as seen by this package. PhoneNumber is
// unique across users; PhoneNumberVerified is never settable through normal
// user-input channels — only the verification flows flip it to true.
type User struct {
	ID                  string
	Email               string
	Name                string
	PhoneNumber         string
	PhoneNumberVerified bool
}

// Account is a credential record linked to a user. A user signing in with a
// password owns exactly one account with [CredentialProviderID].
type Account struct {
	ID           string
	UserID       string
	ProviderID   string
	PasswordHash string
}

// CreateUserInput is the input for [UserStore.CreateUser] when
// sign-up-on-verification provisions a user from a verified phone number.
type CreateUserInput struct {
	Email               string
	Name                string
	PhoneNumber         string
	PhoneNumberVerified bool
}

// UpdateUserInput carries partial user mutations. Nil fields are left
// untouched by the store.
type UpdateUserInput struct {
	PhoneNumber         *string
	PhoneNumberVerified *bool
}

// UserStore is implemented by the host identity provider. Lookup methods
// return (nil, nil) when no user matches; a non-nil error signals a store
// failure, never absence.
type UserStore interface {
	FindUserByPhoneNumber(ctx context.Context, phoneNumber string) (*User, error)
	FindUserByID(ctx context.Context, userID string) (*User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, userID string, input UpdateUserInput) (*User, error)
}

// AccountStore resolves credential accounts for phone+password sign-in and
// persists replacement password hashes for the recovery flow.
type AccountStore interface {
	FindAccountsByUserID(ctx context.Context, userID string) ([]Account, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// VerificationRecord is a single live OTP slot. At most one record exists per
// identifier; issuing a new code for an identifier supersedes any prior
// unconsumed one.
type VerificationRecord struct {
	Identifier string
	Code       string
	ExpiresAt  time.Time
}

// VerificationStore is the keyed single-slot store backing the OTP protocol.
// Find returns (nil, nil) when no record exists. Consume atomically performs
// the lookup/expiry/match/delete sequence and returns [ErrOTPNotFound],
// [ErrOTPExpired], or [ErrInvalidOTP]; the record is deleted on match and on
// observed expiry, and left in place on mismatch.
type VerificationStore interface {
	Upsert(ctx context.Context, identifier, code string, expiresAt time.Time) error
	Find(ctx context.Context, identifier string) (*VerificationRecord, error)
	Delete(ctx context.Context, identifier string) error
	Consume(ctx context.Context, identifier, code string) error
}

// PasswordHasher hashes and verifies credential passwords.
// [password.Argon2] is the default implementation.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// Session is the session record issued after sign-in or verification.
type Session = session.Session

// SessionOptions carries request-scoped metadata into session creation.
type SessionOptions = session.Options

// SessionService issues and resolves sessions and owns the cookie transport.
// [session.Service] is the default redis-backed implementation.
type SessionService interface {
	CreateSession(ctx context.Context, userID string, opts SessionOptions) (*Session, error)
	GetSession(ctx context.Context, token string) (*Session, error)
	Token(sess *Session) (string, error)
	SetSessionCookie(w http.ResponseWriter, sess *Session)
	TokenFromRequest(r *http.Request) (string, bool)
}

// DeliveryVeto is the optional signal returned by [SendOTPFunc]. When Veto is
// set the whole issuance aborts with [ErrOTPGenerationDeclined] before any
// record is persisted; Reason, when non-empty, is wrapped into the error.
type DeliveryVeto struct {
	Veto   bool
	Reason string
}

// SendOTPFunc transmits a verification code out-of-band (SMS etc.). It may
// return a [DeliveryVeto] to refuse issuance for numbers without a registered
// delivery channel.
type SendOTPFunc func(ctx context.Context, phoneNumber, code string) (*DeliveryVeto, error)

// SendResetOTPFunc transmits a password-recovery code out-of-band. It carries
// no veto signal and its failure does not abort the recovery request.
type SendResetOTPFunc func(ctx context.Context, phoneNumber, code string) error

// OnVerificationFunc runs after a user is finalized by phone verification and
// before any session issuance. Best-effort: its outcome does not affect the
// verification result.
type OnVerificationFunc func(ctx context.Context, phoneNumber string, user *User)

// SignInResult is returned by [Engine.SignInPhoneNumber].
type SignInResult struct {
	User    *User
	Session *Session
}

// VerifyOptions steers the account-linking step of [Engine.VerifyPhoneNumber].
type VerifyOptions struct {
	// UpdatePhoneNumber attaches the verified number to the session's current
	// user instead of resolving a user by number. Requires SessionToken.
	UpdatePhoneNumber bool
	// DisableSession suppresses session issuance; Session is nil on the result.
	DisableSession bool
	// SessionToken identifies the active session for UpdatePhoneNumber.
	SessionToken string
}

// VerifyResult is returned by [Engine.VerifyPhoneNumber]. Session is nil when
// session issuance was disabled or no session service is configured.
type VerifyResult struct {
	Status  bool
	User    *User
	Session *Session
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricSignInSuccess counts successful phone+password sign-ins.
	MetricSignInSuccess = internalmetrics.MetricSignInSuccess
	// MetricSignInFailure counts rejected phone+password sign-ins.
	MetricSignInFailure = internalmetrics.MetricSignInFailure
	// MetricOTPSent counts persisted verification codes.
	MetricOTPSent = internalmetrics.MetricOTPSent
	// MetricOTPSendFailure counts vetoed or failed issuance attempts.
	MetricOTPSendFailure = internalmetrics.MetricOTPSendFailure
	// MetricOTPVerifySuccess counts consumed verification codes.
	MetricOTPVerifySuccess = internalmetrics.MetricOTPVerifySuccess
	// MetricOTPVerifyFailure counts rejected verification attempts.
	MetricOTPVerifyFailure = internalmetrics.MetricOTPVerifyFailure
	// MetricUserProvisioned counts users created by sign-up-on-verification.
	MetricUserProvisioned = internalmetrics.MetricUserProvisioned
	// MetricPasswordResetRequest counts accepted recovery-code requests.
	MetricPasswordResetRequest = internalmetrics.MetricPasswordResetRequest
	// MetricPasswordResetSuccess counts completed password replacements.
	MetricPasswordResetSuccess = internalmetrics.MetricPasswordResetSuccess
	// MetricPasswordResetFailure counts rejected password replacements.
	MetricPasswordResetFailure = internalmetrics.MetricPasswordResetFailure
	// MetricSessionCreated counts sessions issued by this engine.
	MetricSessionCreated = internalmetrics.MetricSessionCreated
)

// Metrics holds the engine's atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot
