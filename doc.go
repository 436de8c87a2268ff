// Package betterauth provides phone-number-based authentication as an add-on
// to a host identity provider: password sign-in keyed by phone number, and a
// one-time-code (OTP) protocol for proving phone ownership, with optional
// account provisioning on first verification.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// betterauth is the public surface. It exposes [Engine], [Builder], [Config],
// the collaborator contracts ([UserStore], [AccountStore], [VerificationStore],
// [PasswordHasher], [SessionService]), and value types. User and account
// records are owned by the host; this package only reads them and requests
// mutations through the collaborator interfaces.
//
// # What this package must NOT do
//
//   - Hash or compare passwords itself (delegates to [PasswordHasher]).
//   - Transmit codes out-of-band (delegates to the delivery callbacks).
//   - Parse or normalize phone numbers (delegates to the configured validator).
//   - Hold mutable per-request state: all mutable state lives in the
//     collaborator stores, whose consistency model the engine inherits.
package betterauth
