package internaldefs

import (
	betterauth "github.com/AlexeyZoz/better-auth"
)

// CounterDef binds an engine counter to its stable exported name.
type CounterDef struct {
	ID   betterauth.MetricID
	Name string
	Help string
}

// CounterDefs lists every engine counter in export order.
var CounterDefs = []CounterDef{
	{ID: betterauth.MetricSignInSuccess, Name: "betterauth_sign_in_success_total", Help: "Successful phone and password sign-ins."},
	{ID: betterauth.MetricSignInFailure, Name: "betterauth_sign_in_failure_total", Help: "Rejected phone and password sign-ins."},
	{ID: betterauth.MetricOTPSent, Name: "betterauth_otp_sent_total", Help: "Verification codes persisted for delivery."},
	{ID: betterauth.MetricOTPSendFailure, Name: "betterauth_otp_send_failure_total", Help: "Issuance attempts vetoed or failed in delivery."},
	{ID: betterauth.MetricOTPVerifySuccess, Name: "betterauth_otp_verify_success_total", Help: "Verification codes redeemed."},
	{ID: betterauth.MetricOTPVerifyFailure, Name: "betterauth_otp_verify_failure_total", Help: "Rejected verification attempts."},
	{ID: betterauth.MetricUserProvisioned, Name: "betterauth_user_provisioned_total", Help: "Users created by sign-up-on-verification."},
	{ID: betterauth.MetricPasswordResetRequest, Name: "betterauth_password_reset_request_total", Help: "Accepted password reset requests."},
	{ID: betterauth.MetricPasswordResetSuccess, Name: "betterauth_password_reset_success_total", Help: "Completed password replacements."},
	{ID: betterauth.MetricPasswordResetFailure, Name: "betterauth_password_reset_failure_total", Help: "Rejected password replacements."},
	{ID: betterauth.MetricSessionCreated, Name: "betterauth_session_created_total", Help: "Sessions issued by the engine."},
}

// AuditDroppedName is the counter for audit events discarded under backpressure.
const AuditDroppedName = "betterauth_audit_dropped_total"

// AuditDroppedHelp documents the audit backpressure counter.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
