package betterauth

// Audit event types emitted by the engine. Stable strings; sinks may key on
// them.
const (
	auditEventSignIn               = "phone.sign_in"
	auditEventOTPSend              = "phone.otp.send"
	auditEventOTPVerify            = "phone.otp.verify"
	auditEventPasswordResetRequest = "phone.password_reset.request"
	auditEventPasswordReset        = "phone.password_reset.confirm"
)
