// Package httpapi exposes the engine's phone-number flows over HTTP with
// JSON request and response bodies.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	betterauth "github.com/AlexeyZoz/better-auth"
)

// Handler mounts the phone-number endpoints on a ServeMux:
//
//	POST /sign-in/phone-number
//	POST /phone-number/send-otp
//	POST /phone-number/verify
//	POST /phone-number/request-password-reset
//	POST /phone-number/reset-password
func Handler(engine *betterauth.Engine, sessions betterauth.SessionService) http.Handler {
	h := &handler{engine: engine, sessions: sessions}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /sign-in/phone-number", h.signIn)
	mux.HandleFunc("POST /phone-number/send-otp", h.sendOTP)
	mux.HandleFunc("POST /phone-number/verify", h.verify)
	mux.HandleFunc("POST /phone-number/request-password-reset", h.requestPasswordReset)
	mux.HandleFunc("POST /phone-number/reset-password", h.resetPassword)
	return mux
}

type handler struct {
	engine   *betterauth.Engine
	sessions betterauth.SessionService
}

type userPayload struct {
	ID                  string `json:"id"`
	Email               string `json:"email"`
	Name                string `json:"name"`
	PhoneNumber         string `json:"phoneNumber"`
	PhoneNumberVerified bool   `json:"phoneNumberVerified"`
}

func toUserPayload(u *betterauth.User) *userPayload {
	if u == nil {
		return nil
	}
	return &userPayload{
		ID:                  u.ID,
		Email:               u.Email,
		Name:                u.Name,
		PhoneNumber:         u.PhoneNumber,
		PhoneNumberVerified: u.PhoneNumberVerified,
	}
}

func (h *handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
		Password    string `json:"password"`
		RememberMe  bool   `json:"rememberMe"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.engine.SignInPhoneNumber(requestContext(r), req.PhoneNumber, req.Password, req.RememberMe)
	if err != nil {
		writeError(w, err)
		return
	}

	h.sessions.SetSessionCookie(w, result.Session)
	var token any
	if signed, err := h.sessions.Token(result.Session); err == nil {
		token = signed
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":  toUserPayload(result.User),
		"token": token,
	})
}

func (h *handler) sendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	code, err := h.engine.SendVerificationOTP(requestContext(r), req.PhoneNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"code": code,
	})
}

func (h *handler) verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber       string `json:"phoneNumber"`
		Code              string `json:"code"`
		UpdatePhoneNumber bool   `json:"updatePhoneNumber"`
		DisableSession    bool   `json:"disableSession"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	opts := betterauth.VerifyOptions{
		UpdatePhoneNumber: req.UpdatePhoneNumber,
		DisableSession:    req.DisableSession,
	}
	if token, ok := h.sessions.TokenFromRequest(r); ok {
		opts.SessionToken = token
	}

	result, err := h.engine.VerifyPhoneNumber(requestContext(r), req.PhoneNumber, req.Code, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	var token any
	if result.Session != nil {
		h.sessions.SetSessionCookie(w, result.Session)
		if signed, err := h.sessions.Token(result.Session); err == nil {
			token = signed
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": result.Status,
		"token":  token,
		"user":   toUserPayload(result.User),
	})
}

func (h *handler) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.engine.RequestPasswordReset(requestContext(r), req.PhoneNumber); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": true})
}

func (h *handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.engine.ResetPassword(requestContext(r), req.PhoneNumber, req.OTP, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": true})
}

func requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ctx = betterauth.WithClientIP(ctx, host)
	}
	if ua := r.UserAgent(); ua != "" {
		ctx = betterauth.WithUserAgent(ctx, ua)
	}
	return ctx
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]string{
				"code":    "INVALID_BODY",
				"message": "malformed JSON body",
			},
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), map[string]any{
		"error": map[string]string{
			"code":    codeForError(err),
			"message": err.Error(),
		},
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, betterauth.ErrInvalidPhoneNumber),
		errors.Is(err, betterauth.ErrOTPNotFound),
		errors.Is(err, betterauth.ErrOTPExpired),
		errors.Is(err, betterauth.ErrInvalidOTP),
		errors.Is(err, betterauth.ErrPhoneNumberNotRegistered),
		errors.Is(err, betterauth.ErrPasswordPolicy):
		return http.StatusBadRequest
	case errors.Is(err, betterauth.ErrInvalidPhoneNumberOrPassword),
		errors.Is(err, betterauth.ErrUnauthorized),
		errors.Is(err, betterauth.ErrOTPGenerationDeclined):
		return http.StatusUnauthorized
	case errors.Is(err, betterauth.ErrOTPDeliveryNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func codeForError(err error) string {
	switch {
	case errors.Is(err, betterauth.ErrInvalidPhoneNumber):
		return "INVALID_PHONE_NUMBER"
	case errors.Is(err, betterauth.ErrInvalidPhoneNumberOrPassword):
		return "INVALID_PHONE_NUMBER_OR_PASSWORD"
	case errors.Is(err, betterauth.ErrOTPNotFound):
		return "OTP_NOT_FOUND"
	case errors.Is(err, betterauth.ErrOTPExpired):
		return "OTP_EXPIRED"
	case errors.Is(err, betterauth.ErrInvalidOTP):
		return "INVALID_OTP"
	case errors.Is(err, betterauth.ErrOTPGenerationDeclined):
		return "OTP_GENERATION_DECLINED"
	case errors.Is(err, betterauth.ErrOTPDeliveryNotConfigured):
		return "OTP_DELIVERY_NOT_CONFIGURED"
	case errors.Is(err, betterauth.ErrPhoneNumberNotRegistered):
		return "PHONE_NUMBER_NOT_REGISTERED"
	case errors.Is(err, betterauth.ErrPasswordPolicy):
		return "INVALID_PASSWORD"
	case errors.Is(err, betterauth.ErrUnauthorized):
		return "UNAUTHORIZED"
	default:
		return "INTERNAL_ERROR"
	}
}
