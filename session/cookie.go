package session

import (
	"net/http"
	"strings"
)

// SetSessionCookie writes the session token as an HTTP cookie scoped to the
// configured name and attributes.
func (s *Service) SetSessionCookie(w http.ResponseWriter, sess *Session) {
	token, err := s.Token(sess)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: s.cfg.CookieSameSite,
	})
}

// TokenFromRequest extracts the session token, preferring the cookie and
// falling back to an Authorization bearer header.
func (s *Service) TokenFromRequest(r *http.Request) (string, bool) {
	if c, err := r.Cookie(s.cfg.CookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
		return token, true
	}
	return "", false
}
