package session

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature or claim
// validation.
var ErrInvalidToken = errors.New("invalid session token")

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func signToken(signingKey []byte, sess *Session) (string, error) {
	claims := sessionClaims{
		SessionID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

func parseToken(signingKey []byte, token string) (string, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}
