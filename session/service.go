package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Config holds session service policy. Zero durations and empty strings
// take the defaults noted per field.
type Config struct {
	// SigningKey signs session JWTs. Required, at least 32 bytes.
	SigningKey []byte
	// RedisPrefix namespaces session keys. Default "bas".
	RedisPrefix string
	// TTL is the default session lifetime. Default 7 days.
	TTL time.Duration
	// RememberTTL applies to sessions created with Remember set.
	// Default 30 days.
	RememberTTL time.Duration
	// CookieName defaults to "better_auth_session".
	CookieName string
	// CookieSecure marks the cookie Secure. Off by default so local
	// development over plain HTTP works.
	CookieSecure bool
	// CookieSameSite defaults to [http.SameSiteLaxMode].
	CookieSameSite http.SameSite
}

// Service creates and resolves sessions. Safe for concurrent use.
type Service struct {
	store *Store
	cfg   Config

	now func() time.Time
}

func NewService(redisClient *redis.Client, cfg Config) (*Service, error) {
	if len(cfg.SigningKey) < 32 {
		return nil, errors.New("session signing key must be at least 32 bytes")
	}
	if cfg.RedisPrefix == "" {
		cfg.RedisPrefix = "bas"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	if cfg.RememberTTL <= 0 {
		cfg.RememberTTL = 30 * 24 * time.Hour
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "better_auth_session"
	}
	if cfg.CookieSameSite == 0 {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}

	return &Service{
		store: NewStore(redisClient, cfg.RedisPrefix),
		cfg:   cfg,
		now:   time.Now,
	}, nil
}

// CreateSession persists a new session for the user and returns it.
func (s *Service) CreateSession(ctx context.Context, userID string, opts Options) (*Session, error) {
	ttl := s.cfg.TTL
	if opts.Remember {
		ttl = s.cfg.RememberTTL
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		IP:        opts.IP,
		UserAgent: opts.UserAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Remember:  opts.Remember,
	}
	if err := s.store.Save(ctx, sess, ttl); err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSession resolves a signed token back to its live session record.
// Returns [ErrSessionNotFound] for revoked or expired sessions and
// [ErrInvalidToken] for tokens that fail validation.
func (s *Service) GetSession(ctx context.Context, token string) (*Session, error) {
	sessionID, err := parseToken(s.cfg.SigningKey, token)
	if err != nil {
		return nil, err
	}
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.now().Before(sess.ExpiresAt) {
		_ = s.store.Delete(ctx, sessionID)
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// RevokeSession deletes the session behind a token.
func (s *Service) RevokeSession(ctx context.Context, token string) error {
	sessionID, err := parseToken(s.cfg.SigningKey, token)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, sessionID)
}

// Token signs a bearer token for the session.
func (s *Service) Token(sess *Session) (string, error) {
	return signToken(s.cfg.SigningKey, sess)
}
