package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrSessionNotFound is returned when the session does not exist or has
	// already expired out of redis.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRedisUnavailable wraps transport-level redis failures.
	ErrRedisUnavailable = errors.New("session redis unavailable")
)

// Store persists session records in redis as JSON blobs with a TTL matching
// the session expiry.
type Store struct {
	redis  *redis.Client
	prefix string
}

func NewStore(redisClient *redis.Client, prefix string) *Store {
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

func (s *Store) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
