package betterauth

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	verificationKeyPrefix = "pnv"
	verificationRecordV1  = 1
	consumeMaxRetries     = 4
)

// RedisVerificationStore is the default [VerificationStore]. Records live in
// redis with a TTL of expiry plus a retention window, so a code that has
// expired but not yet aged out is still distinguishable from one that never
// existed. Stale records are deleted lazily on read.
type RedisVerificationStore struct {
	redis     *redis.Client
	prefix    string
	retention time.Duration

	now func() time.Time
}

// NewVerificationStore builds a redis-backed store. prefix may be empty, in
// which case keys use the default "pnv" namespace. retention controls how
// long expired records stay observable.
func NewVerificationStore(redisClient *redis.Client, prefix string, retention time.Duration) *RedisVerificationStore {
	if prefix == "" {
		prefix = verificationKeyPrefix
	}
	return &RedisVerificationStore{
		redis:     redisClient,
		prefix:    prefix,
		retention: retention,
		now:       time.Now,
	}
}

func (s *RedisVerificationStore) key(identifier string) string {
	return s.prefix + ":" + identifier
}

// Upsert stores the code for the identifier, replacing any previous record
// unconditionally. One live code per identifier.
func (s *RedisVerificationStore) Upsert(ctx context.Context, identifier, code string, expiresAt time.Time) error {
	encoded, err := encodeVerificationRecord(code, expiresAt)
	if err != nil {
		return err
	}

	ttl := expiresAt.Add(s.retention).Sub(s.now())
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := s.redis.Set(ctx, s.key(identifier), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	return nil
}

// Find returns the record for the identifier, or (nil, nil) when absent.
// Expired records are returned as-is; expiry policy belongs to the caller.
func (s *RedisVerificationStore) Find(ctx context.Context, identifier string) (*VerificationRecord, error) {
	data, err := s.redis.Get(ctx, s.key(identifier)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}

	code, expiresAt, err := decodeVerificationRecord(data)
	if err != nil {
		return nil, err
	}
	return &VerificationRecord{
		Identifier: identifier,
		Code:       code,
		ExpiresAt:  expiresAt,
	}, nil
}

// Delete removes the record. Deleting an absent record is not an error.
func (s *RedisVerificationStore) Delete(ctx context.Context, identifier string) error {
	if err := s.redis.Del(ctx, s.key(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	return nil
}

// Consume atomically redeems the code under WATCH. Outcomes, checked in
// order inside the transaction:
//
//   - absent record: [ErrOTPNotFound]
//   - expired record: deleted, [ErrOTPExpired], regardless of the value
//   - value mismatch: [ErrInvalidOTP], record kept
//   - match: record deleted in the same transaction, nil
//
// A concurrent writer aborts the transaction and the compare re-runs against
// the new state, so two racing submissions cannot both redeem one code.
func (s *RedisVerificationStore) Consume(ctx context.Context, identifier, code string) error {
	key := s.key(identifier)

	for i := 0; i < consumeMaxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return ErrOTPNotFound
				}
				return err
			}

			stored, expiresAt, err := decodeVerificationRecord(data)
			if err != nil {
				return err
			}

			if !s.now().Before(expiresAt) {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrOTPExpired
			}

			if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
				return ErrInvalidOTP
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, ErrOTPNotFound),
				errors.Is(err, ErrOTPExpired),
				errors.Is(err, ErrInvalidOTP):
				return err
			default:
				return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
			}
		}
		return nil
	}

	return ErrOTPNotFound
}

func encodeVerificationRecord(code string, expiresAt time.Time) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(verificationRecordV1)
	if err := binary.Write(&buf, binary.BigEndian, expiresAt.Unix()); err != nil {
		return nil, err
	}
	if len(code) > 65535 {
		return nil, errors.New("verification code too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(code))); err != nil {
		return nil, err
	}
	buf.WriteString(code)

	return buf.Bytes(), nil
}

func decodeVerificationRecord(data []byte) (string, time.Time, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return "", time.Time{}, err
	}
	if version != verificationRecordV1 {
		return "", time.Time{}, errors.New("invalid verification record version")
	}

	var expiresUnix int64
	if err := binary.Read(reader, binary.BigEndian, &expiresUnix); err != nil {
		return "", time.Time{}, err
	}

	var codeLen uint16
	if err := binary.Read(reader, binary.BigEndian, &codeLen); err != nil {
		return "", time.Time{}, err
	}
	code := make([]byte, codeLen)
	if _, err := io.ReadFull(reader, code); err != nil {
		return "", time.Time{}, err
	}

	return string(code), time.Unix(expiresUnix, 0), nil
}
