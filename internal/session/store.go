package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport-level Redis failures. Absence of a
// record is never reported through it.
var ErrRedisUnavailable = errors.New("redis unavailable")

// keyPrefix namespaces login records in Redis.
const keyPrefix = "login:"

// Store is the session-store contract: one live record per user, TTL-based
// expiry, per-key atomicity, safe for arbitrary concurrent use.
type Store interface {
	// Put stores rec under the user's key, replacing any prior record.
	Put(ctx context.Context, rec *Record, ttl time.Duration) error
	// Get returns the live record for userID, or nil when none exists.
	Get(ctx context.Context, userID string) (*Record, error)
	// Delete removes the record for userID. Deleting an absent record is
	// not an error.
	Delete(ctx context.Context, userID string) error
}

// RedisStore is the Redis-backed [Store]. Each operation is a single
// round-trip; transient failures are surfaced, not retried.
type RedisStore struct {
	redis redis.UniversalClient
}

// NewRedisStore creates a [RedisStore] on the given client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{redis: client}
}

func (s *RedisStore) key(userID string) string {
	return keyPrefix + userID
}

// Put overwrites the user's session slot. A fresh login silently replaces
// the previous session, so earlier tokens for the same user stop
// authenticating even before they expire.
func (s *RedisStore) Put(ctx context.Context, rec *Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.redis.Set(ctx, s.key(rec.UserID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get returns (nil, nil) when the user has no live session.
func (s *RedisStore) Get(ctx context.Context, userID string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	return rec, nil
}

// Delete removes the user's session slot.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
