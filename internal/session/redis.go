package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// opTimeout bounds every Redis call so a stalled store surfaces as a transient
// failure instead of hanging the request.
const opTimeout = 3 * time.Second

// RedisStore implements Store on Redis. TTL is enforced by Redis key expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore returns a Store backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put sets the refresh token for (email, deviceID) with the given TTL, overwriting
// any previous record.
func (s *RedisStore) Put(ctx context.Context, email, deviceID, token string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.client.Set(ctx, Key(email, deviceID), token, ttl).Err()
}

// Get returns the refresh token for (email, deviceID), or ErrNotFound if the key
// is absent or has expired.
func (s *RedisStore) Get(ctx context.Context, email, deviceID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	val, err := s.client.Get(ctx, Key(email, deviceID)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Delete removes the record for (email, deviceID). Absent keys are not an error.
func (s *RedisStore) Delete(ctx context.Context, email, deviceID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.client.Del(ctx, Key(email, deviceID)).Err()
}

// DeleteAll scans the principal's keyspace and deletes every device record.
// Scan-then-delete: a Put for a different device racing the sweep keeps that
// device's record, which is the documented behavior.
func (s *RedisStore) DeleteAll(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyspace(email), 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
