// Package session stores the currently valid refresh token per (principal, device)
// in an expiring key-value store. At most one record exists per key; writing a new
// token for a device overwrites (and thereby invalidates) the previous one.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no record exists for the (principal, device) key,
// whether it never existed, was deleted, or expired.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "refresh:"

// Key returns the store key for a (principal, device) pair.
// The refresh:{email}:{deviceId} encoding matches the keys written by earlier
// deployments, so existing records stay readable across the migration.
func Key(email, deviceID string) string {
	return keyPrefix + email + ":" + deviceID
}

// keyspace returns the match pattern covering every device of a principal.
func keyspace(email string) string {
	return keyPrefix + email + ":*"
}

// Store is an expiring key-value store of refresh tokens keyed by (principal, device).
// The store enforces TTL itself; callers never sweep for expiry.
type Store interface {
	// Put records token as the sole valid refresh token for (email, deviceID),
	// unconditionally overwriting any previous record. The record expires after ttl.
	Put(ctx context.Context, email, deviceID, token string, ttl time.Duration) error
	// Get returns the current refresh token for (email, deviceID), or ErrNotFound.
	Get(ctx context.Context, email, deviceID string) (string, error)
	// Delete removes the record for (email, deviceID). Deleting an absent key is not an error.
	Delete(ctx context.Context, email, deviceID string) error
	// DeleteAll removes every record for the principal across all devices.
	// Deletions are idempotent; a concurrent Put for another device is not lost.
	DeleteAll(ctx context.Context, email string) error
}
