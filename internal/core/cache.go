// Package core defines the repository ports shared by the service and data layers.
package core

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// The core defines the interface and the data layer provides implementations.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Exists checks if a key exists in the cache.
	Exists(ctx context.Context, key string) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// Cache key namespaces.
const (
	ActorCacheKeyPrefix      = "placement:actor:"
	RevokedTokenKeyPrefix    = "placement:revoked:"
	NotificationChannelTopic = "placement:notifications"
)

// ActorCacheKey returns the cache key for a resolved actor.
func ActorCacheKey(actorID string) string { return ActorCacheKeyPrefix + actorID }

// RevokedTokenKey returns the cache key marking a token id as revoked.
func RevokedTokenKey(tokenID string) string { return RevokedTokenKeyPrefix + tokenID }
