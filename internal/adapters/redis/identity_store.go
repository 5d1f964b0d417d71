// Package redis provides Redis-backed adapters for identity resolution and live notifications.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/placementhub/placement-engine/internal/core"
	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/ports"
)

// DefaultActorTTL bounds how long a resolved actor is served from cache.
const DefaultActorTTL = 30 * time.Second

// revocationFallbackTTL applies to tokens without an expiry.
const revocationFallbackTTL = 30 * 24 * time.Hour

var (
	_ ports.ActorCache       = (*ActorCache)(nil)
	_ ports.TokenRevocations = (*TokenRevocations)(nil)
)

// ActorCache stores resolved actors as JSON with a short TTL.
type ActorCache struct {
	cache core.CacheRepository
	ttl   time.Duration
}

// NewActorCache creates an actor cache. A non-positive ttl uses DefaultActorTTL.
func NewActorCache(cache core.CacheRepository, ttl time.Duration) *ActorCache {
	if ttl <= 0 {
		ttl = DefaultActorTTL
	}
	return &ActorCache{cache: cache, ttl: ttl}
}

func (c *ActorCache) Get(ctx context.Context, actorID string) (domainauth.Actor, bool, error) {
	if actorID == "" {
		return domainauth.Actor{}, false, nil
	}
	data, err := c.cache.Get(ctx, core.ActorCacheKey(actorID))
	if err != nil {
		return domainauth.Actor{}, false, err
	}
	if data == nil {
		return domainauth.Actor{}, false, nil
	}
	var actor domainauth.Actor
	if err := json.Unmarshal(data, &actor); err != nil {
		return domainauth.Actor{}, false, fmt.Errorf("unmarshal cached actor: %w", err)
	}
	return actor, true, nil
}

func (c *ActorCache) Set(ctx context.Context, actor domainauth.Actor) error {
	if actor.ID == "" {
		return errors.New("actor ID cannot be empty")
	}
	data, err := json.Marshal(actor)
	if err != nil {
		return fmt.Errorf("marshal actor: %w", err)
	}
	return c.cache.Set(ctx, core.ActorCacheKey(actor.ID), data, c.ttl)
}

func (c *ActorCache) Invalidate(ctx context.Context, actorID string) error {
	if actorID == "" {
		return nil
	}
	_, err := c.cache.Delete(ctx, core.ActorCacheKey(actorID))
	return err
}

// TokenRevocations marks token ids as revoked until the token would have expired anyway.
type TokenRevocations struct {
	cache core.CacheRepository
	now   func() time.Time
}

// NewTokenRevocations creates a revocation list over cache.
func NewTokenRevocations(cache core.CacheRepository) *TokenRevocations {
	return &TokenRevocations{cache: cache, now: time.Now}
}

func (r *TokenRevocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("token id cannot be empty")
	}
	ttl := revocationFallbackTTL
	if !expiresAt.IsZero() {
		ttl = expiresAt.Sub(r.now())
		if ttl <= 0 {
			// Already expired; the verifier rejects it on its own.
			return nil
		}
	}
	return r.cache.Set(ctx, core.RevokedTokenKey(tokenID), []byte("1"), ttl)
}

func (r *TokenRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	return r.cache.Exists(ctx, core.RevokedTokenKey(tokenID))
}
