package auth

// Package auth contains simple hand-written test doubles for identity ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	"github.com/placementhub/placement-engine/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialVerifier    = (*StaticVerifier)(nil)
	_ ports.TokenRevocations      = (*MemoryRevocations)(nil)
	_ ports.ActorCache            = (*MemoryActorCache)(nil)
	_ ports.RoleMapper            = (*StaticRoleMapper)(nil)
	_ ports.NotificationPublisher = (*RecordingPublisher)(nil)
)

// StaticVerifier maps literal tokens to credentials.
// Unknown tokens fail with Unauthenticated unless VerifyFunc is set.
type StaticVerifier struct {
	VerifyFunc func(ctx context.Context, token string) (domainauth.Credential, error)

	mu     sync.Mutex
	tokens map[string]domainauth.Credential
	calls  int
}

// NewStaticVerifier creates a verifier with no known tokens.
func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{tokens: make(map[string]domainauth.Credential)}
}

// Add registers a token.
func (v *StaticVerifier) Add(token string, cred domainauth.Credential) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[token] = cred
}

// Calls returns the number of Verify invocations.
func (v *StaticVerifier) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

func (v *StaticVerifier) Verify(ctx context.Context, token string) (domainauth.Credential, error) {
	v.mu.Lock()
	v.calls++
	cred, ok := v.tokens[token]
	v.mu.Unlock()

	if v.VerifyFunc != nil {
		return v.VerifyFunc(ctx, token)
	}
	if !ok {
		return domainauth.Credential{}, apperrors.Unauthenticated("invalid token")
	}
	if !cred.ExpiresAt.IsZero() && time.Now().After(cred.ExpiresAt) {
		return domainauth.Credential{}, apperrors.Unauthenticated("token expired")
	}
	return cred, nil
}

// MemoryRevocations is an in-memory revocation list for unit tests.
type MemoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	Err     error
}

// NewMemoryRevocations creates an empty revocation list.
func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{revoked: make(map[string]time.Time)}
}

func (m *MemoryRevocations) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	if m.Err != nil {
		return m.Err
	}
	if tokenID == "" {
		return errors.New("token id cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !exp.IsZero() && time.Now().After(exp) {
		delete(m.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// MemoryActorCache is an in-memory ActorCache for unit tests.
type MemoryActorCache struct {
	mu     sync.Mutex
	actors map[string]domainauth.Actor
}

// NewMemoryActorCache creates an empty cache.
func NewMemoryActorCache() *MemoryActorCache {
	return &MemoryActorCache{actors: make(map[string]domainauth.Actor)}
}

func (c *MemoryActorCache) Get(_ context.Context, actorID string) (domainauth.Actor, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.actors[actorID]
	return a, ok, nil
}

func (c *MemoryActorCache) Set(_ context.Context, actor domainauth.Actor) error {
	if actor.ID == "" {
		return errors.New("actor ID cannot be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actors[actor.ID] = actor
	return nil
}

func (c *MemoryActorCache) Invalidate(_ context.Context, actorID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.actors, actorID)
	return nil
}

// StaticRoleMapper maps groups to roles by exact match, first hit wins.
type StaticRoleMapper struct {
	Groups map[string]domainauth.Role
}

func (m StaticRoleMapper) Map(groups []string) (domainauth.Role, bool) {
	for _, g := range groups {
		if r, ok := m.Groups[g]; ok {
			return r, true
		}
	}
	return "", false
}

// RecordingPublisher captures published notifications.
type RecordingPublisher struct {
	mu        sync.Mutex
	Published []*model.Notification
}

func (p *RecordingPublisher) Publish(_ context.Context, n *model.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Published = append(p.Published, n)
}

// Count returns the number of captured notifications.
func (p *RecordingPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Published)
}
