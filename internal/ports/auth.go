package ports

// Package ports defines interfaces (hexagonal ports) for identity and delivery collaborators.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
)

// CredentialVerifier turns a presented bearer token into a credential.
// Implementations return apperrors Unauthenticated for bad tokens and
// DependencyUnavailable when the verifying service cannot be reached.
type CredentialVerifier interface {
	Verify(ctx context.Context, token string) (domainauth.Credential, error)
}

// TokenRevocations records token ids that must no longer be accepted.
type TokenRevocations interface {
	// Revoke marks tokenID as revoked until expiresAt.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ActorCache is a short-lived read-through cache of resolved actors.
type ActorCache interface {
	Get(ctx context.Context, actorID string) (domainauth.Actor, bool, error)
	Set(ctx context.Context, actor domainauth.Actor) error
	Invalidate(ctx context.Context, actorID string) error
}

// RoleMapper maps identity-provider groups to an application role.
type RoleMapper interface {
	Map(groups []string) (domainauth.Role, bool)
}
