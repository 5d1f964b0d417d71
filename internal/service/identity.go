package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/placementhub/placement-engine/internal/core"
	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	"github.com/placementhub/placement-engine/internal/ports"
)

// DefaultDependencyTimeout bounds each call to the verifier, cache and store.
const DefaultDependencyTimeout = 3 * time.Second

// IdentityStores groups the stores consulted while resolving an actor.
type IdentityStores struct {
	Actors      core.ActorRepository
	Cache       ports.ActorCache       // optional
	Revocations ports.TokenRevocations // optional
}

// IdentityConfig tunes IdentityService.
type IdentityConfig struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// IdentityServiceOptions groups dependencies for IdentityService.
type IdentityServiceOptions struct {
	Verifier ports.CredentialVerifier
	Stores   IdentityStores
	Config   IdentityConfig
}

// IdentityService resolves bearer tokens into actors.
type IdentityService struct {
	verifier    ports.CredentialVerifier
	actors      core.ActorRepository
	cache       ports.ActorCache
	revocations ports.TokenRevocations
	timeout     time.Duration
	logger      *slog.Logger
}

// NewIdentityService constructs a new IdentityService.
func NewIdentityService(opts IdentityServiceOptions) *IdentityService {
	if opts.Verifier == nil {
		panic("NewIdentityService: Verifier is required")
	}
	if opts.Stores.Actors == nil {
		panic("NewIdentityService: Stores.Actors is required")
	}
	timeout := opts.Config.Timeout
	if timeout <= 0 {
		timeout = DefaultDependencyTimeout
	}
	logger := opts.Config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityService{
		verifier:    opts.Verifier,
		actors:      opts.Stores.Actors,
		cache:       opts.Stores.Cache,
		revocations: opts.Stores.Revocations,
		timeout:     timeout,
		logger:      logger.With("component", "identity"),
	}
}

// Resolve verifies token and returns the actor it names. It never writes
// authoritative state, so repeated calls with one token yield the same actor.
func (s *IdentityService) Resolve(ctx context.Context, token string) (domainauth.Actor, error) {
	cred, err := s.credential(ctx, token)
	if err != nil {
		return domainauth.Actor{}, err
	}

	if cached, ok := s.cached(ctx, cred.ActorID); ok {
		if cached.Role != cred.Role {
			return domainauth.Actor{}, apperrors.Unauthenticated("credential does not match account role")
		}
		return cached, nil
	}

	lctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.actors.GetByID(lctx, cred.ActorID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return domainauth.Actor{}, apperrors.Unauthenticated("account no longer exists")
		}
		return domainauth.Actor{}, dependencyErr(err, "account store")
	}
	actor := rec.Actor()
	if actor.Role != cred.Role {
		return domainauth.Actor{}, apperrors.Unauthenticated("credential does not match account role")
	}
	if !actor.Active {
		return domainauth.Actor{}, apperrors.AccountInactive("account is awaiting verification")
	}
	ok, err := s.actors.HasRoleRecord(lctx, actor.ID, actor.Role)
	if err != nil {
		return domainauth.Actor{}, dependencyErr(err, "account store")
	}
	if !ok {
		return domainauth.Actor{}, apperrors.ProfileIncomplete("role record has not been created")
	}

	if s.cache != nil {
		if setErr := s.cache.Set(ctx, actor); setErr != nil {
			s.logger.WarnContext(ctx, "actor cache write failed", "actor_id", actor.ID, "error", setErr)
		}
	}
	return actor, nil
}

// Revoke invalidates the presented token for the rest of its lifetime.
func (s *IdentityService) Revoke(ctx context.Context, actor domainauth.Actor, token string) error {
	if s.revocations == nil {
		return apperrors.DependencyUnavailable(errors.New("no revocation store configured"), "revocation store")
	}
	cred, err := s.credential(ctx, token)
	if err != nil {
		return err
	}
	if cred.ActorID != actor.ID {
		return apperrors.Forbidden("token belongs to another account")
	}
	if cred.TokenID == "" {
		return apperrors.ValidationField("token", "token carries no revocable id")
	}
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.revocations.Revoke(rctx, cred.TokenID, cred.ExpiresAt); err != nil {
		return dependencyErr(err, "revocation store")
	}
	s.logger.InfoContext(ctx, "token revoked", "actor_id", actor.ID, "token_id", cred.TokenID)
	return nil
}

// Invalidate drops the cached copy of an actor after its account state changes.
func (s *IdentityService) Invalidate(ctx context.Context, actorID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, actorID); err != nil {
		s.logger.WarnContext(ctx, "actor cache invalidation failed", "actor_id", actorID, "error", err)
	}
}

func (s *IdentityService) credential(ctx context.Context, token string) (domainauth.Credential, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domainauth.Credential{}, apperrors.Unauthenticated("missing bearer token")
	}
	vctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cred, err := s.verifier.Verify(vctx, token)
	if err != nil {
		return domainauth.Credential{}, dependencyErr(err, "credential verifier")
	}
	if cred.ActorID == "" || !cred.Role.Valid() {
		return domainauth.Credential{}, apperrors.Unauthenticated("credential is missing subject or role")
	}
	if cred.TokenID != "" && s.revocations != nil {
		revoked, rerr := s.revocations.IsRevoked(vctx, cred.TokenID)
		if rerr != nil {
			return domainauth.Credential{}, dependencyErr(rerr, "revocation store")
		}
		if revoked {
			return domainauth.Credential{}, apperrors.Unauthenticated("token has been revoked")
		}
	}
	return cred, nil
}

func (s *IdentityService) cached(ctx context.Context, actorID string) (domainauth.Actor, bool) {
	if s.cache == nil {
		return domainauth.Actor{}, false
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	actor, ok, err := s.cache.Get(cctx, actorID)
	if err != nil {
		// Fall through to the store.
		s.logger.WarnContext(ctx, "actor cache read failed", "actor_id", actorID, "error", err)
		return domainauth.Actor{}, false
	}
	return actor, ok
}

// dependencyErr passes AppErrors through and reports everything else as an
// unavailable dependency.
func dependencyErr(err error, dependency string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.DependencyUnavailable(fmt.Errorf("%s: %w", dependency, err), dependency)
}
