package devauth

// Package devauth provides a config-driven CredentialVerifier for local development.

import (
	"context"
	"errors"
	"strings"
	"time"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	"github.com/placementhub/placement-engine/internal/ports"
)

// TokenPrefix starts every dev token: dev:<actor-id>:<role>.
const TokenPrefix = "dev:"

var _ ports.CredentialVerifier = (*Verifier)(nil)

// Config controls the dev verifier behavior.
type Config struct {
	// AllowedRoles restricts which roles dev tokens may claim. Empty allows all.
	AllowedRoles []domainauth.Role
	// TokenTTL is the expiry reported on credentials. Default 8h when zero.
	TokenTTL time.Duration
}

// Verifier accepts unsigned dev:<actor-id>:<role> tokens. It must only be
// wired when the service runs in development mode.
type Verifier struct {
	allowed map[domainauth.Role]struct{}
	ttl     time.Duration
	now     func() time.Time
}

// NewVerifier constructs a dev verifier from Config.
func NewVerifier(cfg Config) (*Verifier, error) {
	allowed := make(map[domainauth.Role]struct{}, len(cfg.AllowedRoles))
	for _, r := range cfg.AllowedRoles {
		if !r.Valid() {
			return nil, errors.New("dev auth: unknown role " + string(r))
		}
		allowed[r] = struct{}{}
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 8 * time.Hour
	}
	return &Verifier{allowed: allowed, ttl: ttl, now: time.Now}, nil
}

// Verify parses a dev token. The actor id doubles as the token id so dev
// tokens can be revoked like real ones.
func (v *Verifier) Verify(_ context.Context, token string) (domainauth.Credential, error) {
	rest, ok := strings.CutPrefix(token, TokenPrefix)
	if !ok {
		return domainauth.Credential{}, apperrors.Unauthenticated("not a dev token")
	}
	actorID, rawRole, ok := strings.Cut(rest, ":")
	actorID = strings.TrimSpace(actorID)
	if !ok || actorID == "" {
		return domainauth.Credential{}, apperrors.Unauthenticated("dev token must be dev:<actor-id>:<role>")
	}
	role, ok := domainauth.ParseRole(rawRole)
	if !ok {
		return domainauth.Credential{}, apperrors.Unauthenticated("dev token carries an unknown role")
	}
	if len(v.allowed) > 0 {
		if _, ok := v.allowed[role]; !ok {
			return domainauth.Credential{}, apperrors.Unauthenticated("role not allowed for dev tokens")
		}
	}
	return domainauth.Credential{
		ActorID:   actorID,
		Role:      role,
		TokenID:   "dev-" + actorID,
		ExpiresAt: v.now().Add(v.ttl),
	}, nil
}

// Token builds the dev token for an actor.
func Token(actorID string, role domainauth.Role) string {
	return TokenPrefix + actorID + ":" + string(role)
}
