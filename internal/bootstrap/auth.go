package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/placementhub/placement-engine/config"
	"github.com/placementhub/placement-engine/internal/adapters/authroles"
	"github.com/placementhub/placement-engine/internal/adapters/devauth"
	"github.com/placementhub/placement-engine/internal/adapters/jwtauth"
	"github.com/placementhub/placement-engine/internal/adapters/oidc"
	redisadapter "github.com/placementhub/placement-engine/internal/adapters/redis"
	"github.com/placementhub/placement-engine/internal/core"
	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/ports"
	"github.com/placementhub/placement-engine/internal/service"
)

// AuthConfig contains configuration for the credential verifier.
type AuthConfig struct {
	Auth   config.AuthConfig
	IsDev  bool
	Logger *slog.Logger
}

// BuildCredentialVerifier creates the verifier selected by AUTH_MODE.
//
//nolint:ireturn // the verifier implementation is chosen at runtime.
func BuildCredentialVerifier(ctx context.Context, cfg AuthConfig) (ports.CredentialVerifier, error) {
	var (
		verifier ports.CredentialVerifier
		err      error
	)
	switch cfg.Auth.Mode {
	case config.AuthModeJWT, "":
		var svc *jwtauth.Service
		if svc, err = BuildTokenIssuer(cfg.Auth); err == nil {
			verifier = svc
		}

	case config.AuthModeOIDC:
		var v *oidc.Verifier
		if v, err = buildOIDCVerifier(ctx, cfg); err == nil {
			verifier = v
		}

	case config.AuthModeMock:
		if !cfg.IsDev {
			return nil, errors.New("AUTH_MODE=mock requires DEV=true")
		}
		var v *devauth.Verifier
		if v, err = buildDevVerifier(cfg); err == nil {
			verifier = v
		}

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
	if err != nil {
		return nil, err
	}
	return verifier, nil
}

// BuildTokenIssuer creates the HS256 token service used both as a verifier
// and by the admin CLI to mint tokens.
func BuildTokenIssuer(auth config.AuthConfig) (*jwtauth.Service, error) {
	svc, err := jwtauth.NewService(jwtauth.Config{
		SigningKey: auth.JWT.SigningKey,
		Issuer:     auth.JWT.Issuer,
		Audience:   auth.JWT.Audience,
		TTL:        auth.JWT.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("jwt verifier: %w", err)
	}
	return svc, nil
}

func buildOIDCVerifier(ctx context.Context, cfg AuthConfig) (*oidc.Verifier, error) {
	oauth := cfg.Auth.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" {
		return nil, errors.New("AUTH_MODE=oidc requires AUTH_OAUTH_DISCOVERY_URL and AUTH_OAUTH_CLIENT_ID")
	}
	roles := authroles.StaticRoleMapper{
		AdminGroup:     cfg.Auth.RoleGroups.Admin,
		RecruiterGroup: cfg.Auth.RoleGroups.Recruiter,
		AlumniGroup:    cfg.Auth.RoleGroups.Alumni,
		ApplicantGroup: cfg.Auth.RoleGroups.Applicant,
	}

	discoveryCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	v, err := oidc.NewVerifier(discoveryCtx, oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		DiscoveryURL: oauth.DiscoveryURL,
	}, roles)
	if err != nil {
		return nil, fmt.Errorf("oidc verifier: %w", err)
	}
	return v, nil
}

func buildDevVerifier(cfg AuthConfig) (*devauth.Verifier, error) {
	allowed := make([]domainauth.Role, 0, len(cfg.Auth.DevAuth.AllowedRoles))
	for _, raw := range cfg.Auth.DevAuth.AllowedRoles {
		role, ok := domainauth.ParseRole(raw)
		if !ok {
			return nil, fmt.Errorf("dev auth: unknown role %q", raw)
		}
		allowed = append(allowed, role)
	}
	v, err := devauth.NewVerifier(devauth.Config{
		AllowedRoles: allowed,
		TokenTTL:     cfg.Auth.DevAuth.TokenTTL,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Logger != nil {
		cfg.Logger.Warn("dev authentication enabled; tokens are not signed")
	}
	return v, nil
}

// IdentityConfig contains dependencies for the identity service.
type IdentityConfig struct {
	Verifier ports.CredentialVerifier
	Actors   core.ActorRepository
	Cache    core.CacheRepository // optional
	Settings config.IdentityConfig
	Logger   *slog.Logger
}

// BuildIdentityService wires the identity resolver with its Redis-backed
// actor cache and revocation list. Without a cache repository both are skipped.
func BuildIdentityService(cfg IdentityConfig) *service.IdentityService {
	stores := service.IdentityStores{Actors: cfg.Actors}
	if cfg.Cache != nil {
		stores.Revocations = redisadapter.NewTokenRevocations(cfg.Cache)
		if cfg.Settings.CacheTTL > 0 {
			stores.Cache = redisadapter.NewActorCache(cfg.Cache, cfg.Settings.CacheTTL)
		}
	}
	return service.NewIdentityService(service.IdentityServiceOptions{
		Verifier: cfg.Verifier,
		Stores:   stores,
		Config: service.IdentityConfig{
			Timeout: cfg.Settings.DependencyTimeout,
			Logger:  cfg.Logger,
		},
	})
}
