package oidc

// Package oidc verifies identity-provider ID tokens presented as bearer credentials.

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	"github.com/placementhub/placement-engine/internal/ports"
)

var _ ports.CredentialVerifier = (*Verifier)(nil)

// Verifier implements ports.CredentialVerifier over an OIDC issuer.
type Verifier struct {
	idTokens   *gooidc.IDTokenVerifier
	roles      ports.RoleMapper
	httpClient *http.Client
}

// ProviderConfig holds configuration for the OIDC verifier.
type ProviderConfig struct {
	ClientID     string
	DiscoveryURL string
	HTTPClient   *http.Client // Optional, defaults to a 30s client
}

// DiscoveryDocument represents the OIDC discovery document.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// NewVerifier fetches the issuer's discovery document once and returns a
// verifier whose signing keys are loaded lazily from its JWKS endpoint.
func NewVerifier(ctx context.Context, config ProviderConfig, roles ports.RoleMapper) (*Verifier, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	if roles == nil {
		return nil, errors.New("role mapper is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	dctx := gooidc.ClientContext(ctx, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(dctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	return &Verifier{
		idTokens:   op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
		roles:      roles,
		httpClient: httpClient,
	}, nil
}

// Verify checks the token signature, audience and expiry, then maps its
// group claims to a role.
func (v *Verifier) Verify(ctx context.Context, token string) (domainauth.Credential, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
	idTok, err := v.idTokens.Verify(ctx, token)
	if err != nil {
		if transportFailure(err) {
			return domainauth.Credential{}, apperrors.DependencyUnavailable(fmt.Errorf("verify id_token: %w", err), "oidc")
		}
		return domainauth.Credential{}, apperrors.Unauthenticated("invalid identity token")
	}

	var claims idTokenClaims
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return domainauth.Credential{}, apperrors.Unauthenticated("identity token claims are malformed")
	}
	f := mapIDTokenClaims(claims)
	if f.actorID == "" {
		f.actorID = idTok.Subject
	}

	role, ok := v.roles.Map(f.groups)
	if !ok {
		return domainauth.Credential{}, apperrors.Unauthenticated("identity token carries no recognised group")
	}
	return domainauth.Credential{
		ActorID:   f.actorID,
		Role:      role,
		TokenID:   f.tokenID,
		ExpiresAt: idTok.Expiry,
	}, nil
}

// idTokenClaims is a superset of the standard and AD/ADFS claim shapes.
type idTokenClaims struct {
	Sub      string   `json:"sub"`
	JTI      string   `json:"jti"`
	Groups   []string `json:"groups"`
	MemberOf []string `json:"memberof"`
}

type idFields struct {
	actorID string
	tokenID string
	groups  []string
}

// mapIDTokenClaims picks the fields used for a credential. Standard groups win
// over AD memberof.
func mapIDTokenClaims(c idTokenClaims) idFields {
	f := idFields{actorID: c.Sub, tokenID: c.JTI, groups: c.Groups}
	if len(f.groups) == 0 {
		f.groups = c.MemberOf
	}
	return f
}

// transportFailure reports whether err came from reaching the issuer rather
// than from the token itself.
func transportFailure(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return strings.Contains(err.Error(), "fetching keys")
}
