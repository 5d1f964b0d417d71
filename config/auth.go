package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode selects how bearer credentials are verified.
type AuthMode string

const (
	// AuthModeJWT verifies HS256 tokens signed by this service.
	AuthModeJWT AuthMode = "jwt"
	// AuthModeOIDC verifies ID tokens issued by an external OpenID provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock accepts unsigned dev tokens (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "jwt", "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: jwt, oidc, mock)", v)
	}
}

// JWTConfig holds the signing parameters for locally issued tokens.
type JWTConfig struct {
	SigningKey string        `env:"SIGNING_KEY"`
	Issuer     string        `env:"ISSUER"      envDefault:"placement-engine"`
	Audience   string        `env:"AUDIENCE"    envDefault:"placement-api"`
	TTL        time.Duration `env:"TTL"         envDefault:"1h"`
}

// OAuthConfig contains OIDC verifier configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls mock/dev authentication.
// Used when AUTH_MODE=mock and DEV=true.
type DevAuthConfig struct {
	// AllowedRoles restricts which roles dev tokens may claim. Empty allows all.
	AllowedRoles []string      `env:"ALLOWED_ROLES" envSeparator:","`
	TokenTTL     time.Duration `env:"TOKEN_TTL"     envDefault:"8h"`
}

// RoleGroupsConfig maps identity-provider groups to placement roles.
type RoleGroupsConfig struct {
	Admin     string `env:"ADMIN"`
	Recruiter string `env:"RECRUITER"`
	Alumni    string `env:"ALUMNI"`
	Applicant string `env:"APPLICANT"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which credential verifier to use.
	Mode AuthMode `env:"MODE" envDefault:"jwt"`

	JWT        JWTConfig        `envPrefix:"JWT_"`
	OAuth      OAuthConfig      `envPrefix:"OAUTH_"`
	DevAuth    DevAuthConfig    `envPrefix:"DEV_"`
	RoleGroups RoleGroupsConfig `envPrefix:"ROLE_GROUPS_"`
}
