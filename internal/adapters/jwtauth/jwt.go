package jwtauth

// Package jwtauth signs and verifies HS256 bearer tokens carrying an actor id and role.

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	"github.com/placementhub/placement-engine/internal/ports"
)

// MinSigningKeyLen is the shortest accepted HMAC key.
const MinSigningKeyLen = 32

var _ ports.CredentialVerifier = (*Service)(nil)

// Claims represents the JWT claims for access tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Config holds the signing parameters.
type Config struct {
	SigningKey string
	Issuer     string
	Audience   string
	TTL        time.Duration
}

// Service issues and validates access tokens.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	ttl        time.Duration
	now        func() time.Time
}

// NewService validates cfg and returns a Service.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.SigningKey) < MinSigningKeyLen {
		return nil, errors.New("jwt signing key must be at least 32 bytes")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("jwt issuer and audience are required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// Issued is a freshly signed token.
type Issued struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// Issue signs a token for actorID. A zero ttl uses the configured default.
func (s *Service) Issue(actorID string, role domainauth.Role, ttl time.Duration) (Issued, error) {
	if actorID == "" || !role.Valid() {
		return Issued{}, errors.New("actor id and a valid role are required")
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now()
	exp := now.Add(ttl)
	id := uuid.NewString()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        id,
		},
	})
	signed, err := tok.SignedString(s.signingKey)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: signed, TokenID: id, ExpiresAt: exp}, nil
}

// Verify validates signature, issuer, audience and expiry.
func (s *Service) Verify(_ context.Context, token string) (domainauth.Credential, error) {
	claims, err := s.parse(token)
	if err != nil {
		return domainauth.Credential{}, err
	}
	role, ok := domainauth.ParseRole(claims.Role)
	if !ok || claims.Subject == "" {
		return domainauth.Credential{}, apperrors.Unauthenticated("token is missing subject or role")
	}
	cred := domainauth.Credential{ActorID: claims.Subject, Role: role, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		cred.ExpiresAt = claims.ExpiresAt.Time
	}
	return cred, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Unauthenticated("token has expired")
		}
		return nil, apperrors.Unauthenticated("invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apperrors.Unauthenticated("invalid token claims")
	}
	return claims, nil
}
