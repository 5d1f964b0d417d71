package oidc

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placementhub/placement-engine/internal/adapters/authroles"
	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

const (
	testIssuer   = "https://idp.example.edu"
	testClientID = "placement-engine"
)

var testRoles = authroles.StaticRoleMapper{
	AdminGroup:     "CN=Placement-Admins",
	RecruiterGroup: "recruiters",
	ApplicantGroup: "students",
}

func TestNewVerifier_Discovery(t *testing.T) {
	issuer := ""
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc := DiscoveryDocument{
			Issuer:                issuer,
			AuthorizationEndpoint: "https://example.com/auth",
			TokenEndpoint:         "https://example.com/token",
			UserinfoEndpoint:      "https://example.com/userinfo",
			JwksURI:               "https://example.com/jwks",
		}
		_ = json.NewEncoder(w).Encode(doc)
	})
	discoveryServer := httptest.NewServer(handler)
	defer discoveryServer.Close()
	issuer = discoveryServer.URL

	v, err := NewVerifier(context.Background(), ProviderConfig{
		ClientID:     testClientID,
		DiscoveryURL: discoveryServer.URL + "/.well-known/openid-configuration",
	}, testRoles)
	require.NoError(t, err)
	assert.NotNil(t, v.idTokens)
}

func TestNewVerifier_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{name: "missing client ID", config: ProviderConfig{DiscoveryURL: "http://example.com"}, errMsg: "client ID is required"},
		{name: "missing discovery URL", config: ProviderConfig{ClientID: "client"}, errMsg: "discovery URL is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVerifier(context.Background(), tt.config, testRoles)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := NewVerifier(context.Background(), ProviderConfig{ClientID: "c", DiscoveryURL: "http://x"}, nil)
	assert.ErrorContains(t, err, "role mapper is required")
}

type signer struct {
	key *rsa.PrivateKey
}

func newTestVerifier(t *testing.T) (*Verifier, signer) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keys := &gooidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	return &Verifier{
		idTokens:   gooidc.NewVerifier(testIssuer, keys, &gooidc.Config{ClientID: testClientID}),
		roles:      testRoles,
		httpClient: http.DefaultClient,
	}, signer{key: key}
}

func (s signer) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	require.NoError(t, err)
	return tok
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss": testIssuer,
		"aud": testClientID,
		"sub": "0b6f3a52-9f1e-4a55-9d7c-2d1f3e1a9c11",
		"jti": "tok-1",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
}

func TestVerifier_Verify(t *testing.T) {
	v, s := newTestVerifier(t)

	claims := baseClaims()
	claims["groups"] = []string{"students"}
	cred, err := v.Verify(context.Background(), s.sign(t, claims))
	require.NoError(t, err)
	assert.Equal(t, "0b6f3a52-9f1e-4a55-9d7c-2d1f3e1a9c11", cred.ActorID)
	assert.Equal(t, domainauth.RoleApplicant, cred.Role)
	assert.Equal(t, "tok-1", cred.TokenID)
	assert.False(t, cred.ExpiresAt.IsZero())

	claims = baseClaims()
	claims["memberof"] = []string{"CN=Placement-Admins"}
	cred, err = v.Verify(context.Background(), s.sign(t, claims))
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, cred.Role)
}

func TestVerifier_Rejects(t *testing.T) {
	v, s := newTestVerifier(t)
	_, other := newTestVerifier(t)

	expired := baseClaims()
	expired["groups"] = []string{"students"}
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	wrongAudience := baseClaims()
	wrongAudience["groups"] = []string{"students"}
	wrongAudience["aud"] = "someone-else"

	noGroups := baseClaims()

	foreign := baseClaims()
	foreign["groups"] = []string{"students"}

	tokens := map[string]string{
		"garbage":        "not-a-jwt",
		"expired":        s.sign(t, expired),
		"wrong audience": s.sign(t, wrongAudience),
		"no groups":      s.sign(t, noGroups),
		"foreign key":    other.sign(t, foreign),
	}
	for name, tok := range tokens {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tok)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeUnauthenticated, apperrors.GetCode(err), err.Error())
		})
	}
}

func Test_mapIDTokenClaims(t *testing.T) {
	f := mapIDTokenClaims(idTokenClaims{Sub: "s", JTI: "j", MemberOf: []string{"CN=x"}})
	assert.Equal(t, "s", f.actorID)
	assert.Equal(t, "j", f.tokenID)
	assert.Equal(t, []string{"CN=x"}, f.groups)

	f = mapIDTokenClaims(idTokenClaims{Groups: []string{"g"}, MemberOf: []string{"CN=x"}})
	assert.Equal(t, []string{"g"}, f.groups)
}

func Test_transportFailure(t *testing.T) {
	assert.True(t, transportFailure(context.DeadlineExceeded))
	assert.True(t, transportFailure(&timeoutErr{}))
	assert.False(t, transportFailure(&gooidc.TokenExpiredError{Expiry: time.Now()}))
}

type timeoutErr struct{}

func (*timeoutErr) Error() string   { return "i/o timeout" }
func (*timeoutErr) Timeout() bool   { return true }
func (*timeoutErr) Temporary() bool { return true }
