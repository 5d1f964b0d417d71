package jwtauth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(Config{SigningKey: testKey, Issuer: "placement-admin", Audience: "placement-engine"})
	require.NoError(t, err)
	return s
}

func TestService_IssueAndVerify(t *testing.T) {
	s := newTestService(t)

	issued, err := s.Issue("rec-1", domainauth.RoleRecruiter, 10*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)

	cred, err := s.Verify(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "rec-1", cred.ActorID)
	assert.Equal(t, domainauth.RoleRecruiter, cred.Role)
	assert.Equal(t, issued.TokenID, cred.TokenID)
	assert.WithinDuration(t, issued.ExpiresAt, cred.ExpiresAt, time.Second)
}

func TestService_VerifyRejects(t *testing.T) {
	s := newTestService(t)
	other, err := NewService(Config{SigningKey: testKey, Issuer: "someone-else", Audience: "placement-engine"})
	require.NoError(t, err)

	expired := newTestService(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Issue("stu-1", domainauth.RoleApplicant, time.Hour)
	require.NoError(t, err)

	foreign, err := other.Issue("stu-1", domainauth.RoleApplicant, time.Hour)
	require.NoError(t, err)

	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "stu-1",
			Issuer:    "placement-admin",
			Audience:  []string{"placement-engine"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testKey))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "applicant",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "stu-1", Issuer: "placement-admin", Audience: []string{"placement-engine"},
		},
	}).SignedString([]byte(testKey))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":        "abc.def.ghi",
		"expired":        stale.Token,
		"wrong issuer":   foreign.Token,
		"missing role":   noRole,
		"missing expiry": noExpiry,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Verify(context.Background(), tok)
			assert.Equal(t, apperrors.ErrCodeUnauthenticated, apperrors.GetCode(err))
		})
	}
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Config{SigningKey: "short", Issuer: "i", Audience: "a"})
	assert.Error(t, err)
	_, err = NewService(Config{SigningKey: testKey})
	assert.Error(t, err)

	s := newTestService(t)
	_, err = s.Issue("", domainauth.RoleAdmin, 0)
	assert.Error(t, err)
	_, err = s.Issue("adm-1", "root", 0)
	assert.Error(t, err)
}
