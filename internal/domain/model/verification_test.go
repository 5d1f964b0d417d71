package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placementhub/placement-engine/internal/domain/auth"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

func TestVerificationStatus_Transitions(t *testing.T) {
	t.Parallel()
	assert.True(t, VerificationPending.CanTransitionTo(VerificationApproved))
	assert.True(t, VerificationPending.CanTransitionTo(VerificationRejected))
	assert.False(t, VerificationPending.CanTransitionTo(VerificationPending))
	for _, terminal := range []VerificationStatus{VerificationApproved, VerificationRejected} {
		assert.True(t, terminal.Terminal())
		assert.False(t, terminal.CanTransitionTo(VerificationApproved))
		assert.False(t, terminal.CanTransitionTo(VerificationRejected))
	}
}

func TestVerificationDecision_Validate(t *testing.T) {
	t.Parallel()

	d := VerificationDecision{OwnerActorID: "u1", Status: VerificationRejected}
	assert.Equal(t, "reason", apperrors.GetField(d.Validate()))

	empty := " "
	d.Reason = &empty
	assert.Equal(t, "reason", apperrors.GetField(d.Validate()))

	d = VerificationDecision{OwnerActorID: "u1", Status: VerificationApproved}
	require.NoError(t, d.Validate())
}

func TestRegisterRequest_Validate(t *testing.T) {
	t.Parallel()

	r := RegisterRequest{Email: " Asha@Example.COM ", DisplayName: "Asha", Role: "Student"}
	require.NoError(t, r.Validate())
	assert.Equal(t, "asha@example.com", r.Email)
	assert.Equal(t, auth.RoleApplicant, r.Role)

	r = RegisterRequest{Email: "root@example.com", DisplayName: "Root", Role: auth.RoleAdmin}
	assert.Equal(t, "role", apperrors.GetField(r.Validate()))

	r = RegisterRequest{Email: "not-an-email", DisplayName: "x", Role: auth.RoleRecruiter}
	assert.Equal(t, "email", apperrors.GetField(r.Validate()))
}

func TestDomainsMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email, site string
		match, ok   bool
	}{
		{"hr@acme.co.uk", "https://careers.acme.co.uk/jobs", true, true},
		{"hr@mail.acme.com", "acme.com", true, true},
		{"hr@gmail.com", "https://acme.com", false, true},
		{"hr@acme.com", "", false, false},
		{"", "acme.com", false, false},
	}
	for _, tt := range tests {
		match, ok := DomainsMatch(tt.email, tt.site)
		assert.Equal(t, tt.match, match, "%s vs %s", tt.email, tt.site)
		assert.Equal(t, tt.ok, ok, "%s vs %s", tt.email, tt.site)
	}
}
