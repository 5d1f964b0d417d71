package devauth

import (
	"context"
	"testing"
	"time"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

func TestVerifier_Verify(t *testing.T) {
	v, err := NewVerifier(Config{})
	if err != nil {
		t.Fatalf("NewVerifier error: %v", err)
	}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	v.now = func() time.Time { return fixed }

	cred, err := v.Verify(context.Background(), Token("stu-1", domainauth.RoleApplicant))
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if cred.ActorID != "stu-1" || cred.Role != domainauth.RoleApplicant {
		t.Fatalf("unexpected credential: %+v", cred)
	}
	if cred.TokenID != "dev-stu-1" {
		t.Fatalf("unexpected token id: %q", cred.TokenID)
	}
	if !cred.ExpiresAt.Equal(fixed.Add(8 * time.Hour)) {
		t.Fatalf("unexpected expiry: %v", cred.ExpiresAt)
	}

	cred, err = v.Verify(context.Background(), "dev:stu-2:student")
	if err != nil || cred.Role != domainauth.RoleApplicant {
		t.Fatalf("student alias: %+v, %v", cred, err)
	}
}

func TestVerifier_Rejects(t *testing.T) {
	v, err := NewVerifier(Config{AllowedRoles: []domainauth.Role{domainauth.RoleApplicant, domainauth.RoleRecruiter}})
	if err != nil {
		t.Fatalf("NewVerifier error: %v", err)
	}
	for _, token := range []string{
		"bearer-xyz",
		"dev:",
		"dev::applicant",
		"dev:stu-1",
		"dev:stu-1:janitor",
		"dev:adm-1:admin",
	} {
		if _, err := v.Verify(context.Background(), token); !apperrors.Is(err, apperrors.ErrCodeUnauthenticated) {
			t.Errorf("token %q: expected unauthenticated, got %v", token, err)
		}
	}

	if _, err := NewVerifier(Config{AllowedRoles: []domainauth.Role{"root"}}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
