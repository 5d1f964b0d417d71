package auth

// Package auth contains domain-level types for identity resolution and role gating.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents an actor's authorization role.
// The string form is what gets persisted and carried in credentials.
type Role string

const (
	RoleApplicant Role = "applicant"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
	RoleAlumni    Role = "alumni"
)

// Roles lists every known role in a stable order.
func Roles() []Role {
	return []Role{RoleApplicant, RoleRecruiter, RoleAdmin, RoleAlumni}
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleApplicant, RoleRecruiter, RoleAdmin, RoleAlumni:
		return true
	}
	return false
}

// RequiresVerification reports whether accounts with this role start inactive
// and need an administrator to approve a verification record.
func (r Role) RequiresVerification() bool {
	return r == RoleRecruiter || r == RoleAlumni
}

// ParseRole normalizes s and returns the matching Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	// "student" is what the platform UI calls applicants.
	if r == "student" {
		r = RoleApplicant
	}
	return r, r.Valid()
}

// Credential is what a verifier extracts from a presented token before the
// actor record has been consulted.
type Credential struct {
	ActorID   string
	Role      Role
	TokenID   string    // jti; empty when the verifier has no revocable id
	ExpiresAt time.Time // zero when the token carries no expiry
}

// Actor is a resolved, authenticated identity.
// Values are immutable once returned by the resolver and are passed
// explicitly through every gated call.
type Actor struct {
	ID          string `json:"id"`
	Role        Role   `json:"role"`
	Active      bool   `json:"active"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Is reports whether the actor holds role r.
func (a Actor) Is(r Role) bool { return a.Role == r }
