//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/placementhub/placement-engine/internal/domain/auth"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

const maxDisplayNameLen = 200

// ActorRecord is the persisted account row behind an auth.Actor.
type ActorRecord struct {
	ID          string    `json:"id"           db:"id"`
	Email       string    `json:"email"        db:"email"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Role        auth.Role `json:"role"         db:"role"`
	Active      bool      `json:"active"       db:"active"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"   db:"updated_at"`
}

// Actor projects the record into the resolved identity shape.
func (r *ActorRecord) Actor() auth.Actor {
	return auth.Actor{
		ID:          r.ID,
		Role:        r.Role,
		Active:      r.Active,
		Email:       r.Email,
		DisplayName: r.DisplayName,
	}
}

// Profile is the role-specific document owned by the profile store.
type Profile struct {
	ActorID    string         `json:"actor_id"   db:"actor_id"`
	Role       auth.Role      `json:"role"       db:"role"`
	Fields     map[string]any `json:"fields"     db:"fields"`
	Completion int            `json:"completion" db:"completion"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// RegisterRequest is the public self-registration payload.
type RegisterRequest struct {
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name"`
	Role        auth.Role      `json:"role"`
	Profile     map[string]any `json:"profile,omitempty"`
}

// Normalize trims and lowercases identifying fields.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if role, ok := auth.ParseRole(string(r.Role)); ok {
		r.Role = role
	}
}

// Validate checks the request. Admin accounts cannot self-register.
func (r *RegisterRequest) Validate() error {
	r.Normalize()
	if r.Email == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return apperrors.ValidationField("email", "email is not a valid address")
	}
	if r.DisplayName == "" {
		return apperrors.ValidationField("display_name", "display_name is required")
	}
	if utf8.RuneCountInString(r.DisplayName) > maxDisplayNameLen {
		return apperrors.ValidationField("display_name", "display_name cannot exceed 200 characters")
	}
	switch r.Role {
	case auth.RoleApplicant, auth.RoleRecruiter, auth.RoleAlumni:
	case auth.RoleAdmin:
		return apperrors.ValidationField("role", "admin accounts cannot self-register")
	default:
		return apperrors.ValidationField("role", "role must be applicant, recruiter, or alumni")
	}
	return nil
}

// CreateActorParams is the storage-level input for a new account.
type CreateActorParams struct {
	Email       string
	DisplayName string
	Role        auth.Role
	Active      bool
	Profile     map[string]any
	Completion  int
	// Verification is set for roles that start inactive.
	Verification *NewVerification
}

// NewVerification seeds the pending verification row created with an account.
type NewVerification struct {
	Kind        VerificationKind
	DomainMatch *bool
}

// Registration is the result of a successful account creation.
type Registration struct {
	Actor        *ActorRecord  `json:"actor"`
	Profile      *Profile      `json:"profile"`
	Verification *Verification `json:"verification,omitempty"`
}

// UpdateProfileRequest carries sections to shallow-merge into a profile document.
type UpdateProfileRequest struct {
	Fields map[string]any `json:"fields"`
}

// Validate requires at least one section.
func (r *UpdateProfileRequest) Validate() error {
	if len(r.Fields) == 0 {
		return apperrors.ValidationField("fields", "at least one profile section must be provided")
	}
	return nil
}
