//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"

	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

// VerificationKind identifies which account type a verification record gates.
type VerificationKind string

const (
	VerificationKindRecruiter VerificationKind = "recruiter"
	VerificationKindAlumni    VerificationKind = "alumni"
)

// Valid reports whether the kind is supported.
func (k VerificationKind) Valid() bool {
	return k == VerificationKindRecruiter || k == VerificationKindAlumni
}

// VerificationStatus is the state of a verification record.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// Valid reports whether the status is supported.
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is possible from s.
func (s VerificationStatus) Terminal() bool {
	return s == VerificationApproved || s == VerificationRejected
}

// CanTransitionTo reports whether an administrator may move a record from s to next.
// Only pending records move, and only to approved or rejected.
func (s VerificationStatus) CanTransitionTo(next VerificationStatus) bool {
	return s == VerificationPending && next.Terminal()
}

// Verification is the approval record attached to a recruiter or alumni account.
type Verification struct {
	OwnerActorID    string             `json:"owner_actor_id"             db:"owner_actor_id"`
	Kind            VerificationKind   `json:"kind"                       db:"kind"`
	Status          VerificationStatus `json:"status"                     db:"status"`
	VerifiedBy      *string            `json:"verified_by,omitempty"      db:"verified_by"`
	VerifiedAt      *time.Time         `json:"verified_at,omitempty"      db:"verified_at"`
	RejectionReason *string            `json:"rejection_reason,omitempty" db:"rejection_reason"`
	Notes           *string            `json:"notes,omitempty"            db:"notes"`
	DomainMatch     *bool              `json:"domain_match,omitempty"     db:"domain_match"`
	CreatedAt       time.Time          `json:"created_at"                 db:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"                 db:"updated_at"`
}

// VerificationDecision carries the admin's decision on a pending record.
type VerificationDecision struct {
	OwnerActorID string
	AdminID      string
	Status       VerificationStatus
	Notes        *string
	Reason       *string
}

// Validate checks the decision is well formed. A rejection must carry a reason.
func (d *VerificationDecision) Validate() error {
	if strings.TrimSpace(d.OwnerActorID) == "" {
		return apperrors.ValidationField("owner_actor_id", "owner_actor_id is required")
	}
	if !d.Status.Terminal() {
		return apperrors.ValidationField("status", "decision must approve or reject")
	}
	if d.Status == VerificationRejected {
		if d.Reason == nil || strings.TrimSpace(*d.Reason) == "" {
			return apperrors.ValidationField("reason", "rejection reason is required")
		}
		reason := strings.TrimSpace(*d.Reason)
		d.Reason = &reason
	}
	return nil
}

// VerificationListOptions controls paging and filtering for the admin queue.
type VerificationListOptions struct {
	Kind   *VerificationKind
	Status VerificationStatus
	Limit  int
	Offset int
}
