package core

import (
	"context"
	"errors"

	"github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// ErrConditionNotMet is returned by conditional writes whose WHERE precondition
// matched no row. Callers re-read the record to report the precise failure.
var ErrConditionNotMet = errors.New("conditional write matched no rows")

// ActorRepository defines account persistence.
type ActorRepository interface {
	GetByID(ctx context.Context, id string) (*model.ActorRecord, error)
	GetByEmail(ctx context.Context, email string) (*model.ActorRecord, error)
	// Register creates the actor, its profile row and, when requested, a pending
	// verification row in one transaction.
	Register(ctx context.Context, params model.CreateActorParams) (*model.Registration, error)
	// HasRoleRecord reports whether the role-specific records for the actor exist.
	HasRoleRecord(ctx context.Context, actorID string, role auth.Role) (bool, error)
}

// SaveProfileParams groups parameters for ProfileRepository.Save.
type SaveProfileParams struct {
	ActorID    string
	Fields     map[string]any
	Completion int
}

// ProfileRepository defines profile document persistence.
type ProfileRepository interface {
	Get(ctx context.Context, actorID string) (*model.Profile, error)
	Save(ctx context.Context, params SaveProfileParams) (*model.Profile, error)
}

// VerificationRepository defines verification record persistence.
type VerificationRepository interface {
	Get(ctx context.Context, ownerActorID string) (*model.Verification, error)
	List(ctx context.Context, opts model.VerificationListOptions) ([]*model.Verification, error)
	// Decide moves a pending record to the decision's status. Approval also
	// activates the owning actor in the same transaction. It returns
	// ErrConditionNotMet when the record is missing or no longer pending.
	Decide(ctx context.Context, d model.VerificationDecision) (*model.Verification, error)
}

// CreateJobPostingParams groups parameters for JobPostingRepository.Create.
type CreateJobPostingParams struct {
	RecruiterID string
	Fields      model.JobPostingFields
}

// UpdateJobPostingParams groups parameters for JobPostingRepository.Update.
type UpdateJobPostingParams struct {
	ID          string
	RecruiterID string
	Fields      model.JobPostingFields
}

// SetJobActiveParams groups parameters for JobPostingRepository.SetActive.
type SetJobActiveParams struct {
	ID          string
	RecruiterID string
	Active      bool
}

// JobPostingRepository defines job posting persistence.
type JobPostingRepository interface {
	Create(ctx context.Context, params CreateJobPostingParams) (*model.JobPosting, error)
	GetByID(ctx context.Context, id string) (*model.JobPosting, error)
	List(ctx context.Context, opts model.JobListOptions) ([]*model.JobPosting, error)
	// Update replaces the editable fields of a posting the recruiter owns that
	// is not approved, resetting it to pending. ErrConditionNotMet otherwise.
	Update(ctx context.Context, params UpdateJobPostingParams) (*model.JobPosting, error)
	// Review applies an admin decision to a pending posting. ErrConditionNotMet otherwise.
	Review(ctx context.Context, review model.JobReview) (*model.JobPosting, error)
	SetActive(ctx context.Context, params SetJobActiveParams) (*model.JobPosting, error)
	// Delete removes a posting the recruiter owns. ErrConditionNotMet otherwise.
	Delete(ctx context.Context, id, recruiterID string) error
}

// ApplicationRepository defines application persistence.
type ApplicationRepository interface {
	// Create inserts an application only when the job is approved and active.
	// It returns ErrConditionNotMet when the job is missing or not open and a
	// DuplicateApplication AppError when the pair already exists.
	Create(ctx context.Context, params model.CreateApplicationParams) (*model.Application, error)
	GetByID(ctx context.Context, id string) (*model.Application, error)
	List(ctx context.Context, opts model.ApplicationListOptions) ([]*model.Application, error)
	// UpdateStatus applies a recruiter's transition when the current status is
	// one the table allows. ErrConditionNotMet otherwise.
	UpdateStatus(ctx context.Context, change model.StatusChange) (*model.Application, error)
	// DeleteApplied removes an application the applicant owns that is still applied.
	DeleteApplied(ctx context.Context, id, applicantID string) error
}

// MarkReadParams groups parameters for NotificationRepository.MarkRead.
type MarkReadParams struct {
	ID          string
	RecipientID string
}

// NotificationRepository defines notification persistence. Every method is
// scoped to a recipient.
type NotificationRepository interface {
	Create(ctx context.Context, params model.EnqueueParams) (*model.Notification, error)
	List(ctx context.Context, opts model.NotificationListOptions) ([]*model.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, params MarkReadParams) (*model.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
	Delete(ctx context.Context, id, recipientID string) (bool, error)
	DeleteRead(ctx context.Context, recipientID string) (int, error)
}
