package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/placementhub/placement-engine/internal/core"
	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	"github.com/placementhub/placement-engine/internal/observability/metrics"
	"github.com/placementhub/placement-engine/internal/observability/statsd"
)

// ActorInvalidator drops cached copies of an actor after its account state changes.
type ActorInvalidator interface {
	Invalidate(ctx context.Context, actorID string)
}

// VerificationDeps groups the collaborators VerificationService informs after a decision.
type VerificationDeps struct {
	Actors      core.ActorRepository // optional, used for notification names
	Notifier    Notifier
	Invalidator ActorInvalidator // optional
	Metrics     statsd.Sink      // optional
}

// VerificationServiceOptions groups dependencies for VerificationService.
type VerificationServiceOptions struct {
	Repo   core.VerificationRepository
	Deps   VerificationDeps
	Logger *slog.Logger
}

// VerificationService lets admins decide pending recruiter and alumni accounts.
type VerificationService struct {
	repo   core.VerificationRepository
	deps   VerificationDeps
	logger *slog.Logger
}

// NewVerificationService constructs a new VerificationService.
func NewVerificationService(opts VerificationServiceOptions) *VerificationService {
	if opts.Repo == nil {
		panic("NewVerificationService: Repo is required")
	}
	if opts.Deps.Notifier == nil {
		panic("NewVerificationService: Deps.Notifier is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &VerificationService{repo: opts.Repo, deps: opts.Deps, logger: logger.With("component", "verifications")}
}

// Approve verifies a pending account and activates its owner.
func (s *VerificationService) Approve(
	ctx context.Context,
	admin domainauth.Actor,
	ownerID string,
	notes *string,
) (*model.Verification, error) {
	return s.decide(ctx, admin, model.VerificationDecision{
		OwnerActorID: ownerID,
		Status:       model.VerificationApproved,
		Notes:        notes,
	})
}

// Reject declines a pending account. The owner stays inactive.
func (s *VerificationService) Reject(
	ctx context.Context,
	admin domainauth.Actor,
	ownerID string,
	reason string,
) (*model.Verification, error) {
	return s.decide(ctx, admin, model.VerificationDecision{
		OwnerActorID: ownerID,
		Status:       model.VerificationRejected,
		Reason:       &reason,
	})
}

func (s *VerificationService) decide(
	ctx context.Context,
	admin domainauth.Actor,
	d model.VerificationDecision,
) (v *model.Verification, err error) {
	start := time.Now()
	defer func() {
		metrics.EmitTransition(s.deps.Metrics, metrics.TransitionMetric{
			Machine:  metrics.MachineVerification,
			To:       string(d.Status),
			Duration: time.Since(start),
			Err:      err,
		})
	}()

	if err := gateCap(admin, domainauth.CapReviewVerifications); err != nil {
		return nil, err
	}
	d.AdminID = admin.ID
	if err := d.Validate(); err != nil {
		return nil, err
	}

	v, err = s.repo.Decide(ctx, d)
	if errors.Is(err, core.ErrConditionNotMet) {
		return nil, s.refusal(ctx, d.OwnerActorID, d.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("decide verification: %w", err)
	}

	if s.deps.Invalidator != nil {
		s.deps.Invalidator.Invalidate(ctx, v.OwnerActorID)
	}
	s.logger.InfoContext(ctx, "verification decided",
		"owner_actor_id", v.OwnerActorID, "status", v.Status, "admin_id", admin.ID)

	kind := model.NotificationAccountApproved
	if v.Status == model.VerificationRejected {
		kind = model.NotificationAccountRejected
	}
	data := NotifyData{Refs: model.NotificationRefs{ActorID: &v.OwnerActorID}}
	if v.RejectionReason != nil {
		data.Reason = *v.RejectionReason
	}
	if v.Notes != nil {
		data.Notes = *v.Notes
	}
	data.Name = s.displayName(ctx, v.OwnerActorID)
	s.deps.Notifier.Dispatch(ctx, model.Recipient{ActorID: v.OwnerActorID, Role: domainauth.Role(v.Kind)}, kind, data)
	return v, nil
}

// refusal re-reads a record whose conditional decision matched nothing.
func (s *VerificationService) refusal(ctx context.Context, ownerID string, to model.VerificationStatus) error {
	cur, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("verification not found")
		}
		return fmt.Errorf("get verification: %w", err)
	}
	return apperrors.InvalidTransition("verification", cur.Status, to)
}

func (s *VerificationService) displayName(ctx context.Context, actorID string) string {
	if s.deps.Actors == nil {
		return ""
	}
	rec, err := s.deps.Actors.GetByID(ctx, actorID)
	if err != nil {
		s.logger.WarnContext(ctx, "lookup for notification failed", "actor_id", actorID, "error", err)
		return ""
	}
	return rec.DisplayName
}

// ListPending returns pending verifications, oldest first.
func (s *VerificationService) ListPending(
	ctx context.Context,
	admin domainauth.Actor,
	kind *model.VerificationKind,
	limit, offset int,
) ([]*model.Verification, error) {
	if err := gateCap(admin, domainauth.CapReviewVerifications); err != nil {
		return nil, err
	}
	if kind != nil && !kind.Valid() {
		return nil, apperrors.ValidationField("kind", "kind must be recruiter or alumni")
	}
	list, err := s.repo.List(ctx, model.VerificationListOptions{
		Kind:   kind,
		Status: model.VerificationPending,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	return list, nil
}

// Get returns one account's verification record.
func (s *VerificationService) Get(ctx context.Context, admin domainauth.Actor, ownerID string) (*model.Verification, error) {
	if err := gateCap(admin, domainauth.CapReviewVerifications); err != nil {
		return nil, err
	}
	v, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get verification: %w", err)
	}
	return v, nil
}
