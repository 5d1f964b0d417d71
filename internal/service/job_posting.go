package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/placementhub/placement-engine/internal/core"
	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	"github.com/placementhub/placement-engine/internal/observability/metrics"
	"github.com/placementhub/placement-engine/internal/observability/statsd"
)

// JobPostingServiceOptions groups dependencies for JobPostingService.
type JobPostingServiceOptions struct {
	Repo     core.JobPostingRepository
	Notifier Notifier
	Config   JobPostingConfig
}

// JobPostingConfig holds optional settings for JobPostingService.
type JobPostingConfig struct {
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// JobPostingService runs the posting approval lifecycle.
type JobPostingService struct {
	repo     core.JobPostingRepository
	notifier Notifier
	metrics  statsd.Sink
	logger   *slog.Logger
}

// NewJobPostingService constructs a new JobPostingService.
func NewJobPostingService(opts JobPostingServiceOptions) *JobPostingService {
	if opts.Repo == nil {
		panic("NewJobPostingService: Repo is required")
	}
	if opts.Notifier == nil {
		panic("NewJobPostingService: Notifier is required")
	}
	logger := opts.Config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobPostingService{
		repo:     opts.Repo,
		notifier: opts.Notifier,
		metrics:  opts.Config.Metrics,
		logger:   logger.With("component", "job_postings"),
	}
}

// Create submits a new posting for admin review.
func (s *JobPostingService) Create(
	ctx context.Context,
	recruiter domainauth.Actor,
	fields model.JobPostingFields,
) (*model.JobPosting, error) {
	if err := gateCap(recruiter, domainauth.CapManageJobPostings); err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	job, err := s.repo.Create(ctx, core.CreateJobPostingParams{RecruiterID: recruiter.ID, Fields: fields})
	if err != nil {
		return nil, fmt.Errorf("create job posting: %w", err)
	}
	s.logger.InfoContext(ctx, "job posting created", "job_id", job.ID, "recruiter_id", recruiter.ID)
	return job, nil
}

// Edit replaces a posting's fields and sends it back for review. Approved
// postings are immutable.
func (s *JobPostingService) Edit(
	ctx context.Context,
	owner domainauth.Actor,
	id string,
	fields model.JobPostingFields,
) (job *model.JobPosting, err error) {
	defer s.emit(time.Now(), model.ApprovalPending, &err)

	if err := gateCap(owner, domainauth.CapManageJobPostings); err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	job, err = s.repo.Update(ctx, core.UpdateJobPostingParams{ID: id, RecruiterID: owner.ID, Fields: fields})
	if errors.Is(err, core.ErrConditionNotMet) {
		return nil, s.editRefusal(ctx, owner, id)
	}
	if err != nil {
		return nil, fmt.Errorf("update job posting: %w", err)
	}
	return job, nil
}

func (s *JobPostingService) editRefusal(ctx context.Context, owner domainauth.Actor, id string) error {
	cur, err := s.owned(ctx, owner, id)
	if err != nil {
		return err
	}
	if !cur.ApprovalStatus.Editable() {
		return apperrors.New(apperrors.ErrCodeImmutableWhileApproved, "approved job postings cannot be edited")
	}
	// The conditional write saw the posting approved; it has since moved on.
	return apperrors.New(apperrors.ErrCodeImmutableWhileApproved,
		"job posting was approved while it was being edited; retry the edit")
}

// Approve publishes a pending posting.
func (s *JobPostingService) Approve(ctx context.Context, admin domainauth.Actor, id string) (*model.JobPosting, error) {
	return s.review(ctx, admin, model.JobReview{JobID: id, Status: model.ApprovalApproved})
}

// Reject declines a pending posting with a reason.
func (s *JobPostingService) Reject(
	ctx context.Context,
	admin domainauth.Actor,
	id, reason string,
) (*model.JobPosting, error) {
	return s.review(ctx, admin, model.JobReview{JobID: id, Status: model.ApprovalRejected, Reason: &reason})
}

func (s *JobPostingService) review(
	ctx context.Context,
	admin domainauth.Actor,
	r model.JobReview,
) (job *model.JobPosting, err error) {
	defer s.emit(time.Now(), r.Status, &err)

	if err := gateCap(admin, domainauth.CapReviewJobPostings); err != nil {
		return nil, err
	}
	r.AdminID = admin.ID
	if err := r.Validate(); err != nil {
		return nil, err
	}
	job, err = s.repo.Review(ctx, r)
	if errors.Is(err, core.ErrConditionNotMet) {
		cur, gerr := s.repo.GetByID(ctx, r.JobID)
		if gerr != nil {
			return nil, fmt.Errorf("get job posting: %w", gerr)
		}
		return nil, apperrors.InvalidTransition("job posting", cur.ApprovalStatus, r.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("review job posting: %w", err)
	}
	s.logger.InfoContext(ctx, "job posting reviewed", "job_id", job.ID, "status", job.ApprovalStatus, "admin_id", admin.ID)

	kind := model.NotificationJobApproved
	data := NotifyData{JobTitle: job.Title, Refs: model.NotificationRefs{JobID: &job.ID}}
	if job.ApprovalStatus == model.ApprovalRejected {
		kind = model.NotificationJobRejected
		if job.RejectionReason != nil {
			data.Reason = *job.RejectionReason
		}
	}
	s.notifier.Dispatch(ctx, model.Recipient{ActorID: job.RecruiterID, Role: domainauth.RoleRecruiter}, kind, data)
	return job, nil
}

// SetActive toggles whether an approved posting is open to applicants.
func (s *JobPostingService) SetActive(
	ctx context.Context,
	owner domainauth.Actor,
	id string,
	active bool,
) (*model.JobPosting, error) {
	if err := gateCap(owner, domainauth.CapManageJobPostings); err != nil {
		return nil, err
	}
	job, err := s.repo.SetActive(ctx, core.SetJobActiveParams{ID: id, RecruiterID: owner.ID, Active: active})
	if errors.Is(err, core.ErrConditionNotMet) {
		if _, oerr := s.owned(ctx, owner, id); oerr != nil {
			return nil, oerr
		}
		return nil, apperrors.NotFound("job posting not found")
	}
	if err != nil {
		return nil, fmt.Errorf("set job posting active: %w", err)
	}
	return job, nil
}

// Delete removes a posting in any status. Its applications are left in place.
func (s *JobPostingService) Delete(ctx context.Context, owner domainauth.Actor, id string) error {
	if err := gateCap(owner, domainauth.CapManageJobPostings); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, id, owner.ID)
	if errors.Is(err, core.ErrConditionNotMet) {
		if _, oerr := s.owned(ctx, owner, id); oerr != nil {
			return oerr
		}
		return apperrors.NotFound("job posting not found")
	}
	if err != nil {
		return fmt.Errorf("delete job posting: %w", err)
	}
	s.logger.InfoContext(ctx, "job posting deleted", "job_id", id, "recruiter_id", owner.ID)
	return nil
}

// Get returns a posting the actor may see. Admins and the owner see every
// status; everyone else sees only open postings.
func (s *JobPostingService) Get(ctx context.Context, actor domainauth.Actor, id string) (*model.JobPosting, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job posting: %w", err)
	}
	if actor.Is(domainauth.RoleAdmin) || job.RecruiterID == actor.ID {
		return job, nil
	}
	if actor.Role.Can(domainauth.CapBrowseJobs) && job.Open() {
		return job, nil
	}
	return nil, apperrors.NotFound("job posting not found")
}

// JobQuery filters posting listings.
type JobQuery struct {
	Status *model.ApprovalStatus
	Q      string
	Limit  int
	Offset int
}

// List returns the listing appropriate to the actor's role.
func (s *JobPostingService) List(ctx context.Context, actor domainauth.Actor, q JobQuery) ([]*model.JobPosting, error) {
	switch actor.Role {
	case domainauth.RoleRecruiter:
		return s.ListForRecruiter(ctx, actor, q)
	case domainauth.RoleAdmin:
		return s.ListForAdmin(ctx, actor, q)
	default:
		return s.ListOpen(ctx, actor, q)
	}
}

// ListForRecruiter returns the recruiter's own postings in any status.
func (s *JobPostingService) ListForRecruiter(
	ctx context.Context,
	recruiter domainauth.Actor,
	q JobQuery,
) ([]*model.JobPosting, error) {
	if err := gateCap(recruiter, domainauth.CapManageJobPostings); err != nil {
		return nil, err
	}
	opts := listOptions(q)
	opts.RecruiterID = &recruiter.ID
	return s.list(ctx, opts)
}

// ListForAdmin returns postings, optionally filtered by approval status.
func (s *JobPostingService) ListForAdmin(
	ctx context.Context,
	admin domainauth.Actor,
	q JobQuery,
) ([]*model.JobPosting, error) {
	if err := gateCap(admin, domainauth.CapReviewJobPostings); err != nil {
		return nil, err
	}
	return s.list(ctx, listOptions(q))
}

// ListOpen returns approved, active postings.
func (s *JobPostingService) ListOpen(
	ctx context.Context,
	actor domainauth.Actor,
	q JobQuery,
) ([]*model.JobPosting, error) {
	if err := gateCap(actor, domainauth.CapBrowseJobs); err != nil {
		return nil, err
	}
	opts := listOptions(q)
	opts.Status = nil
	opts.OpenOnly = true
	return s.list(ctx, opts)
}

func (s *JobPostingService) list(ctx context.Context, opts model.JobListOptions) ([]*model.JobPosting, error) {
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, apperrors.ValidationField("status", "invalid approval status")
	}
	jobs, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list job postings: %w", err)
	}
	return jobs, nil
}

// owned loads a posting and confirms the actor owns it.
func (s *JobPostingService) owned(ctx context.Context, owner domainauth.Actor, id string) (*model.JobPosting, error) {
	cur, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job posting: %w", err)
	}
	if cur.RecruiterID != owner.ID {
		return nil, apperrors.Forbidden("job posting belongs to another recruiter")
	}
	return cur, nil
}

func (s *JobPostingService) emit(start time.Time, to model.ApprovalStatus, errp *error) {
	metrics.EmitTransition(s.metrics, metrics.TransitionMetric{
		Machine:  metrics.MachineJobPosting,
		To:       string(to),
		Duration: time.Since(start),
		Err:      *errp,
	})
}

func listOptions(q JobQuery) model.JobListOptions {
	opts := model.JobListOptions{Status: q.Status, Limit: q.Limit, Offset: q.Offset}
	if term := strings.TrimSpace(q.Q); term != "" {
		opts.Q = &term
	}
	return opts
}
