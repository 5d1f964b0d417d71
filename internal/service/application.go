package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/placementhub/placement-engine/internal/core"
	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/completion"
	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	"github.com/placementhub/placement-engine/internal/observability/metrics"
	"github.com/placementhub/placement-engine/internal/observability/statsd"
	"github.com/placementhub/placement-engine/internal/ports"
)

// Bulk transition defaults.
const (
	DefaultBulkConcurrency = 8
	DefaultBulkMaxIDs      = 500
)

// Bulk failure reasons.
const (
	BulkReasonDuplicate         = "duplicate"
	BulkReasonNotFound          = "not_found"
	BulkReasonForbidden         = "forbidden"
	BulkReasonInvalidTransition = "invalid_state_transition"
	BulkReasonInternal          = "internal"
)

// ApplicationStores groups the stores ApplicationService reads and writes.
type ApplicationStores struct {
	Applications core.ApplicationRepository
	Jobs         core.JobPostingRepository
	Profiles     ports.ProfileStore
}

// ApplicationConfig tunes ApplicationService.
type ApplicationConfig struct {
	Eligibility     ports.EligibilityEvaluator // defaults to the academic.* profile paths
	BulkConcurrency int
	BulkMaxIDs      int
	Metrics         statsd.Sink
	Logger          *slog.Logger
}

// ApplicationServiceOptions groups dependencies for ApplicationService.
type ApplicationServiceOptions struct {
	Stores   ApplicationStores
	Notifier Notifier
	Config   ApplicationConfig
}

// ApplicationService runs the application lifecycle for applicants and recruiters.
type ApplicationService struct {
	apps        core.ApplicationRepository
	jobs        core.JobPostingRepository
	profiles    ports.ProfileStore
	eligibility ports.EligibilityEvaluator
	notifier    Notifier
	bulkLimit   int
	bulkMaxIDs  int
	metrics     statsd.Sink
	logger      *slog.Logger
}

// NewApplicationService constructs a new ApplicationService.
func NewApplicationService(opts ApplicationServiceOptions) *ApplicationService {
	if opts.Stores.Applications == nil {
		panic("NewApplicationService: Stores.Applications is required")
	}
	if opts.Stores.Jobs == nil {
		panic("NewApplicationService: Stores.Jobs is required")
	}
	if opts.Stores.Profiles == nil {
		panic("NewApplicationService: Stores.Profiles is required")
	}
	if opts.Notifier == nil {
		panic("NewApplicationService: Notifier is required")
	}
	cfg := opts.Config
	if cfg.Eligibility == nil {
		e, err := NewProfileEligibility(EligibilityPaths{})
		if err != nil {
			panic(fmt.Sprintf("NewApplicationService: %v", err))
		}
		cfg.Eligibility = e
	}
	if cfg.BulkConcurrency <= 0 {
		cfg.BulkConcurrency = DefaultBulkConcurrency
	}
	if cfg.BulkMaxIDs <= 0 {
		cfg.BulkMaxIDs = DefaultBulkMaxIDs
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &ApplicationService{
		apps:        opts.Stores.Applications,
		jobs:        opts.Stores.Jobs,
		profiles:    opts.Stores.Profiles,
		eligibility: cfg.Eligibility,
		notifier:    opts.Notifier,
		bulkLimit:   cfg.BulkConcurrency,
		bulkMaxIDs:  cfg.BulkMaxIDs,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger.With("component", "applications"),
	}
}

// Apply submits the applicant to an open job they are eligible for.
func (s *ApplicationService) Apply(
	ctx context.Context,
	applicant domainauth.Actor,
	req model.ApplyRequest,
) (app *model.Application, err error) {
	defer s.emit(time.Now(), model.ApplicationApplied, &err)

	if err := gateCap(applicant, domainauth.CapApply); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, fmt.Errorf("get job posting: %w", err)
	}
	if !job.Open() {
		return nil, apperrors.New(apperrors.ErrCodeJobNotOpen, "job is not accepting applications")
	}

	fields, err := s.profiles.GetProfileFields(ctx, applicant.ID, domainauth.RoleApplicant)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ProfileIncomplete("applicant profile has not been created")
		}
		return nil, fmt.Errorf("get applicant profile: %w", err)
	}
	res, err := s.eligibility.Evaluate(fields, job.Eligibility)
	if err != nil {
		return nil, fmt.Errorf("evaluate eligibility: %w", err)
	}
	if !res.Eligible {
		return nil, &apperrors.AppError{
			Code:    apperrors.ErrCodeEligibilityMismatch,
			Message: fmt.Sprintf("profile does not meet the %s requirement", strings.ReplaceAll(res.Failed, "_", " ")),
			Field:   res.Failed,
		}
	}

	score := completion.Score(domainauth.RoleApplicant, fields)
	app, err = s.apps.Create(ctx, model.CreateApplicationParams{
		JobID:         job.ID,
		ApplicantID:   applicant.ID,
		CoverLetter:   req.CoverLetter,
		ScoreSnapshot: &score,
	})
	if errors.Is(err, core.ErrConditionNotMet) {
		return nil, apperrors.New(apperrors.ErrCodeJobNotOpen, "job closed before the application was stored")
	}
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "application submitted", "application_id", app.ID, "job_id", job.ID)
	return app, nil
}

// SetStatus moves one application the recruiter owns along the transition table.
func (s *ApplicationService) SetStatus(
	ctx context.Context,
	recruiter domainauth.Actor,
	change model.StatusChange,
) (*model.Application, error) {
	if err := gateCap(recruiter, domainauth.CapReviewApplications); err != nil {
		return nil, err
	}
	change.RecruiterID = recruiter.ID
	if err := change.Validate(); err != nil {
		return nil, err
	}
	app, _, err := s.transition(ctx, change)
	return app, err
}

// transition performs one validated change. On refusal it also returns the
// record as re-read, when one exists.
func (s *ApplicationService) transition(
	ctx context.Context,
	change model.StatusChange,
) (app *model.Application, current *model.Application, err error) {
	defer s.emit(time.Now(), change.Status, &err)

	app, err = s.apps.UpdateStatus(ctx, change)
	if errors.Is(err, core.ErrConditionNotMet) {
		current, err = s.refusal(ctx, change)
		return nil, current, err
	}
	if err != nil {
		return nil, nil, fmt.Errorf("update application status: %w", err)
	}

	data := NotifyData{
		JobTitle: s.jobTitle(ctx, app.JobID),
		Refs:     model.NotificationRefs{JobID: &app.JobID, ApplicationID: &app.ID},
	}
	if change.Notes != nil {
		data.Notes = *change.Notes
	}
	s.notifier.Dispatch(ctx,
		model.Recipient{ActorID: app.ApplicantID, Role: domainauth.RoleApplicant},
		app.Status.NotificationKind(), data)
	return app, nil, nil
}

func (s *ApplicationService) refusal(ctx context.Context, change model.StatusChange) (*model.Application, error) {
	cur, err := s.apps.GetByID(ctx, change.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if cur.RecruiterID != change.RecruiterID {
		return cur, apperrors.Forbidden("application belongs to another recruiter's posting")
	}
	if cur.Status.CanTransitionTo(change.Status) {
		// The conditional write saw a different status than the one re-read.
		return cur, apperrors.Newf(apperrors.ErrCodeInvalidStateTransition,
			"application changed concurrently and is now %s; retry the transition", cur.Status)
	}
	return cur, apperrors.InvalidTransition("application", cur.Status, change.Status)
}

func (s *ApplicationService) jobTitle(ctx context.Context, jobID string) string {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		s.logger.WarnContext(ctx, "job lookup for notification failed", "job_id", jobID, "error", err)
		return "your application"
	}
	return job.Title
}

// BulkSetStatus applies one status to many applications. Each id succeeds or
// fails on its own; repeated ids are skipped.
func (s *ApplicationService) BulkSetStatus(
	ctx context.Context,
	recruiter domainauth.Actor,
	req model.BulkStatusRequest,
) (*model.BulkStatusResult, error) {
	if err := gateCap(recruiter, domainauth.CapReviewApplications); err != nil {
		return nil, err
	}
	status, ok := model.ParseApplicationStatus(req.Status)
	if !ok {
		return nil, apperrors.ValidationField("status", "invalid status")
	}
	if len(req.ApplicationIDs) == 0 {
		return nil, apperrors.ValidationField("application_ids", "at least one application id is required")
	}
	if len(req.ApplicationIDs) > s.bulkMaxIDs {
		return nil, apperrors.ValidationField("application_ids",
			fmt.Sprintf("at most %d application ids are allowed", s.bulkMaxIDs))
	}
	shape := model.StatusChange{ApplicationID: "-", Status: status, Notes: req.Notes}
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	results := make([]model.BulkItemResult, len(req.ApplicationIDs))
	seen := make(map[string]struct{}, len(req.ApplicationIDs))

	var g errgroup.Group
	g.SetLimit(s.bulkLimit)
	for i, raw := range req.ApplicationIDs {
		id := strings.TrimSpace(raw)
		results[i].ApplicationID = id
		if _, dup := seen[id]; dup {
			results[i].Outcome = model.BulkOutcomeSkipped
			results[i].Reason = BulkReasonDuplicate
			continue
		}
		seen[id] = struct{}{}
		if id == "" {
			results[i].Outcome = model.BulkOutcomeFailed
			results[i].Reason = BulkReasonNotFound
			results[i].Message = "application id is empty"
			continue
		}

		g.Go(func() error {
			app, cur, err := s.transition(ctx, model.StatusChange{
				ApplicationID: id,
				RecruiterID:   recruiter.ID,
				Status:        status,
				Notes:         req.Notes,
			})
			if err == nil {
				results[i].Outcome = model.BulkOutcomeApplied
				results[i].Application = app
				return nil
			}
			results[i].Outcome = model.BulkOutcomeFailed
			results[i].Reason, results[i].Message = s.bulkReason(ctx, id, err)
			if cur != nil && results[i].Reason == BulkReasonInvalidTransition {
				prev := cur.Status
				results[i].PreviousState = &prev
			}
			return nil
		})
	}
	_ = g.Wait()

	out := &model.BulkStatusResult{Status: status, Results: results}
	for _, r := range results {
		switch r.Outcome {
		case model.BulkOutcomeApplied:
			out.Applied++
		case model.BulkOutcomeSkipped:
			out.Skipped++
		case model.BulkOutcomeFailed:
			out.Failed++
		}
	}
	s.logger.InfoContext(ctx, "bulk status change",
		"recruiter_id", recruiter.ID, "status", status,
		"applied", out.Applied, "skipped", out.Skipped, "failed", out.Failed)
	return out, nil
}

func (s *ApplicationService) bulkReason(ctx context.Context, id string, err error) (reason, message string) {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNotFound:
		return BulkReasonNotFound, "application not found"
	case apperrors.ErrCodeForbidden:
		return BulkReasonForbidden, "application belongs to another recruiter's posting"
	case apperrors.ErrCodeInvalidStateTransition:
		var appErr *apperrors.AppError
		errors.As(err, &appErr)
		return BulkReasonInvalidTransition, appErr.Message
	default:
		s.logger.ErrorContext(ctx, "bulk status change failed", "application_id", id, "error", err)
		return BulkReasonInternal, "internal error"
	}
}

// Withdraw deletes the applicant's application while it is still applied.
// No notification is sent.
func (s *ApplicationService) Withdraw(ctx context.Context, applicant domainauth.Actor, id string) error {
	if err := gateCap(applicant, domainauth.CapWithdraw); err != nil {
		return err
	}
	err := s.apps.DeleteApplied(ctx, id, applicant.ID)
	if errors.Is(err, core.ErrConditionNotMet) {
		cur, gerr := s.apps.GetByID(ctx, id)
		if gerr != nil {
			return fmt.Errorf("get application: %w", gerr)
		}
		if cur.ApplicantID != applicant.ID {
			return apperrors.Forbidden("application belongs to another applicant")
		}
		return apperrors.Newf(apperrors.ErrCodeWithdrawalNotAllowed,
			"applications can only be withdrawn while applied; current status is %s", cur.Status)
	}
	if err != nil {
		return fmt.Errorf("withdraw application: %w", err)
	}
	s.logger.InfoContext(ctx, "application withdrawn", "application_id", id)
	return nil
}

// Get returns an application to its applicant or to the recruiter who owns the posting.
func (s *ApplicationService) Get(ctx context.Context, actor domainauth.Actor, id string) (*model.Application, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if app.ApplicantID != actor.ID && app.RecruiterID != actor.ID {
		return nil, apperrors.NotFound("application not found")
	}
	return app, nil
}

// ApplicationQuery filters application listings.
type ApplicationQuery struct {
	Status *model.ApplicationStatus
	Limit  int
	Offset int
}

// ListForJob returns the applications to a posting the recruiter owns.
func (s *ApplicationService) ListForJob(
	ctx context.Context,
	recruiter domainauth.Actor,
	jobID string,
	q ApplicationQuery,
) ([]*model.Application, error) {
	if err := s.ownJob(ctx, recruiter, jobID); err != nil {
		return nil, err
	}
	return s.list(ctx, model.ApplicationListOptions{JobID: &jobID, Status: q.Status, Limit: q.Limit, Offset: q.Offset})
}

// ListMine returns the applicant's own applications.
func (s *ApplicationService) ListMine(
	ctx context.Context,
	applicant domainauth.Actor,
	q ApplicationQuery,
) ([]*model.Application, error) {
	if err := gateCap(applicant, domainauth.CapApply); err != nil {
		return nil, err
	}
	return s.list(ctx, model.ApplicationListOptions{
		ApplicantID: &applicant.ID, Status: q.Status, Limit: q.Limit, Offset: q.Offset,
	})
}

func (s *ApplicationService) list(ctx context.Context, opts model.ApplicationListOptions) ([]*model.Application, error) {
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, apperrors.ValidationField("status", "invalid status")
	}
	apps, err := s.apps.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

func (s *ApplicationService) ownJob(ctx context.Context, recruiter domainauth.Actor, jobID string) error {
	if err := gateCap(recruiter, domainauth.CapReviewApplications); err != nil {
		return err
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("get job posting: %w", err)
	}
	if job.RecruiterID != recruiter.ID {
		return apperrors.Forbidden("job posting belongs to another recruiter")
	}
	return nil
}

func (s *ApplicationService) emit(start time.Time, to model.ApplicationStatus, errp *error) {
	metrics.EmitTransition(s.metrics, metrics.TransitionMetric{
		Machine:  metrics.MachineApplication,
		To:       string(to),
		Duration: time.Since(start),
		Err:      *errp,
	})
}
