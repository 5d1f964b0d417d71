package httpx

import (
	"context"
	"net/http"
	"sync"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	"github.com/placementhub/placement-engine/internal/service"
)

var (
	adminActor     = domainauth.Actor{ID: "adm-1", Role: domainauth.RoleAdmin, Active: true}
	recruiterActor = domainauth.Actor{ID: "rec-1", Role: domainauth.RoleRecruiter, Active: true}
	applicantActor = domainauth.Actor{ID: "stu-1", Role: domainauth.RoleApplicant, Active: true}
)

// fakeIdentity resolves tokens from a fixed table. Unknown tokens are unauthenticated.
type fakeIdentity struct {
	mu      sync.Mutex
	tokens  map[string]domainauth.Actor
	errs    map[string]error
	revoked []string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		tokens: map[string]domainauth.Actor{
			"admin-token":     adminActor,
			"recruiter-token": recruiterActor,
			"applicant-token": applicantActor,
		},
		errs: map[string]error{
			"inactive-token": apperrors.AccountInactive("account is awaiting verification"),
			"down-token":     apperrors.DependencyUnavailable(context.DeadlineExceeded, "redis"),
		},
	}
}

func (f *fakeIdentity) Resolve(_ context.Context, token string) (domainauth.Actor, error) {
	if err, ok := f.errs[token]; ok {
		return domainauth.Actor{}, err
	}
	actor, ok := f.tokens[token]
	if !ok {
		return domainauth.Actor{}, apperrors.Unauthenticated("invalid token")
	}
	return actor, nil
}

func (f *fakeIdentity) Revoke(_ context.Context, _ domainauth.Actor, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, token)
	return nil
}

type fakeAccounts struct {
	registered []model.RegisterRequest
}

func (f *fakeAccounts) Register(_ context.Context, req model.RegisterRequest) (*model.Registration, error) {
	if req.Email == "taken@example.edu" {
		return nil, apperrors.Conflict("email already registered")
	}
	f.registered = append(f.registered, req)
	return &model.Registration{Actor: &model.ActorRecord{ID: "new-1", Email: req.Email, Role: req.Role}}, nil
}

func (f *fakeAccounts) Me(_ context.Context, actor domainauth.Actor) (*model.Registration, error) {
	return &model.Registration{Actor: &model.ActorRecord{ID: actor.ID, Role: actor.Role}}, nil
}

func (f *fakeAccounts) UpdateProfile(
	_ context.Context,
	actor domainauth.Actor,
	req model.UpdateProfileRequest,
) (*model.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &model.Profile{ActorID: actor.ID, Fields: req.Fields, Completion: 40}, nil
}

// fakeJobs gates on role the way the real service does so route tests exercise error mapping.
type fakeJobs struct {
	lastQuery service.JobQuery
}

func (f *fakeJobs) Create(_ context.Context, actor domainauth.Actor, fields model.JobPostingFields) (*model.JobPosting, error) {
	if actor.Role != domainauth.RoleRecruiter {
		return nil, apperrors.Forbidden("only recruiters may post jobs")
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	return &model.JobPosting{ID: "job-1", RecruiterID: actor.ID, ApprovalStatus: model.ApprovalPending}, nil
}

func (f *fakeJobs) Edit(context.Context, domainauth.Actor, string, model.JobPostingFields) (*model.JobPosting, error) {
	return nil, apperrors.New(apperrors.ErrCodeImmutableWhileApproved, "approved job postings cannot be edited")
}

func (f *fakeJobs) Approve(_ context.Context, actor domainauth.Actor, id string) (*model.JobPosting, error) {
	if actor.Role != domainauth.RoleAdmin {
		return nil, apperrors.Forbidden("admin only")
	}
	return &model.JobPosting{ID: id, ApprovalStatus: model.ApprovalApproved}, nil
}

func (f *fakeJobs) Reject(_ context.Context, _ domainauth.Actor, id, reason string) (*model.JobPosting, error) {
	return &model.JobPosting{ID: id, ApprovalStatus: model.ApprovalRejected, RejectionReason: &reason}, nil
}

func (f *fakeJobs) SetActive(_ context.Context, _ domainauth.Actor, id string, active bool) (*model.JobPosting, error) {
	return &model.JobPosting{ID: id, Active: active}, nil
}

func (f *fakeJobs) Delete(context.Context, domainauth.Actor, string) error { return nil }

func (f *fakeJobs) Get(_ context.Context, _ domainauth.Actor, id string) (*model.JobPosting, error) {
	if id != "job-1" {
		return nil, apperrors.NotFound("job posting not found")
	}
	return &model.JobPosting{ID: id}, nil
}

func (f *fakeJobs) List(_ context.Context, _ domainauth.Actor, q service.JobQuery) ([]*model.JobPosting, error) {
	f.lastQuery = q
	return []*model.JobPosting{{ID: "job-1"}}, nil
}

type fakeApplications struct {
	lastChange model.StatusChange
}

func (f *fakeApplications) Apply(_ context.Context, _ domainauth.Actor, req model.ApplyRequest) (*model.Application, error) {
	switch req.JobID {
	case "closed":
		return nil, apperrors.New(apperrors.ErrCodeJobNotOpen, "job posting is not open")
	case "strict":
		return nil, &apperrors.AppError{Code: apperrors.ErrCodeEligibilityMismatch, Message: "below minimum", Field: "cgpa"}
	}
	return &model.Application{ID: "app-1", JobID: req.JobID, Status: model.ApplicationApplied}, nil
}

func (f *fakeApplications) SetStatus(
	_ context.Context,
	_ domainauth.Actor,
	change model.StatusChange,
) (*model.Application, error) {
	f.lastChange = change
	return &model.Application{ID: change.ApplicationID, Status: change.Status}, nil
}

func (f *fakeApplications) BulkSetStatus(
	_ context.Context,
	_ domainauth.Actor,
	req model.BulkStatusRequest,
) (*model.BulkStatusResult, error) {
	res := &model.BulkStatusResult{Status: model.ApplicationShortlisted}
	for _, id := range req.ApplicationIDs {
		res.Results = append(res.Results, model.BulkItemResult{ApplicationID: id, Outcome: model.BulkOutcomeApplied})
		res.Applied++
	}
	return res, nil
}

func (f *fakeApplications) Withdraw(context.Context, domainauth.Actor, string) error {
	return apperrors.New(apperrors.ErrCodeWithdrawalNotAllowed, "only applied applications can be withdrawn")
}

func (f *fakeApplications) Get(_ context.Context, _ domainauth.Actor, id string) (*model.Application, error) {
	return &model.Application{ID: id}, nil
}

func (f *fakeApplications) ListForJob(
	context.Context, domainauth.Actor, string, service.ApplicationQuery,
) ([]*model.Application, error) {
	return []*model.Application{}, nil
}

func (f *fakeApplications) ListMine(context.Context, domainauth.Actor, service.ApplicationQuery) ([]*model.Application, error) {
	return []*model.Application{{ID: "app-1"}}, nil
}

func (f *fakeApplications) ExportForJob(_ context.Context, _ domainauth.Actor, jobID string) (*service.Export, error) {
	return &service.Export{Filename: "applications-" + jobID + ".xlsx", Data: []byte("PK\x03\x04")}, nil
}

type fakeNotifications struct{}

func (fakeNotifications) List(
	_ context.Context,
	actor domainauth.Actor,
	p service.ListNotificationsParams,
) ([]*model.Notification, error) {
	n := &model.Notification{ID: "n-1", RecipientID: actor.ID, Read: false}
	if p.UnreadOnly {
		return []*model.Notification{n}, nil
	}
	return []*model.Notification{n, {ID: "n-0", RecipientID: actor.ID, Read: true}}, nil
}

func (fakeNotifications) UnreadCount(context.Context, domainauth.Actor) (int, error) { return 3, nil }

func (fakeNotifications) MarkRead(_ context.Context, actor domainauth.Actor, id string) (*model.Notification, error) {
	if id != "n-1" {
		return nil, apperrors.NotFound("notification not found")
	}
	return &model.Notification{ID: id, RecipientID: actor.ID, Read: true}, nil
}

func (fakeNotifications) MarkAllRead(context.Context, domainauth.Actor) (int, error) { return 2, nil }
func (fakeNotifications) Delete(context.Context, domainauth.Actor, string) error    { return nil }
func (fakeNotifications) ClearRead(context.Context, domainauth.Actor) (int, error)  { return 5, nil }

type fakeVerifications struct{}

func (fakeVerifications) ListPending(
	_ context.Context,
	_ domainauth.Actor,
	kind *model.VerificationKind,
	_, _ int,
) ([]*model.Verification, error) {
	if kind != nil && !kind.Valid() {
		return nil, apperrors.ValidationField("kind", "invalid verification kind")
	}
	return []*model.Verification{{OwnerActorID: "rec-9", Status: model.VerificationPending}}, nil
}

func (fakeVerifications) Get(_ context.Context, _ domainauth.Actor, ownerID string) (*model.Verification, error) {
	return &model.Verification{OwnerActorID: ownerID}, nil
}

func (fakeVerifications) Approve(
	_ context.Context,
	_ domainauth.Actor,
	ownerID string,
	notes *string,
) (*model.Verification, error) {
	return &model.Verification{OwnerActorID: ownerID, Status: model.VerificationApproved, Notes: notes}, nil
}

func (fakeVerifications) Reject(_ context.Context, _ domainauth.Actor, ownerID, reason string) (*model.Verification, error) {
	if reason == "" {
		return nil, apperrors.ValidationField("reason", "reason is required")
	}
	return &model.Verification{OwnerActorID: ownerID, Status: model.VerificationRejected}, nil
}

type fakeStream struct {
	recipients []string
}

func (f *fakeStream) Serve(_ context.Context, w http.ResponseWriter, _ *http.Request, recipientID string) error {
	f.recipients = append(f.recipients, recipientID)
	w.WriteHeader(http.StatusSwitchingProtocols)
	return nil
}
