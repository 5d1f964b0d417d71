package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/placementhub/placement-engine/internal/core"
	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

var (
	adminActor     = domainauth.Actor{ID: "admin-1", Role: domainauth.RoleAdmin, Active: true}
	recruiterActor = domainauth.Actor{ID: "rec-1", Role: domainauth.RoleRecruiter, Active: true}
	otherRecruiter = domainauth.Actor{ID: "rec-2", Role: domainauth.RoleRecruiter, Active: true}
	applicantActor = domainauth.Actor{ID: "stu-1", Role: domainauth.RoleApplicant, Active: true}
)

type dispatched struct {
	To   model.Recipient
	Kind model.NotificationKind
	Data NotifyData
}

// recordingNotifier captures Dispatch calls.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []dispatched
}

func (r *recordingNotifier) Dispatch(_ context.Context, to model.Recipient, kind model.NotificationKind, data NotifyData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, dispatched{To: to, Kind: kind, Data: data})
}

func (r *recordingNotifier) all() []dispatched {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]dispatched(nil), r.calls...)
}

// recordingInvalidator captures actor cache invalidations.
type recordingInvalidator struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, actorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, actorID)
}

// staticProfiles serves fixed applicant profile documents.
type staticProfiles map[string]map[string]any

func (p staticProfiles) GetProfileFields(_ context.Context, actorID string, _ domainauth.Role) (map[string]any, error) {
	f, ok := p[actorID]
	if !ok {
		return nil, apperrors.NotFound("profile not found")
	}
	return f, nil
}

func academic(branch string, cgpa float64, year int) map[string]any {
	return map[string]any{
		"personal": map[string]any{"full_name": "Student", "phone": "999"},
		"academic": map[string]any{"branch": branch, "cgpa": cgpa, "graduation_year": year},
	}
}

// memApplications is an in-memory ApplicationRepository with the same
// conditional-write semantics as the SQL implementation.
type memApplications struct {
	mu   sync.Mutex
	jobs map[string]*model.JobPosting
	apps map[string]*model.Application
	seq  int
}

func newMemApplications(jobs ...*model.JobPosting) *memApplications {
	m := &memApplications{jobs: map[string]*model.JobPosting{}, apps: map[string]*model.Application{}}
	for _, j := range jobs {
		m.jobs[j.ID] = j
	}
	return m
}

func (m *memApplications) Create(_ context.Context, p model.CreateApplicationParams) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[p.JobID]
	if !ok || !job.Open() {
		return nil, core.ErrConditionNotMet
	}
	for _, a := range m.apps {
		if a.JobID == p.JobID && a.ApplicantID == p.ApplicantID {
			return nil, &apperrors.AppError{
				Code: apperrors.ErrCodeDuplicateApplication, Message: "you have already applied to this job", Field: "job_id",
			}
		}
	}
	m.seq++
	a := &model.Application{
		ID:            fmt.Sprintf("app-%d", m.seq),
		JobID:         p.JobID,
		ApplicantID:   p.ApplicantID,
		RecruiterID:   job.RecruiterID,
		Status:        model.ApplicationApplied,
		ScoreSnapshot: p.ScoreSnapshot,
		CoverLetter:   p.CoverLetter,
		AppliedAt:     time.Now(),
	}
	m.apps[a.ID] = a
	cp := *a
	return &cp, nil
}

func (m *memApplications) GetByID(_ context.Context, id string) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, apperrors.NotFound("application not found")
	}
	cp := *a
	return &cp, nil
}

func (m *memApplications) List(_ context.Context, opts model.ApplicationListOptions) ([]*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Application
	for _, a := range m.apps {
		if opts.JobID != nil && a.JobID != *opts.JobID {
			continue
		}
		if opts.ApplicantID != nil && a.ApplicantID != *opts.ApplicantID {
			continue
		}
		if opts.After != nil && !listedBefore(opts.After, a) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(x, y *model.Application) int {
		if c := y.AppliedAt.Compare(x.AppliedAt); c != 0 {
			return c
		}
		return strings.Compare(y.ID, x.ID)
	})
	out = out[min(max(opts.Offset, 0), len(out)):]
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// listedBefore reports whether a sorts strictly after cur in a newest-first listing.
func listedBefore(cur *model.ApplicationCursor, a *model.Application) bool {
	if !a.AppliedAt.Equal(cur.AppliedAt) {
		return a.AppliedAt.Before(cur.AppliedAt)
	}
	return a.ID < cur.ID
}

func (m *memApplications) UpdateStatus(_ context.Context, c model.StatusChange) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[c.ApplicationID]
	if !ok || a.RecruiterID != c.RecruiterID || !a.Status.CanTransitionTo(c.Status) {
		return nil, core.ErrConditionNotMet
	}
	a.Status = c.Status
	if c.Notes != nil {
		a.RecruiterNotes = c.Notes
	}
	cp := *a
	return &cp, nil
}

func (m *memApplications) DeleteApplied(_ context.Context, id, applicantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok || a.ApplicantID != applicantID || a.Status != model.ApplicationApplied {
		return core.ErrConditionNotMet
	}
	delete(m.apps, id)
	return nil
}

// memJobs serves the postings held by a memApplications.
type memJobs struct {
	core.JobPostingRepository
	store *memApplications
}

func (j memJobs) GetByID(_ context.Context, id string) (*model.JobPosting, error) {
	j.store.mu.Lock()
	defer j.store.mu.Unlock()
	job, ok := j.store.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("job posting not found")
	}
	cp := *job
	return &cp, nil
}

func openJob(id, recruiterID string, e model.Eligibility) *model.JobPosting {
	return &model.JobPosting{
		ID:             id,
		RecruiterID:    recruiterID,
		Title:          "Backend Engineer",
		Description:    "Build services",
		Location:       "Pune",
		JobType:        model.JobTypeFullTime,
		Eligibility:    e,
		ApprovalStatus: model.ApprovalApproved,
		Active:         true,
	}
}

func ptr[T any](v T) *T { return &v }
