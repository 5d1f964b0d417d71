package data

import (
	"context"
	"database/sql"
	"strings"

	"github.com/placementhub/placement-engine/internal/core"
	"github.com/placementhub/placement-engine/internal/data/database"
	"github.com/placementhub/placement-engine/internal/data/pgxutil"
	"github.com/placementhub/placement-engine/internal/domain/model"
)

const jobPostingColumns = `id, recruiter_id, title, description, location, job_type, salary, tags,
	eligibility, approval_status, approved_by, approved_at, rejection_reason, active, deadline,
	created_at, updated_at`

var jobPostingColumnList = []string{
	"id", "recruiter_id", "title", "description", "location", "job_type", "salary", "tags",
	"eligibility", "approval_status", "approved_by", "approved_at", "rejection_reason", "active", "deadline",
	"created_at", "updated_at",
}

// JobPostingRepo persists job postings and their approval state.
type JobPostingRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewJobPostingRepo creates a new JobPostingRepo with real time provider.
func NewJobPostingRepo(db *sql.DB) *JobPostingRepo {
	return &JobPostingRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewJobPostingRepoWithTimeProvider creates a new JobPostingRepo with a custom time provider.
func NewJobPostingRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *JobPostingRepo {
	return &JobPostingRepo{DB: db, timeProvider: tp}
}

// Create inserts a pending posting.
func (r *JobPostingRepo) Create(ctx context.Context, params core.CreateJobPostingParams) (*model.JobPosting, error) {
	f := params.Fields
	if f.Tags == nil {
		f.Tags = []string{}
	}
	out, err := pgxutil.QueryOne[model.JobPosting](ctx, r.DB, `
		INSERT INTO job_postings (recruiter_id, title, description, location, job_type, salary, tags,
		                          eligibility, deadline, approval_status, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending', TRUE, $10, $10)
		RETURNING `+jobPostingColumns,
		params.RecruiterID, f.Title, f.Description, f.Location, f.JobType, f.Salary, f.Tags,
		f.Eligibility, f.Deadline, r.timeProvider.Now())
	if err != nil {
		return nil, dbErr("create job posting", "job posting", err)
	}
	return out, nil
}

// GetByID retrieves a posting by ID.
func (r *JobPostingRepo) GetByID(ctx context.Context, id string) (*model.JobPosting, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrJobIDRequired
	}
	if err := checkID("get job posting", "job posting", id); err != nil {
		return nil, err
	}
	out, err := pgxutil.QueryOne[model.JobPosting](ctx, r.DB,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE id = $1`, id)
	if err != nil {
		return nil, dbErr("get job posting", "job posting", err)
	}
	return out, nil
}

// List returns postings newest first.
func (r *JobPostingRepo) List(ctx context.Context, opts model.JobListOptions) ([]*model.JobPosting, error) {
	limit, offset := page(opts.Limit, opts.Offset)
	qopts := []database.ListQueryOption{
		database.WithColumns(jobPostingColumnList...),
		database.WithOrderBy("created_at", sortDescending),
		database.WithThenBy("id", sortDescending),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if opts.RecruiterID != nil {
		qopts = append(qopts, database.WithCondition(
			database.WhereCond("recruiter_id", database.Equal, *opts.RecruiterID)))
	}
	if opts.OpenOnly {
		qopts = append(qopts, database.WithCondition(
			database.WhereRawCond("approval_status = 'approved' AND active")))
	} else if opts.Status != nil {
		qopts = append(qopts, database.WithCondition(
			database.WhereCond("approval_status", database.Equal, *opts.Status)))
	}
	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		q := strings.TrimSpace(*opts.Q)
		qopts = append(qopts, database.WithCondition(database.WhereRawCond(
			"(title ILIKE $1 OR location ILIKE $1 OR $2 = ANY(tags))", "%"+q+"%", strings.ToLower(q))))
	}
	q, args := database.BuildListQuery(database.NewListQueryOptions("job_postings", qopts...))
	out, err := pgxutil.QueryAll[model.JobPosting](ctx, r.DB, q, args...)
	if err != nil {
		return nil, dbErr("list job postings", "job posting", err)
	}
	return out, nil
}

// Update replaces the editable content and resets the posting to pending.
// Approved postings and postings owned by someone else are left untouched.
func (r *JobPostingRepo) Update(ctx context.Context, params core.UpdateJobPostingParams) (*model.JobPosting, error) {
	if err := checkID("update job posting", "job posting", params.ID); err != nil {
		return nil, err
	}
	f := params.Fields
	if f.Tags == nil {
		f.Tags = []string{}
	}
	out, err := pgxutil.QueryOne[model.JobPosting](ctx, r.DB, `
		UPDATE job_postings
		SET title = $3, description = $4, location = $5, job_type = $6, salary = $7, tags = $8,
		    eligibility = $9, deadline = $10, approval_status = 'pending', approved_by = NULL,
		    approved_at = NULL, rejection_reason = NULL, updated_at = $11
		WHERE id = $1 AND recruiter_id = $2 AND approval_status <> 'approved'
		RETURNING `+jobPostingColumns,
		params.ID, params.RecruiterID, f.Title, f.Description, f.Location, f.JobType, f.Salary, f.Tags,
		f.Eligibility, f.Deadline, r.timeProvider.Now())
	if err != nil {
		return nil, condErr("update job posting", err)
	}
	return out, nil
}

// Review applies an admin decision to a pending posting.
func (r *JobPostingRepo) Review(ctx context.Context, review model.JobReview) (*model.JobPosting, error) {
	if err := checkID("review job posting", "job posting", review.JobID); err != nil {
		return nil, err
	}
	out, err := pgxutil.QueryOne[model.JobPosting](ctx, r.DB, `
		UPDATE job_postings
		SET approval_status = $2, approved_by = $3,
		    approved_at = CASE WHEN $2 = 'approved' THEN $5::timestamptz ELSE NULL END,
		    rejection_reason = $4, updated_at = $5
		WHERE id = $1 AND approval_status = 'pending'
		RETURNING `+jobPostingColumns,
		review.JobID, review.Status, review.AdminID, review.Reason, r.timeProvider.Now())
	if err != nil {
		return nil, condErr("review job posting", err)
	}
	return out, nil
}

// SetActive opens or closes a posting the recruiter owns.
func (r *JobPostingRepo) SetActive(ctx context.Context, params core.SetJobActiveParams) (*model.JobPosting, error) {
	if err := checkID("set job posting active", "job posting", params.ID); err != nil {
		return nil, err
	}
	out, err := pgxutil.QueryOne[model.JobPosting](ctx, r.DB, `
		UPDATE job_postings SET active = $3, updated_at = $4
		WHERE id = $1 AND recruiter_id = $2
		RETURNING `+jobPostingColumns,
		params.ID, params.RecruiterID, params.Active, r.timeProvider.Now())
	if err != nil {
		return nil, condErr("set job posting active", err)
	}
	return out, nil
}

// Delete removes a posting the recruiter owns. Its applications are kept.
func (r *JobPostingRepo) Delete(ctx context.Context, id, recruiterID string) error {
	if err := checkID("delete job posting", "job posting", id); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM job_postings WHERE id = $1 AND recruiter_id = $2`, id, recruiterID)
	if err != nil {
		return dbErr("delete job posting", "job posting", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbErr("delete job posting", "job posting", err)
	}
	if n == 0 {
		return condErr("delete job posting", sql.ErrNoRows)
	}
	return nil
}
