package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/placementhub/placement-engine/internal/data/database"
	"github.com/placementhub/placement-engine/internal/data/pgxutil"
	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

const applicationColumns = `id, job_id, applicant_id, recruiter_id, status, score_snapshot, cover_letter,
	recruiter_notes, applied_at, shortlisted_at, on_hold_at, rejected_at, selected_at, updated_at`

var applicationColumnList = []string{
	"id", "job_id", "applicant_id", "recruiter_id", "status", "score_snapshot", "cover_letter",
	"recruiter_notes", "applied_at", "shortlisted_at", "on_hold_at", "rejected_at", "selected_at", "updated_at",
}

// applicationPairKey is the unique constraint over (job_id, applicant_id).
const applicationPairKey = "applications_job_applicant_key"

// ApplicationRepo persists applications and their recruiter-driven status.
type ApplicationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewApplicationRepo creates a new ApplicationRepo with real time provider.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo {
	return &ApplicationRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewApplicationRepoWithTimeProvider creates a new ApplicationRepo with a custom time provider.
func NewApplicationRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ApplicationRepo {
	return &ApplicationRepo{DB: db, timeProvider: tp}
}

// Create inserts an applied application. The job must be approved and active
// at the moment of insert; the recruiter is copied from the posting. The
// unique pair constraint settles concurrent submissions.
func (r *ApplicationRepo) Create(ctx context.Context, params model.CreateApplicationParams) (*model.Application, error) {
	if err := checkID("create application", "job posting", params.JobID); err != nil {
		return nil, err
	}
	out, err := pgxutil.QueryOne[model.Application](ctx, r.DB, `
		INSERT INTO applications (job_id, applicant_id, recruiter_id, status, score_snapshot, cover_letter,
		                          applied_at, updated_at)
		SELECT j.id, $2, j.recruiter_id, 'applied', $3, $4, $5, $5
		FROM job_postings j
		WHERE j.id = $1 AND j.approval_status = 'approved' AND j.active
		RETURNING `+applicationColumns,
		params.JobID, params.ApplicantID, params.ScoreSnapshot, params.CoverLetter, r.timeProvider.Now())
	if err != nil {
		if apperrors.IsUniqueViolation(err, applicationPairKey) {
			return nil, fmt.Errorf("create application: %w", &apperrors.AppError{
				Code:    apperrors.ErrCodeDuplicateApplication,
				Message: "you have already applied to this job",
				Field:   "job_id",
				Cause:   err,
			})
		}
		return nil, condErr("create application", err)
	}
	return out, nil
}

// GetByID retrieves an application by ID.
func (r *ApplicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrApplicationIDRequired
	}
	if err := checkID("get application", "application", id); err != nil {
		return nil, err
	}
	out, err := pgxutil.QueryOne[model.Application](ctx, r.DB,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	if err != nil {
		return nil, dbErr("get application", "application", err)
	}
	return out, nil
}

// List returns applications newest first, ties broken by id.
func (r *ApplicationRepo) List(ctx context.Context, opts model.ApplicationListOptions) ([]*model.Application, error) {
	limit, offset := page(opts.Limit, opts.Offset)
	qopts := []database.ListQueryOption{
		database.WithColumns(applicationColumnList...),
		database.WithOrderBy("applied_at", sortDescending),
		database.WithThenBy("id", sortDescending),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if opts.JobID != nil {
		if checkID("list applications", "job posting", *opts.JobID) != nil {
			return []*model.Application{}, nil
		}
		qopts = append(qopts, database.WithCondition(database.WhereCond("job_id", database.Equal, *opts.JobID)))
	}
	if opts.ApplicantID != nil {
		qopts = append(qopts, database.WithCondition(
			database.WhereCond("applicant_id", database.Equal, *opts.ApplicantID)))
	}
	if opts.Status != nil {
		qopts = append(qopts, database.WithCondition(database.WhereCond("status", database.Equal, *opts.Status)))
	}
	if opts.After != nil {
		if checkID("list applications", "application", opts.After.ID) != nil {
			return []*model.Application{}, nil
		}
		qopts = append(qopts, database.WithCondition(
			database.WhereRawCond("(applied_at, id) < ($1, $2)", opts.After.AppliedAt, opts.After.ID)))
	}
	q, args := database.BuildListQuery(database.NewListQueryOptions("applications", qopts...))
	out, err := pgxutil.QueryAll[model.Application](ctx, r.DB, q, args...)
	if err != nil {
		return nil, dbErr("list applications", "application", err)
	}
	return out, nil
}

// UpdateStatus moves an application the recruiter owns into change.Status,
// provided its current status may transition there. The entry timestamp for
// the new status is stamped and notes replace the previous notes when given.
func (r *ApplicationRepo) UpdateStatus(ctx context.Context, change model.StatusChange) (*model.Application, error) {
	if err := checkID("update application status", "application", change.ApplicationID); err != nil {
		return nil, err
	}
	col := change.Status.TimestampColumn()
	from := model.AllowedFrom(change.Status)
	if col == "" || len(from) == 0 {
		return nil, condErr("update application status", sql.ErrNoRows)
	}
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}
	q := fmt.Sprintf(`
		UPDATE applications
		SET status = $3, %s = $5, recruiter_notes = COALESCE($6, recruiter_notes), updated_at = $5
		WHERE id = $1 AND recruiter_id = $2 AND status = ANY($4::text[])
		RETURNING `+applicationColumns, col)
	out, err := pgxutil.QueryOne[model.Application](ctx, r.DB, q,
		change.ApplicationID, change.RecruiterID, change.Status, allowed, r.timeProvider.Now(), change.Notes)
	if err != nil {
		return nil, condErr("update application status", err)
	}
	return out, nil
}

// DeleteApplied removes the applicant's own application while it is still applied.
func (r *ApplicationRepo) DeleteApplied(ctx context.Context, id, applicantID string) error {
	if err := checkID("withdraw application", "application", id); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM applications WHERE id = $1 AND applicant_id = $2 AND status = 'applied'`, id, applicantID)
	if err != nil {
		return dbErr("withdraw application", "application", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbErr("withdraw application", "application", err)
	}
	if n == 0 {
		return condErr("withdraw application", sql.ErrNoRows)
	}
	return nil
}
