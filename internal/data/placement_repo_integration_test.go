package data

import (
	"context"
	"database/sql"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placementhub/placement-engine/internal/core"
	"github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	"github.com/placementhub/placement-engine/internal/testutil"
)

func withRepoDB(t *testing.T, fn func(ctx context.Context, db *sql.DB)) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testutil.WithAutoDB(t, func(db *sql.DB) {
		fn(context.Background(), db)
	})
}

func TestActorRepo_Register(t *testing.T) {
	withRepoDB(t, func(ctx context.Context, db *sql.DB) {
		repo := NewActorRepo(db)
		params := model.CreateActorParams{
			Email:        "hr@acme.example",
			DisplayName:  "Acme HR",
			Role:         auth.RoleRecruiter,
			Profile:      map[string]any{"company": map[string]any{"name": "Acme"}},
			Completion:   10,
			Verification: &model.NewVerification{Kind: model.VerificationKindRecruiter, DomainMatch: testutil.BoolPtr(true)},
		}

		reg, err := repo.Register(ctx, params)
		require.NoError(t, err)
		assert.False(t, reg.Actor.Active)
		assert.Equal(t, auth.RoleRecruiter, reg.Profile.Role)
		require.NotNil(t, reg.Verification)
		assert.Equal(t, model.VerificationPending, reg.Verification.Status)
		assert.Equal(t, true, *reg.Verification.DomainMatch)

		ok, err := repo.HasRoleRecord(ctx, reg.Actor.ID, auth.RoleRecruiter)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = repo.Register(ctx, params)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, "email", apperrors.GetField(err))
	})
}

func TestVerificationRepo_DecideOnce(t *testing.T) {
	withRepoDB(t, func(ctx context.Context, db *sql.DB) {
		admin := testutil.NewActor().WithRole("admin").WithActive(true).Seed(t, db)
		owner := testutil.NewActor().WithRole("alumni").Seed(t, db)
		repo := NewVerificationRepo(db)

		errs := testutil.RunConcurrent(
			func() error {
				_, err := repo.Decide(ctx, model.VerificationDecision{
					OwnerActorID: owner, AdminID: admin, Status: model.VerificationApproved,
				})
				return err
			},
			func() error {
				_, err := repo.Decide(ctx, model.VerificationDecision{
					OwnerActorID: owner, AdminID: admin, Status: model.VerificationApproved,
				})
				return err
			},
		)
		assert.Equal(t, 1, testutil.CountNil(errs))
		for _, err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, core.ErrConditionNotMet)
			}
		}

		actor, err := NewActorRepo(db).GetByID(ctx, owner)
		require.NoError(t, err)
		assert.True(t, actor.Active)

		pending, err := repo.List(ctx, model.VerificationListOptions{})
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
}

func TestJobPostingRepo_UpdateResetsUnlessApproved(t *testing.T) {
	withRepoDB(t, func(ctx context.Context, db *sql.DB) {
		recruiter := testutil.NewActor().WithRole("recruiter").WithVerification("approved").Seed(t, db)
		other := testutil.NewActor().WithRole("recruiter").WithVerification("approved").Seed(t, db)
		rejected := testutil.NewJob(recruiter).WithStatus("rejected").Seed(t, db)
		approved := testutil.NewJob(recruiter).Seed(t, db)
		repo := NewJobPostingRepo(db)

		fields := model.JobPostingFields{Title: "SDE I", Description: "Backend", Location: "Pune", Tags: []string{"go"}}
		require.NoError(t, fields.Validate())

		job, err := repo.Update(ctx, core.UpdateJobPostingParams{ID: rejected, RecruiterID: recruiter, Fields: fields})
		require.NoError(t, err)
		assert.Equal(t, model.ApprovalPending, job.ApprovalStatus)
		assert.Nil(t, job.RejectionReason)
		assert.Equal(t, []string{"go"}, job.Tags)

		_, err = repo.Update(ctx, core.UpdateJobPostingParams{ID: approved, RecruiterID: recruiter, Fields: fields})
		assert.ErrorIs(t, err, core.ErrConditionNotMet)

		_, err = repo.Update(ctx, core.UpdateJobPostingParams{ID: rejected, RecruiterID: other, Fields: fields})
		assert.ErrorIs(t, err, core.ErrConditionNotMet)

		open, err := repo.List(ctx, model.JobListOptions{OpenOnly: true})
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, approved, open[0].ID)
	})
}

func TestApplicationRepo_Lifecycle(t *testing.T) {
	withRepoDB(t, func(ctx context.Context, db *sql.DB) {
		recruiter := testutil.NewActor().WithRole("recruiter").WithVerification("approved").Seed(t, db)
		applicant := testutil.NewActor().Seed(t, db)
		jobID := testutil.NewJob(recruiter).Seed(t, db)
		closed := testutil.NewJob(recruiter).WithActive(false).Seed(t, db)
		repo := NewApplicationRepoWithTimeProvider(db, NewFixedTimeProvider(testutil.TestTime()))

		params := model.CreateApplicationParams{JobID: jobID, ApplicantID: applicant, ScoreSnapshot: testutil.IntPtr(40)}
		errs := testutil.RunConcurrent(
			func() error { _, err := repo.Create(ctx, params); return err },
			func() error { _, err := repo.Create(ctx, params); return err },
			func() error { _, err := repo.Create(ctx, params); return err },
		)
		require.Equal(t, 1, testutil.CountNil(errs))
		for _, err := range errs {
			if err != nil {
				assert.Equal(t, apperrors.ErrCodeDuplicateApplication, apperrors.GetCode(err))
			}
		}

		_, err := repo.Create(ctx, model.CreateApplicationParams{JobID: closed, ApplicantID: applicant})
		assert.ErrorIs(t, err, core.ErrConditionNotMet)

		apps, err := repo.List(ctx, model.ApplicationListOptions{JobID: &jobID})
		require.NoError(t, err)
		require.Len(t, apps, 1)
		app := apps[0]
		assert.Equal(t, recruiter, app.RecruiterID)
		assert.Equal(t, model.ApplicationApplied, app.Status)

		_, err = repo.UpdateStatus(ctx, model.StatusChange{
			ApplicationID: app.ID, RecruiterID: recruiter, Status: model.ApplicationSelected,
		})
		assert.ErrorIs(t, err, core.ErrConditionNotMet)

		notes := "strong systems round"
		moved, err := repo.UpdateStatus(ctx, model.StatusChange{
			ApplicationID: app.ID, RecruiterID: recruiter, Status: model.ApplicationShortlisted, Notes: &notes,
		})
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationShortlisted, moved.Status)
		require.NotNil(t, moved.ShortlistedAt)
		assert.True(t, moved.ShortlistedAt.Equal(testutil.TestTime()))
		assert.Equal(t, notes, *moved.RecruiterNotes)

		assert.ErrorIs(t, repo.DeleteApplied(ctx, app.ID, applicant), core.ErrConditionNotMet)
	})
}

func TestApplicationRepo_KeysetPagingWithEqualTimestamps(t *testing.T) {
	withRepoDB(t, func(ctx context.Context, db *sql.DB) {
		recruiter := testutil.NewActor().WithRole("recruiter").WithVerification("approved").Seed(t, db)
		jobID := testutil.NewJob(recruiter).Seed(t, db)
		repo := NewApplicationRepoWithTimeProvider(db, NewFixedTimeProvider(testutil.TestTime()))

		want := make([]string, 0, 5)
		for range 5 {
			applicant := testutil.NewActor().Seed(t, db)
			app, err := repo.Create(ctx, model.CreateApplicationParams{JobID: jobID, ApplicantID: applicant})
			require.NoError(t, err)
			want = append(want, app.ID)
		}
		slices.Sort(want)
		slices.Reverse(want)

		var got []string
		opts := model.ApplicationListOptions{JobID: &jobID, Limit: 2}
		for {
			page, err := repo.List(ctx, opts)
			require.NoError(t, err)
			if len(page) == 0 {
				break
			}
			for _, a := range page {
				got = append(got, a.ID)
			}
			opts.After = model.CursorOf(page[len(page)-1])
		}
		assert.Equal(t, want, got)
	})
}

func TestNotificationRepo_RecipientScoped(t *testing.T) {
	withRepoDB(t, func(ctx context.Context, db *sql.DB) {
		alice := testutil.NewActor().Seed(t, db)
		bob := testutil.NewActor().Seed(t, db)
		tp := NewFixedTimeProvider(testutil.TestTime())
		repo := NewNotificationRepoWithTimeProvider(db, tp)

		var ids []string
		for _, kind := range []model.NotificationKind{model.NotificationApplicationShortlisted, model.NotificationApplicationSelected} {
			n, err := repo.Create(ctx, model.EnqueueParams{
				Recipient: model.Recipient{ActorID: alice, Role: auth.RoleApplicant},
				Kind:      kind,
				Title:     string(kind),
			})
			require.NoError(t, err)
			assert.Equal(t, model.PriorityNormal, n.Priority)
			ids = append(ids, n.ID)
			tp.AddTime(time.Second)
		}

		list, err := repo.List(ctx, model.NotificationListOptions{RecipientID: alice})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, ids[1], list[0].ID)

		_, err = repo.MarkRead(ctx, core.MarkReadParams{ID: ids[0], RecipientID: bob})
		assert.True(t, apperrors.IsNotFound(err))

		_, err = repo.MarkRead(ctx, core.MarkReadParams{ID: ids[0], RecipientID: alice})
		require.NoError(t, err)

		unread, err := repo.CountUnread(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, 1, unread)

		n, err := repo.DeleteRead(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		deleted, err := repo.Delete(ctx, ids[1], bob)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}
