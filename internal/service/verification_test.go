package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/placementhub/placement-engine/internal/core"
	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	"github.com/placementhub/placement-engine/internal/mocks"
)

type verificationHarness struct {
	svc         *VerificationService
	repo        *mocks.MockVerificationRepository
	actors      *mocks.MockActorRepository
	notifier    *recordingNotifier
	invalidator *recordingInvalidator
}

func newVerificationHarness(t *testing.T) verificationHarness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := verificationHarness{
		repo:        mocks.NewMockVerificationRepository(ctrl),
		actors:      mocks.NewMockActorRepository(ctrl),
		notifier:    &recordingNotifier{},
		invalidator: &recordingInvalidator{},
	}
	h.svc = NewVerificationService(VerificationServiceOptions{
		Repo: h.repo,
		Deps: VerificationDeps{Actors: h.actors, Notifier: h.notifier, Invalidator: h.invalidator},
	})
	return h
}

func TestVerificationService_ApproveNotifiesOnce(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()
	notes := "domain checked"

	h.repo.EXPECT().
		Decide(gomock.Any(), model.VerificationDecision{
			OwnerActorID: "rec-9", AdminID: adminActor.ID, Status: model.VerificationApproved, Notes: &notes,
		}).
		Return(&model.Verification{
			OwnerActorID: "rec-9", Kind: model.VerificationKindRecruiter,
			Status: model.VerificationApproved, Notes: &notes,
		}, nil)
	h.actors.EXPECT().GetByID(gomock.Any(), "rec-9").
		Return(&model.ActorRecord{ID: "rec-9", DisplayName: "Acme Hiring"}, nil)

	v, err := h.svc.Approve(ctx, adminActor, "rec-9", &notes)
	require.NoError(t, err)
	assert.Equal(t, model.VerificationApproved, v.Status)

	calls := h.notifier.all()
	require.Len(t, calls, 1)
	assert.Equal(t, model.NotificationAccountApproved, calls[0].Kind)
	assert.Equal(t, model.Recipient{ActorID: "rec-9", Role: domainauth.RoleRecruiter}, calls[0].To)
	assert.Equal(t, "Acme Hiring", calls[0].Data.Name)
	assert.Equal(t, notes, calls[0].Data.Notes)
	assert.Equal(t, []string{"rec-9"}, h.invalidator.ids)
}

func TestVerificationService_RejectCarriesReason(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()
	reason := "unverifiable company"

	h.repo.EXPECT().Decide(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d model.VerificationDecision) (*model.Verification, error) {
			assert.Equal(t, model.VerificationRejected, d.Status)
			require.NotNil(t, d.Reason)
			assert.Equal(t, reason, *d.Reason)
			return &model.Verification{
				OwnerActorID: d.OwnerActorID, Kind: model.VerificationKindAlumni,
				Status: d.Status, RejectionReason: d.Reason,
			}, nil
		})
	h.actors.EXPECT().GetByID(gomock.Any(), "alu-1").Return(nil, errors.New("db down"))

	_, err := h.svc.Reject(ctx, adminActor, "alu-1", "  "+reason+" ")
	require.NoError(t, err)

	calls := h.notifier.all()
	require.Len(t, calls, 1)
	assert.Equal(t, model.NotificationAccountRejected, calls[0].Kind)
	assert.Equal(t, domainauth.RoleAlumni, calls[0].To.Role)
	assert.Equal(t, reason, calls[0].Data.Reason)
	assert.Empty(t, calls[0].Data.Name)
}

func TestVerificationService_Refusals(t *testing.T) {
	ctx := context.Background()

	t.Run("already decided", func(t *testing.T) {
		h := newVerificationHarness(t)
		h.repo.EXPECT().Decide(gomock.Any(), gomock.Any()).Return(nil, core.ErrConditionNotMet)
		h.repo.EXPECT().Get(gomock.Any(), "rec-9").
			Return(&model.Verification{OwnerActorID: "rec-9", Status: model.VerificationApproved}, nil)

		_, err := h.svc.Reject(ctx, adminActor, "rec-9", "late")
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidTransition(err))
		assert.Empty(t, h.notifier.all())
		assert.Empty(t, h.invalidator.ids)
	})

	t.Run("unknown owner", func(t *testing.T) {
		h := newVerificationHarness(t)
		h.repo.EXPECT().Decide(gomock.Any(), gomock.Any()).Return(nil, core.ErrConditionNotMet)
		h.repo.EXPECT().Get(gomock.Any(), "ghost").Return(nil, apperrors.NotFound("verification not found"))

		_, err := h.svc.Approve(ctx, adminActor, "ghost", nil)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("reject without reason", func(t *testing.T) {
		h := newVerificationHarness(t)
		_, err := h.svc.Reject(ctx, adminActor, "rec-9", "   ")
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "reason", apperrors.GetField(err))
	})

	t.Run("non-admin", func(t *testing.T) {
		h := newVerificationHarness(t)
		_, err := h.svc.Approve(ctx, recruiterActor, "rec-9", nil)
		assert.True(t, apperrors.IsForbidden(err))
		_, err = h.svc.ListPending(ctx, applicantActor, nil, 10, 0)
		assert.True(t, apperrors.IsForbidden(err))
	})
}

func TestVerificationService_ListPending(t *testing.T) {
	h := newVerificationHarness(t)
	ctx := context.Background()
	kind := model.VerificationKindAlumni

	h.repo.EXPECT().
		List(gomock.Any(), model.VerificationListOptions{Kind: &kind, Status: model.VerificationPending, Limit: 20}).
		Return([]*model.Verification{{OwnerActorID: "alu-1"}}, nil)

	list, err := h.svc.ListPending(ctx, adminActor, &kind, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	bad := model.VerificationKind("student")
	_, err = h.svc.ListPending(ctx, adminActor, &bad, 20, 0)
	assert.True(t, apperrors.IsValidation(err))
}
