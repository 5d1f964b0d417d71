package httpx

import (
	"context"
	"net/http"
	"strings"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
)

// VerificationService is the admin review surface for recruiter and alumni accounts.
type VerificationService interface {
	ListPending(
		ctx context.Context,
		admin domainauth.Actor,
		kind *model.VerificationKind,
		limit, offset int,
	) ([]*model.Verification, error)
	Get(ctx context.Context, admin domainauth.Actor, ownerID string) (*model.Verification, error)
	Approve(ctx context.Context, admin domainauth.Actor, ownerID string, notes *string) (*model.Verification, error)
	Reject(ctx context.Context, admin domainauth.Actor, ownerID, reason string) (*model.Verification, error)
}

// VerificationHandlers serves the verification queue.
type VerificationHandlers struct {
	Svc         VerificationService
	MaxPageSize int
}

type approveVerificationRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// ListPending returns pending verifications, optionally filtered by ?kind=.
func (h *VerificationHandlers) ListPending(w http.ResponseWriter, r *http.Request) {
	admin, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var kind *model.VerificationKind
	if v := optionalQuery(r, "kind"); v != nil {
		k := model.VerificationKind(strings.ToLower(*v))
		kind = &k
	}
	limit, offset := ParseLimitOffset(r, defaultPageSize, h.MaxPageSize)
	list, err := h.Svc.ListPending(r.Context(), admin, kind, limit, offset)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, listResponse[*model.Verification]{Items: list, Limit: limit, Offset: offset})
}

// Get returns one verification.
func (h *VerificationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	admin, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	v, err := h.Svc.Get(r.Context(), admin, r.PathValue("actorID"))
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

// Approve activates a pending account.
func (h *VerificationHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	admin, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var req approveVerificationRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	v, err := h.Svc.Approve(r.Context(), admin, r.PathValue("actorID"), req.Notes)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

// Reject declines a pending account with a reason.
func (h *VerificationHandlers) Reject(w http.ResponseWriter, r *http.Request) {
	admin, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var req rejectRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	v, err := h.Svc.Reject(r.Context(), admin, r.PathValue("actorID"), req.Reason)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

// decodeOptionalJSON is DecodeJSON for endpoints whose body may be omitted.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return true
	}
	return DecodeJSON(w, r, dst)
}
