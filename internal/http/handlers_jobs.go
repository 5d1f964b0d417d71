package httpx

import (
	"context"
	"net/http"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	"github.com/placementhub/placement-engine/internal/service"
)

// JobPostingService is the job posting state machine surface.
type JobPostingService interface {
	Create(ctx context.Context, recruiter domainauth.Actor, fields model.JobPostingFields) (*model.JobPosting, error)
	Edit(ctx context.Context, owner domainauth.Actor, id string, fields model.JobPostingFields) (*model.JobPosting, error)
	Approve(ctx context.Context, admin domainauth.Actor, id string) (*model.JobPosting, error)
	Reject(ctx context.Context, admin domainauth.Actor, id, reason string) (*model.JobPosting, error)
	SetActive(ctx context.Context, owner domainauth.Actor, id string, active bool) (*model.JobPosting, error)
	Delete(ctx context.Context, owner domainauth.Actor, id string) error
	Get(ctx context.Context, actor domainauth.Actor, id string) (*model.JobPosting, error)
	List(ctx context.Context, actor domainauth.Actor, q service.JobQuery) ([]*model.JobPosting, error)
}

// JobHandlers serves job postings.
type JobHandlers struct {
	Svc         JobPostingService
	MaxPageSize int
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

// Create submits a posting for review.
func (h *JobHandlers) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var fields model.JobPostingFields
	if !DecodeJSON(w, r, &fields) {
		return
	}
	job, err := h.Svc.Create(r.Context(), actor, fields)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, job)
}

// List returns the role-dependent listing: own postings for recruiters, the
// review queue for admins and open postings for everyone else.
func (h *JobHandlers) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	limit, offset := ParseLimitOffset(r, defaultPageSize, h.MaxPageSize)
	q := service.JobQuery{Limit: limit, Offset: offset}
	if v := optionalQuery(r, "q"); v != nil {
		q.Q = *v
	}
	if v := optionalQuery(r, "status"); v != nil {
		status, _ := model.ParseApprovalStatus(*v)
		q.Status = &status
	}
	jobs, err := h.Svc.List(r.Context(), actor, q)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, listResponse[*model.JobPosting]{Items: jobs, Limit: limit, Offset: offset})
}

// Get returns one posting if the caller may see it.
func (h *JobHandlers) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	job, err := h.Svc.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Edit replaces a posting's fields and resets it to pending.
func (h *JobHandlers) Edit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var fields model.JobPostingFields
	if !DecodeJSON(w, r, &fields) {
		return
	}
	job, err := h.Svc.Edit(r.Context(), actor, r.PathValue("id"), fields)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// SetActive opens or closes an approved posting.
func (h *JobHandlers) SetActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var req setActiveRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Active == nil {
		WriteAppError(w, r, apperrors.ValidationField("active", "active is required"))
		return
	}
	job, err := h.Svc.SetActive(r.Context(), actor, r.PathValue("id"), *req.Active)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Delete removes a posting. Its applications remain readable by their parties.
func (h *JobHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Approve publishes a pending posting.
func (h *JobHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	job, err := h.Svc.Approve(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Reject declines a pending posting.
func (h *JobHandlers) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var req rejectRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	job, err := h.Svc.Reject(r.Context(), actor, r.PathValue("id"), req.Reason)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}
