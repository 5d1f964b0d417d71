package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	"github.com/placementhub/placement-engine/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ApplicationService is the application state machine surface.
type ApplicationService interface {
	Apply(ctx context.Context, applicant domainauth.Actor, req model.ApplyRequest) (*model.Application, error)
	SetStatus(ctx context.Context, recruiter domainauth.Actor, change model.StatusChange) (*model.Application, error)
	BulkSetStatus(
		ctx context.Context,
		recruiter domainauth.Actor,
		req model.BulkStatusRequest,
	) (*model.BulkStatusResult, error)
	Withdraw(ctx context.Context, applicant domainauth.Actor, id string) error
	Get(ctx context.Context, actor domainauth.Actor, id string) (*model.Application, error)
	ListForJob(
		ctx context.Context,
		recruiter domainauth.Actor,
		jobID string,
		q service.ApplicationQuery,
	) ([]*model.Application, error)
	ListMine(ctx context.Context, applicant domainauth.Actor, q service.ApplicationQuery) ([]*model.Application, error)
	ExportForJob(ctx context.Context, recruiter domainauth.Actor, jobID string) (*service.Export, error)
}

// ApplicationHandlers serves applications.
type ApplicationHandlers struct {
	Svc         ApplicationService
	MaxPageSize int
}

type applyRequest struct {
	CoverLetter *string `json:"cover_letter,omitempty"`
}

type statusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

// Apply submits the caller to the job in the path.
func (h *ApplicationHandlers) Apply(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var req applyRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	app, err := h.Svc.Apply(r.Context(), actor, model.ApplyRequest{JobID: r.PathValue("id"), CoverLetter: req.CoverLetter})
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, app)
}

// ListForJob returns the applications to a posting the caller owns.
func (h *ApplicationHandlers) ListForJob(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	q := h.query(r)
	apps, err := h.Svc.ListForJob(r.Context(), actor, r.PathValue("id"), q)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, listResponse[*model.Application]{Items: apps, Limit: q.Limit, Offset: q.Offset})
}

// ExportForJob streams the posting's applications as an XLSX workbook.
func (h *ApplicationHandlers) ExportForJob(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	export, err := h.Svc.ExportForJob(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}

// ListMine returns the caller's applications.
func (h *ApplicationHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	q := h.query(r)
	apps, err := h.Svc.ListMine(r.Context(), actor, q)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, listResponse[*model.Application]{Items: apps, Limit: q.Limit, Offset: q.Offset})
}

// Get returns one application to its applicant or the posting's recruiter.
func (h *ApplicationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	app, err := h.Svc.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}

// Withdraw deletes the caller's application while it is still applied.
func (h *ApplicationHandlers) Withdraw(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Withdraw(r.Context(), actor, r.PathValue("id")); err != nil {
		WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStatus moves one application along the transition table.
func (h *ApplicationHandlers) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	status, valid := model.ParseApplicationStatus(req.Status)
	if !valid {
		WriteAppError(w, r, apperrors.ValidationField("status", "invalid status"))
		return
	}
	app, err := h.Svc.SetStatus(r.Context(), actor, model.StatusChange{
		ApplicationID: r.PathValue("id"),
		Status:        status,
		Notes:         req.Notes,
	})
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}

// BulkSetStatus applies one status to many applications and reports per-id outcomes.
func (h *ApplicationHandlers) BulkSetStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var req model.BulkStatusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	res, err := h.Svc.BulkSetStatus(r.Context(), actor, req)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *ApplicationHandlers) query(r *http.Request) service.ApplicationQuery {
	limit, offset := ParseLimitOffset(r, defaultPageSize, h.MaxPageSize)
	q := service.ApplicationQuery{Limit: limit, Offset: offset}
	if v := optionalQuery(r, "status"); v != nil {
		status, _ := model.ParseApplicationStatus(*v)
		q.Status = &status
	}
	return q
}
