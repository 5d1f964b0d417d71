package httpx

import (
	"context"
	"net/http"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
)

// AccountService is the registration and profile surface the handlers use.
type AccountService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.Registration, error)
	Me(ctx context.Context, actor domainauth.Actor) (*model.Registration, error)
	UpdateProfile(ctx context.Context, actor domainauth.Actor, req model.UpdateProfileRequest) (*model.Profile, error)
}

// TokenRevoker revokes the caller's own credential.
type TokenRevoker interface {
	Revoke(ctx context.Context, actor domainauth.Actor, token string) error
}

// AccountHandlers serves registration, the caller's account and logout.
type AccountHandlers struct {
	Svc      AccountService
	Identity TokenRevoker
}

// Register creates an applicant, recruiter or alumni account.
func (h *AccountHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	reg, err := h.Svc.Register(r.Context(), req)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, reg)
}

// Me returns the resolved actor with its profile and verification.
func (h *AccountHandlers) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	reg, err := h.Svc.Me(r.Context(), actor)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, reg)
}

// UpdateProfile merges sections into the caller's profile.
func (h *AccountHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	var req model.UpdateProfileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	p, err := h.Svc.UpdateProfile(r.Context(), actor, req)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// Logout revokes the bearer token the request was made with.
func (h *AccountHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	if err := h.Identity.Revoke(r.Context(), actor, tokenFromContext(r.Context())); err != nil {
		WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
