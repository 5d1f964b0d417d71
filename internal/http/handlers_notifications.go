package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
	"github.com/placementhub/placement-engine/internal/service"
)

// NotificationService is the recipient-scoped notification surface.
type NotificationService interface {
	List(ctx context.Context, actor domainauth.Actor, p service.ListNotificationsParams) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, actor domainauth.Actor) (int, error)
	MarkRead(ctx context.Context, actor domainauth.Actor, id string) (*model.Notification, error)
	MarkAllRead(ctx context.Context, actor domainauth.Actor) (int, error)
	Delete(ctx context.Context, actor domainauth.Actor, id string) error
	ClearRead(ctx context.Context, actor domainauth.Actor) (int, error)
}

// NotificationStream upgrades a request into a live notification feed for one recipient.
type NotificationStream interface {
	Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, recipientID string) error
}

// NotificationHandlers serves the caller's notifications.
type NotificationHandlers struct {
	Svc         NotificationService
	Live        NotificationStream
	MaxPageSize int
	Logger      *slog.Logger
}

type countResponse struct {
	Count int `json:"count"`
}

// List returns the caller's notifications, newest first. ?unread=true filters to unread.
func (h *NotificationHandlers) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	limit, offset := ParseLimitOffset(r, defaultPageSize, h.MaxPageSize)
	list, err := h.Svc.List(r.Context(), actor, service.ListNotificationsParams{
		UnreadOnly: parseBoolQuery(r, "unread"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, listResponse[*model.Notification]{Items: list, Limit: limit, Offset: offset})
}

// UnreadCount returns the number of unread notifications.
func (h *NotificationHandlers) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	n, err := h.Svc.UnreadCount(r.Context(), actor)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, countResponse{Count: n})
}

// MarkRead marks one notification read.
func (h *NotificationHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	n, err := h.Svc.MarkRead(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, n)
}

// MarkAllRead marks every unread notification read.
func (h *NotificationHandlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.Svc.MarkAllRead)
}

// ClearRead deletes every read notification.
func (h *NotificationHandlers) ClearRead(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.Svc.ClearRead)
}

func (h *NotificationHandlers) bulk(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, domainauth.Actor) (int, error),
) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	n, err := op(r.Context(), actor)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, countResponse{Count: n})
}

// Delete removes one notification.
func (h *NotificationHandlers) Delete(w http.ResponseWriter, r *http.Request) {
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

// Stream upgrades to a websocket that receives the caller's new notifications.
func (h *NotificationHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	if h.Live == nil {
		w.WriteHeader(http.StatusNotImplemented)
		return
	}
	if err := h.Live.Serve(r.Context(), w, r, actor.ID); err != nil {
		h.logger().DebugContext(r.Context(), "notification stream ended", "actor_id", actor.ID, "error", err)
	}
}

func (h *NotificationHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
