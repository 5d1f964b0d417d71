//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"

	"github.com/placementhub/placement-engine/internal/domain/auth"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

// NotificationKind identifies the transition a notification reports.
type NotificationKind string

const (
	NotificationAccountApproved        NotificationKind = "account_approved"
	NotificationAccountRejected        NotificationKind = "account_rejected"
	NotificationJobApproved            NotificationKind = "job_approved"
	NotificationJobRejected            NotificationKind = "job_rejected"
	NotificationApplicationShortlisted NotificationKind = "application_shortlisted"
	NotificationApplicationOnHold      NotificationKind = "application_on_hold"
	NotificationApplicationRejected    NotificationKind = "application_rejected"
	NotificationApplicationSelected    NotificationKind = "application_selected"
)

// NotificationPriority orders notifications for display.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

// Valid reports whether the priority is supported.
func (p NotificationPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	default:
		return false
	}
}

// NotificationRefs points at the entities a notification is about.
type NotificationRefs struct {
	JobID         *string `json:"job_id,omitempty"`
	ApplicationID *string `json:"application_id,omitempty"`
	ActorID       *string `json:"actor_id,omitempty"`
}

// Notification is a durable message addressed to one actor.
type Notification struct {
	ID            string               `json:"id"                db:"id"`
	RecipientID   string               `json:"recipient_id"      db:"recipient_id"`
	RecipientRole auth.Role            `json:"recipient_role"    db:"recipient_role"`
	Kind          NotificationKind     `json:"kind"              db:"kind"`
	Title         string               `json:"title"             db:"title"`
	Body          string               `json:"body"              db:"body"`
	Refs          NotificationRefs     `json:"refs"              db:"refs"`
	Priority      NotificationPriority `json:"priority"          db:"priority"`
	Read          bool                 `json:"read"              db:"read"`
	ReadAt        *time.Time           `json:"read_at,omitempty" db:"read_at"`
	CreatedAt     time.Time            `json:"created_at"        db:"created_at"`
}

// Recipient addresses a notification.
type Recipient struct {
	ActorID string
	Role    auth.Role
}

// EnqueueParams is the input for persisting a rendered notification.
type EnqueueParams struct {
	Recipient Recipient
	Kind      NotificationKind
	Title     string
	Body      string
	Refs      NotificationRefs
	Priority  NotificationPriority
}

// Validate normalizes and checks the params.
func (p *EnqueueParams) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	p.Body = strings.TrimSpace(p.Body)
	if strings.TrimSpace(p.Recipient.ActorID) == "" {
		return apperrors.ValidationField("recipient_id", "recipient is required")
	}
	if !p.Recipient.Role.Valid() {
		return apperrors.ValidationField("recipient_role", "invalid recipient role")
	}
	if strings.TrimSpace(string(p.Kind)) == "" {
		return apperrors.ValidationField("kind", "kind is required")
	}
	if p.Title == "" {
		return apperrors.ValidationField("title", "title is required")
	}
	if p.Priority == "" {
		p.Priority = PriorityNormal
	}
	if !p.Priority.Valid() {
		return apperrors.ValidationField("priority", "invalid priority")
	}
	return nil
}

// NotificationListOptions controls paging for a recipient's notifications.
type NotificationListOptions struct {
	RecipientID string
	UnreadOnly  bool
	Limit       int
	Offset      int
}
