package service

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/placementhub/placement-engine/internal/core"
	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
	obserrors "github.com/placementhub/placement-engine/internal/observability/errors"
	"github.com/placementhub/placement-engine/internal/observability/metrics"
	"github.com/placementhub/placement-engine/internal/observability/notify"
	"github.com/placementhub/placement-engine/internal/observability/statsd"
	"github.com/placementhub/placement-engine/internal/ports"
)

//go:embed templates/notifications.yaml
var defaultNotificationTemplates []byte

// NotifyData carries the values a notification template may reference.
type NotifyData struct {
	Name     string
	JobTitle string
	Company  string
	Reason   string
	Notes    string
	Refs     model.NotificationRefs
}

// Notifier is the slice of NotificationService the state machines use.
// Dispatch never fails the caller.
type Notifier interface {
	Dispatch(ctx context.Context, to model.Recipient, kind model.NotificationKind, data NotifyData)
}

// OpsAlerter receives operational failures for on-call delivery.
type OpsAlerter interface {
	Alert(ctx context.Context, alert notify.Alert)
}

// NotificationDelivery groups the optional side channels of NotificationService.
type NotificationDelivery struct {
	Publisher ports.NotificationPublisher
	Alerts    OpsAlerter
	Metrics   statsd.Sink
}

// NotificationServiceOptions groups dependencies for NotificationService.
type NotificationServiceOptions struct {
	Repo     core.NotificationRepository
	Delivery NotificationDelivery
	Logger   *slog.Logger
}

type notificationTemplate struct {
	Priority model.NotificationPriority `yaml:"priority"`
	Title    string                     `yaml:"title"`
	Body     string                     `yaml:"body"`

	title *template.Template
	body  *template.Template
}

// NotificationService persists, renders and serves notifications.
type NotificationService struct {
	repo      core.NotificationRepository
	delivery  NotificationDelivery
	templates map[model.NotificationKind]*notificationTemplate
	logger    *slog.Logger
}

// NewNotificationService constructs a NotificationService with the embedded templates.
func NewNotificationService(opts NotificationServiceOptions) *NotificationService {
	if opts.Repo == nil {
		panic("NewNotificationService: Repo is required")
	}
	templates, err := parseNotificationTemplates(defaultNotificationTemplates)
	if err != nil {
		panic(fmt.Sprintf("NewNotificationService: %v", err))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		repo:      opts.Repo,
		delivery:  opts.Delivery,
		templates: templates,
		logger:    logger.With("component", "notifications"),
	}
}

func parseNotificationTemplates(raw []byte) (map[model.NotificationKind]*notificationTemplate, error) {
	var doc map[model.NotificationKind]*notificationTemplate
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse notification templates: %w", err)
	}
	for kind, t := range doc {
		if t == nil || strings.TrimSpace(t.Title) == "" {
			return nil, fmt.Errorf("notification template %s: title is required", kind)
		}
		if t.Priority == "" {
			t.Priority = model.PriorityNormal
		}
		if !t.Priority.Valid() {
			return nil, fmt.Errorf("notification template %s: invalid priority %q", kind, t.Priority)
		}
		var err error
		if t.title, err = template.New(string(kind) + ".title").Parse(t.Title); err != nil {
			return nil, fmt.Errorf("notification template %s: %w", kind, err)
		}
		if t.body, err = template.New(string(kind) + ".body").Parse(t.Body); err != nil {
			return nil, fmt.Errorf("notification template %s: %w", kind, err)
		}
	}
	return doc, nil
}

// Enqueue persists one notification and publishes it to live subscribers.
func (s *NotificationService) Enqueue(ctx context.Context, params model.EnqueueParams) (*model.Notification, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	n, err := s.repo.Create(ctx, params)
	metrics.EmitNotification(s.delivery.Metrics, string(params.Kind), err)
	if err != nil {
		return nil, fmt.Errorf("enqueue notification: %w", err)
	}
	if s.delivery.Publisher != nil {
		s.delivery.Publisher.Publish(ctx, n)
	}
	return n, nil
}

// Notify renders the template registered for kind and enqueues the result.
func (s *NotificationService) Notify(
	ctx context.Context,
	to model.Recipient,
	kind model.NotificationKind,
	data NotifyData,
) (*model.Notification, error) {
	t, ok := s.templates[kind]
	if !ok {
		return nil, apperrors.Validationf("no template for notification kind %q", kind)
	}
	title, err := render(t.title, data)
	if err != nil {
		return nil, fmt.Errorf("render %s title: %w", kind, err)
	}
	body, err := render(t.body, data)
	if err != nil {
		return nil, fmt.Errorf("render %s body: %w", kind, err)
	}
	return s.Enqueue(ctx, model.EnqueueParams{
		Recipient: to,
		Kind:      kind,
		Title:     title,
		Body:      body,
		Refs:      data.Refs,
		Priority:  t.Priority,
	})
}

// Dispatch is Notify for callers that have already committed a transition.
// Failures are logged and alerted, never returned.
func (s *NotificationService) Dispatch(
	ctx context.Context,
	to model.Recipient,
	kind model.NotificationKind,
	data NotifyData,
) {
	if _, err := s.Notify(ctx, to, kind, data); err != nil {
		s.logger.ErrorContext(ctx, "notification not delivered",
			"recipient_id", to.ActorID, "kind", kind, "error", err)
		if s.delivery.Alerts != nil {
			s.delivery.Alerts.Alert(ctx, notify.Alert{
				Component:  "notifications",
				Operation:  "enqueue",
				Summary:    fmt.Sprintf("%s notification was not stored", kind),
				Error:      err.Error(),
				ErrorClass: obserrors.Classify(err),
				Severity:   notify.SeverityError,
				Metadata:   map[string]string{"kind": string(kind), "recipient_id": to.ActorID},
			})
		}
	}
}

// ListNotificationsParams controls the caller's notification listing.
type ListNotificationsParams struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(
	ctx context.Context,
	actor domainauth.Actor,
	p ListNotificationsParams,
) ([]*model.Notification, error) {
	if err := gateCap(actor, domainauth.CapReadNotifications); err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, model.NotificationListOptions{
		RecipientID: actor.ID,
		UnreadOnly:  p.UnreadOnly,
		Limit:       p.Limit,
		Offset:      p.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

// UnreadCount returns how many of the caller's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, actor domainauth.Actor) (int, error) {
	if err := gateCap(actor, domainauth.CapReadNotifications); err != nil {
		return 0, err
	}
	n, err := s.repo.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, actor domainauth.Actor, id string) (*model.Notification, error) {
	if err := gateCap(actor, domainauth.CapReadNotifications); err != nil {
		return nil, err
	}
	n, err := s.repo.MarkRead(ctx, core.MarkReadParams{ID: id, RecipientID: actor.ID})
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

// MarkAllRead marks every unread notification of the caller as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor domainauth.Actor) (int, error) {
	if err := gateCap(actor, domainauth.CapReadNotifications); err != nil {
		return 0, err
	}
	n, err := s.repo.MarkAllRead(ctx, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return n, nil
}

// Delete removes one of the caller's notifications.
func (s *NotificationService) Delete(ctx context.Context, actor domainauth.Actor, id string) error {
	if err := gateCap(actor, domainauth.CapReadNotifications); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id, actor.ID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if !deleted {
		return apperrors.NotFound("notification not found")
	}
	return nil
}

// ClearRead deletes the caller's read notifications.
func (s *NotificationService) ClearRead(ctx context.Context, actor domainauth.Actor) (int, error) {
	if err := gateCap(actor, domainauth.CapReadNotifications); err != nil {
		return 0, err
	}
	n, err := s.repo.DeleteRead(ctx, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("clear read notifications: %w", err)
	}
	return n, nil
}

func render(t *template.Template, data NotifyData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
