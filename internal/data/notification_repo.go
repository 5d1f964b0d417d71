package data

import (
	"context"
	"database/sql"
	"strings"

	"github.com/placementhub/placement-engine/internal/core"
	"github.com/placementhub/placement-engine/internal/data/database"
	"github.com/placementhub/placement-engine/internal/data/pgxutil"
	"github.com/placementhub/placement-engine/internal/domain/model"
)

const notificationColumns = `id, recipient_id, recipient_role, kind, title, body, refs, priority, read, read_at, created_at`

var notificationColumnList = []string{
	"id", "recipient_id", "recipient_role", "kind", "title", "body", "refs", "priority", "read", "read_at", "created_at",
}

// NotificationRepo persists per-recipient notifications.
type NotificationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewNotificationRepo creates a new NotificationRepo with real time provider.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewNotificationRepoWithTimeProvider creates a new NotificationRepo with a custom time provider.
func NewNotificationRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *NotificationRepo {
	return &NotificationRepo{DB: db, timeProvider: tp}
}

// Create stores an unread notification.
func (r *NotificationRepo) Create(ctx context.Context, params model.EnqueueParams) (*model.Notification, error) {
	if strings.TrimSpace(params.Recipient.ActorID) == "" {
		return nil, ErrRecipientIDRequired
	}
	priority := params.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	out, err := pgxutil.QueryOne[model.Notification](ctx, r.DB, `
		INSERT INTO notifications (recipient_id, recipient_role, kind, title, body, refs, priority, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
		RETURNING `+notificationColumns,
		params.Recipient.ActorID, params.Recipient.Role, params.Kind, params.Title, params.Body,
		params.Refs, priority, r.timeProvider.Now())
	if err != nil {
		return nil, dbErr("create notification", "notification", err)
	}
	return out, nil
}

// List returns a recipient's notifications newest first.
func (r *NotificationRepo) List(ctx context.Context, opts model.NotificationListOptions) ([]*model.Notification, error) {
	if strings.TrimSpace(opts.RecipientID) == "" {
		return nil, ErrRecipientIDRequired
	}
	limit, offset := page(opts.Limit, opts.Offset)
	qopts := []database.ListQueryOption{
		database.WithColumns(notificationColumnList...),
		database.WithCondition(database.WhereCond("recipient_id", database.Equal, opts.RecipientID)),
		database.WithOrderBy("created_at", sortDescending),
		database.WithThenBy("id", sortDescending),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if opts.UnreadOnly {
		qopts = append(qopts, database.WithCondition(database.WhereCond("read", database.Equal, false)))
	}
	q, args := database.BuildListQuery(database.NewListQueryOptions("notifications", qopts...))
	out, err := pgxutil.QueryAll[model.Notification](ctx, r.DB, q, args...)
	if err != nil {
		return nil, dbErr("list notifications", "notification", err)
	}
	return out, nil
}

// CountUnread returns how many unread notifications the recipient has.
func (r *NotificationRepo) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND NOT read`, recipientID,
	).Scan(&n)
	if err != nil {
		return 0, dbErr("count unread notifications", "notification", err)
	}
	return n, nil
}

// MarkRead marks one of the recipient's notifications read. Marking an
// already read notification keeps its original read_at.
func (r *NotificationRepo) MarkRead(ctx context.Context, params core.MarkReadParams) (*model.Notification, error) {
	if err := checkID("mark notification read", "notification", params.ID); err != nil {
		return nil, err
	}
	out, err := pgxutil.QueryOne[model.Notification](ctx, r.DB, `
		UPDATE notifications SET read = TRUE, read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND recipient_id = $2
		RETURNING `+notificationColumns,
		params.ID, params.RecipientID, r.timeProvider.Now())
	if err != nil {
		return nil, dbErr("mark notification read", "notification", err)
	}
	return out, nil
}

// MarkAllRead marks every unread notification of the recipient read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE, read_at = $2 WHERE recipient_id = $1 AND NOT read`,
		recipientID, r.timeProvider.Now())
	if err != nil {
		return 0, dbErr("mark all notifications read", "notification", err)
	}
	return affected(res)
}

// Delete removes one of the recipient's notifications.
func (r *NotificationRepo) Delete(ctx context.Context, id, recipientID string) (bool, error) {
	if checkID("delete notification", "notification", id) != nil {
		return false, nil
	}
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return false, dbErr("delete notification", "notification", err)
	}
	n, err := affected(res)
	return n > 0, err
}

// DeleteRead removes every read notification of the recipient.
func (r *NotificationRepo) DeleteRead(ctx context.Context, recipientID string) (int, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM notifications WHERE recipient_id = $1 AND read`, recipientID)
	if err != nil {
		return 0, dbErr("delete read notifications", "notification", err)
	}
	return affected(res)
}

func affected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, dbErr("rows affected", "notification", err)
	}
	return int(n), nil
}
