package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/placementhub/placement-engine/internal/core"
	"github.com/placementhub/placement-engine/internal/domain/model"
	"github.com/placementhub/placement-engine/internal/ports"
)

var _ ports.NotificationPublisher = (*NotificationBus)(nil)

// LocalPublisher receives notifications relayed from the bus.
type LocalPublisher interface {
	PublishRaw(ctx context.Context, payload []byte) error
}

// NotificationBus relays notifications across processes over a Redis channel so
// every replica's websocket hub sees every notification.
type NotificationBus struct {
	client  goredis.UniversalClient
	channel string
	logger  *slog.Logger
}

// NewNotificationBus creates a bus on core.NotificationChannelTopic.
func NewNotificationBus(client goredis.UniversalClient, logger *slog.Logger) *NotificationBus {
	if client == nil {
		panic("redis client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationBus{
		client:  client,
		channel: core.NotificationChannelTopic,
		logger:  logger.With("component", "notification_bus"),
	}
}

// Publish sends n to the channel. Failures are logged; the notification is already persisted.
func (b *NotificationBus) Publish(ctx context.Context, n *model.Notification) {
	if n == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		b.logger.Error("marshal notification", "notification_id", n.ID, "error", err)
		return
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		b.logger.Warn("publish notification", "notification_id", n.ID, "error", err)
	}
}

// Run subscribes to the channel and forwards every message to local until ctx is done.
func (b *NotificationBus) Run(ctx context.Context, local LocalPublisher) error {
	if local == nil {
		return errors.New("local publisher is required")
	}
	sub := b.client.Subscribe(ctx, b.channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := local.PublishRaw(ctx, []byte(msg.Payload)); err != nil {
				b.logger.Warn("drop malformed notification", "error", err)
			}
		}
	}
}
