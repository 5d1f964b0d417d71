package bootstrap

import (
	"context"
	"log/slog"
	"time"
)

const (
	relayInitialBackoff = time.Second
	relayMaxBackoff     = 30 * time.Second
)

// NotificationRelayConfig contains dependencies for the notification relay.
type NotificationRelayConfig struct {
	Live   LiveNotifications
	Logger *slog.Logger
}

// RunNotificationRelay forwards notifications from the Redis bus into the local
// websocket hub until ctx is cancelled, resubscribing after connection failures.
func RunNotificationRelay(ctx context.Context, cfg NotificationRelayConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Live.Bus == nil || cfg.Live.Hub == nil {
		logger.InfoContext(ctx, "notification relay idle; notifications are published to the local hub")
		<-ctx.Done()
		return nil
	}

	backoff := relayInitialBackoff
	for {
		started := time.Now()
		err := cfg.Live.Bus.Run(ctx, cfg.Live.Hub)
		if ctx.Err() != nil {
			return nil
		}
		if time.Since(started) > relayMaxBackoff {
			backoff = relayInitialBackoff
		}
		logger.WarnContext(ctx, "notification relay disconnected", "error", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, relayMaxBackoff)
	}
}
