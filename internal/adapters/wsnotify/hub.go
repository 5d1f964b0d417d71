// Package wsnotify streams persisted notifications to connected recipients over websockets.
package wsnotify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/placementhub/placement-engine/internal/domain/model"
	"github.com/placementhub/placement-engine/internal/ports"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

// MessageTypeNotification is the envelope type for pushed notifications.
const MessageTypeNotification = "notification"

var _ ports.NotificationPublisher = (*Hub)(nil)

// Message is the frame written to subscribers.
type Message struct {
	Type         string              `json:"type"`
	Notification *model.Notification `json:"notification,omitempty"`
	SentAt       time.Time           `json:"sent_at"`
}

type client struct {
	id          string
	recipientID string
	conn        *websocket.Conn
	send        chan Message
	closeOnce   sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// Options configures a Hub.
type Options struct {
	// CheckOrigin overrides the upgrader origin policy. Nil accepts same-origin requests only.
	CheckOrigin func(r *http.Request) bool
	Logger      *slog.Logger
}

// Hub tracks websocket subscribers by recipient and fans notifications out to them.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[string]*client
	upgrader websocket.Upgrader
	logger   *slog.Logger
	closed   bool
}

// NewHub creates an empty Hub.
func NewHub(opts Options) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[string]map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		logger: logger.With("component", "wsnotify"),
	}
}

// Serve upgrades the request and streams notifications for recipientID until the
// connection closes or ctx is cancelled. The caller must have authenticated the recipient.
func (h *Hub) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, recipientID string) error {
	if recipientID == "" {
		return errors.New("recipient id is required")
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{
		id:          uuid.NewString(),
		recipientID: recipientID,
		conn:        conn,
		send:        make(chan Message, sendBuffer),
	}
	if !h.register(c) {
		_ = conn.Close()
		return errors.New("hub is closed")
	}
	h.logger.Debug("subscriber connected", "recipient_id", recipientID, "connection_id", c.id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.readPump(c)
	}()
	h.writePump(ctx, c, done)
	h.unregister(c)
	<-done
	h.logger.Debug("subscriber disconnected", "recipient_id", recipientID, "connection_id", c.id)
	return nil
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.clients[c.recipientID]
	if !ok {
		set = make(map[string]*client)
		h.clients[c.recipientID] = set
	}
	set[c.id] = c
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if set, ok := h.clients[c.recipientID]; ok {
		if _, present := set[c.id]; present {
			delete(set, c.id)
			c.close()
		}
		if len(set) == 0 {
			delete(h.clients, c.recipientID)
		}
	}
	h.mu.Unlock()
}

// readPump only services control frames; subscribers do not send data.
func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("subscriber read failed", "connection_id", c.id, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(ctx context.Context, c *client, readerDone <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readerDone:
			return
		case <-ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}

// Publish delivers n to every live connection of its recipient. Slow subscribers are dropped.
func (h *Hub) Publish(_ context.Context, n *model.Notification) {
	if n == nil || n.RecipientID == "" {
		return
	}
	msg := Message{Type: MessageTypeNotification, Notification: n, SentAt: time.Now().UTC()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients[n.RecipientID] {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow subscriber", "recipient_id", n.RecipientID, "connection_id", id)
			delete(h.clients[n.RecipientID], id)
			c.close()
		}
	}
	if len(h.clients[n.RecipientID]) == 0 {
		delete(h.clients, n.RecipientID)
	}
}

// PublishRaw decodes a JSON-encoded notification and publishes it locally.
func (h *Hub) PublishRaw(ctx context.Context, payload []byte) error {
	var n model.Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return err
	}
	h.Publish(ctx, &n)
	return nil
}

// Subscribers returns the number of live connections for recipientID.
func (h *Hub) Subscribers(recipientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[recipientID])
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for rid, set := range h.clients {
		for _, c := range set {
			c.close()
		}
		delete(h.clients, rid)
	}
}
