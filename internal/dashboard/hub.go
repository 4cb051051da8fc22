package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"totals-tracker/internal/domain/opportunities"
	"totals-tracker/internal/logging"
	"totals-tracker/internal/metrics"
)

const channelWebsocket = "websocket"

// Hub tracks websocket subscribers and pushes each snapshot to all of them.
// New subscribers receive the latest snapshot on connect.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger
	metrics  *metrics.Recorder
	now      func() time.Time

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  []byte
	closed  bool
}

// NewHub builds a Hub. checkOrigin may be nil to accept any origin.
func NewHub(logger *slog.Logger, recorder *metrics.Recorder, checkOrigin func(*http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger:  logger,
		metrics: recorder,
		now:     time.Now,
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the subscriber.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(h.logger, "websocket upgrade failed", "error", err)
		return
	}

	c := newClient(uuid.NewString(), conn, h)
	if !h.register(c) {
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Broadcast pushes the snapshot to every subscriber. Subscribers whose buffer
// is full are disconnected.
func (h *Hub) Broadcast(ctx context.Context, snapshot []opportunities.Opportunity) error {
	_ = ctx
	msg, err := encodeSnapshot(snapshot, h.now())
	if err != nil {
		h.metrics.RecordDelivery(channelWebsocket, err)
		return fmt.Errorf("encode dashboard snapshot: %w", err)
	}

	h.mu.Lock()
	h.latest = msg
	clients := len(h.clients)
	for c := range h.clients {
		if !c.trySend(msg) {
			logging.Warn(h.logger, "dashboard client too slow, disconnecting", logging.FieldClientID, c.id)
			h.removeLocked(c)
		}
	}
	h.mu.Unlock()

	h.metrics.RecordDelivery(channelWebsocket, nil)
	logging.Debug(h.logger, "dashboard snapshot broadcast",
		logging.FieldCount, len(snapshot),
		"clients", clients,
	)
	return nil
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.latest != nil {
		c.trySend(h.latest)
	}
	logging.Info(h.logger, "dashboard client connected",
		logging.FieldClientID, c.id,
		"clients", len(h.clients),
	)
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	logging.Info(h.logger, "dashboard client disconnected",
		logging.FieldClientID, c.id,
		"clients", len(h.clients),
	)
}
