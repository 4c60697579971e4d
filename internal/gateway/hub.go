// Package gateway serves live market snapshots over WebSocket. The hub
// marshals each snapshot envelope once and fans the bytes out to every
// connected client through per-client buffered send channels.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cse-market-data/internal/model"
)

// Hub manages WebSocket clients and snapshot fan-out.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	latest  []byte

	upgrader websocket.Upgrader

	// OnClientCount, when set, is invoked with the client total after
	// every connect and disconnect.
	OnClientCount func(n int)
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The UI is served from a different origin in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run consumes snapshots until ctx is cancelled or the channel closes,
// broadcasting each one to all connected clients. Call it on its own
// goroutine.
func (h *Hub) Run(ctx context.Context, snapshots <-chan *model.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case snap, ok := <-snapshots:
			if !ok {
				h.closeAll()
				return
			}
			h.Broadcast(snap)
		}
	}
}

// Broadcast marshals snap into a snapshot envelope and queues it on every
// client. Clients with a full send buffer miss this cycle.
func (h *Hub) Broadcast(snap *model.Snapshot) {
	msg, err := marshalEnvelope("snapshot", snap, time.Now())
	if err != nil {
		log.Printf("[gateway] envelope marshal failed: %v", err)
		return
	}

	h.mu.Lock()
	h.latest = msg
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
		}
	}
	h.mu.Unlock()
}

// ServeWS upgrades the request and registers the client. The current
// snapshot, if any, is queued immediately so the client starts with a
// full view.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] ws upgrade failed: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	if h.latest != nil {
		client.send <- h.latest
	}
	h.mu.Unlock()

	log.Printf("[gateway] ws client connected (%d total)", count)
	h.notifyCount(count)

	go client.writePump()
	go client.readPump()
}

// removeClient unregisters a client and closes its send channel. Safe to
// call twice for the same client.
func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	count := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	close(c.send)
	log.Printf("[gateway] ws client disconnected (%d total)", count)
	h.notifyCount(count)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
	h.notifyCount(0)
}

func (h *Hub) notifyCount(n int) {
	if h.OnClientCount != nil {
		h.OnClientCount(n)
	}
}

func marshalEnvelope(msgType string, data any, ts time.Time) ([]byte, error) {
	return json.Marshal(map[string]any{
		"type": msgType,
		"data": data,
		"ts":   ts.UTC().Format(time.RFC3339Nano),
	})
}
