// Package websocket pushes navigation changes to the browser tabs of a
// dashboard session. Each session may have several tabs open; a change made
// in one is broadcast to all of them so they stay on the same section.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/collegedash/internal/errors"
	"github.com/conneroisu/collegedash/internal/logging"
)

const (
	writeWait    = 10 * time.Second
	pingPeriod   = 54 * time.Second
	sendBuffer   = 32
	maxReadBytes = 512
)

// Hub tracks WebSocket clients per session.
//
// Invariants:
//   - sessions is only accessed under mutex
//   - a client's send channel is closed exactly once, by removeClient
//   - after Shutdown no client is registered
type Hub struct {
	sessions        map[string]map[*Client]struct{}
	mutex           sync.RWMutex
	originValidator OriginValidator
	logger          logging.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
	isShutdown   bool
}

// NewHub creates a hub. originValidator is required.
func NewHub(originValidator OriginValidator, logger logging.Logger) *Hub {
	if originValidator == nil {
		panic("websocket.NewHub: originValidator cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		sessions:        make(map[string]map[*Client]struct{}),
		originValidator: originValidator,
		logger:          logger.WithComponent("websocket"),
		ctx:             ctx,
		cancel:          cancel,
	}
}

// HandleWebSocket upgrades the request and subscribes the connection to
// session's updates.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request, session string) {
	h.mutex.RLock()
	shut := h.isShutdown
	h.mutex.RUnlock()
	if shut {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	origin := r.Header.Get("Origin")
	if !h.originValidator.IsAllowedOrigin(origin) {
		h.logger.Warn(r.Context(), errors.ErrInvalidOrigin(origin), "WebSocket connection rejected",
			"remote_addr", r.RemoteAddr)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	opts := &websocket.AcceptOptions{CompressionMode: websocket.CompressionDisabled}
	if origin != "" {
		// Already validated above; let the library accept this exact host.
		if u, err := url.Parse(origin); err == nil {
			opts.OriginPatterns = []string{u.Host}
		}
	}

	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		// Accept has already written the response
		h.logger.Warn(r.Context(), err, "WebSocket upgrade failed", "remote_addr", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(maxReadBytes)

	client := &Client{
		conn:         conn,
		session:      session,
		send:         make(chan []byte, sendBuffer),
		lastActivity: time.Now(),
	}
	if !h.addClient(client) {
		_ = conn.Close(websocket.StatusServiceRestart, "Server shutting down")
		return
	}

	h.logger.Debug(r.Context(), "WebSocket client connected",
		"session", session, "clients", h.ClientCount(session))

	go h.writeToClient(client)
	h.readFromClient(client)
}

func (h *Hub) addClient(client *Client) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.isShutdown {
		return false
	}
	clients, ok := h.sessions[client.session]
	if !ok {
		clients = make(map[*Client]struct{})
		h.sessions[client.session] = clients
	}
	clients[client] = struct{}{}
	return true
}

func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	clients, ok := h.sessions[client.session]
	_, present := clients[client]
	if ok && present {
		delete(clients, client)
		close(client.send)
		if len(clients) == 0 {
			delete(h.sessions, client.session)
		}
	}
	h.mutex.Unlock()

	if present {
		_ = client.conn.Close(websocket.StatusNormalClosure, "")
	}
}

// readFromClient blocks until the client goes away. Clients are not
// expected to send anything; reading keeps control frames flowing.
func (h *Hub) readFromClient(client *Client) {
	defer h.removeClient(client)

	for {
		_, _, err := client.conn.Read(h.ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && h.ctx.Err() == nil {
				h.logger.Debug(context.Background(), "WebSocket read ended", "session", client.session, "error", err.Error())
			}
			return
		}
		client.lastActivity = time.Now()
	}
}

func (h *Hub) writeToClient(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(h.ctx, writeWait)
			err := client.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				h.removeClient(client)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(h.ctx, writeWait)
			err := client.conn.Ping(ctx)
			cancel()
			if err != nil {
				h.removeClient(client)
				return
			}

		case <-h.ctx.Done():
			return
		}
	}
}

// Publish sends message to every client of session. Clients whose buffer is
// full are disconnected; the next page load resynchronises them.
func (h *Hub) Publish(session string, message UpdateMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error(h.ctx, err, "Failed to marshal update message")
		return
	}

	h.mutex.RLock()
	var slow []*Client
	for client := range h.sessions[session] {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range slow {
		h.logger.Debug(h.ctx, "Dropping slow WebSocket client", "session", session)
		h.removeClient(client)
	}
}

// Broadcast sends message to every connected client.
func (h *Hub) Broadcast(message UpdateMessage) {
	for _, session := range h.Sessions() {
		h.Publish(session, message)
	}
}

// Sessions returns the sessions with at least one client.
func (h *Hub) Sessions() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	out := make([]string, 0, len(h.sessions))
	for session := range h.sessions {
		out = append(out, session)
	}
	return out
}

// ClientCount returns the number of clients connected for session.
func (h *Hub) ClientCount(session string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.sessions[session])
}

// TotalClients returns the number of connected clients.
func (h *Hub) TotalClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	total := 0
	for _, clients := range h.sessions {
		total += len(clients)
	}
	return total
}

// Shutdown closes every connection and refuses new ones.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() {
		h.mutex.Lock()
		h.isShutdown = true
		var clients []*Client
		for _, set := range h.sessions {
			for client := range set {
				clients = append(clients, client)
				close(client.send)
			}
		}
		h.sessions = make(map[string]map[*Client]struct{})
		h.mutex.Unlock()

		h.cancel()
		for _, client := range clients {
			_ = client.conn.Close(websocket.StatusGoingAway, "Server shutdown")
		}
		h.logger.Info(ctx, "WebSocket hub shut down", "closed_clients", len(clients))
	})
	return nil
}

// IsShutdown returns whether the hub has been shut down
func (h *Hub) IsShutdown() bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.isShutdown
}
