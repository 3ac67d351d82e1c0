package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"edipulse/internal/infrastructure"
	"edipulse/internal/pipeline"
)

// Message types pushed to progress feed clients
const (
	TypeConnection = "connection"
	TypeProgress   = "progress"
	TypeComplete   = "complete"
	TypeError      = "error"
)

const broadcastBuffer = 256

// Message is the JSON envelope of every feed message
type Message struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
	TraceID   string `json:"trace_id,omitempty"`
}

type outbound struct {
	msgType string
	payload []byte
}

// Hub fans pipeline progress out to every connected client. It implements
// pipeline.ProgressReporter; ReportProgress never blocks the pipeline.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	running bool
	stopped bool
	quit    chan struct{}
	done    chan struct{}

	logger  *slog.Logger
	metrics *HubMetrics
	now     func() time.Time

	messagesSent atomic.Int64
	dropped      atomic.Int64
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithMetrics records hub activity on m
func WithMetrics(m *HubMetrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// WithClock overrides the message timestamp source
func WithClock(now func() time.Time) HubOption {
	return func(h *Hub) { h.now = now }
}

// NewHub creates a hub. Call Start before serving clients.
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     infrastructure.WithComponent(logger, "websocket.hub"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start runs the hub loop in its own goroutine. A stopped hub cannot be restarted.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running || h.stopped {
		return
	}
	h.running = true
	go h.run()
}

// Stop ends the hub loop and closes every client queue
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.stopped = true
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

func (h *Hub) isRunning() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

func (h *Hub) run() {
	defer close(h.done)
	ctx := context.Background()

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()

			cctx := client.context()
			h.metrics.connected(cctx)
			h.logger.InfoContext(cctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			hello := h.encode(Message{
				Type:    TypeConnection,
				Data:    map[string]string{"status": "connected", "client_id": client.id},
				TraceID: client.traceID,
			})
			if hello != nil {
				select {
				case client.send <- hello:
				default:
					h.logger.WarnContext(cctx, "Failed to send connection message - client buffer full")
				}
			}

		case client := <-h.unregister:
			h.remove(client, "closed")

		case msg := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				select {
				case client.send <- msg.payload:
					h.messagesSent.Add(1)
					h.metrics.sent(ctx, msg.msgType, len(msg.payload))
				default:
					h.metrics.droppedMessage(ctx, "client")
					h.logger.WarnContext(client.context(), "Client send buffer full, disconnecting",
						slog.String("client_id", client.id))
					h.remove(client, "slow")
				}
			}
		}
	}
}

// remove must only be called from the hub loop
func (h *Hub) remove(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	lifetime := time.Since(client.connectedAt)
	h.metrics.disconnected(client.context(), lifetime, reason)
	h.logger.InfoContext(client.context(), "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("reason", reason),
		slog.Duration("connection_duration", lifetime))
}

// Register adds client to the hub. It returns false unless the hub is running.
func (h *Hub) Register(client *Client) bool {
	if !h.isRunning() {
		return false
	}
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes client from the hub
func (h *Hub) Unregister(client *Client) {
	if !h.isRunning() {
		return
	}
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Broadcast queues msg for every client; it is dropped when the queue is full
func (h *Hub) Broadcast(msg Message) {
	payload := h.encode(msg)
	if payload == nil {
		return
	}

	select {
	case h.broadcast <- outbound{msgType: msg.Type, payload: payload}:
	default:
		h.dropped.Add(1)
		h.metrics.droppedMessage(context.Background(), "broadcast")
		h.logger.Warn("Broadcast queue full, dropping message",
			slog.String("type", msg.Type),
			slog.String("session_id", msg.SessionID))
	}
}

// ReportProgress implements pipeline.ProgressReporter. Completed stages are
// sent as complete messages and failed ones as error messages.
func (h *Hub) ReportProgress(p pipeline.Progress) {
	msgType := TypeProgress
	switch p.Stage {
	case pipeline.StageComplete:
		msgType = TypeComplete
	case pipeline.StageFailed:
		msgType = TypeError
	}
	h.Broadcast(Message{Type: msgType, SessionID: p.SessionID, Data: p})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns delivery counters for the health endpoint
func (h *Hub) Stats() map[string]int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]int64{
		"clients":       int64(len(h.clients)),
		"messages_sent": h.messagesSent.Load(),
		"dropped":       h.dropped.Load(),
	}
}

func (h *Hub) encode(msg Message) []byte {
	if msg.Timestamp == "" {
		msg.Timestamp = h.now().UTC().Format(time.RFC3339)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", msg.Type))
		return nil
	}
	return data
}
