// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/models"
)

// Message types.
const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"
	// Reading messages reuse the audit event types: reading.create,
	// reading.update and reading.delete.
)

// Message is one frame on the wire.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type envelope struct {
	msg    Message
	farmID string
}

const broadcastBuffer = 256

// Hub tracks connected clients and fans reading messages out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	running bool

	broadcast chan envelope
}

// NewHub creates a Hub. Clients are refused until Serve is running.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan envelope, broadcastBuffer),
	}
}

// Register adds c. It returns false when the hub is not serving, in which
// case the caller owns closing the connection.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return false
	}
	h.clients[c] = struct{}{}
	logging.Debug().Int("total_clients", len(h.clients)).Msg("websocket client connected")
	return true
}

// Unregister removes c and closes its send channel. Unknown clients are
// ignored, so it is safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishReading queues a reading write for every interested client. It
// never blocks.
func (h *Hub) PublishReading(eventType string, r models.Reading) {
	select {
	case h.broadcast <- envelope{msg: Message{Type: eventType, Data: r}, farmID: r.FarmID}:
	default:
		logging.Warn().Str("message_type", eventType).Msg("Broadcast buffer full, dropping reading message")
	}
}

// Serve implements suture.Service. On return every client is disconnected.
func (h *Hub) Serve(ctx context.Context) error {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			n := h.closeAll()
			logging.Info().
				Str("component", "websocket-hub").
				Int("clients_closed", n).
				Msg("Websocket hub stopped")
			return ctx.Err()
		case env := <-h.broadcast:
			h.fanOut(env)
		}
	}
}

func (h *Hub) String() string {
	return "websocket-hub"
}

// fanOut delivers env in client id order. Clients with a full buffer are
// dropped.
func (h *Hub) fanOut(env envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.sortedLocked() {
		if !c.wants(env.farmID) {
			continue
		}
		select {
		case c.send <- env.msg:
		default:
			logging.Warn().Uint64("client_id", c.id).Msg("Websocket client too slow, disconnecting")
			h.removeLocked(c)
		}
	}
}

func (h *Hub) closeAll() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = false
	clients := h.sortedLocked()
	for _, c := range clients {
		h.removeLocked(c)
	}
	return len(clients)
}

func (h *Hub) sortedLocked() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}
