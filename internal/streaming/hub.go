// Package streaming broadcasts upload progress events to connected SSE
// clients. One browsing session drives at most one batch at a time, so a
// single hub fan-outs every event to every client.
package streaming

import (
	"log"
	"sync"
)

// Client represents one connected event consumer.
type Client struct {
	Events chan Event
}

// NewClient creates a client with a small event buffer.
func NewClient() *Client {
	return &Client{
		Events: make(chan Event, 10),
	}
}

// Hub fans upload events out to registered clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	stopped bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		close(client.Events)
		return
	}
	h.clients[client] = true
	log.Printf("INFO: stream client registered, total clients: %d", len(h.clients))
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		if !h.stopped {
			close(client.Events)
		}
		log.Printf("INFO: stream client unregistered, total clients: %d", len(h.clients))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast delivers an event to every client. Slow clients are skipped
// rather than blocking the upload loop.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.stopped {
		return
	}
	for client := range h.clients {
		select {
		case client.Events <- event:
		default:
			log.Printf("WARNING: dropped stream event %s, client buffer full", event.Type)
		}
	}
}

// Stop closes every client channel and rejects further registrations.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	for client := range h.clients {
		close(client.Events)
		delete(h.clients, client)
	}
}
