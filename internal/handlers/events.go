package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/commons-systems/photosync/internal/streaming"
)

// EventHandlers streams upload progress over SSE.
type EventHandlers struct {
	hub *streaming.Hub
}

// NewEventHandlers creates SSE handlers over the given hub.
func NewEventHandlers(hub *streaming.Hub) *EventHandlers {
	return &EventHandlers{hub: hub}
}

// Stream handles GET /api/upload/events.
func (h *EventHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := streaming.NewClient()
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	// Initial comment keeps some proxies from buffering the stream.
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-client.Events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("ERROR: failed to marshal stream event: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}
