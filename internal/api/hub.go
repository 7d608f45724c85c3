package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/veloce-app/veloce/internal/app/celebration"
	"github.com/veloce-app/veloce/internal/infra/metrics"
)

// heartbeatInterval keeps idle SSE connections from being reaped by
// proxies.
const heartbeatInterval = 25 * time.Second

// FeedHub bridges the celebration dispatcher to SSE clients. Each
// connection gets its own dispatcher subscription, so a slow client
// drops its own events without stalling anyone else.
type FeedHub struct {
	dispatcher *celebration.Dispatcher
}

// NewFeedHub creates a feed hub over a dispatcher.
func NewFeedHub(d *celebration.Dispatcher) *FeedHub {
	return &FeedHub{dispatcher: d}
}

// HandleSSE streams celebration and momentum events to the client as
// Server-Sent Events until the connection closes.
func (h *FeedHub) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	events, cancelEvents := h.dispatcher.SubscribeCelebrations()
	defer cancelEvents()
	momentum, cancelMomentum := h.dispatcher.SubscribeMomentum()
	defer cancelMomentum()

	metrics.FeedSubscribers.Inc()
	defer metrics.FeedSubscribers.Dec()

	// Initial snapshot so the client can render momentum immediately.
	if err := writeSSE(w, "momentum", map[string]interface{}{
		"state": h.dispatcher.Momentum(),
	}); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			if err := writeSSE(w, "celebration", ev); err != nil {
				log.Printf("[api] sse write failed: %v", err)
				return
			}
			flusher.Flush()
		case change, open := <-momentum:
			if !open {
				return
			}
			if err := writeSSE(w, "momentum", change); err != nil {
				log.Printf("[api] sse write failed: %v", err)
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeSSE writes one named SSE event with a JSON payload.
func writeSSE(w http.ResponseWriter, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
