package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dailypuzzle/puzzle-engine/internal/puzzle"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const eventBuffer = 64

// EventHub fans pipeline events out to connected websocket subscribers. It
// implements puzzle.EventSink; Publish never blocks, slow subscribers drop
// events instead of stalling the pipeline.
type EventHub struct {
	mu          sync.RWMutex
	subscribers map[chan puzzle.Event]struct{}
}

// NewEventHub creates an empty hub
func NewEventHub() *EventHub {
	return &EventHub{subscribers: make(map[chan puzzle.Event]struct{})}
}

// Publish delivers an event to every subscriber without blocking
func (h *EventHub) Publish(e puzzle.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- e:
		default:
			slog.Debug("dropping event for slow subscriber", "run_id", e.RunID, "state", e.State)
		}
	}
}

// Subscribe registers a new subscriber channel; the returned func removes it
func (h *EventHub) Subscribe() (<-chan puzzle.Event, func()) {
	ch := make(chan puzzle.Event, eventBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.subscribers, ch)
		h.mu.Unlock()
	}
}

// Subscribers returns the current subscriber count
func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// handleEventsWS streams pipeline events over a websocket connection
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusNotFound, "not_found", "event feed is disabled")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := s.hub.Subscribe()
	defer cancel()

	slog.Info("event feed subscriber connected", "remote_addr", r.RemoteAddr)

	// Drain reads so close frames are processed; the feed is write-only
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			slog.Info("event feed subscriber disconnected", "remote_addr", r.RemoteAddr)
			return
		case e := <-events:
			if err := conn.WriteJSON(e); err != nil {
				slog.Debug("event feed write failed", "error", err)
				return
			}
		}
	}
}
