package livereload

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

const heartbeatInterval = 30 * time.Second

// Hub manages SSE clients of the /livereload endpoint and broadcasts a fresh
// event id to all of them on every notification.
type Hub struct {
	mu       sync.RWMutex
	nextID   int
	clients  map[int]*client
	recorder metrics.Recorder
	closed   bool
	lastID   string
}

type client struct {
	id   int
	ch   chan string
	done chan struct{}
}

// event is the JSON payload of one SSE message.
type event struct {
	ID      string `json:"id"`
	Initial bool   `json:"initial,omitempty"`
}

// NewHub creates a hub. A nil recorder disables metrics.
func NewHub(recorder metrics.Recorder) *Hub {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Hub{clients: map[int]*client{}, recorder: recorder}
}

// Notify broadcasts a new event id.
func (h *Hub) Notify() {
	h.Broadcast(uuid.NewString())
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP implements the SSE endpoint.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	c := &client{ch: make(chan string, 8), done: make(chan struct{})}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	c.id = h.nextID
	h.nextID++
	h.clients[c.id] = c
	current := h.lastID
	h.mu.Unlock()
	defer h.removeClient(c.id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	bw := bufio.NewWriter(w)
	send := func(s string) bool {
		if _, err := bw.WriteString(s); err != nil {
			slog.Debug("livereload write", logfields.Error(err))
			return false
		}
		if err := bw.Flush(); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	// The initial event tells the client which id it is looking at, so the
	// next one it sees is a real change.
	if !send(": connected\n\n" + message(event{ID: current, Initial: true})) {
		return
	}

	hb := time.NewTicker(heartbeatInterval)
	defer hb.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-c.done:
			return
		case <-hb.C:
			if !send(": ping\n\n") {
				return
			}
		case id := <-c.ch:
			if !send(message(event{ID: id})) {
				return
			}
		}
	}
}

func message(ev event) string {
	data, _ := json.Marshal(ev)
	return "data: " + string(data) + "\n\n"
}

func (h *Hub) removeClient(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
	}
}

// Broadcast sends id to all clients. Clients whose buffers are full are
// dropped; their browsers reconnect and resynchronize.
func (h *Hub) Broadcast(id string) {
	h.mu.Lock()
	if h.closed || id == "" || id == h.lastID {
		h.mu.Unlock()
		return
	}
	h.lastID = id
	snapshot := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	dropped := 0
	for _, c := range snapshot {
		select {
		case c.ch <- id:
		default:
			dropped++
			h.removeClient(c.id)
		}
	}
	h.recorder.IncReload()
	slog.Debug("livereload broadcast", slog.String("id", id), logfields.Count(len(snapshot)), slog.Int("dropped", dropped))
}

// Shutdown disconnects all clients and rejects new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = map[int]*client{}
	h.mu.Unlock()
	for _, c := range clients {
		close(c.done)
	}
}
