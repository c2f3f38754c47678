package handler

import (
	"log/slog"
	"sync"

	"github.com/AlexZinkM/yieldgate/internal/model"
)

const eventBuffer = 16

// Hub fans events out to every open event stream of a browser profile.
type Hub struct {
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[string]map[int]chan model.Event
	nextID int
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		subs:   make(map[string]map[int]chan model.Event),
	}
}

// Subscribe opens a stream for profileID. cancel must be called when done.
func (h *Hub) Subscribe(profileID string) (<-chan model.Event, func()) {
	ch := make(chan model.Event, eventBuffer)

	h.mu.Lock()
	if h.subs[profileID] == nil {
		h.subs[profileID] = make(map[int]chan model.Event)
	}
	id := h.nextID
	h.nextID++
	h.subs[profileID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[profileID], id)
			if len(h.subs[profileID]) == 0 {
				delete(h.subs, profileID)
			}
		})
	}
}

// Publish delivers ev to every stream of profileID without blocking.
// Streams whose buffer is full miss the event.
func (h *Hub) Publish(profileID string, ev model.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[profileID] {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("dropping event for slow stream", "profile", profileID, "type", ev.Type)
		}
	}
}
