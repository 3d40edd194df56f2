package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go-guildsync/internal/events/models"

	"github.com/google/uuid"
)

const (
	defaultSubscriberBuffer = 64
	defaultHistorySize      = 50
)

// Hub fans events out to in-process subscribers. Publishing never blocks;
// a subscriber whose buffer is full misses the event.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan models.Event
	history     []models.Event
	buffer      int
	historySize int
	dropped     uint64
	relay       *RedisRelay
}

// NewHub creates a hub. A non-positive buffer uses the default.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Hub{
		subscribers: make(map[string]chan models.Event),
		buffer:      buffer,
		historySize: defaultHistorySize,
	}
}

// SetRelay forwards every locally published event to other instances
func (h *Hub) SetRelay(relay *RedisRelay) {
	h.mu.Lock()
	h.relay = relay
	h.mu.Unlock()
}

// Subscribe registers a new subscriber. The returned func unsubscribes and closes the channel.
func (h *Hub) Subscribe() (<-chan models.Event, func()) {
	id := uuid.New().String()
	ch := make(chan models.Event, h.buffer)

	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish stamps the event and delivers it to every subscriber
func (h *Hub) Publish(event models.Event) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	h.deliver(event)

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()
	if relay != nil {
		relay.Forward(event)
	}
}

// deliver fans out without relaying
func (h *Hub) deliver(event models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.history = append(h.history, event)
	if len(h.history) > h.historySize {
		h.history = h.history[len(h.history)-h.historySize:]
	}

	for id, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			h.dropped++
			slog.Warn("Event subscriber is full, dropping event", "subscriber", id, "event_type", event.Type)
		}
	}
}

// ReportError publishes an error_reported event and logs it
func (h *Hub) ReportError(ctx context.Context, message string, err error) {
	data := map[string]interface{}{}
	if err != nil {
		data["error"] = err.Error()
	}
	slog.ErrorContext(ctx, message, "error", err)
	h.Publish(models.Event{
		Type:    models.EventErrorReported,
		Message: message,
		Data:    data,
	})
}

// Recent returns the most recent events, oldest first
func (h *Hub) Recent() []models.Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.Event, len(h.history))
	copy(out, h.history)
	return out
}

// Stats returns the subscriber count and the number of dropped deliveries
func (h *Hub) Stats() (subscribers int, dropped uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers), h.dropped
}
