package models

import "time"

// EventType identifies what changed
type EventType string

const (
	EventStateChanged    EventType = "state_changed"
	EventRosterUpdated   EventType = "roster_updated"
	EventGameDataUpdated EventType = "gamedata_updated"
	EventErrorReported   EventType = "error_reported"
)

// Event is a single change notification delivered to subscribers
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	State     string      `json:"state,omitempty"`
	Activity  string      `json:"activity,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// RedisEnvelope wraps an event relayed between instances
type RedisEnvelope struct {
	ServerID string `json:"server_id"`
	Event    Event  `json:"event"`
}
