// Package telemetry carries best-effort operational events from the request
// path to the Kafka topic consumed by cmd/worker.
package telemetry

import "time"

// Event is a single telemetry event. Serialized as JSON on the wire.
type Event struct {
	UserID    string            `json:"userId,omitempty"`
	EventType string            `json:"eventType"`
	Source    string            `json:"source"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewEvent builds an event stamped with the current UTC time.
func NewEvent(userID, eventType, source string, metadata map[string]string) *Event {
	return &Event{
		UserID:    userID,
		EventType: eventType,
		Source:    source,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
}
