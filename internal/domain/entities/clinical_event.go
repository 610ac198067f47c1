package entities

import "time"

// Clinical event types published on the event bus.
const (
	EventSessionCompleted = "session.completed"
	EventSessionFailed    = "session.failed"
	EventEmergencyAlert   = "emergency.alert"
)

// ClinicalEvent is the payload published on the event bus for session
// lifecycle changes and emergency safety alerts.
type ClinicalEvent struct {
	ID        string                 `json:"id"`
	EventType string                 `json:"event_type"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
