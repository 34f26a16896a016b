package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope that flows through the event bus.
type Event struct {
	ID        string
	Type      EventType
	MarketID  string
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	// Order outcome events, published once per placement attempt.
	EventOrderPlaced EventType = "order_placed"
	EventOrderFailed EventType = "order_failed"
)

// New stamps an event with a fresh id and the current time.
func New(typ EventType, marketID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		MarketID:  marketID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
