package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event represents a domain event published to the message broker.
type Event interface {
	EventType() string
}

// Envelope is the wire form of an event on a topic.
type Envelope struct {
	ID        string          `json:"id"`
	Key       string          `json:"key"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// ComplaintLodged is emitted after a complaint row has been written.
type ComplaintLodged struct {
	ComplaintID int64     `json:"complaint_id"`
	OrderID     int64     `json:"order_id"`
	UserEmail   string    `json:"user_email"`
	Topic       string    `json:"topic"`
	LodgedAt    time.Time `json:"lodged_at"`
}

func (e ComplaintLodged) EventType() string { return "ComplaintLodged" }

// EscalationRequested is emitted when a customer asks for a human agent.
type EscalationRequested struct {
	Context     EscalationContext `json:"context"`
	RequestedAt time.Time         `json:"requested_at"`
}

func (e EscalationRequested) EventType() string { return "EscalationRequested" }

// DecodeEvent turns an envelope back into its typed event.
func DecodeEvent(env Envelope) (Event, error) {
	var err error
	switch env.EventType {
	case "ComplaintLodged":
		var e ComplaintLodged
		if err = json.Unmarshal(env.Payload, &e); err == nil {
			return e, nil
		}
	case "EscalationRequested":
		var e EscalationRequested
		if err = json.Unmarshal(env.Payload, &e); err == nil {
			return e, nil
		}
	default:
		return nil, fmt.Errorf("unknown event type in envelope: %s", env.EventType)
	}
	return nil, fmt.Errorf("failed to decode %s payload: %w", env.EventType, err)
}
