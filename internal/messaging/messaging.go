package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/observability"
)

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event entity.Event) error
}

// Handler processes one decoded envelope.
type Handler func(ctx context.Context, env entity.Envelope) error

// Subscriber defines an interface for subscribing to a message topic.
// Consume blocks until ctx is cancelled.
type Subscriber interface {
	Consume(ctx context.Context, topic string, groupID string, handler Handler)
}

// NewEnvelope wraps event with a fresh message id.
func NewEnvelope(key string, event entity.Event) (entity.Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return entity.Envelope{}, fmt.Errorf("failed to marshal %s: %w", event.EventType(), err)
	}
	return entity.Envelope{
		ID:        uuid.NewString(),
		Key:       key,
		EventType: event.EventType(),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// LogPublisher writes events to the log instead of a broker. It is used when
// no brokers are configured.
type LogPublisher struct {
	Logger *observability.Logger
}

func (p *LogPublisher) PublishEvent(ctx context.Context, topic string, key string, event entity.Event) error {
	env, err := NewEnvelope(key, event)
	if err != nil {
		return err
	}
	p.Logger.Info().
		Str("topic", topic).
		Str("key", key).
		Str("event_id", env.ID).
		Str("event_type", env.EventType).
		RawJSON("payload", env.Payload).
		Msg("event published")
	return nil
}
