package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/messaging"
	"github.com/egannguyen/earphones-support/internal/observability"
)

// readRetryDelay is the first pause after a failed read. It doubles up to
// maxReadRetryDelay while reads keep failing.
const (
	readRetryDelay    = 500 * time.Millisecond
	maxReadRetryDelay = 30 * time.Second
)

// Broker publishes and consumes enveloped events on Kafka.
type Broker struct {
	brokers []string
	logger  *observability.Logger
	backoff time.Duration

	mu      sync.Mutex
	writers map[string]*kafkaGo.Writer
}

var (
	_ messaging.Publisher  = (*Broker)(nil)
	_ messaging.Subscriber = (*Broker)(nil)
)

// NewKafkaBroker creates a new Kafka publisher and subscriber.
func NewKafkaBroker(brokers []string, logger *observability.Logger) *Broker {
	return &Broker{
		brokers: brokers,
		logger:  logger,
		backoff: readRetryDelay,
		writers: make(map[string]*kafkaGo.Writer),
	}
}

func (k *Broker) writer(topic string) *kafkaGo.Writer {
	k.mu.Lock()
	defer k.mu.Unlock()

	w, ok := k.writers[topic]
	if !ok {
		w = &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(k.brokers...),
			Topic:                  topic,
			Balancer:               &kafkaGo.LeastBytes{},
			AllowAutoTopicCreation: true,
		}
		k.writers[topic] = w
	}
	return w
}

// encodeMessage wraps event in an envelope keyed by key. The event type is
// also set as a header so consumers can route without decoding.
func encodeMessage(key string, event entity.Event) (kafkaGo.Message, error) {
	env, err := messaging.NewEnvelope(key, event)
	if err != nil {
		return kafkaGo.Message{}, err
	}

	value, err := json.Marshal(env)
	if err != nil {
		return kafkaGo.Message{}, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return kafkaGo.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafkaGo.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}, nil
}

func decodeMessage(msg kafkaGo.Message) (entity.Envelope, error) {
	var env entity.Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return entity.Envelope{}, fmt.Errorf("malformed envelope at offset %d: %w", msg.Offset, err)
	}
	return env, nil
}

func (k *Broker) PublishEvent(ctx context.Context, topic string, key string, event entity.Event) error {
	msg, err := encodeMessage(key, event)
	if err != nil {
		return err
	}

	if err := k.writer(topic).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.EventType(), topic, err)
	}
	return nil
}

// Consume reads topic until ctx is cancelled. Read errors are retried with
// exponential backoff.
func (k *Broker) Consume(ctx context.Context, topic string, groupID string, handler messaging.Handler) {
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers: k.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	defer reader.Close()

	log := k.logger.With().Str("topic", topic).Logger()
	delay := k.backoff
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("consumer shutting down")
				return
			}
			log.Error().Err(err).Dur("retry_in", delay).Msg("error reading message")
			if !sleep(ctx, delay) {
				log.Info().Msg("consumer shutting down")
				return
			}
			delay = nextDelay(delay)
			continue
		}
		delay = k.backoff

		env, err := decodeMessage(msg)
		if err != nil {
			log.Error().Err(err).Msg("dropping message")
			continue
		}

		if err := handler(ctx, env); err != nil {
			log.Error().Err(err).Str("event_id", env.ID).Msg("error handling message")
		}
	}
}

func nextDelay(d time.Duration) time.Duration {
	d *= 2
	if d > maxReadRetryDelay {
		return maxReadRetryDelay
	}
	return d
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Close flushes and closes every writer.
func (k *Broker) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var firstErr error
	for topic, w := range k.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close writer for %s: %w", topic, err)
		}
		delete(k.writers, topic)
	}
	return firstErr
}
