package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/observability"
)

func TestNewEnvelope_RoundTrip(t *testing.T) {
	event := entity.ComplaintLodged{
		ComplaintID: 3,
		OrderID:     211111,
		UserEmail:   "jane.smith@email.com",
		Topic:       "Shipping",
		LodgedAt:    time.Date(2024, 6, 25, 8, 0, 0, 0, time.UTC),
	}

	env, err := NewEnvelope("211111", event)
	require.NoError(t, err)
	_, err = uuid.Parse(env.ID)
	assert.NoError(t, err)
	assert.Equal(t, "ComplaintLodged", env.EventType)
	assert.Equal(t, "211111", env.Key)

	decoded, err := entity.DecodeEvent(env)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
}

func TestNewEnvelope_UniqueIDs(t *testing.T) {
	event := entity.EscalationRequested{Context: entity.EscalationContext{UserEmail: json.RawMessage(`"a@b.c"`)}}
	a, err := NewEnvelope("a@b.c", event)
	require.NoError(t, err)
	b, err := NewEnvelope("a@b.c", event)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestDecodeEvent_UnknownType(t *testing.T) {
	_, err := entity.DecodeEvent(entity.Envelope{EventType: "OrderPlaced", Payload: json.RawMessage(`{}`)})
	assert.Error(t, err)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := &LogPublisher{Logger: observability.NewLogger(observability.LogConfig{Output: &buf})}

	err := pub.PublishEvent(context.Background(), "support.escalations", "111111",
		entity.EscalationRequested{Context: entity.EscalationContext{OrderID: json.RawMessage(`111111`)}})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "support.escalations", line["topic"])
	assert.Equal(t, "EscalationRequested", line["event_type"])
	assert.Equal(t, "event published", line["message"])
	payload := line["payload"].(map[string]any)
	assert.Equal(t, 111111.0, payload["context"].(map[string]any)["order_id"])
}
