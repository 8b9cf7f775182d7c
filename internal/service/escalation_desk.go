package service

import (
	"context"
	"fmt"

	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/messaging"
	"github.com/egannguyen/earphones-support/internal/observability"
)

// NewEscalationHandler consumes EscalationRequested events and records the
// handoff for the human agent desk.
func NewEscalationHandler(logger *observability.Logger) messaging.Handler {
	return func(ctx context.Context, env entity.Envelope) error {
		event, err := entity.DecodeEvent(env)
		if err != nil {
			return err
		}
		esc, ok := event.(entity.EscalationRequested)
		if !ok {
			return fmt.Errorf("unexpected %s on escalation topic", env.EventType)
		}

		logger.Info().
			Str("event_id", env.ID).
			Str("user_email", esc.Context.Email()).
			Str("order_id", esc.Context.Order()).
			Int("turns", esc.Context.Turns()).
			Time("requested_at", esc.RequestedAt).
			Msg("escalation handed to agent desk")
		return nil
	}
}
