package action

import (
	"context"
	"errors"

	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/observability"
	"github.com/egannguyen/earphones-support/internal/search"
	"github.com/egannguyen/earphones-support/internal/service"
)

// Response template names defined in the bot's domain.
const (
	utterAskSearchTerm = "utter_ask_search_term"
	utterNoResults     = "utter_no_results"
	utterAskEmail      = "utter_ask_email"
)

// Support is the slice of the support service the actions need.
type Support interface {
	SearchPhrase(ctx context.Context, phrase string) ([]entity.RankedProduct, error)
	Recommend(ctx context.Context, c search.Criteria) (*service.Recommendation, error)
	TrackOrder(ctx context.Context, orderID, email string) (*entity.Order, error)
	LodgeComplaint(ctx context.Context, in service.LodgeComplaintInput) (int64, error)
	Escalate(ctx context.Context, ec entity.EscalationContext) entity.SupportContact
}

// Action is one named custom action.
type Action interface {
	Name() string
	Run(ctx context.Context, d *Dispatcher, t *Tracker) []Event
}

type searchProducts struct {
	svc    Support
	logger *observability.Logger
}

func (searchProducts) Name() string { return "action_search_products" }

func (a searchProducts) Run(ctx context.Context, d *Dispatcher, t *Tracker) []Event {
	term := t.EntityOrSlot("search_term")
	if term == "" {
		d.UtterResponse(utterAskSearchTerm)
		return nil
	}

	results, err := a.svc.SearchPhrase(ctx, term)
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		d.UtterResponse(utterAskSearchTerm)
	case err != nil:
		a.logger.Error().Err(err).Str("term", term).Msg("error searching products")
		d.Utter("Error searching products")
	case len(results) == 0:
		d.UtterResponse(utterNoResults)
	default:
		d.Utter(formatSearchResults(results))
	}
	return nil
}

type getRecommendations struct {
	svc    Support
	logger *observability.Logger
}

func (getRecommendations) Name() string { return "action_get_recommendations" }

func (a getRecommendations) Run(ctx context.Context, d *Dispatcher, t *Tracker) []Event {
	rec, err := a.svc.Recommend(ctx, search.Criteria{
		Brand:       t.Slot("preferred_brand"),
		PriceRange:  t.Slot("price_range"),
		ProductType: t.Slot("product_type"),
		Features:    t.Slot("features"),
	})
	if err != nil {
		a.logger.Error().Err(err).Msg("error getting recommendations")
		d.Utter("I'm sorry, I encountered an error while getting recommendations. Please try again or contact our support team.")
		return nil
	}
	d.Utter(formatRecommendation(rec))
	return nil
}

type trackOrder struct {
	svc    Support
	logger *observability.Logger
}

func (trackOrder) Name() string { return "action_track_order" }

func (a trackOrder) Run(ctx context.Context, d *Dispatcher, t *Tracker) []Event {
	orderID := t.Slot("order_id")
	if orderID == "" {
		d.Utter("I need your order ID to track your order.")
		return nil
	}
	email := t.EntityOrSlot("user_email")
	if email == "" {
		d.UtterResponse(utterAskEmail)
		return nil
	}

	order, err := a.svc.TrackOrder(ctx, orderID, email)
	switch {
	case errors.Is(err, entity.ErrNotFound):
		d.Utter(formatOrderNotFound(orderID, email))
	case err != nil:
		a.logger.Error().Err(err).Str("order_id", orderID).Msg("error tracking order")
		d.Utter("I'm sorry, I encountered an error while tracking your order. Please contact our support team for assistance.")
	default:
		d.Utter(formatOrder(orderID, order))
	}

	return []Event{
		SlotSet("order_id", nil),
		SlotSet("user_email", nil),
	}
}

type lodgeComplaint struct {
	svc    Support
	logger *observability.Logger
}

func (lodgeComplaint) Name() string { return "action_lodge_complaint" }

func (a lodgeComplaint) Run(ctx context.Context, d *Dispatcher, t *Tracker) []Event {
	in := service.LodgeComplaintInput{
		OrderID:     t.Slot("order_id"),
		UserEmail:   t.Slot("user_email"),
		Topic:       t.Slot("complaint_topic"),
		Description: t.Slot("complaint_description"),
	}
	if in.OrderID == "" || in.UserEmail == "" || in.Topic == "" || in.Description == "" {
		d.Utter("I need all the complaint details to process your request.")
		return nil
	}

	id, err := a.svc.LodgeComplaint(ctx, in)
	var verr *entity.ValidationError
	switch {
	case errors.Is(err, entity.ErrNotFound), errors.As(err, &verr):
		d.Utter("I couldn't create your complaint. This might be because the order ID or email doesn't match our records. " +
			"Please verify your information or contact our support team directly.")
	case err != nil:
		a.logger.Error().Err(err).Str("order_id", in.OrderID).Msg("error lodging complaint")
		d.Utter("I'm sorry, I encountered an error while registering your complaint. Please contact our support team directly.")
	default:
		d.Utter(formatComplaint(id, in))
	}

	return []Event{
		SlotSet("order_id", nil),
		SlotSet("user_email", nil),
		SlotSet("complaint_topic", nil),
		SlotSet("complaint_description", nil),
	}
}

type escalateToHuman struct {
	svc    Support
	logger *observability.Logger
}

func (escalateToHuman) Name() string { return "action_escalate_to_human" }

func (a escalateToHuman) Run(ctx context.Context, d *Dispatcher, t *Tracker) []Event {
	var events []Event
	if t.InLoop() {
		events = append(events, DeactivateLoop(), SlotSet("requested_slot", nil))
	}

	ec, err := entity.NewEscalationContext(t.Slot("user_email"), t.Slot("order_id"), t.UserTexts())
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to encode escalation context")
	}
	contact := a.svc.Escalate(ctx, ec)
	d.Utter(formatEscalation(contact))

	a.logger.Info().
		Str("user_email", contact.Context.Email()).
		Str("order_id", contact.Context.Order()).
		Msg("human escalation requested")
	return events
}

type defaultFallback struct{}

func (defaultFallback) Name() string { return "action_default_fallback" }

func (defaultFallback) Run(_ context.Context, d *Dispatcher, _ *Tracker) []Event {
	d.Utter("Sorry, I didn't understand that.")
	d.Utter("Could you rephrase or ask something else?")
	return nil
}
