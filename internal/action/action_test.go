package action

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/search"
	"github.com/egannguyen/earphones-support/internal/service"
)

type fakeSupport struct {
	ranked      []entity.RankedProduct
	rec         *service.Recommendation
	order       *entity.Order
	complaintID int64
	err         error

	phrase    string
	criteria  search.Criteria
	lodged    service.LodgeComplaintInput
	escalated entity.EscalationContext
}

func (f *fakeSupport) SearchPhrase(_ context.Context, phrase string) ([]entity.RankedProduct, error) {
	f.phrase = phrase
	return f.ranked, f.err
}

func (f *fakeSupport) Recommend(_ context.Context, c search.Criteria) (*service.Recommendation, error) {
	f.criteria = c
	return f.rec, f.err
}

func (f *fakeSupport) TrackOrder(_ context.Context, orderID, email string) (*entity.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.order == nil {
		return nil, entity.ErrNotFound
	}
	return f.order, nil
}

func (f *fakeSupport) LodgeComplaint(_ context.Context, in service.LodgeComplaintInput) (int64, error) {
	f.lodged = in
	return f.complaintID, f.err
}

func (f *fakeSupport) Escalate(_ context.Context, ec entity.EscalationContext) entity.SupportContact {
	f.escalated = ec
	return entity.SupportContact{
		Message: entity.EscalationNote,
		Phone:   entity.SupportPhone,
		Email:   entity.SupportEmail,
		Context: ec,
	}
}

func run(t *testing.T, svc Support, name string, tracker Tracker) *WebhookResponse {
	t.Helper()
	resp, err := NewRegistry(svc, nil).Run(context.Background(), WebhookRequest{NextAction: name, Tracker: tracker})
	require.NoError(t, err)
	return resp
}

func slots(kv ...any) map[string]any {
	m := make(map[string]any)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

var sony = entity.Product{
	ID: 1, Name: "Sony WH-1000XM4", Brand: "Sony", Price: decimal.RequireFromString("349.99"),
	Quantity: 50, Rating: 4.8, Tags: "wireless,noise-cancelling,over-ear,premium",
}

func TestSearchProducts_AsksForTerm(t *testing.T) {
	resp := run(t, &fakeSupport{}, "action_search_products", Tracker{})
	assert.Equal(t, []Response{{Template: "utter_ask_search_term"}}, resp.Responses)
	assert.Empty(t, resp.Events)
}

func TestSearchProducts_EntityBeatsSlot(t *testing.T) {
	svc := &fakeSupport{ranked: []entity.RankedProduct{{Product: sony, Relevance: 8}}}
	resp := run(t, svc, "action_search_products", Tracker{
		Slots:         slots("search_term", "bose"),
		LatestMessage: Message{Entities: []Entity{{Entity: "search_term", Value: "sony"}}},
	})

	assert.Equal(t, "sony", svc.phrase)
	require.Len(t, resp.Responses, 1)
	assert.Equal(t,
		"I found these products:\n\n- Sony WH-1000XM4 by Sony (Price: $349.99, Stock: 50, Rating: 4.8/5)",
		resp.Responses[0].Text)
}

func TestSearchProducts_NoResultsAndError(t *testing.T) {
	resp := run(t, &fakeSupport{}, "action_search_products", Tracker{Slots: slots("search_term", "turntable")})
	assert.Equal(t, []Response{{Template: "utter_no_results"}}, resp.Responses)

	resp = run(t, &fakeSupport{err: errors.New("db down")}, "action_search_products", Tracker{Slots: slots("search_term", "sony")})
	assert.Equal(t, []Response{{Text: "Error searching products"}}, resp.Responses)
}

func TestGetRecommendations(t *testing.T) {
	svc := &fakeSupport{rec: &service.Recommendation{Products: []entity.Product{sony}}}
	resp := run(t, svc, "action_get_recommendations", Tracker{
		Slots: slots("preferred_brand", "sony", "price_range", "under $400", "product_type", "over-ear", "features", nil),
	})

	assert.Equal(t, search.Criteria{Brand: "sony", PriceRange: "under $400", ProductType: "over-ear"}, svc.criteria)
	require.Len(t, resp.Responses, 1)
	text := resp.Responses[0].Text
	assert.Contains(t, text, "1. **Sony WH-1000XM4** by Sony\n")
	assert.Contains(t, text, "💰 $349.99 | ⭐ 4.8/5 stars")
	assert.Contains(t, text, "🔖 wireless,noise-cancelling,over-ear,premium")
	assert.Contains(t, text, "These products match your criteria perfectly!")
}

func TestGetRecommendations_PopularFallback(t *testing.T) {
	hd650 := sony
	hd650.Name, hd650.Price, hd650.Rating = "Sennheiser HD 650", decimal.RequireFromString("399.99"), 4.9
	svc := &fakeSupport{rec: &service.Recommendation{Popular: []entity.Product{hd650}}}

	resp := run(t, svc, "action_get_recommendations", Tracker{})
	text := resp.Responses[0].Text
	assert.Contains(t, text, "I couldn't find products matching all your preferences.")
	assert.Contains(t, text, "🎧 **Sennheiser HD 650** - $399.99 (⭐ 4.9/5)")
}

func TestTrackOrder(t *testing.T) {
	svc := &fakeSupport{order: &entity.Order{
		ID: 211111, Status: "shipped", Amount: decimal.RequireFromString("249.99"),
		CreatedTime:     time.Date(2024, 6, 22, 14, 45, 0, 0, time.UTC),
		ShippingAddress: "456 Oak Ave, Los Angeles, CA 90210",
	}}
	resp := run(t, svc, "action_track_order", Tracker{Slots: slots("order_id", 211111.0, "user_email", "jane.smith@email.com")})

	text := resp.Responses[0].Text
	assert.Contains(t, text, "🆔 Order ID: 211111\n")
	assert.Contains(t, text, "🚚 Status: **SHIPPED**")
	assert.Contains(t, text, "💰 Amount: $249.99")
	assert.Contains(t, text, "📅 Order Date: 2024-06-22 14:45:00")
	assert.Contains(t, text, "2-3 business days")
	assert.Equal(t, []Event{SlotSet("order_id", nil), SlotSet("user_email", nil)}, resp.Events)
}

func TestTrackOrder_MissingSlots(t *testing.T) {
	resp := run(t, &fakeSupport{}, "action_track_order", Tracker{})
	assert.Equal(t, "I need your order ID to track your order.", resp.Responses[0].Text)

	resp = run(t, &fakeSupport{}, "action_track_order", Tracker{Slots: slots("order_id", "111111")})
	assert.Equal(t, []Response{{Template: "utter_ask_email"}}, resp.Responses)
	assert.Empty(t, resp.Events)
}

func TestTrackOrder_NotFound(t *testing.T) {
	resp := run(t, &fakeSupport{}, "action_track_order", Tracker{Slots: slots("order_id", "999", "user_email", "a@b.c")})
	assert.Contains(t, resp.Responses[0].Text, "I couldn't find an order with ID 999 associated with email a@b.c.")
	assert.Len(t, resp.Events, 2)
}

func TestLodgeComplaint(t *testing.T) {
	svc := &fakeSupport{complaintID: 3}
	resp := run(t, svc, "action_lodge_complaint", Tracker{Slots: slots(
		"order_id", "211111",
		"user_email", "jane.smith@email.com",
		"complaint_topic", "Shipping",
		"complaint_description", "late by 3 days",
	)})

	assert.Equal(t, "late by 3 days", svc.lodged.Description)
	assert.Contains(t, resp.Responses[0].Text, "🆔 Complaint ID: 3\n")
	assert.Contains(t, resp.Responses[0].Text, "🏷️ Topic: Shipping")
	assert.Len(t, resp.Events, 4)
}

func TestLodgeComplaint_Incomplete(t *testing.T) {
	resp := run(t, &fakeSupport{}, "action_lodge_complaint", Tracker{Slots: slots("order_id", "211111")})
	assert.Equal(t, "I need all the complaint details to process your request.", resp.Responses[0].Text)
	assert.Empty(t, resp.Events)
}

func TestLodgeComplaint_UnknownUser(t *testing.T) {
	resp := run(t, &fakeSupport{err: entity.ErrNotFound}, "action_lodge_complaint", Tracker{Slots: slots(
		"order_id", "211111", "user_email", "x@y.z", "complaint_topic", "Billing", "complaint_description", "charged twice",
	)})
	assert.Contains(t, resp.Responses[0].Text, "I couldn't create your complaint.")
}

func TestEscalateToHuman(t *testing.T) {
	svc := &fakeSupport{}
	resp := run(t, svc, "action_escalate_to_human", Tracker{
		Slots:      slots("user_email", "john.doe@email.com", "order_id", "111111"),
		ActiveLoop: &Loop{Name: "complaint_form"},
		Events: []Event{
			{"event": "user", "text": "my headphones crackle"},
			{"event": "bot", "text": "Sorry to hear that"},
			{"event": "user", "text": "I want a human"},
		},
	})

	assert.JSONEq(t, `["my headphones crackle","I want a human"]`, string(svc.escalated.ConversationHistory))
	assert.Equal(t, "john.doe@email.com", svc.escalated.Email())
	assert.Equal(t, []Event{DeactivateLoop(), SlotSet("requested_slot", nil)}, resp.Events)
	text := resp.Responses[0].Text
	assert.Contains(t, text, "**Context being transferred:**\n📧 Email: john.doe@email.com\n🆔 Order ID: 111111\n")
	assert.Contains(t, text, "1-800-EARPHONES")
	assert.Contains(t, text, "support@earphonesstore.com")
}

func TestEscalateToHuman_NoContextNoLoop(t *testing.T) {
	svc := &fakeSupport{}
	resp := run(t, svc, "action_escalate_to_human", Tracker{})
	assert.Empty(t, resp.Events)
	assert.Nil(t, svc.escalated.UserEmail)
	assert.Nil(t, svc.escalated.OrderID)
	assert.NotContains(t, resp.Responses[0].Text, "Context being transferred")
}

func TestDefaultFallback(t *testing.T) {
	resp := run(t, &fakeSupport{}, "action_default_fallback", Tracker{})
	assert.Equal(t, []Response{
		{Text: "Sorry, I didn't understand that."},
		{Text: "Could you rephrase or ask something else?"},
	}, resp.Responses)
}

func TestRegistry_UnknownAction(t *testing.T) {
	_, err := NewRegistry(&fakeSupport{}, nil).Run(context.Background(), WebhookRequest{NextAction: "action_order_pizza"})
	var unknown *UnknownActionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "action_order_pizza", unknown.Name)
}

func TestRegistry_Names(t *testing.T) {
	names := NewRegistry(&fakeSupport{}, nil).Names()
	assert.Contains(t, names, "action_track_order")
	assert.Contains(t, names, "validate_complaint_form")
	assert.Len(t, names, 10)
}

func TestWebhookResponse_JSONShape(t *testing.T) {
	resp := run(t, &fakeSupport{}, "action_track_order", Tracker{Slots: slots("order_id", "999", "user_email", "a@b.c")})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `{"event":"slot","name":"order_id","timestamp":null,"value":null}`)
}
