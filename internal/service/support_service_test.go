package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/earphones-support/internal/cache"
	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/metrics"
	"github.com/egannguyen/earphones-support/internal/search"
)

type fakeProducts struct {
	byCriteria map[search.Criteria][]entity.Product
	byTerm     map[string][]entity.RankedProduct
	calls      int
	err        error
}

func (f *fakeProducts) Search(_ context.Context, c search.Criteria) ([]entity.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byCriteria[c], nil
}

func (f *fakeProducts) SearchTerm(_ context.Context, term string) ([]entity.RankedProduct, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byTerm[term], nil
}

type fakeOrders struct {
	orders map[int64]entity.Order
	err    error
}

func (f *fakeOrders) FindForCustomer(_ context.Context, id int64, email string) (*entity.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	o, ok := f.orders[id]
	if !ok || o.CustomerEmail != email {
		return nil, entity.ErrNotFound
	}
	return &o, nil
}

type fakeComplaints struct {
	users   map[string]int64
	created []entity.Complaint
}

func (f *fakeComplaints) Create(_ context.Context, orderID int64, email, topic, description string) (int64, error) {
	uid, ok := f.users[email]
	if !ok {
		return 0, entity.ErrNotFound
	}
	c := entity.Complaint{
		ID:          int64(len(f.created) + 1),
		OrderID:     orderID,
		UserID:      uid,
		Status:      entity.ComplaintStatusOpen,
		Topic:       topic,
		Description: description,
	}
	f.created = append(f.created, c)
	return c.ID, nil
}

func (f *fakeComplaints) FindByID(_ context.Context, id int64) (*entity.Complaint, error) {
	for _, c := range f.created {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, entity.ErrNotFound
}

type published struct {
	topic string
	key   string
	event entity.Event
}

type fakePublisher struct {
	events []published
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event entity.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, published{topic, key, event})
	return nil
}

func product(id int64, name string, rating float64) entity.Product {
	return entity.Product{ID: id, Name: name, Brand: "Brand", Price: decimal.NewFromInt(100), Quantity: 1, Rating: rating, Tags: "wireless"}
}

type fixture struct {
	svc        *SupportService
	products   *fakeProducts
	orders     *fakeOrders
	complaints *fakeComplaints
	publisher  *fakePublisher
	metrics    *metrics.Registry
}

func newFixture(t *testing.T, c cache.Client) *fixture {
	t.Helper()
	f := &fixture{
		products: &fakeProducts{
			byCriteria: map[search.Criteria][]entity.Product{},
			byTerm:     map[string][]entity.RankedProduct{},
		},
		orders: &fakeOrders{orders: map[int64]entity.Order{
			111111: {ID: 111111, UserID: 1, Status: entity.OrderStatusDelivered, Amount: decimal.RequireFromString("349.99"), CustomerEmail: "john.doe@email.com"},
		}},
		complaints: &fakeComplaints{users: map[string]int64{"jane.smith@email.com": 2}},
		publisher:  &fakePublisher{},
		metrics:    metrics.NewRegistry(),
	}
	f.svc = NewSupportService(f.products, f.orders, f.complaints, f.publisher, c, f.metrics, nil, Options{
		CacheTTL:        time.Minute,
		ComplaintTopic:  "support.complaints",
		EscalationTopic: "support.escalations",
	})
	return f
}

func TestSearchProducts_UsesCache(t *testing.T) {
	mem := cache.NewMemoryClient(10)
	t.Cleanup(func() { mem.Close() })
	f := newFixture(t, mem)

	c := search.Criteria{Brand: "sony"}
	f.products.byCriteria[c] = []entity.Product{product(1, "Sony WH-1000XM4", 4.8)}

	first, err := f.svc.SearchProducts(context.Background(), c)
	require.NoError(t, err)
	second, err := f.svc.SearchProducts(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, 1, f.products.calls)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.True(t, first[0].Price.Equal(second[0].Price))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheHits))
}

func TestSearchProducts_EmptyIsNotAnError(t *testing.T) {
	f := newFixture(t, nil)

	products, err := f.svc.SearchProducts(context.Background(), search.Criteria{Query: "turntable"})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Operations.WithLabelValues("search_products", metrics.OutcomeNotFound)))
}

func TestSearchProducts_StorageErrorIsWrapped(t *testing.T) {
	f := newFixture(t, nil)
	boom := errors.New("disk on fire")
	f.products.err = boom

	_, err := f.svc.SearchProducts(context.Background(), search.Criteria{})
	assert.ErrorIs(t, err, boom)
}

func TestRecommend_DropsQuery(t *testing.T) {
	f := newFixture(t, nil)
	f.products.byCriteria[search.Criteria{Brand: "bose"}] = []entity.Product{product(3, "Bose QuietComfort 35 II", 4.6)}

	rec, err := f.svc.Recommend(context.Background(), search.Criteria{Query: "ignored", Brand: "bose"})
	require.NoError(t, err)
	require.Len(t, rec.Products, 1)
	assert.Empty(t, rec.Popular)
}

func TestRecommend_FallsBackToPopular(t *testing.T) {
	f := newFixture(t, nil)
	f.products.byCriteria[search.Criteria{}] = []entity.Product{
		product(4, "Sennheiser HD 650", 4.9),
		product(1, "Sony WH-1000XM4", 4.8),
		product(2, "Apple AirPods Pro", 4.7),
		product(3, "Bose QuietComfort 35 II", 4.6),
	}

	rec, err := f.svc.Recommend(context.Background(), search.Criteria{Brand: "nokia"})
	require.NoError(t, err)
	assert.Empty(t, rec.Products)
	require.Len(t, rec.Popular, PopularLimit)
	assert.Equal(t, "Sennheiser HD 650", rec.Popular[0].Name)
}

func TestSearchPhrase_MergesAndCaps(t *testing.T) {
	f := newFixture(t, nil)
	sony := entity.RankedProduct{Product: product(1, "Sony WH-1000XM4", 4.8), Relevance: 8}
	f.products.byTerm["sony"] = []entity.RankedProduct{sony}
	f.products.byTerm["wireless"] = []entity.RankedProduct{
		{Product: product(8, "Beats Studio3 Wireless", 4.3), Relevance: 6},
		{Product: sony.Product, Relevance: 1},
		{Product: product(9, "Anker Soundcore Life Q30", 4.1), Relevance: 1},
		{Product: product(2, "Apple AirPods Pro", 4.7), Relevance: 1},
		{Product: product(3, "Bose QuietComfort 35 II", 4.6), Relevance: 1},
	}

	results, err := f.svc.SearchPhrase(context.Background(), "  sony   wireless ")
	require.NoError(t, err)
	require.Len(t, results, search.ResultLimit)

	ids := make([]int64, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{1, 8, 9, 2, 3}, ids)
	assert.Equal(t, 8, results[0].Relevance)
}

func TestSearchPhrase_Blank(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.SearchPhrase(context.Background(), "   ")
	var verr *entity.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestTrackOrder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	order, err := f.svc.TrackOrder(ctx, "111111", "john.doe@email.com")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, order.Status)
	assert.Equal(t, "349.99", order.Amount.StringFixed(2))

	_, err = f.svc.TrackOrder(ctx, "111111", "jane.smith@email.com")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = f.svc.TrackOrder(ctx, "ORD-1", "john.doe@email.com")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	var verr *entity.ValidationError
	_, err = f.svc.TrackOrder(ctx, "", "john.doe@email.com")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "order_id", verr.Field)

	_, err = f.svc.TrackOrder(ctx, "111111", " ")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "user_email", verr.Field)
}

func TestTrackOrder_StorageError(t *testing.T) {
	f := newFixture(t, nil)
	f.orders.err = errors.New("connection reset")

	_, err := f.svc.TrackOrder(context.Background(), "111111", "john.doe@email.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, entity.ErrNotFound)
}

func TestLodgeComplaint(t *testing.T) {
	f := newFixture(t, nil)

	id, err := f.svc.LodgeComplaint(context.Background(), LodgeComplaintInput{
		OrderID:     "211111",
		UserEmail:   "jane.smith@email.com",
		Topic:       "Shipping",
		Description: "late by 3 days",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.Len(t, f.complaints.created, 1)
	assert.Equal(t, entity.ComplaintStatusOpen, f.complaints.created[0].Status)

	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0]
	assert.Equal(t, "support.complaints", ev.topic)
	assert.Equal(t, "211111", ev.key)
	lodged, ok := ev.event.(entity.ComplaintLodged)
	require.True(t, ok)
	assert.Equal(t, id, lodged.ComplaintID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ComplaintsCreated))
}

func TestLodgeComplaint_Validation(t *testing.T) {
	valid := LodgeComplaintInput{OrderID: "211111", UserEmail: "jane.smith@email.com", Topic: "Shipping", Description: "late by 3 days"}

	tests := []struct {
		name  string
		edit  func(in *LodgeComplaintInput)
		field string
	}{
		{"missing order", func(in *LodgeComplaintInput) { in.OrderID = "" }, "order_id"},
		{"missing email", func(in *LodgeComplaintInput) { in.UserEmail = "" }, "user_email"},
		{"missing topic", func(in *LodgeComplaintInput) { in.Topic = " " }, "topic"},
		{"missing description", func(in *LodgeComplaintInput) { in.Description = "" }, "description"},
		{"order not a number", func(in *LodgeComplaintInput) { in.OrderID = "abc" }, "order_id"},
		{"order not positive", func(in *LodgeComplaintInput) { in.OrderID = "0" }, "order_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			in := valid
			tt.edit(&in)

			_, err := f.svc.LodgeComplaint(context.Background(), in)
			var verr *entity.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, f.complaints.created)
			assert.Empty(t, f.publisher.events)
		})
	}
}

func TestLodgeComplaint_UnknownUser(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.LodgeComplaint(context.Background(), LodgeComplaintInput{
		OrderID: "111111", UserEmail: "nobody@email.com", Topic: "Returns", Description: "want a refund please",
	})
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.Empty(t, f.publisher.events)
}

func TestLodgeComplaint_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, nil)
	f.publisher.err = errors.New("broker down")

	id, err := f.svc.LodgeComplaint(context.Background(), LodgeComplaintInput{
		OrderID: "211111", UserEmail: "jane.smith@email.com", Topic: "Shipping", Description: "late by 3 days",
	})
	require.NoError(t, err)
	assert.Positive(t, id)
}

func TestEscalate(t *testing.T) {
	f := newFixture(t, nil)

	ec, err := entity.NewEscalationContext("john.doe@email.com", "111111", nil)
	require.NoError(t, err)
	contact := f.svc.Escalate(context.Background(), ec)
	assert.Equal(t, entity.EscalationNote, contact.Message)
	assert.Equal(t, "1-800-EARPHONES", contact.Phone)
	assert.Equal(t, "support@earphonesstore.com", contact.Email)
	assert.Equal(t, "111111", contact.Context.Order())
	assert.JSONEq(t, `[]`, string(contact.Context.ConversationHistory))

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "support.escalations", f.publisher.events[0].topic)
	assert.Equal(t, "john.doe@email.com", f.publisher.events[0].key)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Escalations))
}

func TestEscalate_KeepsRawContext(t *testing.T) {
	f := newFixture(t, nil)

	ec := entity.EscalationContext{
		OrderID:             json.RawMessage(`111111`),
		ConversationHistory: json.RawMessage(`[{"sender":"user","text":"human please"}]`),
	}
	contact := f.svc.Escalate(context.Background(), ec)

	assert.Equal(t, `111111`, string(contact.Context.OrderID))
	assert.Nil(t, contact.Context.UserEmail)
	assert.Equal(t, `[{"sender":"user","text":"human please"}]`, string(contact.Context.ConversationHistory))

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "111111", f.publisher.events[0].key)
}

func TestFilterKey_FieldsDoNotCollide(t *testing.T) {
	a := filterKey(search.Criteria{Query: "a:b"})
	b := filterKey(search.Criteria{Query: "a", Brand: "b"})
	assert.NotEqual(t, a, b)
	assert.Equal(t, filterKey(search.Criteria{Brand: "sony"}), filterKey(search.Criteria{Brand: "sony"}))
}
