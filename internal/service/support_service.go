package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/egannguyen/earphones-support/internal/cache"
	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/messaging"
	"github.com/egannguyen/earphones-support/internal/metrics"
	"github.com/egannguyen/earphones-support/internal/observability"
	"github.com/egannguyen/earphones-support/internal/repository"
	"github.com/egannguyen/earphones-support/internal/search"
)

// PopularLimit is how many top-rated products back an empty recommendation.
const PopularLimit = 3

// Options tunes a SupportService.
type Options struct {
	CacheTTL        time.Duration
	ComplaintTopic  string
	EscalationTopic string
}

// SupportService orchestrates the support desk operations.
type SupportService struct {
	productRepo   repository.ProductRepository
	orderRepo     repository.OrderRepository
	complaintRepo repository.ComplaintRepository
	publisher     messaging.Publisher
	cache         cache.Client
	metrics       *metrics.Registry
	logger        *observability.Logger
	opts          Options
	now           func() time.Time
}

// NewSupportService wires the service. A nil cache disables caching; nil
// metrics or logger get private no-op instances.
func NewSupportService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	complaintRepo repository.ComplaintRepository,
	publisher messaging.Publisher,
	c cache.Client,
	reg *metrics.Registry,
	logger *observability.Logger,
	opts Options,
) *SupportService {
	if c == nil {
		c = cache.Nop{}
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	if logger == nil {
		logger = observability.Nop()
	}
	if publisher == nil {
		publisher = &messaging.LogPublisher{Logger: logger}
	}
	return &SupportService{
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		complaintRepo: complaintRepo,
		publisher:     publisher,
		cache:         c,
		metrics:       reg,
		logger:        logger,
		opts:          opts,
		now:           time.Now,
	}
}

// SearchProducts runs the structured filter search. An empty result is not
// an error.
func (s *SupportService) SearchProducts(ctx context.Context, c search.Criteria) ([]entity.Product, error) {
	products, err := s.filter(ctx, c)
	if err != nil {
		s.metrics.Observe("search_products", metrics.OutcomeError)
		return nil, err
	}
	s.metrics.SearchResults.Observe(float64(len(products)))
	s.metrics.Observe("search_products", outcomeOf(len(products)))
	return products, nil
}

// Recommendation is a filtered product list. Popular is only filled when
// Products is empty.
type Recommendation struct {
	Products []entity.Product
	Popular  []entity.Product
}

// Recommend filters like SearchProducts but ignores any free-text term.
func (s *SupportService) Recommend(ctx context.Context, c search.Criteria) (*Recommendation, error) {
	products, err := s.filter(ctx, c.WithoutQuery())
	if err != nil {
		s.metrics.Observe("recommend", metrics.OutcomeError)
		return nil, err
	}

	rec := &Recommendation{Products: products}
	if len(products) == 0 {
		popular, err := s.filter(ctx, search.Criteria{})
		if err != nil {
			s.metrics.Observe("recommend", metrics.OutcomeError)
			return nil, err
		}
		if len(popular) > PopularLimit {
			popular = popular[:PopularLimit]
		}
		rec.Popular = popular
	}
	s.metrics.Observe("recommend", outcomeOf(len(products)))
	return rec, nil
}

// SearchPhrase runs one ranked query per whitespace-separated term and
// merges the batches, dropping rows already seen.
func (s *SupportService) SearchPhrase(ctx context.Context, phrase string) ([]entity.RankedProduct, error) {
	terms := search.Terms(phrase)
	if len(terms) == 0 {
		s.metrics.Observe("search_phrase", metrics.OutcomeInvalid)
		return nil, entity.Missing("query")
	}

	key := cache.Key("products", "phrase", strings.Join(terms, " "))
	var cached []entity.RankedProduct
	if s.fromCache(ctx, key, &cached) {
		s.metrics.Observe("search_phrase", outcomeOf(len(cached)))
		return cached, nil
	}

	batches := make([][]entity.RankedProduct, 0, len(terms))
	for _, term := range terms {
		batch, err := s.productRepo.SearchTerm(ctx, term)
		if err != nil {
			s.metrics.Observe("search_phrase", metrics.OutcomeError)
			return nil, fmt.Errorf("failed to search term %q: %w", term, err)
		}
		batches = append(batches, batch)
	}

	results := search.FirstN(search.Merge(batches...), search.ResultLimit)
	s.toCache(ctx, key, results)
	s.metrics.SearchResults.Observe(float64(len(results)))
	s.metrics.Observe("search_phrase", outcomeOf(len(results)))
	return results, nil
}

// TrackOrder looks an order up by id and owner email. Ids that are not
// integers cannot match any order and report entity.ErrNotFound.
func (s *SupportService) TrackOrder(ctx context.Context, orderID, email string) (*entity.Order, error) {
	orderID, email = strings.TrimSpace(orderID), strings.TrimSpace(email)
	if orderID == "" {
		s.metrics.Observe("track_order", metrics.OutcomeInvalid)
		return nil, entity.Missing("order_id")
	}
	if email == "" {
		s.metrics.Observe("track_order", metrics.OutcomeInvalid)
		return nil, entity.Missing("user_email")
	}

	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		s.metrics.Observe("track_order", metrics.OutcomeNotFound)
		return nil, entity.ErrNotFound
	}

	order, err := s.orderRepo.FindForCustomer(ctx, id, email)
	if err != nil {
		s.metrics.Observe("track_order", outcomeOfErr(err))
		if errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to track order %d: %w", id, err)
	}
	s.metrics.Observe("track_order", metrics.OutcomeOK)
	return order, nil
}

// LodgeComplaintInput carries a new complaint.
type LodgeComplaintInput struct {
	OrderID     string `json:"order_id"`
	UserEmail   string `json:"user_email"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
}

// Validate reports the first missing or malformed field.
func (in LodgeComplaintInput) Validate() (int64, error) {
	for _, f := range []struct{ name, value string }{
		{"order_id", in.OrderID},
		{"user_email", in.UserEmail},
		{"topic", in.Topic},
		{"description", in.Description},
	} {
		if strings.TrimSpace(f.value) == "" {
			return 0, entity.Missing(f.name)
		}
	}
	id, err := strconv.ParseInt(strings.TrimSpace(in.OrderID), 10, 64)
	if err != nil || id <= 0 {
		return 0, &entity.ValidationError{Field: "order_id", Reason: "must be a positive integer"}
	}
	return id, nil
}

// LodgeComplaint stores a complaint for the user owning the email and
// announces it. A failed announcement does not fail the complaint.
func (s *SupportService) LodgeComplaint(ctx context.Context, in LodgeComplaintInput) (int64, error) {
	orderID, err := in.Validate()
	if err != nil {
		s.metrics.Observe("lodge_complaint", metrics.OutcomeInvalid)
		return 0, err
	}
	email := strings.TrimSpace(in.UserEmail)

	id, err := s.complaintRepo.Create(ctx, orderID, email, in.Topic, in.Description)
	if err != nil {
		s.metrics.Observe("lodge_complaint", outcomeOfErr(err))
		if errors.Is(err, entity.ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to lodge complaint: %w", err)
	}
	s.metrics.ComplaintsCreated.Inc()
	s.metrics.Observe("lodge_complaint", metrics.OutcomeOK)

	event := entity.ComplaintLodged{
		ComplaintID: id,
		OrderID:     orderID,
		UserEmail:   email,
		Topic:       in.Topic,
		LodgedAt:    s.now().UTC(),
	}
	if err := s.publisher.PublishEvent(ctx, s.opts.ComplaintTopic, strconv.FormatInt(orderID, 10), event); err != nil {
		s.logger.Error().Err(err).Int64("complaint_id", id).Msg("failed to publish complaint event")
	}
	return id, nil
}

// Escalate hands the conversation to a human. Nothing is stored; the
// returned contact echoes ec.
func (s *SupportService) Escalate(ctx context.Context, ec entity.EscalationContext) entity.SupportContact {
	if len(ec.ConversationHistory) == 0 {
		ec.ConversationHistory = json.RawMessage("[]")
	}
	s.metrics.Escalations.Inc()
	s.metrics.Observe("escalate", metrics.OutcomeOK)

	key := ec.Email()
	if key == "" {
		key = ec.Order()
	}
	event := entity.EscalationRequested{Context: ec, RequestedAt: s.now().UTC()}
	if err := s.publisher.PublishEvent(ctx, s.opts.EscalationTopic, key, event); err != nil {
		s.logger.Error().Err(err).Str("user_email", ec.Email()).Msg("failed to publish escalation event")
	}

	return entity.SupportContact{
		Message: entity.EscalationNote,
		Phone:   entity.SupportPhone,
		Email:   entity.SupportEmail,
		Context: ec,
	}
}

func (s *SupportService) filter(ctx context.Context, c search.Criteria) ([]entity.Product, error) {
	key := filterKey(c)

	var products []entity.Product
	if s.fromCache(ctx, key, &products) {
		return products, nil
	}

	products, err := s.productRepo.Search(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	s.toCache(ctx, key, products)
	return products, nil
}

// filterKey quotes every field so that separators inside a value cannot
// make two criteria share a key.
func filterKey(c search.Criteria) string {
	return cache.Key("products", "filter",
		strconv.Quote(c.Query),
		strconv.Quote(c.Brand),
		strconv.Quote(c.PriceRange),
		strconv.Quote(c.ProductType),
		strconv.Quote(c.Features))
}

func (s *SupportService) fromCache(ctx context.Context, key string, v any) bool {
	err := cache.GetJSON(ctx, s.cache, key, v)
	if err == nil {
		s.metrics.CacheHits.Inc()
		return true
	}
	s.metrics.CacheMisses.Inc()
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	return false
}

func (s *SupportService) toCache(ctx context.Context, key string, v any) {
	if s.opts.CacheTTL <= 0 {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, key, v, s.opts.CacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func outcomeOf(n int) string {
	if n == 0 {
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeOK
}

func outcomeOfErr(err error) string {
	if errors.Is(err, entity.ErrNotFound) {
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}
