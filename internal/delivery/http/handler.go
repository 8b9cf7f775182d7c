package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/egannguyen/earphones-support/internal/action"
	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/observability"
	"github.com/egannguyen/earphones-support/internal/search"
	"github.com/egannguyen/earphones-support/internal/service"
)

// Support is the service surface the handlers call.
type Support interface {
	SearchProducts(ctx context.Context, c search.Criteria) ([]entity.Product, error)
	Recommend(ctx context.Context, c search.Criteria) (*service.Recommendation, error)
	SearchPhrase(ctx context.Context, phrase string) ([]entity.RankedProduct, error)
	TrackOrder(ctx context.Context, orderID, email string) (*entity.Order, error)
	LodgeComplaint(ctx context.Context, in service.LodgeComplaintInput) (int64, error)
	Escalate(ctx context.Context, ec entity.EscalationContext) entity.SupportContact
}

// Pinger reports database liveness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HandlerConfig holds handler switches.
type HandlerConfig struct {
	ServiceName string
	// DecodeATSymbEmail rewrites "ATSYMB" to "@" in GET /order_status.
	DecodeATSymbEmail bool
}

// Handler handles HTTP requests for the support backend.
type Handler struct {
	svc     Support
	actions *action.Registry
	db      Pinger
	logger  *observability.Logger
	cfg     HandlerConfig
}

func NewHandler(svc Support, actions *action.Registry, db Pinger, logger *observability.Logger, cfg HandlerConfig) *Handler {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Handler{
		svc:     svc,
		actions: actions,
		db:      db,
		logger:  logger,
		cfg:     cfg,
	}
}

func (h *Handler) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !h.decode(w, r, &req) {
		return
	}

	products, err := h.svc.SearchProducts(r.Context(), search.Criteria{
		Query:       firstNonEmpty(req.SearchQuery, req.Query),
		Brand:       firstNonEmpty(req.PreferredBrand, req.Brand),
		PriceRange:  req.PriceRange,
		ProductType: req.ProductType,
		Features:    req.Features,
	})
	if err != nil {
		h.internalError(w, "search products", err)
		return
	}
	if len(products) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No products found"})
		return
	}

	results := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		results = append(results, toProductDTO(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) handleSearchPhrase(w http.ResponseWriter, r *http.Request) {
	phrase := r.URL.Query().Get("q")
	if strings.TrimSpace(phrase) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing search query"})
		return
	}

	ranked, err := h.svc.SearchPhrase(r.Context(), phrase)
	if err != nil {
		h.internalError(w, "search phrase", err)
		return
	}
	if len(ranked) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No products found"})
		return
	}

	results := make([]RankedProductDTO, 0, len(ranked))
	for _, p := range ranked {
		results = append(results, RankedProductDTO{ProductDTO: toProductDTO(p.Product), Relevance: p.Relevance})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !h.decode(w, r, &req) {
		return
	}

	rec, err := h.svc.Recommend(r.Context(), search.Criteria{
		Brand:       firstNonEmpty(req.PreferredBrand, req.Brand),
		PriceRange:  req.PriceRange,
		ProductType: req.ProductType,
		Features:    req.Features,
	})
	if err != nil {
		h.internalError(w, "get recommendations", err)
		return
	}
	if len(rec.Products) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No recommendations available"})
		return
	}

	out := make([]RecommendationDTO, 0, len(rec.Products))
	for _, p := range rec.Products {
		out = append(out, RecommendationDTO{
			Name:     p.Name,
			Brand:    p.Brand,
			Price:    p.Price.InexactFloat64(),
			Rating:   p.Rating,
			Features: p.Tags,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": out})
}

func (h *Handler) handleTrackOrder(w http.ResponseWriter, r *http.Request) {
	var req TrackOrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(string(req.OrderID)) == "" || strings.TrimSpace(req.UserEmail) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing order ID or email"})
		return
	}

	order, err := h.svc.TrackOrder(r.Context(), string(req.OrderID), req.UserEmail)
	if errors.Is(err, entity.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
		return
	}
	if err != nil {
		h.internalError(w, "track order", err)
		return
	}

	writeJSON(w, http.StatusOK, TrackOrderResponse{
		OrderID:         order.ID,
		Status:          order.Status,
		Amount:          order.Amount.InexactFloat64(),
		CreatedTime:     formatTime(order.CreatedTime),
		ShippingAddress: order.ShippingAddress,
	})
}

func (h *Handler) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orderID, email := strings.TrimSpace(q.Get("order_id")), strings.TrimSpace(q.Get("email"))
	if orderID == "" || email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "order_id and email are required"})
		return
	}
	if h.cfg.DecodeATSymbEmail {
		email = strings.ReplaceAll(email, "ATSYMB", "@")
	}

	order, err := h.svc.TrackOrder(r.Context(), orderID, email)
	if errors.Is(err, entity.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Order not found"})
		return
	}
	if err != nil {
		h.internalError(w, "order status", err)
		return
	}

	writeJSON(w, http.StatusOK, OrderStatusResponse{
		OrderID:         order.ID,
		UserID:          order.UserID,
		ShippingAddress: order.ShippingAddress,
		OrderAmount:     order.Amount.InexactFloat64(),
		Status:          order.Status,
		CreatedTime:     formatTime(order.CreatedTime),
	})
}

func (h *Handler) handleLodgeComplaint(w http.ResponseWriter, r *http.Request) {
	var req ComplaintRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := h.svc.LodgeComplaint(r.Context(), service.LodgeComplaintInput{
		OrderID:     string(req.OrderID),
		UserEmail:   req.UserEmail,
		Topic:       req.Topic,
		Description: req.Description,
	})
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := "Missing required fields"
		if verr.Reason != "required" {
			msg = "Invalid " + verr.Field
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
	case errors.Is(err, entity.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
	case err != nil:
		h.internalError(w, "lodge complaint", err)
	default:
		writeJSON(w, http.StatusCreated, ComplaintResponse{
			ComplaintID: id,
			Message:     "Complaint registered successfully",
		})
	}
}

func (h *Handler) handleEscalate(w http.ResponseWriter, r *http.Request) {
	var req EscalateRequest
	if !h.decode(w, r, &req) {
		return
	}

	contact := h.svc.Escalate(r.Context(), entity.EscalationContext{
		UserEmail:           req.UserEmail,
		OrderID:             req.OrderID,
		ConversationHistory: req.ConversationHistory,
	})
	writeJSON(w, http.StatusOK, contact)
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req action.WebhookRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.actions.Run(r.Context(), req)
	var unknown *action.UnknownActionError
	if errors.As(err, &unknown) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":       unknown.Error(),
			"action_name": unknown.Name,
		})
		return
	}
	if err != nil {
		h.internalError(w, "webhook", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "service": h.cfg.ServiceName})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": h.cfg.ServiceName})
}

// decode reads a JSON body; an empty body decodes as {}. It writes the 400
// itself and reports false on malformed input.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	h.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("invalid request body")
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	return false
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.logger.Error().Err(err).Str("operation", op).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
