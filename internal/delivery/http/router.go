package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts every route. metrics may be nil.
func NewRouter(h *Handler, metrics http.Handler, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(h.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(EnableCORS)
	if requestTimeout > 0 {
		r.Use(chimiddleware.Timeout(requestTimeout))
	}

	r.Get("/health", h.handleHealth)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Post("/search_products", h.handleSearchProducts)
	r.Get("/products/search", h.handleSearchPhrase)
	r.Post("/get_recommendations", h.handleRecommendations)
	r.Post("/track_order", h.handleTrackOrder)
	r.Get("/order_status", h.handleOrderStatus)
	r.Post("/lodge_complaint", h.handleLodgeComplaint)
	r.Post("/create_complaint", h.handleLodgeComplaint)
	r.Post("/escalate", h.handleEscalate)
	r.Post("/webhook", h.handleWebhook)

	return r
}
