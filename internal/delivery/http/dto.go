package http

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/egannguyen/earphones-support/internal/entity"
)

// flexString accepts a JSON string, number or null. Order ids arrive in
// either form.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

// SearchRequest is the product filter payload. Both the chat widget field
// names and the short names are accepted.
type SearchRequest struct {
	SearchQuery    string `json:"search_query"`
	Query          string `json:"query"`
	PreferredBrand string `json:"preferred_brand"`
	Brand          string `json:"brand"`
	PriceRange     string `json:"price_range"`
	ProductType    string `json:"product_type"`
	Features       string `json:"features"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// TrackOrderRequest identifies an order by id and owner email.
type TrackOrderRequest struct {
	OrderID   flexString `json:"order_id"`
	UserEmail string     `json:"user_email"`
}

// ComplaintRequest is a new complaint.
type ComplaintRequest struct {
	OrderID     flexString `json:"order_id"`
	UserEmail   string     `json:"user_email"`
	Topic       string     `json:"topic"`
	Description string     `json:"description"`
}

// EscalateRequest is the conversation context handed to a human agent.
// Any JSON value is accepted for each field and echoed back unchanged.
type EscalateRequest struct {
	UserEmail           json.RawMessage `json:"user_email"`
	OrderID             json.RawMessage `json:"order_id"`
	ConversationHistory json.RawMessage `json:"conversation_history"`
}

// ProductDTO is a product row as served over HTTP.
type ProductDTO struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	Rating   float64 `json:"rating"`
	Features string  `json:"features"`
}

func toProductDTO(p entity.Product) ProductDTO {
	return ProductDTO{
		ID:       p.ID,
		Name:     p.Name,
		Brand:    p.Brand,
		Price:    p.Price.InexactFloat64(),
		Stock:    p.Quantity,
		Rating:   p.Rating,
		Features: p.Tags,
	}
}

// RankedProductDTO adds the relevance score of a phrase search.
type RankedProductDTO struct {
	ProductDTO
	Relevance int `json:"relevance"`
}

// RecommendationDTO is the reduced product view of a recommendation.
type RecommendationDTO struct {
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating"`
	Features string  `json:"features"`
}

// TrackOrderResponse answers POST /track_order.
type TrackOrderResponse struct {
	OrderID         int64   `json:"order_id"`
	Status          string  `json:"status"`
	Amount          float64 `json:"amount"`
	CreatedTime     string  `json:"created_time"`
	ShippingAddress string  `json:"shipping_address"`
}

// OrderStatusResponse answers GET /order_status.
type OrderStatusResponse struct {
	OrderID         int64   `json:"order_id"`
	UserID          int64   `json:"user_id"`
	ShippingAddress string  `json:"shipping_address"`
	OrderAmount     float64 `json:"order_amount"`
	Status          string  `json:"status"`
	CreatedTime     string  `json:"created_time"`
}

// ComplaintResponse answers a successful complaint.
type ComplaintResponse struct {
	ComplaintID int64  `json:"complaint_id"`
	Message     string `json:"message"`
}

// Timestamps are served the way they are stored.
func formatTime(t time.Time) string {
	return t.Format(time.DateTime)
}
