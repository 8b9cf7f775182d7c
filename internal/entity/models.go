package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an earphone model in the catalogue.
type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Brand    string          `json:"brand"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"stock"`
	Rating   float64         `json:"rating"`
	Tags     string          `json:"features"` // comma separated keyword blob
}

// SameRow reports whether every persisted column of p equals the one in o.
func (p Product) SameRow(o Product) bool {
	return p.ID == o.ID &&
		p.Name == o.Name &&
		p.Brand == o.Brand &&
		p.Price.Equal(o.Price) &&
		p.Quantity == o.Quantity &&
		p.Rating == o.Rating &&
		p.Tags == o.Tags
}

// RankedProduct is a product row returned by a per-term relevance query.
type RankedProduct struct {
	Product
	Relevance int `json:"relevance"`
}

// User is a store customer. Users only come from seed data.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Order statuses. The column is free text and is not enforced.
const (
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order represents a customer order joined with its owner.
type Order struct {
	ID              int64           `json:"order_id"`
	UserID          int64           `json:"user_id"`
	ShippingAddress string          `json:"shipping_address"`
	Amount          decimal.Decimal `json:"order_amount"`
	Status          string          `json:"status"`
	CreatedTime     time.Time       `json:"created_time"`
	CustomerName    string          `json:"-"`
	CustomerEmail   string          `json:"-"`
}

// OrderItem is a line item within an order.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// ComplaintStatusOpen is the status every new complaint starts with.
const ComplaintStatusOpen = "open"

// Complaint is a customer complaint about an order.
type Complaint struct {
	ID          int64     `json:"complaint_id"`
	OrderID     int64     `json:"order_id"`
	UserID      int64     `json:"user_id"`
	Status      string    `json:"status"`
	Topic       string    `json:"topic"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Support desk contact details handed out on escalation.
const (
	SupportPhone   = "1-800-EARPHONES"
	SupportEmail   = "support@earphonesstore.com"
	EscalationNote = "You've been escalated to a human agent"
)

// EscalationContext is whatever the conversation knew when the customer
// asked for a human. Values are kept exactly as received and echoed back.
type EscalationContext struct {
	UserEmail           json.RawMessage `json:"user_email"`
	OrderID             json.RawMessage `json:"order_id"`
	ConversationHistory json.RawMessage `json:"conversation_history"`
}

// NewEscalationContext builds a context from known slot values. Empty
// email or order id are sent as null.
func NewEscalationContext(email, orderID string, history []string) (EscalationContext, error) {
	ec := EscalationContext{}
	var err error
	if email != "" {
		if ec.UserEmail, err = json.Marshal(email); err != nil {
			return ec, fmt.Errorf("encode user_email: %w", err)
		}
	}
	if orderID != "" {
		if ec.OrderID, err = json.Marshal(orderID); err != nil {
			return ec, fmt.Errorf("encode order_id: %w", err)
		}
	}
	if history == nil {
		history = []string{}
	}
	if ec.ConversationHistory, err = json.Marshal(history); err != nil {
		return ec, fmt.Errorf("encode conversation_history: %w", err)
	}
	return ec, nil
}

// Email is user_email as text, or "" when it is absent or not a string.
func (c EscalationContext) Email() string {
	return rawText(c.UserEmail)
}

// Order is order_id as text. Numbers keep their JSON spelling.
func (c EscalationContext) Order() string {
	return rawText(c.OrderID)
}

// Turns counts conversation_history entries when it is a JSON array.
func (c EscalationContext) Turns() int {
	var turns []json.RawMessage
	if json.Unmarshal(c.ConversationHistory, &turns) != nil {
		return 0
	}
	return len(turns)
}

func rawText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	return ""
}

// SupportContact is the fixed escalation response.
type SupportContact struct {
	Message string            `json:"message"`
	Phone   string            `json:"support_contact"`
	Email   string            `json:"email"`
	Context EscalationContext `json:"context"`
}
