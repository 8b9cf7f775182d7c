package action

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/service"
)

// rating prints like "4.8/5"; whole ratings keep one decimal.
func rating(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatSearchResults(products []entity.RankedProduct) string {
	var b strings.Builder
	b.WriteString("I found these products:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "\n- %s by %s (Price: $%s, Stock: %d, Rating: %s/5)",
			p.Name, p.Brand, p.Price.StringFixed(2), p.Quantity, rating(p.Rating))
	}
	return b.String()
}

func formatRecommendation(rec *service.Recommendation) string {
	var b strings.Builder
	if len(rec.Products) > 0 {
		b.WriteString("Based on your preferences, here are my top recommendations:\n\n")
		for i, p := range rec.Products {
			fmt.Fprintf(&b, "%d. **%s** by %s\n", i+1, p.Name, p.Brand)
			fmt.Fprintf(&b, "   💰 $%s | ⭐ %s/5 stars\n", p.Price.StringFixed(2), rating(p.Rating))
			fmt.Fprintf(&b, "   🔖 %s\n\n", p.Tags)
		}
		b.WriteString("These products match your criteria perfectly! Would you like more details about any of them?")
		return b.String()
	}

	b.WriteString("I couldn't find products matching all your preferences. Let me suggest some popular alternatives or you can adjust your criteria!")
	if len(rec.Popular) > 0 {
		b.WriteString("\n\nHere are some of our most popular earphones:\n\n")
		for _, p := range rec.Popular {
			fmt.Fprintf(&b, "🎧 **%s** - $%s (⭐ %s/5)\n", p.Name, p.Price.StringFixed(2), rating(p.Rating))
		}
	}
	return b.String()
}

var statusEmoji = map[string]string{
	entity.OrderStatusProcessing: "⏳",
	entity.OrderStatusShipped:    "🚚",
	entity.OrderStatusDelivered:  "✅",
	entity.OrderStatusCancelled:  "❌",
}

var statusNote = map[string]string{
	entity.OrderStatusProcessing: "Your order is being prepared and will ship soon!",
	entity.OrderStatusShipped:    "Your order is on its way! You should receive it in 2-3 business days.",
	entity.OrderStatusDelivered:  "Your order has been delivered! We hope you enjoy your new earphones!",
	entity.OrderStatusCancelled:  "Your order has been cancelled. If you have questions, please contact our support team.",
}

func formatOrder(orderID string, o *entity.Order) string {
	status := strings.ToLower(o.Status)
	emoji, ok := statusEmoji[status]
	if !ok {
		emoji = "📦"
	}

	var b strings.Builder
	b.WriteString("📋 **Order Status Update**\n\n")
	fmt.Fprintf(&b, "🆔 Order ID: %s\n", orderID)
	fmt.Fprintf(&b, "%s Status: **%s**\n", emoji, strings.ToUpper(o.Status))
	fmt.Fprintf(&b, "💰 Amount: $%s\n", o.Amount.StringFixed(2))
	fmt.Fprintf(&b, "📅 Order Date: %s\n", o.CreatedTime.Format(time.DateTime))
	fmt.Fprintf(&b, "🏠 Shipping Address: %s\n\n", o.ShippingAddress)
	b.WriteString(statusNote[status])
	return b.String()
}

func formatOrderNotFound(orderID, email string) string {
	return fmt.Sprintf("I couldn't find an order with ID %s associated with email %s. "+
		"Please check your order ID and email address, or contact our support team for assistance.", orderID, email)
}

func formatComplaint(id int64, in service.LodgeComplaintInput) string {
	var b strings.Builder
	b.WriteString("✅ **Complaint Registered Successfully**\n\n")
	fmt.Fprintf(&b, "🆔 Complaint ID: %d\n", id)
	fmt.Fprintf(&b, "📋 Order ID: %s\n", in.OrderID)
	fmt.Fprintf(&b, "📧 Email: %s\n", in.UserEmail)
	fmt.Fprintf(&b, "🏷️ Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "📝 Description: %s\n\n", in.Description)
	b.WriteString("Your complaint has been registered and our customer service team will review it within 24 hours. ")
	b.WriteString("You will receive an email update once we have a resolution.\n\n")
	b.WriteString("Is there anything else I can help you with today?")
	return b.String()
}

func formatEscalation(c entity.SupportContact) string {
	var b strings.Builder
	b.WriteString("🤝 **Connecting you to a human agent...**\n\n")
	b.WriteString("I'm transferring your conversation to our customer service team. ")
	b.WriteString("A human agent will be with you shortly to provide personalized assistance.\n\n")

	email, orderID := c.Context.Email(), c.Context.Order()
	if email != "" || orderID != "" {
		b.WriteString("**Context being transferred:**\n")
		if email != "" {
			fmt.Fprintf(&b, "📧 Email: %s\n", email)
		}
		if orderID != "" {
			fmt.Fprintf(&b, "🆔 Order ID: %s\n", orderID)
		}
		b.WriteString("\n")
	}

	b.WriteString("⏱️ Average wait time: 2-3 minutes\n")
	fmt.Fprintf(&b, "📞 Alternatively, you can call us at: %s\n", c.Phone)
	fmt.Fprintf(&b, "📧 Or email: %s", c.Email)
	return b.String()
}
