package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/search"
)

// SampleProducts is the catalogue the store ships with.
var SampleProducts = []entity.Product{
	{Name: "Sony WH-1000XM4", Brand: "Sony", Price: decimal.RequireFromString("349.99"), Quantity: 50, Rating: 4.8, Tags: "wireless,noise-cancelling,over-ear,premium"},
	{Name: "Apple AirPods Pro", Brand: "Apple", Price: decimal.RequireFromString("249.99"), Quantity: 75, Rating: 4.7, Tags: "wireless,noise-cancelling,in-ear,true-wireless"},
	{Name: "Bose QuietComfort 35 II", Brand: "Bose", Price: decimal.RequireFromString("299.99"), Quantity: 30, Rating: 4.6, Tags: "wireless,noise-cancelling,over-ear,premium"},
	{Name: "Sennheiser HD 650", Brand: "Sennheiser", Price: decimal.RequireFromString("399.99"), Quantity: 20, Rating: 4.9, Tags: "wired,over-ear,audiophile,premium"},
	{Name: "JBL Tune 500BT", Brand: "JBL", Price: decimal.RequireFromString("49.99"), Quantity: 100, Rating: 4.2, Tags: "wireless,on-ear,budget,portable"},
	{Name: "Audio-Technica ATH-M50x", Brand: "Audio-Technica", Price: decimal.RequireFromString("149.99"), Quantity: 40, Rating: 4.5, Tags: "wired,over-ear,studio,professional"},
	{Name: "Samsung Galaxy Buds Pro", Brand: "Samsung", Price: decimal.RequireFromString("199.99"), Quantity: 60, Rating: 4.4, Tags: "wireless,noise-cancelling,in-ear,true-wireless"},
	{Name: "Beats Studio3 Wireless", Brand: "Beats", Price: decimal.RequireFromString("349.99"), Quantity: 35, Rating: 4.3, Tags: "wireless,noise-cancelling,over-ear,premium"},
	{Name: "Anker Soundcore Life Q30", Brand: "Anker", Price: decimal.RequireFromString("79.99"), Quantity: 80, Rating: 4.1, Tags: "wireless,noise-cancelling,over-ear,budget"},
	{Name: "Jabra Elite 85h", Brand: "Jabra", Price: decimal.RequireFromString("249.99"), Quantity: 25, Rating: 4.4, Tags: "wireless,noise-cancelling,over-ear,premium"},
}

// SampleUsers are the seeded customers, ids 1 through 5.
var SampleUsers = []entity.User{
	{Name: "John Doe", Email: "john.doe@email.com", Address: "123 Main St, New York, NY 10001"},
	{Name: "Jane Smith", Email: "jane.smith@email.com", Address: "456 Oak Ave, Los Angeles, CA 90210"},
	{Name: "Mike Johnson", Email: "mike.johnson@email.com", Address: "789 Pine Rd, Chicago, IL 60601"},
	{Name: "Sarah Wilson", Email: "sarah.wilson@email.com", Address: "321 Elm St, Houston, TX 77001"},
	{Name: "David Brown", Email: "david.brown@email.com", Address: "654 Maple Dr, Phoenix, AZ 85001"},
}

func seedTime(s string) time.Time {
	t, err := time.Parse(time.DateTime, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SampleOrders use the owner's address as shipping address.
var SampleOrders = []entity.Order{
	{ID: 111111, UserID: 1, ShippingAddress: SampleUsers[0].Address, Amount: decimal.RequireFromString("349.99"), Status: entity.OrderStatusDelivered, CreatedTime: seedTime("2024-06-20 10:30:00")},
	{ID: 211111, UserID: 2, ShippingAddress: SampleUsers[1].Address, Amount: decimal.RequireFromString("249.99"), Status: entity.OrderStatusShipped, CreatedTime: seedTime("2024-06-22 14:45:00")},
	{ID: 311111, UserID: 3, ShippingAddress: SampleUsers[2].Address, Amount: decimal.RequireFromString("399.99"), Status: entity.OrderStatusProcessing, CreatedTime: seedTime("2024-06-24 09:15:00")},
	{ID: 411111, UserID: 4, ShippingAddress: SampleUsers[3].Address, Amount: decimal.RequireFromString("49.99"), Status: entity.OrderStatusDelivered, CreatedTime: seedTime("2024-06-18 16:20:00")},
	{ID: 511111, UserID: 5, ShippingAddress: SampleUsers[4].Address, Amount: decimal.RequireFromString("149.99"), Status: entity.OrderStatusShipped, CreatedTime: seedTime("2024-06-23 11:00:00")},
}

var sampleOrderItems = []entity.OrderItem{
	{OrderID: 111111, ProductID: 1, Quantity: 1, Price: decimal.RequireFromString("349.99")},
	{OrderID: 211111, ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("249.99")},
	{OrderID: 311111, ProductID: 4, Quantity: 1, Price: decimal.RequireFromString("399.99")},
	{OrderID: 411111, ProductID: 5, Quantity: 1, Price: decimal.RequireFromString("49.99")},
	{OrderID: 511111, ProductID: 6, Quantity: 1, Price: decimal.RequireFromString("149.99")},
}

var sampleComplaints = []entity.Complaint{
	{OrderID: 111111, UserID: 1, Status: entity.ComplaintStatusOpen, Topic: "Product Quality", Description: "The headphones have crackling sound in the left ear.", CreatedAt: seedTime("2024-06-21 10:00:00")},
	{OrderID: 211111, UserID: 2, Status: "resolved", Topic: "Shipping Delay", Description: "Order was delayed by 3 days without notification.", CreatedAt: seedTime("2024-06-23 15:30:00")},
}

// Seed inserts the sample data unless the catalogue already has rows.
// It reports whether anything was written.
func (db *DB) Seed(ctx context.Context) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return false, nil // already seeded
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, p := range SampleProducts {
		_, err := tx.ExecContext(ctx,
			db.Rebind("INSERT INTO products (id, name, brand, price, quantity, rating, tags) VALUES (?, ?, ?, ?, ?, ?, ?)"),
			i+1, p.Name, p.Brand, p.Price.InexactFloat64(), p.Quantity, p.Rating, p.Tags,
		)
		if err != nil {
			return false, fmt.Errorf("failed to seed product %s: %w", p.Name, err)
		}
	}

	for i, u := range SampleUsers {
		_, err := tx.ExecContext(ctx,
			db.Rebind("INSERT INTO users (id, name, email, address) VALUES (?, ?, ?, ?)"),
			i+1, u.Name, u.Email, u.Address,
		)
		if err != nil {
			return false, fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
	}

	for _, o := range SampleOrders {
		_, err := tx.ExecContext(ctx,
			db.Rebind("INSERT INTO orders (id, user_id, shipping_address, order_amount, status, created_time) VALUES (?, ?, ?, ?, ?, ?)"),
			o.ID, o.UserID, o.ShippingAddress, o.Amount.InexactFloat64(), o.Status, o.CreatedTime,
		)
		if err != nil {
			return false, fmt.Errorf("failed to seed order %d: %w", o.ID, err)
		}
	}

	for _, item := range sampleOrderItems {
		_, err := tx.ExecContext(ctx,
			db.Rebind("INSERT INTO order_items (order_id, product_id, quantity, price) VALUES (?, ?, ?, ?)"),
			item.OrderID, item.ProductID, item.Quantity, item.Price.InexactFloat64(),
		)
		if err != nil {
			return false, fmt.Errorf("failed to seed items of order %d: %w", item.OrderID, err)
		}
	}

	for _, c := range sampleComplaints {
		_, err := tx.ExecContext(ctx,
			db.Rebind("INSERT INTO complaints (order_id, user_id, status, topic, description, created_at) VALUES (?, ?, ?, ?, ?, ?)"),
			c.OrderID, c.UserID, c.Status, c.Topic, c.Description, c.CreatedAt,
		)
		if err != nil {
			return false, fmt.Errorf("failed to seed complaint for order %d: %w", c.OrderID, err)
		}
	}

	if db.Dialect == search.Postgres {
		// explicit ids leave the SERIAL sequences behind
		for _, table := range []string{"products", "users", "orders"} {
			q := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))", table, table)
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return false, fmt.Errorf("failed to reset %s sequence: %w", table, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit seed: %w", err)
	}
	return true, nil
}
