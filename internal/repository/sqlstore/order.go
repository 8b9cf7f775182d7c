package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/repository"
)

type orderRepository struct {
	db *DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) FindForCustomer(ctx context.Context, orderID int64, email string) (*entity.Order, error) {
	query := r.db.Rebind(`
		SELECT o.id, o.user_id, o.shipping_address, o.order_amount, o.status, o.created_time, u.name, u.email
		FROM orders o
		JOIN users u ON o.user_id = u.id
		WHERE o.id = ? AND u.email = ?`)

	var o entity.Order
	err := r.db.QueryRowContext(ctx, query, orderID, email).Scan(
		&o.ID, &o.UserID, &o.ShippingAddress, &o.Amount, &o.Status, &o.CreatedTime, &o.CustomerName, &o.CustomerEmail,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order %d: %w", orderID, err)
	}
	return &o, nil
}
