package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/repository"
)

type complaintRepository struct {
	db    *DB
	users repository.UserRepository
	now   func() time.Time
}

// NewComplaintRepository creates a new ComplaintRepository.
func NewComplaintRepository(db *DB) repository.ComplaintRepository {
	return &complaintRepository{db: db, users: NewUserRepository(db), now: time.Now}
}

// Create resolves the user first; the order id is stored as given.
func (r *complaintRepository) Create(ctx context.Context, orderID int64, email, topic, description string) (int64, error) {
	user, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx,
		r.db.Rebind(`INSERT INTO complaints (order_id, user_id, status, topic, description, created_at)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		orderID, user.ID, entity.ComplaintStatusOpen, topic, description, r.now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert complaint: %w", err)
	}
	return id, nil
}

func (r *complaintRepository) FindByID(ctx context.Context, id int64) (*entity.Complaint, error) {
	var c entity.Complaint
	err := r.db.QueryRowContext(ctx,
		r.db.Rebind("SELECT id, order_id, user_id, status, topic, description, created_at FROM complaints WHERE id = ?"),
		id,
	).Scan(&c.ID, &c.OrderID, &c.UserID, &c.Status, &c.Topic, &c.Description, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query complaint %d: %w", id, err)
	}
	return &c, nil
}
