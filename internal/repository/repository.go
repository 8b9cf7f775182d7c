package repository

import (
	"context"

	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/search"
)

// ProductRepository handles product lookups.
type ProductRepository interface {
	// Search applies the structured filter built from c.
	Search(ctx context.Context, c search.Criteria) ([]entity.Product, error)
	// SearchTerm runs the weighted relevance query for one term.
	SearchTerm(ctx context.Context, term string) ([]entity.RankedProduct, error)
}

// OrderRepository reads orders. Orders are never written by this service.
type OrderRepository interface {
	// FindForCustomer returns entity.ErrNotFound unless the order exists and
	// its owner's email equals email exactly.
	FindForCustomer(ctx context.Context, orderID int64, email string) (*entity.Order, error)
}

// UserRepository reads seeded customers.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// ComplaintRepository handles persistence for complaints.
type ComplaintRepository interface {
	// Create opens a complaint for the user owning email and returns its id.
	// Unknown emails yield entity.ErrNotFound and write nothing.
	Create(ctx context.Context, orderID int64, email, topic, description string) (int64, error)
	FindByID(ctx context.Context, id int64) (*entity.Complaint, error)
}
