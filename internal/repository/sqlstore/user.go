package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/repository"
)

type userRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	err := r.db.QueryRowContext(ctx,
		r.db.Rebind("SELECT id, name, email, address FROM users WHERE email = ?"),
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}
