package sqlstore

import (
	"context"
	"fmt"

	"github.com/egannguyen/earphones-support/internal/entity"
	"github.com/egannguyen/earphones-support/internal/repository"
	"github.com/egannguyen/earphones-support/internal/search"
)

const productColumns = "id, name, brand, price, quantity, rating, tags"

type productRepository struct {
	db *DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Search(ctx context.Context, c search.Criteria) ([]entity.Product, error) {
	where, args := search.BuildFilter(c).Render(r.db.Dialect)
	query := "SELECT " + productColumns + " FROM products WHERE 1=1" + where

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Price, &p.Quantity, &p.Rating, &p.Tags); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepository) SearchTerm(ctx context.Context, term string) ([]entity.RankedProduct, error) {
	query := search.RankedTermQuery(r.db.Dialect, productColumns)

	rows, err := r.db.QueryContext(ctx, query, search.RankedTermArgs(term)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products for %q: %w", term, err)
	}
	defer rows.Close()

	var ranked []entity.RankedProduct
	for rows.Next() {
		var p entity.RankedProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Price, &p.Quantity, &p.Rating, &p.Tags, &p.Relevance); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		ranked = append(ranked, p)
	}
	return ranked, rows.Err()
}
