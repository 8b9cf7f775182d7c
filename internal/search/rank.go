package search

import (
	"fmt"
	"strings"

	"github.com/egannguyen/earphones-support/internal/entity"
)

// Relevance weights of a per-term query. A row matched on name and tags
// scores 6.
const (
	NameWeight  = 5
	BrandWeight = 3
	TagWeight   = 1
)

// Terms splits a search phrase on whitespace.
func Terms(phrase string) []string {
	return strings.Fields(phrase)
}

// RankedTermQuery returns the per-term relevance statement. columns is the
// product column list; the term pattern is bound six times.
func RankedTermQuery(d Dialect, columns string) string {
	q := fmt.Sprintf(`SELECT %s,
			(CASE WHEN name LIKE ? THEN %d ELSE 0 END) +
			(CASE WHEN brand LIKE ? THEN %d ELSE 0 END) +
			(CASE WHEN tags LIKE ? THEN %d ELSE 0 END) AS relevance
		FROM products
		WHERE name LIKE ? OR brand LIKE ? OR tags LIKE ?
		ORDER BY relevance DESC, name
		LIMIT ?`, columns, NameWeight, BrandWeight, TagWeight)
	q, _ = d.rebind(q, 0)
	return q
}

// RankedTermArgs binds term into RankedTermQuery.
func RankedTermArgs(term string) []any {
	p := contains(term)
	return []any{p, p, p, p, p, p, ResultLimit}
}

// Merge concatenates per-term batches, skipping any row already accumulated.
// Order is kept as fetched; nothing is re-sorted.
func Merge(batches ...[]entity.RankedProduct) []entity.RankedProduct {
	var merged []entity.RankedProduct
	for _, batch := range batches {
	next:
		for _, item := range batch {
			for _, seen := range merged {
				if seen.SameRow(item.Product) {
					continue next
				}
			}
			merged = append(merged, item)
		}
	}
	return merged
}

// FirstN returns at most n leading items.
func FirstN(items []entity.RankedProduct, n int) []entity.RankedProduct {
	if len(items) > n {
		return items[:n]
	}
	return items
}
