package search

import (
	"strings"
)

// ResultLimit caps every product query.
const ResultLimit = 5

// Criteria are the optional fields of a product search. Empty strings and
// "any" (for brand, product type and features) mean no constraint.
type Criteria struct {
	Query       string `json:"query,omitempty"`
	Brand       string `json:"brand,omitempty"`
	PriceRange  string `json:"price_range,omitempty"`
	ProductType string `json:"product_type,omitempty"`
	Features    string `json:"features,omitempty"`
}

// WithoutQuery drops the free-text term, as recommendations do.
func (c Criteria) WithoutQuery() Criteria {
	c.Query = ""
	return c
}

// ClauseKind names which criterion produced a clause.
type ClauseKind string

const (
	ClauseText    ClauseKind = "text"
	ClauseBrand   ClauseKind = "brand"
	ClausePrice   ClauseKind = "price"
	ClauseType    ClauseKind = "product_type"
	ClauseFeature ClauseKind = "feature"
)

// Clause is one AND-ed condition with '?' markers and the matching args.
type Clause struct {
	Kind ClauseKind
	SQL  string
	Args []any
}

// Filter is the structured form of a product search.
type Filter struct {
	Clauses []Clause
	OrderBy string
	Limit   int
}

// Kinds lists the clause kinds in order, mostly for logging.
func (f Filter) Kinds() []string {
	kinds := make([]string, 0, len(f.Clauses))
	for _, c := range f.Clauses {
		kinds = append(kinds, string(c.Kind))
	}
	return kinds
}

func isAny(s string) bool {
	return s == "" || strings.ToLower(s) == "any"
}

func contains(s string) string {
	return "%" + s + "%"
}

// BuildFilter turns criteria into clauses ordered by descending rating.
func BuildFilter(c Criteria) Filter {
	f := Filter{OrderBy: "rating DESC", Limit: ResultLimit}

	if c.Query != "" {
		p := contains(c.Query)
		f.Clauses = append(f.Clauses, Clause{
			Kind: ClauseText,
			SQL:  "(name LIKE ? OR brand LIKE ? OR tags LIKE ?)",
			Args: []any{p, p, p},
		})
	}

	if !isAny(c.Brand) {
		f.Clauses = append(f.Clauses, Clause{
			Kind: ClauseBrand,
			SQL:  "LOWER(brand) LIKE ?",
			Args: []any{contains(strings.ToLower(c.Brand))},
		})
	}

	if pr, ok := ParsePriceRange(c.PriceRange); ok {
		f.Clauses = append(f.Clauses, priceClause(pr))
	}

	if !isAny(c.ProductType) {
		f.Clauses = append(f.Clauses, Clause{
			Kind: ClauseType,
			SQL:  "tags LIKE ?",
			Args: []any{contains(strings.ToLower(c.ProductType))},
		})
	}

	if !isAny(c.Features) {
		for _, feature := range strings.Split(c.Features, ",") {
			f.Clauses = append(f.Clauses, Clause{
				Kind: ClauseFeature,
				SQL:  "tags LIKE ?",
				Args: []any{contains(strings.ToLower(strings.TrimSpace(feature)))},
			})
		}
	}

	return f
}

// Bounds are bound as float64 since the price column is REAL/DOUBLE.
func priceClause(pr PriceRange) Clause {
	switch pr.Kind {
	case PriceUnder:
		return Clause{Kind: ClausePrice, SQL: "price < ?", Args: []any{pr.Max.InexactFloat64()}}
	case PriceBetween:
		return Clause{Kind: ClausePrice, SQL: "price BETWEEN ? AND ?", Args: []any{pr.Min.InexactFloat64(), pr.Max.InexactFloat64()}}
	default:
		return Clause{Kind: ClausePrice, SQL: "price > ?", Args: []any{pr.Min.InexactFloat64()}}
	}
}

// Render returns the text following "WHERE 1=1" (conditions, ordering and
// limit) and its positional arguments.
func (f Filter) Render(d Dialect) (string, []any) {
	var (
		b    strings.Builder
		args []any
		n    int
	)
	for _, c := range f.Clauses {
		var sql string
		sql, n = d.rebind(c.SQL, n)
		b.WriteString(" AND ")
		b.WriteString(sql)
		args = append(args, c.Args...)
	}
	if f.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(f.OrderBy)
	}
	if f.Limit > 0 {
		n++
		b.WriteString(" LIMIT ")
		b.WriteString(d.Placeholder(n))
		args = append(args, f.Limit)
	}
	return b.String(), args
}
