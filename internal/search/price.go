package search

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriceKind is the shape of a parsed price range.
type PriceKind int

const (
	PriceUnder PriceKind = iota + 1
	PriceBetween
	PriceOver
)

var (
	defaultUnder = decimal.NewFromInt(100)
	defaultOver  = decimal.NewFromInt(400)
)

// PriceRange is a parsed price constraint. Under and over are exclusive,
// between is inclusive on both ends.
type PriceRange struct {
	Kind PriceKind
	Min  decimal.Decimal
	Max  decimal.Decimal
}

// Contains reports whether price satisfies the range.
func (r PriceRange) Contains(price decimal.Decimal) bool {
	switch r.Kind {
	case PriceUnder:
		return price.LessThan(r.Max)
	case PriceBetween:
		return price.GreaterThanOrEqual(r.Min) && price.LessThanOrEqual(r.Max)
	case PriceOver:
		return price.GreaterThan(r.Min)
	}
	return true
}

// ParsePriceRange understands "under $X", "$MIN-$MAX" and "over $X", checked
// in that order. Under defaults to 100 and over to 400 when no "$" is given.
// Any other text, or a bound that is not a number, reports ok == false and
// must not produce a filter.
func ParsePriceRange(s string) (PriceRange, bool) {
	if s == "" {
		return PriceRange{}, false
	}
	lower := strings.ToLower(s)

	switch {
	case strings.Contains(lower, "under"):
		limit, ok := dollarAmount(s, defaultUnder)
		if !ok {
			return PriceRange{}, false
		}
		return PriceRange{Kind: PriceUnder, Max: limit}, true

	case strings.Contains(lower, "-"):
		parts := strings.Split(strings.ReplaceAll(s, "$", ""), "-")
		if len(parts) != 2 {
			return PriceRange{}, false
		}
		lo, err := decimal.NewFromString(strings.TrimSpace(parts[0]))
		if err != nil {
			return PriceRange{}, false
		}
		hi, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			return PriceRange{}, false
		}
		return PriceRange{Kind: PriceBetween, Min: lo, Max: hi}, true

	case strings.Contains(lower, "over"):
		limit, ok := dollarAmount(s, defaultOver)
		if !ok {
			return PriceRange{}, false
		}
		return PriceRange{Kind: PriceOver, Min: limit}, true
	}
	return PriceRange{}, false
}

// dollarAmount reads the number between the first and second "$".
func dollarAmount(s string, fallback decimal.Decimal) (decimal.Decimal, bool) {
	if !strings.Contains(s, "$") {
		return fallback, true
	}
	v, err := decimal.NewFromString(strings.TrimSpace(strings.Split(s, "$")[1]))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return v, true
}
