package search

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		kind PriceKind
		min  string
		max  string
	}{
		{"under $400", true, PriceUnder, "0", "400"},
		{"Under $99.50", true, PriceUnder, "0", "99.5"},
		{"under budget", true, PriceUnder, "0", "100"},
		{"$100-$200", true, PriceBetween, "100", "200"},
		{"$100 - $200", true, PriceBetween, "100", "200"},
		{"150-300", true, PriceBetween, "150", "300"},
		{"over $250", true, PriceOver, "250", "0"},
		{"over", true, PriceOver, "400", "0"},
		{"OVER $300", true, PriceOver, "300", "0"},

		{"", false, 0, "0", "0"},
		{"any", false, 0, "0", "0"},
		{"cheap", false, 0, "0", "0"},
		{"$100-$200-$300", false, 0, "0", "0"},
		{"$100-", false, 0, "0", "0"},
		{"under $four hundred", false, 0, "0", "0"},
		{"over $lots", false, 0, "0", "0"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			pr, ok := ParsePriceRange(tc.in)
			require.Equal(t, tc.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tc.kind, pr.Kind)
			assert.True(t, decimal.RequireFromString(tc.min).Equal(pr.Min), "min %s", pr.Min)
			assert.True(t, decimal.RequireFromString(tc.max).Equal(pr.Max), "max %s", pr.Max)
		})
	}
}

func TestParsePriceRange_UnderWinsOverDash(t *testing.T) {
	// "under" is checked first, so the dash never turns this into a range.
	_, ok := ParsePriceRange("under $50-$100")
	assert.False(t, ok)
}

func TestPriceRange_Contains(t *testing.T) {
	d := decimal.RequireFromString

	under, _ := ParsePriceRange("under $400")
	assert.True(t, under.Contains(d("349.99")))
	assert.False(t, under.Contains(d("400")))

	between, _ := ParsePriceRange("$100-$250")
	assert.True(t, between.Contains(d("100")))
	assert.True(t, between.Contains(d("250")))
	assert.False(t, between.Contains(d("250.01")))

	over, _ := ParsePriceRange("over $300")
	assert.True(t, over.Contains(d("349.99")))
	assert.False(t, over.Contains(d("300")))
}
