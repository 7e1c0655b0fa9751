package catalog_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/insight/catalog"
)

func ptr[T any](v T) *T { return &v }

func testProducts() []catalog.Product {
	return []catalog.Product{
		{Name: "Wireless Headphones", Category: "Electronics", Price: 99.99, Rating: 4.5, InStock: true},
		{Name: "Gaming Laptop", Category: "Electronics", Price: 1299.99, Rating: 4.8, InStock: false},
		{Name: "Smart Watch", Category: "Electronics", Price: 199.99, Rating: 4.6, InStock: true},
		{Name: "Bluetooth Speaker", Category: "Electronics", Price: 49.99, Rating: 4.4, InStock: true},
		{Name: "Yoga Mat", Category: "Fitness", Price: 19.99, Rating: 4.3, InStock: true},
		{Name: "Fitness Tracker", Category: "Fitness", Price: 79.99, Rating: 4.2, InStock: true},
		{Name: "Novel - The Great Adventure", Category: "Books", Price: 14.99, Rating: 4.3, InStock: true},
		{Name: "Programming Guide", Category: "Books", Price: 49.99, Rating: 4.7, InStock: true},
		{Name: "Cookbook: Easy Recipes", Category: "Books", Price: 24.99, Rating: 4.5, InStock: false},
		{Name: "Blender", Category: "Kitchen", Price: 89.99, Rating: 4.2, InStock: false},
	}
}

func names(products []catalog.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestApply_EmptyCriteriaReturnsAllInOrder(t *testing.T) {
	products := testProducts()

	result := catalog.Apply(products, catalog.Criteria{})

	assert.Equal(t, names(products), names(result))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	products := testProducts()
	original := names(products)

	catalog.Apply(products, catalog.Criteria{SortBy: catalog.SortPriceDesc, Limit: 2})

	assert.Equal(t, original, names(products))
}

func TestApply_CategoryIsCaseInsensitive(t *testing.T) {
	result := catalog.Apply(testProducts(), catalog.Criteria{Category: "electronics"})

	require.Len(t, result, 4)
	for _, p := range result {
		assert.Equal(t, "Electronics", p.Category)
	}
}

func TestApply_PriceBoundsAreInclusive(t *testing.T) {
	result := catalog.Apply(testProducts(), catalog.Criteria{
		MinPrice: ptr(49.99),
		MaxPrice: ptr(99.99),
	})

	assert.Equal(t, []string{
		"Wireless Headphones",
		"Bluetooth Speaker",
		"Fitness Tracker",
		"Programming Guide",
		"Blender",
	}, names(result))
}

func TestApply_PriceRangeOverridesMinAndMaxPrice(t *testing.T) {
	// price_range fields win over min_price/max_price individually.
	result := catalog.Apply(testProducts(), catalog.Criteria{
		MinPrice:   ptr(10.0),
		PriceRange: json.RawMessage(`{"min": 50}`),
		MaxPrice:   ptr(100.0),
	})

	// Effective bounds: min 50 (from range), max 100 (untouched).
	assert.Equal(t, []string{
		"Wireless Headphones",
		"Fitness Tracker",
		"Blender",
	}, names(result))
}

func TestApply_PriceRangeAsEncodedString(t *testing.T) {
	result := catalog.Apply(testProducts(), catalog.Criteria{
		PriceRange: json.RawMessage(`"{\"min\": 1000}"`),
	})

	assert.Equal(t, []string{"Gaming Laptop"}, names(result))
}

func TestApply_MalformedPriceRangeIsIgnored(t *testing.T) {
	result := catalog.Apply(testProducts(), catalog.Criteria{
		MaxPrice:   ptr(20.0),
		PriceRange: json.RawMessage(`"not json at all"`),
	})

	// Falls back to max_price alone.
	assert.Equal(t, []string{"Yoga Mat", "Novel - The Great Adventure"}, names(result))
}

func TestApply_RatingBoundsAreInclusive(t *testing.T) {
	result := catalog.Apply(testProducts(), catalog.Criteria{MinRating: ptr(4.5)})

	assert.Equal(t, []string{
		"Wireless Headphones",
		"Gaming Laptop",
		"Smart Watch",
		"Programming Guide",
		"Cookbook: Easy Recipes",
	}, names(result))

	result = catalog.Apply(testProducts(), catalog.Criteria{MaxRating: ptr(4.2)})
	assert.Equal(t, []string{"Fitness Tracker", "Blender"}, names(result))
}

func TestApply_StockFilterIsTriState(t *testing.T) {
	products := testProducts()

	inStock := catalog.Apply(products, catalog.Criteria{InStockOnly: ptr(true)})
	assert.Len(t, inStock, 7)
	for _, p := range inStock {
		assert.True(t, p.InStock)
	}

	outOfStock := catalog.Apply(products, catalog.Criteria{InStockOnly: ptr(false)})
	assert.Equal(t, []string{"Gaming Laptop", "Cookbook: Easy Recipes", "Blender"}, names(outOfStock))

	both := catalog.Apply(products, catalog.Criteria{})
	assert.Len(t, both, len(products))
}

func TestApply_KeywordsMatchAnySubstringCaseInsensitive(t *testing.T) {
	result := catalog.Apply(testProducts(), catalog.Criteria{
		Keywords: []string{"Bluetooth", "Tracker"},
	})

	assert.Equal(t, []string{"Bluetooth Speaker", "Fitness Tracker"}, names(result))
}

func TestApply_EmptyKeywordMatchesEveryName(t *testing.T) {
	products := testProducts()

	// "" is a substring of every name, so it behaves as a match-all.
	result := catalog.Apply(products, catalog.Criteria{
		Keywords: []string{""},
	})
	assert.Equal(t, names(products), names(result))

	// Mixed with a real keyword it still matches everything via OR.
	result = catalog.Apply(products, catalog.Criteria{
		Keywords: []string{"", "blender"},
	})
	assert.Equal(t, names(products), names(result))
}

func TestApply_SortModes(t *testing.T) {
	products := []catalog.Product{
		{Name: "banana", Price: 3, Rating: 2},
		{Name: "Apple", Price: 1, Rating: 3},
		{Name: "cherry", Price: 2, Rating: 1},
	}

	tests := []struct {
		mode catalog.SortMode
		want []string
	}{
		{catalog.SortPriceAsc, []string{"Apple", "cherry", "banana"}},
		{catalog.SortPriceDesc, []string{"banana", "cherry", "Apple"}},
		{catalog.SortRatingAsc, []string{"cherry", "banana", "Apple"}},
		{catalog.SortRatingDesc, []string{"Apple", "banana", "cherry"}},
		{catalog.SortNameAsc, []string{"Apple", "banana", "cherry"}},
		{catalog.SortNameDesc, []string{"cherry", "banana", "Apple"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			result := catalog.Apply(products, catalog.Criteria{SortBy: tt.mode})
			assert.Equal(t, tt.want, names(result))
		})
	}
}

func TestApply_SortIsStable(t *testing.T) {
	products := []catalog.Product{
		{Name: "first", Price: 10},
		{Name: "second", Price: 10},
		{Name: "third", Price: 10},
	}

	result := catalog.Apply(products, catalog.Criteria{SortBy: catalog.SortPriceAsc})

	assert.Equal(t, []string{"first", "second", "third"}, names(result))
}

func TestApply_UnknownSortModePreservesOrder(t *testing.T) {
	products := testProducts()

	result := catalog.Apply(products, catalog.Criteria{SortBy: "popularity"})

	assert.Equal(t, names(products), names(result))
}

func TestApply_LimitTruncatesAfterSort(t *testing.T) {
	result := catalog.Apply(testProducts(), catalog.Criteria{
		SortBy: catalog.SortPriceAsc,
		Limit:  3,
	})

	assert.Equal(t, []string{
		"Novel - The Great Adventure",
		"Yoga Mat",
		"Cookbook: Easy Recipes",
	}, names(result))
}

func TestApply_NonPositiveLimitMeansUnlimited(t *testing.T) {
	products := testProducts()

	assert.Len(t, catalog.Apply(products, catalog.Criteria{Limit: 0}), len(products))
	assert.Len(t, catalog.Apply(products, catalog.Criteria{Limit: -5}), len(products))
}

func TestApply_LimitLargerThanResultKeepsAll(t *testing.T) {
	result := catalog.Apply(testProducts(), catalog.Criteria{
		Category: "Books",
		Limit:    100,
	})

	assert.Len(t, result, 3)
}

func TestApply_CombinedFilters(t *testing.T) {
	result := catalog.Apply(testProducts(), catalog.Criteria{
		Category:    "Books",
		InStockOnly: ptr(true),
		SortBy:      catalog.SortRatingDesc,
	})

	assert.Equal(t, []string{
		"Programming Guide",
		"Novel - The Great Adventure",
	}, names(result))
}

func TestApply_MissingPriceAndRatingTreatedAsZero(t *testing.T) {
	products := []catalog.Product{
		{Name: "No Price", Category: "Misc", Rating: 4.0},
		{Name: "Priced", Category: "Misc", Price: 10, Rating: 4.0},
	}

	// A record without a price fails any positive min_price bound.
	result := catalog.Apply(products, catalog.Criteria{MinPrice: ptr(1.0)})
	assert.Equal(t, []string{"Priced"}, names(result))

	// And passes any max_price bound.
	result = catalog.Apply(products, catalog.Criteria{MaxPrice: ptr(5.0)})
	assert.Equal(t, []string{"No Price"}, names(result))
}

func TestApply_EmptyCatalog(t *testing.T) {
	result := catalog.Apply(nil, catalog.Criteria{Category: "Books"})
	assert.Empty(t, result)
}
