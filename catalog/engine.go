package catalog

import (
	"sort"
	"strings"
)

// Apply filters, sorts, and truncates products according to the criteria.
// It is a pure function: the input slice is never mutated, record order is
// preserved through filtering, and identical inputs always produce identical
// output. Filter stages are independent, so they run as one pass; only the
// sort is order-sensitive and runs after all filtering.
func Apply(products []Product, c Criteria) []Product {
	minPrice, maxPrice := c.PriceBounds()

	result := make([]Product, 0, len(products))
	for _, p := range products {
		if c.Category != "" && !strings.EqualFold(p.Category, c.Category) {
			continue
		}
		if minPrice != nil && p.Price < *minPrice {
			continue
		}
		if maxPrice != nil && p.Price > *maxPrice {
			continue
		}
		if c.MinRating != nil && p.Rating < *c.MinRating {
			continue
		}
		if c.MaxRating != nil && p.Rating > *c.MaxRating {
			continue
		}
		if c.InStockOnly != nil && p.InStock != *c.InStockOnly {
			continue
		}
		if len(c.Keywords) > 0 && !matchesAnyKeyword(p.Name, c.Keywords) {
			continue
		}
		result = append(result, p)
	}

	sortProducts(result, c.SortBy)

	if c.Limit > 0 && c.Limit < len(result) {
		result = result[:c.Limit]
	}

	return result
}

// matchesAnyKeyword reports whether any keyword is a case-insensitive
// substring of the product name. Substring semantics apply verbatim: an
// empty keyword is contained in every name, so it matches everything.
func matchesAnyKeyword(name string, keywords []string) bool {
	lowerName := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lowerName, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// sortProducts applies a stable sort for the given mode. Ties keep their
// relative input order; an empty or unknown mode leaves the order untouched.
func sortProducts(products []Product, mode SortMode) {
	switch mode {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case SortRatingAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Rating < products[j].Rating })
	case SortRatingDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Rating > products[j].Rating })
	case SortNameAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
		})
	case SortNameDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) > strings.ToLower(products[j].Name)
		})
	}
}
