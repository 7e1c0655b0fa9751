package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/c360studio/insight/catalog"
)

// FormatText renders a search result for the console: the criteria the model
// extracted, then a numbered product list.
func FormatText(result *Result) string {
	var b strings.Builder

	if summary := describeCriteria(result.Criteria); summary != "" {
		fmt.Fprintf(&b, "Filters: %s\n\n", summary)
	}

	if len(result.Products) == 0 {
		b.WriteString("No products matched your query.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Found %d product(s):\n", len(result.Products))
	for i, p := range result.Products {
		stock := "In Stock"
		if !p.InStock {
			stock = "Out of Stock"
		}
		fmt.Fprintf(&b, "%d. %s - $%.2f, Rating: %.1f, %s\n",
			i+1, p.Name, p.Price, p.Rating, stock)
	}

	return b.String()
}

// FormatJSON renders a search result as indented JSON.
func FormatJSON(result *Result) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(data), nil
}

// describeCriteria summarizes the non-empty criteria fields in one line.
func describeCriteria(c catalog.Criteria) string {
	var parts []string

	if c.Category != "" {
		parts = append(parts, fmt.Sprintf("category=%s", c.Category))
	}

	min, max := c.PriceBounds()
	if min != nil {
		parts = append(parts, fmt.Sprintf("min price=$%.2f", *min))
	}
	if max != nil {
		parts = append(parts, fmt.Sprintf("max price=$%.2f", *max))
	}
	if c.MinRating != nil {
		parts = append(parts, fmt.Sprintf("min rating=%.1f", *c.MinRating))
	}
	if c.MaxRating != nil {
		parts = append(parts, fmt.Sprintf("max rating=%.1f", *c.MaxRating))
	}
	if c.InStockOnly != nil {
		if *c.InStockOnly {
			parts = append(parts, "in stock only")
		} else {
			parts = append(parts, "out of stock only")
		}
	}
	if len(c.Keywords) > 0 {
		parts = append(parts, fmt.Sprintf("keywords=[%s]", strings.Join(c.Keywords, ", ")))
	}
	if c.SortBy != "" {
		parts = append(parts, fmt.Sprintf("sort=%s", c.SortBy))
	}
	if c.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit=%d", c.Limit))
	}

	return strings.Join(parts, ", ")
}
