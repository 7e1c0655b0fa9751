package catalog

import (
	"encoding/json"
)

// SortMode enumerates the six supported sort orders.
type SortMode string

const (
	SortPriceAsc   SortMode = "price_asc"
	SortPriceDesc  SortMode = "price_desc"
	SortRatingAsc  SortMode = "rating_asc"
	SortRatingDesc SortMode = "rating_desc"
	SortNameAsc    SortMode = "name_asc"
	SortNameDesc   SortMode = "name_desc"
)

// IsValid checks if the sort mode is one of the six enumerated orders.
func (m SortMode) IsValid() bool {
	switch m {
	case SortPriceAsc, SortPriceDesc, SortRatingAsc, SortRatingDesc, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

// Criteria holds the sparse filter/sort/limit parameters consumed by Apply.
// Every field is optional; the zero value applies no constraints at all.
// It is produced by an upstream extraction step (an LLM function call), so
// decoding is deliberately tolerant: see PriceRange.
type Criteria struct {
	// Category matches records whose category equals this, case-insensitively.
	Category string `json:"category,omitempty"`

	// MinPrice and MaxPrice are inclusive bounds; both may be set.
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`

	// PriceRange is an alternate {min, max} form. Its fields, when present,
	// override MinPrice/MaxPrice individually. The raw form is kept because
	// models sometimes send the object JSON-encoded as a string; a malformed
	// value is ignored rather than surfaced as an error.
	PriceRange json.RawMessage `json:"price_range,omitempty"`

	// MinRating and MaxRating are inclusive bounds on rating.
	MinRating *float64 `json:"min_rating,omitempty"`
	MaxRating *float64 `json:"max_rating,omitempty"`

	// InStockOnly is tri-state: true keeps in-stock records, false keeps
	// out-of-stock records, nil applies no stock constraint.
	InStockOnly *bool `json:"in_stock_only,omitempty"`

	// Keywords keeps records whose name contains any keyword,
	// case-insensitively (logical OR, substring match).
	Keywords []string `json:"keywords,omitempty"`

	// SortBy is one of the six enumerated sort modes. Empty preserves input order.
	SortBy SortMode `json:"sort_by,omitempty"`

	// Limit caps the result count when positive. Zero or negative means unlimited.
	Limit int `json:"limit,omitempty"`
}

// priceRange is the decoded form of the price_range field.
type priceRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// parsePriceRange decodes the raw price_range value. It accepts a JSON
// object or a JSON string containing an encoded object. Anything else,
// including unparseable content, reports ok=false and is ignored.
func parsePriceRange(raw json.RawMessage) (pr priceRange, ok bool) {
	if len(raw) == 0 {
		return priceRange{}, false
	}

	if err := json.Unmarshal(raw, &pr); err == nil {
		return pr, true
	}

	// The object may arrive JSON-encoded inside a string.
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return priceRange{}, false
	}
	if err := json.Unmarshal([]byte(encoded), &pr); err != nil {
		return priceRange{}, false
	}
	return pr, true
}

// PriceBounds resolves the effective inclusive price bounds, letting a
// well-formed price_range override min_price/max_price for the fields it
// actually sets. A nil bound is unconstrained.
func (c Criteria) PriceBounds() (min, max *float64) {
	min, max = c.MinPrice, c.MaxPrice

	if pr, ok := parsePriceRange(c.PriceRange); ok {
		if pr.Min != nil {
			min = pr.Min
		}
		if pr.Max != nil {
			max = pr.Max
		}
	}

	return min, max
}
