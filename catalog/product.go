// Package catalog provides the product catalog and the criteria filter/sort
// engine used by the natural-language search tool. The engine is a pure
// function over in-memory records; loading and watching the catalog file are
// the only pieces that touch the filesystem.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// Product is one catalog record. Records are immutable inputs to the engine;
// the engine never mutates or persists them.
type Product struct {
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category"`
	Price    float64 `json:"price" validate:"gte=0"`
	Rating   float64 `json:"rating" validate:"gte=0,lte=5"`
	InStock  bool    `json:"in_stock"`
}

var validate = validator.New()

// Load reads a JSON array of product records from path, preserving file order.
// Every record is validated: name required, price non-negative, rating 0-5.
func Load(path string) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	for i, p := range products {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("invalid product at index %d (%q): %w", i, p.Name, err)
		}
	}

	return products, nil
}

// Stats summarizes a catalog for prompt construction.
type Stats struct {
	Count      int
	Categories []string
	MinPrice   float64
	MaxPrice   float64
	MinRating  float64
	MaxRating  float64
}

// Summarize computes catalog statistics. Categories keep first-seen order.
func Summarize(products []Product) Stats {
	stats := Stats{Count: len(products)}
	if len(products) == 0 {
		return stats
	}

	seen := make(map[string]bool)
	stats.MinPrice = products[0].Price
	stats.MaxPrice = products[0].Price
	stats.MinRating = products[0].Rating
	stats.MaxRating = products[0].Rating

	for _, p := range products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			stats.Categories = append(stats.Categories, p.Category)
		}
		if p.Price < stats.MinPrice {
			stats.MinPrice = p.Price
		}
		if p.Price > stats.MaxPrice {
			stats.MaxPrice = p.Price
		}
		if p.Rating < stats.MinRating {
			stats.MinRating = p.Rating
		}
		if p.Rating > stats.MaxRating {
			stats.MaxRating = p.Rating
		}
	}

	return stats
}
