package search

import (
	"encoding/json"

	"github.com/c360studio/insight/llm"
)

// ToolName is the function the model is forced to call for every query.
const ToolName = "filter_products"

// filterSchema is the JSON Schema for the filter tool arguments. The
// descriptions steer the model toward the right field for each phrasing
// ("between $50 and $200" → price_range, "top 5" → limit, and so on).
const filterSchema = `{
  "type": "object",
  "properties": {
    "category": {
      "type": "string",
      "description": "Product category (e.g., Electronics, Fitness, Kitchen, Books, Clothing)"
    },
    "max_price": {
      "type": "number",
      "description": "Maximum price filter"
    },
    "min_price": {
      "type": "number",
      "description": "Minimum price filter"
    },
    "price_range": {
      "type": "object",
      "properties": {
        "min": {"type": "number", "description": "Minimum price"},
        "max": {"type": "number", "description": "Maximum price"}
      },
      "description": "Price range filter. Use this for queries like 'between $50 and $200'. Alternative to using separate min_price and max_price."
    },
    "min_rating": {
      "type": "number",
      "description": "Minimum rating filter (0-5)"
    },
    "max_rating": {
      "type": "number",
      "description": "Maximum rating filter (0-5). Use this for queries like 'rating lower than X' or 'rating below X'"
    },
    "in_stock_only": {
      "type": "boolean",
      "description": "Filter by stock status. Set to true for 'in stock' items, false for 'out of stock' items, or null/undefined to include both"
    },
    "keywords": {
      "type": "array",
      "items": {"type": "string"},
      "description": "Keywords to search for in product names (case-insensitive, partial matching). Use this for searches like 'laptop', 'bluetooth', 'fitness tracker', etc."
    },
    "sort_by": {
      "type": "string",
      "enum": ["price_asc", "price_desc", "rating_asc", "rating_desc", "name_asc", "name_desc"],
      "description": "Sort products by: 'price_asc' (cheapest first), 'price_desc' (most expensive first), 'rating_asc' (worst rating first), 'rating_desc' (best rating first), 'name_asc' (A-Z), 'name_desc' (Z-A)"
    },
    "limit": {
      "type": "integer",
      "description": "Maximum number of products to return. Use this when user asks for 'top 5', 'first 10', etc. Default is no limit."
    }
  },
  "required": []
}`

// FilterTool returns the tool definition for product filtering.
func FilterTool() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        ToolName,
		Description: "Filter and sort products based on user criteria like category, price range, rating, stock status, specific features, and sorting preferences",
		Parameters:  json.RawMessage(filterSchema),
	}
}
