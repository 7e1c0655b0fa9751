// Package search implements natural-language product search. A user query is
// sent to an extraction-capable model with a single forced tool; the model's
// job is to translate the query into filter criteria, and the filtering
// itself runs locally against the catalog.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/insight/catalog"
	"github.com/c360studio/insight/llm"
	"github.com/c360studio/insight/model"
)

// Searcher turns natural-language queries into catalog results.
type Searcher struct {
	client *llm.Client
	store  *catalog.Store
	calls  *llm.CallStore
	logger *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithCallStore records each filter execution alongside the LLM call that
// produced its arguments.
func WithCallStore(calls *llm.CallStore) Option {
	return func(s *Searcher) {
		s.calls = calls
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// New creates a Searcher over the given catalog store.
func New(client *llm.Client, store *catalog.Store, opts ...Option) *Searcher {
	s := &Searcher{
		client: client,
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the outcome of one search: the criteria the model extracted and
// the products that matched.
type Result struct {
	Query    string            `json:"query"`
	Criteria catalog.Criteria  `json:"criteria"`
	Products []catalog.Product `json:"products"`
	Model    string            `json:"model"`
}

// Search extracts filter criteria from the query via a forced tool call and
// applies them to the current catalog snapshot.
func (s *Searcher) Search(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}

	products := s.store.Products()

	resp, err := s.client.Complete(ctx, llm.Request{
		Capability: string(model.CapabilityExtraction),
		Messages: []llm.Message{
			{Role: "system", Content: SystemPrompt(catalog.Summarize(products))},
			{Role: "user", Content: query},
		},
		Tools:      []llm.ToolDefinition{FilterTool()},
		ToolChoice: ToolName,
	})
	if err != nil {
		return nil, fmt.Errorf("extract criteria: %w", err)
	}

	call := findToolCall(resp.ToolCalls, ToolName)
	if call == nil {
		return nil, fmt.Errorf("model did not call %s (finish reason: %s)", ToolName, resp.FinishReason)
	}

	var criteria catalog.Criteria
	if err := json.Unmarshal([]byte(call.Arguments), &criteria); err != nil {
		return nil, fmt.Errorf("decode filter arguments: %w", err)
	}

	started := time.Now()
	matches := catalog.Apply(products, criteria)

	s.recordToolCall(ctx, resp.RequestID, call.Arguments, len(matches), time.Since(started))

	s.logger.Debug("Search complete",
		"query", query,
		"model", resp.Model,
		"catalog_size", len(products),
		"matches", len(matches))

	return &Result{
		Query:    query,
		Criteria: criteria,
		Products: matches,
		Model:    resp.Model,
	}, nil
}

// SystemPrompt builds the extraction instructions from live catalog stats so
// the model knows which categories and ranges actually exist.
func SystemPrompt(stats catalog.Stats) string {
	var b strings.Builder

	b.WriteString("You are a product search assistant. Convert the user's natural-language request into filter arguments by calling the ")
	b.WriteString(ToolName)
	b.WriteString(" function. Always call the function, even when the request has no constraints.\n\n")

	fmt.Fprintf(&b, "The catalog contains %d products.\n", stats.Count)
	if len(stats.Categories) > 0 {
		fmt.Fprintf(&b, "Available categories: %s.\n", strings.Join(stats.Categories, ", "))
	}
	if stats.Count > 0 {
		fmt.Fprintf(&b, "Prices range from $%.2f to $%.2f. Ratings range from %.1f to %.1f.\n",
			stats.MinPrice, stats.MaxPrice, stats.MinRating, stats.MaxRating)
	}

	b.WriteString(`
Guidelines:
- Match category names to the available categories exactly.
- "under $X" means max_price, "over $X" means min_price, "between $X and $Y" means price_range.
- "great/good rating" means min_rating 4 or higher; "poor/bad rating" means max_rating below 4.
- Product types and features ("laptop", "bluetooth", "wireless") go in keywords, not category.
- Only set in_stock_only when the user mentions availability; true for in-stock, false for out-of-stock.
- "cheapest" means sort_by price_asc, "best rated" means sort_by rating_desc.
- "top N" or "first N" means limit N combined with the appropriate sort.
- Leave fields out entirely when the user did not constrain them.`)

	return b.String()
}

// findToolCall returns the first call to the named tool, or nil.
func findToolCall(calls []llm.ToolCall, name string) *llm.ToolCall {
	for i := range calls {
		if calls[i].Name == name {
			return &calls[i]
		}
	}
	return nil
}

// recordToolCall persists the local filter execution. Failures are logged and
// never affect the search result.
func (s *Searcher) recordToolCall(ctx context.Context, requestID, arguments string, resultCount int, elapsed time.Duration) {
	if s.calls == nil {
		return
	}

	err := s.calls.StoreTool(ctx, &llm.ToolRecord{
		RequestID:   requestID,
		Tool:        ToolName,
		Arguments:   arguments,
		ResultCount: resultCount,
		DurationMs:  elapsed.Milliseconds(),
		ExecutedAt:  time.Now(),
	})
	if err != nil {
		s.logger.Warn("Failed to record filter execution",
			"request_id", requestID,
			"error", err)
	}
}
