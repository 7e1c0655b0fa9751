package llm

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// CallRecord represents a single LLM API call with full context for usage tracking.
type CallRecord struct {
	// RequestID uniquely identifies this LLM call.
	RequestID string `json:"request_id"`

	// Capability is the semantic capability requested (extraction, analysis, etc.).
	Capability string `json:"capability"`

	// Model is the actual model that was used for this call.
	Model string `json:"model"`

	// Provider is the LLM provider (openai, ollama, etc.).
	Provider string `json:"provider"`

	// Messages is the input message history sent to the LLM.
	Messages []Message `json:"messages,omitempty"`

	// Response is the generated content from the LLM.
	Response string `json:"response"`

	// PromptTokens is the number of input/prompt tokens consumed.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of output/completion tokens generated.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the total tokens consumed (prompt + completion).
	TotalTokens int `json:"total_tokens"`

	// FinishReason indicates why generation stopped (stop, length, tool_calls, etc.).
	FinishReason string `json:"finish_reason"`

	// StartedAt is when the LLM call began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the LLM call finished.
	CompletedAt time.Time `json:"completed_at"`

	// DurationMs is the call duration in milliseconds.
	DurationMs int64 `json:"duration_ms"`

	// Error contains any error message if the call failed.
	Error string `json:"error,omitempty"`

	// Retries is the number of retry attempts made.
	Retries int `json:"retries"`

	// FallbacksUsed lists models tried before success (if fallback was needed).
	FallbacksUsed []string `json:"fallbacks_used,omitempty"`
}

// ToolRecord represents a local tool execution correlated with an LLM call.
type ToolRecord struct {
	// RequestID links the execution to the LLM call that produced the arguments.
	RequestID string `json:"request_id"`

	// Tool is the executed tool name.
	Tool string `json:"tool"`

	// Arguments is the raw JSON argument object the model supplied.
	Arguments string `json:"arguments"`

	// ResultCount is the number of items the tool produced.
	ResultCount int `json:"result_count"`

	// DurationMs is the execution duration in milliseconds.
	DurationMs int64 `json:"duration_ms"`

	// ExecutedAt is when the tool ran.
	ExecutedAt time.Time `json:"executed_at"`
}

// storeSchema creates the call and tool tables on first open.
const storeSchema = `
CREATE TABLE IF NOT EXISTS llm_calls (
	request_id        TEXT PRIMARY KEY,
	capability        TEXT NOT NULL,
	model             TEXT,
	provider          TEXT,
	messages          TEXT,
	response          TEXT,
	prompt_tokens     INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens      INTEGER NOT NULL DEFAULT 0,
	finish_reason     TEXT,
	started_at        TEXT NOT NULL,
	completed_at      TEXT NOT NULL,
	duration_ms       INTEGER NOT NULL DEFAULT 0,
	error             TEXT,
	retries           INTEGER NOT NULL DEFAULT 0,
	fallbacks_used    TEXT
);
CREATE INDEX IF NOT EXISTS idx_llm_calls_started_at ON llm_calls(started_at);

CREATE TABLE IF NOT EXISTS tool_calls (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id   TEXT NOT NULL,
	tool         TEXT NOT NULL,
	arguments    TEXT,
	result_count INTEGER NOT NULL DEFAULT 0,
	duration_ms  INTEGER NOT NULL DEFAULT 0,
	executed_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tool_calls_request_id ON tool_calls(request_id);
`

// CallStore persists LLM call and tool execution records in a local SQLite
// database. Store failures never fail the LLM call that triggered them.
type CallStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// CallStoreOption configures a CallStore.
type CallStoreOption func(*CallStore)

// WithStoreLogger sets the logger for the call store.
func WithStoreLogger(logger *slog.Logger) CallStoreOption {
	return func(s *CallStore) {
		s.logger = logger
	}
}

// OpenCallStore opens (creating if needed) the call store database at path.
func OpenCallStore(path string, opts ...CallStoreOption) (*CallStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// Every pooled connection to :memory: would get its own empty database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}

	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &CallStore{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Close releases the underlying database handle.
func (s *CallStore) Close() error {
	return s.db.Close()
}

// Store persists an LLM call record.
func (s *CallStore) Store(ctx context.Context, record *CallRecord) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if record.RequestID == "" {
		return fmt.Errorf("request_id is required")
	}

	messages, err := json.Marshal(record.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	fallbacks, err := json.Marshal(record.FallbacksUsed)
	if err != nil {
		return fmt.Errorf("marshal fallbacks: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO llm_calls (
			request_id, capability, model, provider, messages, response,
			prompt_tokens, completion_tokens, total_tokens, finish_reason,
			started_at, completed_at, duration_ms, error, retries, fallbacks_used
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RequestID, record.Capability, record.Model, record.Provider,
		string(messages), record.Response,
		record.PromptTokens, record.CompletionTokens, record.TotalTokens,
		record.FinishReason,
		record.StartedAt.UTC().Format(time.RFC3339Nano),
		record.CompletedAt.UTC().Format(time.RFC3339Nano),
		record.DurationMs, record.Error, record.Retries, string(fallbacks))
	if err != nil {
		return fmt.Errorf("insert call record: %w", err)
	}

	s.logger.Debug("Recorded LLM call",
		"request_id", record.RequestID,
		"capability", record.Capability,
		"model", record.Model,
		"total_tokens", record.TotalTokens)

	return nil
}

// StoreTool persists a local tool execution record.
func (s *CallStore) StoreTool(ctx context.Context, record *ToolRecord) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if record.Tool == "" {
		return fmt.Errorf("tool name is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_calls (request_id, tool, arguments, result_count, duration_ms, executed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.RequestID, record.Tool, record.Arguments,
		record.ResultCount, record.DurationMs,
		record.ExecutedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert tool record: %w", err)
	}

	return nil
}

// Recent returns the most recent LLM call records, newest first.
func (s *CallStore) Recent(ctx context.Context, limit int) ([]*CallRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, capability, model, provider, response,
		       prompt_tokens, completion_tokens, total_tokens, finish_reason,
		       started_at, completed_at, duration_ms, error, retries, fallbacks_used
		FROM llm_calls
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query call records: %w", err)
	}
	defer rows.Close()

	var records []*CallRecord
	for rows.Next() {
		var rec CallRecord
		var startedAt, completedAt, fallbacks string
		if err := rows.Scan(
			&rec.RequestID, &rec.Capability, &rec.Model, &rec.Provider, &rec.Response,
			&rec.PromptTokens, &rec.CompletionTokens, &rec.TotalTokens, &rec.FinishReason,
			&startedAt, &completedAt, &rec.DurationMs, &rec.Error, &rec.Retries, &fallbacks,
		); err != nil {
			return nil, fmt.Errorf("scan call record: %w", err)
		}

		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		rec.CompletedAt, _ = time.Parse(time.RFC3339Nano, completedAt)
		if fallbacks != "" && fallbacks != "null" {
			if err := json.Unmarshal([]byte(fallbacks), &rec.FallbacksUsed); err != nil {
				s.logger.Warn("Failed to decode fallbacks for record",
					"request_id", rec.RequestID, "error", err)
			}
		}

		records = append(records, &rec)
	}

	return records, rows.Err()
}

// Usage sums token consumption across all recorded calls.
func (s *CallStore) Usage(ctx context.Context) (TokenUsage, error) {
	var usage TokenUsage
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0),
		       COALESCE(SUM(total_tokens), 0)
		FROM llm_calls`).Scan(&usage.PromptTokens, &usage.CompletionTokens, &usage.TotalTokens)
	if err != nil {
		return TokenUsage{}, fmt.Errorf("query usage: %w", err)
	}
	return usage, nil
}
