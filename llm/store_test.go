package llm_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/insight/llm"
)

func openTestStore(t *testing.T) *llm.CallStore {
	t.Helper()
	store, err := llm.OpenCallStore(filepath.Join(t.TempDir(), "calls.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(id string, started time.Time) *llm.CallRecord {
	return &llm.CallRecord{
		RequestID:        id,
		Capability:       "extraction",
		Model:            "test-model",
		Provider:         "openai",
		Messages:         []llm.Message{{Role: "user", Content: "hello"}},
		Response:         "hi",
		PromptTokens:     12,
		CompletionTokens: 3,
		TotalTokens:      15,
		FinishReason:     "stop",
		StartedAt:        started,
		CompletedAt:      started.Add(200 * time.Millisecond),
		DurationMs:       200,
		Retries:          1,
		FallbacksUsed:    []string{"primary"},
	}
}

func TestCallStore_StoreAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	require.NoError(t, store.Store(ctx, sampleRecord("req-1", base)))
	require.NoError(t, store.Store(ctx, sampleRecord("req-2", base.Add(time.Second))))

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "req-2", records[0].RequestID)
	assert.Equal(t, "req-1", records[1].RequestID)

	rec := records[1]
	assert.Equal(t, "extraction", rec.Capability)
	assert.Equal(t, "test-model", rec.Model)
	assert.Equal(t, 15, rec.TotalTokens)
	assert.Equal(t, "stop", rec.FinishReason)
	assert.Equal(t, int64(200), rec.DurationMs)
	assert.Equal(t, 1, rec.Retries)
	assert.Equal(t, []string{"primary"}, rec.FallbacksUsed)
	assert.WithinDuration(t, base, rec.StartedAt, time.Millisecond)
}

func TestCallStore_StoreRequiresRequestID(t *testing.T) {
	store := openTestStore(t)

	err := store.Store(context.Background(), &llm.CallRecord{Capability: "fast"})
	assert.Error(t, err)
}

func TestCallStore_StoreTool(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.StoreTool(ctx, &llm.ToolRecord{
		RequestID:   "req-1",
		Tool:        "filter_products",
		Arguments:   `{"category": "Books"}`,
		ResultCount: 3,
		DurationMs:  1,
		ExecutedAt:  time.Now(),
	}))

	err := store.StoreTool(ctx, &llm.ToolRecord{RequestID: "req-2"})
	assert.Error(t, err, "tool name is required")
}

func TestCallStore_Usage(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	usage, err := store.Usage(ctx)
	require.NoError(t, err)
	assert.Zero(t, usage.TotalTokens)

	base := time.Now()
	require.NoError(t, store.Store(ctx, sampleRecord("req-1", base)))
	require.NoError(t, store.Store(ctx, sampleRecord("req-2", base.Add(time.Second))))

	usage, err = store.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24, usage.PromptTokens)
	assert.Equal(t, 6, usage.CompletionTokens)
	assert.Equal(t, 30, usage.TotalTokens)
}

func TestCallStore_InMemory(t *testing.T) {
	store, err := llm.OpenCallStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Store(context.Background(), sampleRecord("req-1", time.Now())))

	records, err := store.Recent(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestOpenCallStore_RequiresPath(t *testing.T) {
	_, err := llm.OpenCallStore("")
	assert.Error(t, err)
}
