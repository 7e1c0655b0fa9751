package report_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/insight/llm"
	_ "github.com/c360studio/insight/llm/providers" // Register providers
	"github.com/c360studio/insight/model"
	"github.com/c360studio/insight/report"
)

const sampleReport = `## Brief History
Launched in 2008.

## Target Audience
Music listeners.

## Core Features
Streaming, playlists.

## Unique Selling Points
Catalog size.

## Business Model
Freemium subscriptions.

## Tech Stack Insights
Heavy on data pipelines.

## Perceived Strengths
Discovery features.

## Perceived Weaknesses
Artist payouts.`

// reportClient builds a client whose analysis capability hits a mock server,
// capturing the request for assertions.
func reportClient(t *testing.T, captured *map[string]any) *llm.Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if captured != nil {
			*captured = req
		}

		json.NewEncoder(w).Encode(map[string]any{
			"model": "test-model",
			"choices": []map[string]any{
				{
					"message":       map[string]string{"role": "assistant", "content": sampleReport},
					"finish_reason": "stop",
				},
			},
		})
	}))
	t.Cleanup(server.Close)

	registry := model.NewRegistry(
		map[model.Capability]*model.CapabilityConfig{
			model.CapabilityAnalysis: {Preferred: []string{"test-model"}},
		},
		map[string]*model.EndpointConfig{
			"test-model": {Provider: "ollama", URL: server.URL, Model: "test-model"},
		},
	)
	return llm.NewClient(registry)
}

func TestGenerator_FromService(t *testing.T) {
	var captured map[string]any
	gen := report.NewGenerator(reportClient(t, &captured), nil)

	rep, err := gen.FromService(context.Background(), "Spotify")
	require.NoError(t, err)

	assert.Equal(t, "Spotify", rep.Subject)
	assert.Equal(t, sampleReport, rep.Markdown)
	assert.False(t, rep.GeneratedAt.IsZero())

	// Request carries the expected knobs and section list.
	assert.Equal(t, 0.3, captured["temperature"])
	assert.Equal(t, float64(2000), captured["max_tokens"])

	messages := captured["messages"].([]any)
	system := messages[0].(map[string]any)["content"].(string)
	for _, section := range []string{
		"Brief History", "Target Audience", "Core Features", "Unique Selling Points",
		"Business Model", "Tech Stack Insights", "Perceived Strengths", "Perceived Weaknesses",
	} {
		assert.Contains(t, system, section)
	}

	user := messages[1].(map[string]any)["content"].(string)
	assert.Contains(t, user, "Spotify")
}

func TestGenerator_FromText(t *testing.T) {
	gen := report.NewGenerator(reportClient(t, nil), nil)

	rep, err := gen.FromText(context.Background(), "We build collaborative spreadsheets for biologists.")
	require.NoError(t, err)

	assert.Equal(t, "Service Description", rep.Subject)
	assert.Contains(t, rep.Markdown, "## Business Model")
}

func TestGenerator_RejectsEmptyInput(t *testing.T) {
	gen := report.NewGenerator(reportClient(t, nil), nil)

	_, err := gen.FromService(context.Background(), "   ")
	assert.Error(t, err)

	_, err = gen.FromText(context.Background(), "")
	assert.Error(t, err)
}

func TestReport_Document(t *testing.T) {
	gen := report.NewGenerator(reportClient(t, nil), nil)

	rep, err := gen.FromService(context.Background(), "Notion")
	require.NoError(t, err)

	doc := rep.Document()
	assert.True(t, strings.HasPrefix(doc, "# Service Analysis Report: Notion"))
	assert.Contains(t, doc, "Generated on")
	assert.Contains(t, doc, "## Brief History")
}

func TestReport_Save(t *testing.T) {
	gen := report.NewGenerator(reportClient(t, nil), nil)

	rep, err := gen.FromService(context.Background(), "My Cool App!")
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	path, err := rep.Save(dir)
	require.NoError(t, err)

	assert.Contains(t, filepath.Base(path), "report_my_cool_app_")
	assert.True(t, strings.HasSuffix(path, ".md"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Perceived Weaknesses")
}
