package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/insight/model"
)

func TestFromConfig(t *testing.T) {
	cfg := &model.RegistryConfig{
		Capabilities: map[string]*model.CapabilityConfig{
			"extraction": {Preferred: []string{"m1"}},
			"custom":     {Preferred: []string{"m2"}},
		},
		Endpoints: map[string]*model.EndpointConfig{
			"m1": {Provider: "openai", Model: "m1"},
			"m2": {Provider: "ollama", Model: "m2"},
		},
	}

	registry := model.FromConfig(cfg)

	assert.Equal(t, "m1", registry.Resolve(model.CapabilityExtraction))
	// Unknown capability names pass through as-is.
	assert.Equal(t, "m2", registry.Resolve(model.Capability("custom")))
}

func TestRegistry_ToConfigRoundTrip(t *testing.T) {
	registry := newTestRegistry()

	cfg := registry.ToConfig()
	require.Contains(t, cfg.Capabilities, "extraction")

	rebuilt := model.FromConfig(cfg)
	assert.Equal(t, "big-model", rebuilt.Resolve(model.CapabilityExtraction))
}

func TestRegistry_MergeFromConfig(t *testing.T) {
	registry := model.NewDefaultRegistry()
	original := registry.Resolve(model.CapabilityTranscription)

	registry.MergeFromConfig(&model.RegistryConfig{
		Capabilities: map[string]*model.CapabilityConfig{
			"extraction": {Preferred: []string{"my-model"}},
		},
		Endpoints: map[string]*model.EndpointConfig{
			"my-model": {Provider: "ollama", URL: "http://gpu-box:11434/v1", Model: "my-model"},
		},
	})

	// Overridden capability picks up the new model.
	assert.Equal(t, "my-model", registry.Resolve(model.CapabilityExtraction))
	// Untouched capabilities keep their defaults.
	assert.Equal(t, original, registry.Resolve(model.CapabilityTranscription))
}

func TestRegistryConfig_YAML(t *testing.T) {
	raw := `
capabilities:
  extraction:
    preferred: [gpt-4.1-mini]
    fallback: [qwen]
endpoints:
  gpt-4.1-mini:
    provider: openai
    model: gpt-4.1-mini
  qwen:
    provider: ollama
    url: http://localhost:11434/v1
    model: qwen2.5:14b
`

	var cfg model.RegistryConfig
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))

	registry := model.FromConfig(&cfg)
	assert.Equal(t, []string{"gpt-4.1-mini", "qwen"}, registry.GetFallbackChain(model.CapabilityExtraction))

	ep := registry.GetEndpoint("qwen")
	require.NotNil(t, ep)
	assert.Equal(t, "qwen2.5:14b", ep.Model)
}
