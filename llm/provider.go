package llm

import (
	"encoding/json"
	"net/http"
	"sync"
)

// Provider defines the interface for LLM provider implementations.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "ollama").
	Name() string

	// BuildURL constructs the full chat completions endpoint URL.
	BuildURL(baseURL string) string

	// SetHeaders adds provider-specific headers to the request.
	SetHeaders(req *http.Request)

	// BuildRequestBody creates the JSON request body for the provider.
	// temperature is nil to use provider default, or a pointer to explicit value.
	// tools and toolChoice are optional - pass nil/empty if not using tools.
	BuildRequestBody(model string, messages []Message, temperature *float64, maxTokens int,
		tools []ToolDefinition, toolChoice string) ([]byte, error)

	// ParseResponse extracts the response from provider-specific JSON.
	ParseResponse(body []byte, model string) (*Response, error)
}

// AudioProvider is implemented by providers that expose a speech-to-text endpoint.
type AudioProvider interface {
	// BuildTranscriptionURL constructs the full transcription endpoint URL.
	BuildTranscriptionURL(baseURL string) string

	// ParseTranscription extracts the transcription from provider-specific JSON.
	ParseTranscription(body []byte) (*Transcription, error)
}

// ToolDefinition describes a function the model may call.
type ToolDefinition struct {
	// Name is the function name the model will reference.
	Name string `json:"name"`

	// Description tells the model when to use the function.
	Description string `json:"description"`

	// Parameters is the JSON Schema for the function arguments.
	Parameters json.RawMessage `json:"parameters"`
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	// ID is the provider-assigned call identifier.
	ID string `json:"id"`

	// Name is the function the model chose to call.
	Name string `json:"name"`

	// Arguments is the raw JSON-encoded argument object.
	Arguments string `json:"arguments"`
}

// providerRegistry holds registered providers.
var (
	providerRegistry = make(map[string]Provider)
	providerMu       sync.RWMutex
)

// RegisterProvider adds a provider to the registry.
func RegisterProvider(p Provider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	providerRegistry[p.Name()] = p
}

// GetProvider retrieves a provider by name.
func GetProvider(name string) Provider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return providerRegistry[name]
}

// ListProviders returns all registered provider names.
func ListProviders() []string {
	providerMu.RLock()
	defer providerMu.RUnlock()

	names := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		names = append(names, name)
	}
	return names
}
