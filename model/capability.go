// Package model provides capability-based model selection for the insight tools.
// Instead of hardcoding model names, callers specify capabilities (extraction,
// analysis, summarization) and the registry resolves them to available models
// with fallback chains.
package model

// Capability represents a semantic capability for model selection.
// Instead of specifying "gpt-4.1-mini", callers specify "extraction" or "analysis".
type Capability string

const (
	// CapabilityExtraction is for structured data extraction via function calling.
	CapabilityExtraction Capability = "extraction"

	// CapabilityAnalysis is for long-form analysis and report writing.
	CapabilityAnalysis Capability = "analysis"

	// CapabilitySummarization is for summaries and topic analytics.
	CapabilitySummarization Capability = "summarization"

	// CapabilityTranscription is for speech-to-text models.
	CapabilityTranscription Capability = "transcription"

	// CapabilityFast is for quick responses, simple tasks.
	CapabilityFast Capability = "fast"
)

// IsValid checks if a capability string is a known capability.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityExtraction, CapabilityAnalysis, CapabilitySummarization, CapabilityTranscription, CapabilityFast:
		return true
	}
	return false
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	return string(c)
}

// ParseCapability converts a string to a Capability, returning empty for invalid values.
func ParseCapability(s string) Capability {
	cap := Capability(s)
	if cap.IsValid() {
		return cap
	}
	return ""
}
