package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/c360studio/insight/model"
	"github.com/google/uuid"
)

// TranscribeRequest defines a speech-to-text request.
type TranscribeRequest struct {
	// Capability selects the transcription model chain.
	// Empty defaults to "transcription".
	Capability string

	// FilePath is the audio file to transcribe.
	FilePath string

	// Prompt optionally guides the transcription (domain terms, spelling).
	Prompt string
}

// Transcription contains the speech-to-text result.
type Transcription struct {
	// RequestID uniquely identifies this call for usage correlation.
	RequestID string

	// Text is the transcribed content.
	Text string

	// Language is the detected language, when the provider reports one.
	// Providers may return either an ISO code or a full language name.
	Language string

	// Duration is the audio duration in seconds, when reported.
	Duration float64

	// Model is the actual model that was used.
	Model string
}

// Transcribe uploads an audio file to a speech-to-text endpoint, handling
// retry and fallback the same way Complete does for chat completions.
func (c *Client) Transcribe(ctx context.Context, req TranscribeRequest) (*Transcription, error) {
	if req.FilePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	capability := req.Capability
	if capability == "" {
		capability = model.CapabilityTranscription.String()
	}

	requestID := uuid.New().String()
	startedAt := time.Now()

	capVal := model.ParseCapability(capability)
	if capVal == "" {
		capVal = model.CapabilityTranscription
	}
	chain := c.registry.GetAvailableFallbackChain(capVal)
	if len(chain) == 0 {
		return nil, fmt.Errorf("no models configured for capability %s", capability)
	}

	var lastErr error
	var retries int

	for _, modelName := range chain {
		endpoint := c.registry.GetEndpoint(modelName)
		if endpoint == nil {
			c.logger.Debug("No endpoint for model, skipping", "model", modelName)
			continue
		}
		if !c.registry.IsEndpointAvailable(modelName) {
			c.logger.Debug("Endpoint circuit open, skipping", "model", modelName)
			continue
		}

		for attempt := 1; attempt <= c.retryConfig.MaxAttempts; attempt++ {
			result, err := c.doTranscribe(ctx, endpoint, req)
			if err == nil {
				c.registry.MarkEndpointSuccess(modelName)
				result.RequestID = requestID
				result.Model = endpoint.Model

				c.recordCall(ctx, &CallRecord{
					RequestID:    requestID,
					Capability:   capability,
					Model:        endpoint.Model,
					Provider:     endpoint.Provider,
					Response:     result.Text,
					FinishReason: "transcribed",
					StartedAt:    startedAt,
					CompletedAt:  time.Now(),
					DurationMs:   time.Since(startedAt).Milliseconds(),
					Retries:      retries,
				})

				return result, nil
			}

			lastErr = err
			if IsFatal(err) {
				c.recordCall(ctx, &CallRecord{
					RequestID:   requestID,
					Capability:  capability,
					Model:       endpoint.Model,
					Provider:    endpoint.Provider,
					StartedAt:   startedAt,
					CompletedAt: time.Now(),
					DurationMs:  time.Since(startedAt).Milliseconds(),
					Error:       err.Error(),
					Retries:     retries,
				})
				return nil, err
			}

			if attempt < c.retryConfig.MaxAttempts {
				retries++
				backoff := c.calculateBackoff(attempt)
				c.logger.Debug("Transcription failed, retrying",
					"attempt", attempt,
					"backoff", backoff,
					"error", err)

				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoff):
				}
			}
		}

		c.registry.MarkEndpointFailure(modelName)
		c.logger.Warn("Transcription endpoint failed, trying fallback",
			"model", modelName,
			"error", lastErr)
	}

	c.recordCall(ctx, &CallRecord{
		RequestID:   requestID,
		Capability:  capability,
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		DurationMs:  time.Since(startedAt).Milliseconds(),
		Error:       fmt.Sprintf("all endpoints failed: %v", lastErr),
		Retries:     retries,
	})

	return nil, fmt.Errorf("all endpoints failed for capability %s: %w", capability, lastErr)
}

// doTranscribe executes a single multipart upload to the transcription endpoint.
func (c *Client) doTranscribe(ctx context.Context, ep *model.EndpointConfig, req TranscribeRequest) (*Transcription, error) {
	provider := GetProvider(ep.Provider)
	if provider == nil {
		return nil, NewFatalError(fmt.Errorf("unknown provider: %s", ep.Provider))
	}

	audio, ok := provider.(AudioProvider)
	if !ok {
		return nil, NewFatalError(fmt.Errorf("provider %s does not support transcription", ep.Provider))
	}

	file, err := os.Open(req.FilePath)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("open audio file: %w", err))
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create form file: %w", err))
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, NewFatalError(fmt.Errorf("copy audio data: %w", err))
	}

	fields := map[string]string{
		"model": ep.Model,
		// verbose_json includes detected language and duration
		"response_format": "verbose_json",
	}
	if req.Prompt != "" {
		fields["prompt"] = req.Prompt
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, NewFatalError(fmt.Errorf("write form field %s: %w", name, err))
		}
	}
	if err := writer.Close(); err != nil {
		return nil, NewFatalError(fmt.Errorf("finalize multipart body: %w", err))
	}

	url := audio.BuildTranscriptionURL(ep.URL)

	c.logger.Debug("Sending transcription request",
		"provider", ep.Provider,
		"model", ep.Model,
		"url", url,
		"file", filepath.Base(req.FilePath))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	provider.SetHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(httpResp.StatusCode, respBody)
	}

	return audio.ParseTranscription(respBody)
}
