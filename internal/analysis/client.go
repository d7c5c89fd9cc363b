// Package analysis owns the single outbound call to the
// text-generation capability: the prompt template, the response
// schema, and validation of the model output into the typed
// AnalysisResult contract.
package analysis

import (
	"context"
	"time"
)

// Client is the minimal interface the requester needs from an LLM
// provider.
type Client interface {
	// Complete sends a prompt and returns the raw completion text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// CompleteWithSchema sends a prompt and enforces a JSON schema on
	// the response.
	CompleteWithSchema(ctx context.Context, systemPrompt, userPrompt, jsonSchema string) (string, error)
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
	MaxRetries      int
	RetryBackoff    time.Duration // base for exponential backoff
	RateLimitDelay  time.Duration // minimum spacing between requests
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:          apiKey,
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Model:           "gemini-2.0-flash",
		Timeout:         2 * time.Minute,
		MaxOutputTokens: 8192,
		MaxRetries:      3,
		RetryBackoff:    time.Second,
		RateLimitDelay:  100 * time.Millisecond,
	}
}
