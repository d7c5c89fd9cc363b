package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"medichain/internal/logging"
)

// GeminiClient implements Client against the Gemini REST API.
type GeminiClient struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	maxRetries      int
	retryBackoff    time.Duration
	rateLimitDelay  time.Duration
	httpClient      *http.Client

	mu          sync.Mutex
	lastRequest time.Time
}

// NewGeminiClient creates a client with default configuration.
func NewGeminiClient(apiKey string) *GeminiClient {
	return NewGeminiClientWithConfig(DefaultGeminiConfig(apiKey))
}

// NewGeminiClientWithConfig creates a client with custom configuration.
func NewGeminiClientWithConfig(config GeminiConfig) *GeminiClient {
	defaults := DefaultGeminiConfig(config.APIKey)
	if strings.TrimSpace(config.BaseURL) == "" {
		config.BaseURL = defaults.BaseURL
	}
	if strings.TrimSpace(config.Model) == "" {
		config.Model = defaults.Model
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxOutputTokens <= 0 {
		config.MaxOutputTokens = defaults.MaxOutputTokens
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = defaults.MaxRetries
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = defaults.RetryBackoff
	}

	return &GeminiClient{
		apiKey:          config.APIKey,
		baseURL:         strings.TrimRight(config.BaseURL, "/"),
		model:           config.Model,
		maxOutputTokens: config.MaxOutputTokens,
		maxRetries:      config.MaxRetries,
		retryBackoff:    config.RetryBackoff,
		rateLimitDelay:  config.RateLimitDelay,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string { return c.model }

// Complete sends a prompt and returns the completion text.
func (c *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.generate(ctx, systemPrompt, userPrompt, nil)
}

// CompleteWithSchema sends a prompt and enforces a JSON schema on the
// response via generationConfig.responseSchema.
func (c *GeminiClient) CompleteWithSchema(ctx context.Context, systemPrompt, userPrompt, jsonSchema string) (string, error) {
	schemaText := strings.TrimSpace(jsonSchema)
	if schemaText == "" {
		return "", fmt.Errorf("json schema is empty")
	}
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(schemaText), &schema); err != nil {
		return "", fmt.Errorf("invalid json schema: %w", err)
	}
	return c.generate(ctx, systemPrompt, userPrompt, schema)
}

func (c *GeminiClient) generate(ctx context.Context, systemPrompt, userPrompt string, schema map[string]interface{}) (string, error) {
	// Auto-apply timeout if the context has no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	logging.AnalysisDebug("[Gemini] generate: model=%s system_len=%d user_len=%d schema=%t",
		c.model, len(systemPrompt), len(userPrompt), schema != nil)

	if c.apiKey == "" {
		return "", fmt.Errorf("API key not configured")
	}

	c.throttle()

	reqBody := GeminiRequest{
		Contents: []GeminiContent{
			{
				Role:  "user",
				Parts: []GeminiPart{{Text: userPrompt}},
			},
		},
		GenerationConfig: GeminiGenerationConfig{
			Temperature:     1.0,
			MaxOutputTokens: c.maxOutputTokens,
		},
	}
	if systemPrompt != "" {
		reqBody.SystemInstruction = &GeminiContent{
			Parts: []GeminiPart{{Text: systemPrompt}},
		}
	}
	if schema != nil {
		reqBody.GenerationConfig.ResponseMimeType = "application/json"
		reqBody.GenerationConfig.ResponseSchema = schema
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	// Retry loop for rate limits and transport failures.
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(1<<uint(i-1)) * c.retryBackoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return "", fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var geminiResp GeminiResponse
		if err := json.Unmarshal(body, &geminiResp); err != nil {
			return "", fmt.Errorf("failed to parse response: %w", err)
		}
		if geminiResp.Error != nil {
			return "", fmt.Errorf("API error: %s", geminiResp.Error.Message)
		}
		if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
			return "", fmt.Errorf("no completion returned")
		}

		var result strings.Builder
		for _, part := range geminiResp.Candidates[0].Content.Parts {
			result.WriteString(part.Text)
		}
		response := strings.TrimSpace(result.String())

		logging.Analysis("[Gemini] generate: completed in %v response_len=%d total_tokens=%d",
			time.Since(startTime), len(response), geminiResp.UsageMetadata.TotalTokenCount)
		return response, nil
	}

	logging.Get(logging.CategoryAnalysis).Error("[Gemini] generate: max retries exceeded after %v: %v", time.Since(startTime), lastErr)
	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

// throttle enforces minimum spacing between outbound requests.
func (c *GeminiClient) throttle() {
	if c.rateLimitDelay <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if elapsed := time.Since(c.lastRequest); elapsed < c.rateLimitDelay {
		time.Sleep(c.rateLimitDelay - elapsed)
	}
	c.lastRequest = time.Now()
}
