// Package llm implements aisdk.ModelClient against an OpenAI-compatible
// chat-completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/villaops/villaops/src/aisdk"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultTimeout = 120 * time.Second
)

var _ aisdk.ModelClient = (*Client)(nil)

// Config holds the configuration for the LLM client.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	RetryCount int
	RetryDelay time.Duration
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Client is a chat-completions API client bound to a single model.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	model      *aisdk.ModelInfo
}

// NewClient creates a new chat-completions client.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if config.Model == "" {
		return nil, ErrNoModel
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.RetryCount == 0 {
		config.RetryCount = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.With("component", "llm_client"),
		model:      &aisdk.ModelInfo{ID: config.Model},
	}, nil
}

// GetModelInfo returns the model the client is bound to.
func (c *Client) GetModelInfo() *aisdk.ModelInfo {
	return c.model
}

// CreateChatCompletion sends a non-streaming chat completion request.
func (c *Client) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	req.Model = c.model.ID
	req.Stream = false

	logger := c.logger.With("method", "CreateChatCompletion", "model", req.Model)
	logger.Debug("sending chat completion request", "messages", len(req.Messages))

	resp, err := c.postChatCompletions(ctx, req)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("received error response", "status_code", resp.StatusCode)
		return nil, c.handleError(resp)
	}

	var result aisdk.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	for i := range result.Choices {
		aisdk.NormalizeToolCallArguments(result.Choices[i].Message.ToolCalls)
	}

	logger.Info("chat completion successful", "usage_total", result.Usage.TotalTokens)
	return &result, nil
}

// CreateChatCompletionStream sends a streaming chat completion request and
// returns a reader over the SSE chunk stream.
func (c *Client) CreateChatCompletionStream(ctx context.Context, req *aisdk.ChatCompletionRequest) (aisdk.StreamInterface, error) {
	req.Model = c.model.ID
	req.Stream = true
	req.StreamOptions = &aisdk.StreamOptions{IncludeUsage: true}

	logger := c.logger.With("method", "CreateChatCompletionStream", "model", req.Model)
	logger.Debug("sending streaming chat completion request", "messages", len(req.Messages))

	resp, err := c.postChatCompletions(ctx, req)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		logger.Error("received error response", "status_code", resp.StatusCode)
		return nil, c.handleError(resp)
	}

	return newSSEStream(resp.Body), nil
}

// postChatCompletions marshals the request and performs the HTTP POST with
// retry on transport and server errors.
func (c *Client) postChatCompletions(ctx context.Context, req *aisdk.ChatCompletionRequest) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for i := 0; i < c.config.RetryCount; i++ {
		httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", body)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			c.logger.Debug("request attempt failed", "attempt", i+1, "error", err)
			if !sleepCtx(ctx, c.config.RetryDelay*time.Duration(i+1)) {
				return nil, ctx.Err()
			}
			continue
		}

		// Client errors are not retryable.
		if resp.StatusCode < 500 {
			return resp, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
		c.logger.Debug("server error, retrying", "attempt", i+1, "status_code", resp.StatusCode)
		if !sleepCtx(ctx, c.config.RetryDelay*time.Duration(i+1)) {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", c.config.RetryCount, lastErr)
}

// newRequest creates an HTTP request with the appropriate headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// handleError processes error responses from the API.
func (c *Client) handleError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	var errResp aisdk.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			RequestID:  resp.Header.Get("X-Request-ID"),
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Type:       errResp.Error.Type,
		Message:    errResp.Error.Message,
		Code:       errResp.Error.Code,
		Param:      errResp.Error.Param,
		RequestID:  resp.Header.Get("X-Request-ID"),
	}
}

// sleepCtx sleeps for d unless ctx is cancelled first. Reports whether the
// full duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
