package llm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoAPIKey indicates the API key is missing.
	ErrNoAPIKey = errors.New("API key is required")

	// ErrNoModel indicates no model was configured.
	ErrNoModel = errors.New("model is required")

	// ErrEmptyResponse indicates the API returned no choices.
	ErrEmptyResponse = errors.New("empty response from API")

	// ErrStreamClosed indicates the stream has been closed.
	ErrStreamClosed = errors.New("stream closed")
)

// APIError represents an error response from the chat-completions API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	Code       string
	Param      string
	RequestID  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error is retryable.
func (e *APIError) IsRetryable() bool {
	if e.StatusCode >= 500 && e.StatusCode < 600 {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests
}

// IsRateLimit returns true if this is a rate limit error.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Code == "rate_limit_exceeded"
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.Code == "invalid_api_key"
}
