// Package aisdk defines the model-facing types shared by the agent loop,
// the LLM client, and the conversation store.
package aisdk

import (
	"context"
	"encoding/json"
	"time"

	jsonschema "github.com/swaggest/jsonschema-go"
)

// Message roles, OpenAI chat-completions wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	// Name identifies the function for tool responses.
	Name string `json:"name,omitempty"`
	// ToolCallID references the original call for tool responses.
	ToolCallID string `json:"tool_call_id,omitempty"`
	// ToolCalls contains function calls requested by the assistant.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	// Metadata for message tracking
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ToolCall represents a function call request from the model.
type ToolCall struct {
	ID   string `json:"id"`
	Type string `json:"type"` // Always "function" for now
	// Index is set on streaming deltas so partial calls can be merged.
	Index    *int         `json:"index,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall contains the function name and arguments.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolFunction represents the function definition within a tool.
type ToolFunction struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// ToolExecutor is a function that executes a tool with given parameters.
type ToolExecutor func(ctx context.Context, call *ToolCall) (*ToolResponse, error)

// ToolResponse is the outcome of executing one tool call.
type ToolResponse struct {
	Type    string `json:"type"`
	Content []byte `json:"content"`
	IsError bool   `json:"is_error"`
}

// ChatCompletionRequest represents a request to the chat completions endpoint.
type ChatCompletionRequest struct {
	Model       string      `json:"model"`
	Messages    []*Message  `json:"messages"`
	Temperature *float64    `json:"temperature,omitempty"`
	MaxTokens   *int        `json:"max_tokens,omitempty"`
	Stream      bool        `json:"stream,omitempty"`
	// StreamOptions asks the provider to append a usage chunk to streams.
	StreamOptions *StreamOptions `json:"stream_options,omitempty"`
	Tools         []*ChatTool    `json:"tools,omitempty"`
	ToolChoice    string         `json:"tool_choice,omitempty"`
	User          string         `json:"user,omitempty"`
}

// StreamOptions controls provider behavior for streaming responses.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// ChatCompletionResponse represents a response from the chat completions endpoint.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice represents a single completion choice.
type Choice struct {
	Index        int      `json:"index"`
	Message      Message  `json:"message"`
	FinishReason string   `json:"finish_reason"`
	Delta        *Message `json:"delta,omitempty"` // For streaming
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamChunk represents a single chunk in a streaming response.
type StreamChunk struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	// Usage arrives on the final chunk when stream usage reporting is on.
	Usage *Usage `json:"usage,omitempty"`
}

// Error represents an API error response.
type Error struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

// ErrorResponse wraps an error from the API.
type ErrorResponse struct {
	Error Error `json:"error"`
}

// ModelInfo identifies the model a client is bound to.
type ModelInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	ContextLength int    `json:"context_length,omitempty"`
}

// StreamInterface defines the interface for reading streaming responses.
type StreamInterface interface {
	// Read reads the next chunk from the stream. Returns io.EOF when the
	// stream is exhausted.
	Read() (*StreamChunk, error)

	// Close closes the stream.
	Close() error
}
