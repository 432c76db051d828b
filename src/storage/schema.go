package storage

import "time"

// Conversation is one user-owned chat thread.
type Conversation struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Message is one durable conversation entry. Tool result messages carry Name
// and ToolCallID; assistant requests carry ToolCalls.
type Message struct {
	ID             string        `json:"id" db:"id"`
	ConversationID string        `json:"conversation_id" db:"conversation_id"`
	Role           string        `json:"role" db:"role"`
	Content        string        `json:"content" db:"content"`
	Name           *string       `json:"name,omitempty" db:"name"`
	ToolCallID     *string       `json:"tool_call_id,omitempty" db:"tool_call_id"`
	ToolCalls      ToolCallsJSON `json:"tool_calls,omitempty" db:"tool_calls"`
	Model          *string       `json:"model,omitempty" db:"model"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// Checkpoint is the durable suspension record for a conversation. At most one
// row exists per conversation.
type Checkpoint struct {
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Calls          string    `json:"calls" db:"calls"` // JSON array of tool calls
	NextIndex      int       `json:"next_index" db:"next_index"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// UsageRecord is one model invocation's token accounting.
type UsageRecord struct {
	ID               string    `json:"id" db:"id"`
	ConversationID   *string   `json:"conversation_id,omitempty" db:"conversation_id"`
	UserID           string    `json:"user_id" db:"user_id"`
	Model            string    `json:"model" db:"model"`
	PromptTokens     int       `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens" db:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens" db:"total_tokens"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
