// Package stream renders agent loop signals as one ordered sequence of typed
// events for the transport layer.
package stream

import (
	"encoding/json"
)

// EventType represents the type of a client-facing event.
type EventType string

const (
	// EventToken carries an incremental text fragment from the model.
	EventToken EventType = "token"
	// EventToolCall announces a tool-call request, once per call id.
	EventToolCall EventType = "tool_call"
	// EventToolResult carries the outcome of one executed tool call.
	EventToolResult EventType = "tool_result"
	// EventConfirmation asks the client to approve a destructive tool call.
	EventConfirmation EventType = "confirmation"
	// EventInterrupted terminates the stream after a confirmation request.
	EventInterrupted EventType = "interrupted"
	// EventError reports an unrecoverable failure.
	EventError EventType = "error"
	// EventDone terminates every stream, success or failure.
	EventDone EventType = "done"
)

// Event is the interface implemented by all client-facing events.
type Event interface {
	Kind() EventType
}

// BaseEvent contains the common type tag for all events.
type BaseEvent struct {
	Type EventType `json:"type"`
}

// Kind returns the event type.
func (e BaseEvent) Kind() EventType { return e.Type }

// TokenEvent is an incremental text fragment.
type TokenEvent struct {
	BaseEvent
	Content string `json:"content"`
}

// ToolCallEvent announces a requested tool call.
type ToolCallEvent struct {
	BaseEvent
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// ToolResultEvent carries the result of one executed tool call.
type ToolResultEvent struct {
	BaseEvent
	Name   string `json:"name"`
	Result string `json:"result"`
}

// ConfirmationEvent asks the client to approve or cancel a gated tool call.
type ConfirmationEvent struct {
	BaseEvent
	Name   string          `json:"name"`
	Args   json.RawMessage `json:"args"`
	Prompt string          `json:"prompt"`
}

// InterruptedEvent signals that the run is suspended awaiting a decision.
type InterruptedEvent struct {
	BaseEvent
	ConversationID string `json:"conversation_id"`
}

// ErrorEvent reports an unrecoverable failure. A DoneEvent still follows.
type ErrorEvent struct {
	BaseEvent
	Message string `json:"message"`
}

// DoneEvent is emitted exactly once at the end of every stream.
type DoneEvent struct {
	BaseEvent
	ConversationID string `json:"conversation_id"`
	OK             bool   `json:"ok"`
}

// Sink receives events for delivery to a client.
type Sink interface {
	// Send delivers one event. Delivery failures are the sink's problem;
	// the agent loop never aborts on them.
	Send(event Event) error

	// Close releases any transport resources held by the sink.
	Close() error
}
