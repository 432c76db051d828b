package aisdk

import (
	"encoding/json"
	"strings"
)

// StreamAggregator accumulates streaming chunks into a complete assistant
// message. Tool call deltas are merged by index: the id and name arrive on
// the first fragment, argument JSON arrives piecewise on the following ones.
type StreamAggregator struct {
	ID           string
	Model        string
	FinishReason string
	Usage        Usage

	content strings.Builder
	calls   []ToolCall
}

// Add folds a single chunk into the aggregate.
func (a *StreamAggregator) Add(chunk *StreamChunk) {
	if chunk == nil {
		return
	}
	if a.ID == "" {
		a.ID = chunk.ID
		a.Model = chunk.Model
	}
	if chunk.Usage != nil {
		a.Usage = *chunk.Usage
	}
	if len(chunk.Choices) == 0 {
		return
	}

	choice := chunk.Choices[0]
	if choice.FinishReason != "" {
		a.FinishReason = choice.FinishReason
	}

	delta := choice.Delta
	if delta == nil {
		return
	}
	a.content.WriteString(delta.Content)

	for _, tc := range delta.ToolCalls {
		idx := len(a.calls)
		if tc.Index != nil {
			idx = *tc.Index
		}
		for len(a.calls) <= idx {
			a.calls = append(a.calls, ToolCall{Type: "function"})
		}
		cur := &a.calls[idx]
		if tc.ID != "" {
			cur.ID = tc.ID
		}
		if tc.Type != "" {
			cur.Type = tc.Type
		}
		cur.Function.Name += tc.Function.Name
		cur.Function.Arguments = append(cur.Function.Arguments, argumentFragment(tc.Function.Arguments)...)
	}
}

// NormalizeToolCallArguments rewrites string-encoded argument payloads as raw
// JSON objects. Providers encode function arguments as a JSON string; tool
// executors expect the decoded object text.
func NormalizeToolCallArguments(calls []ToolCall) {
	for i := range calls {
		calls[i].Function.Arguments = json.RawMessage(argumentFragment(calls[i].Function.Arguments))
		if len(calls[i].Function.Arguments) == 0 {
			calls[i].Function.Arguments = json.RawMessage("{}")
		}
	}
}

// argumentFragment normalizes a tool-call argument delta. Streaming chunks
// carry argument JSON piecewise as quoted string fragments; full responses
// carry it as a raw object.
func argumentFragment(raw json.RawMessage) []byte {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []byte(s)
	}
	return raw
}

// Content returns the text accumulated so far.
func (a *StreamAggregator) Content() string {
	return a.content.String()
}

// Message builds the final assistant message from the aggregated chunks.
func (a *StreamAggregator) Message() *Message {
	msg := &Message{
		Role:    RoleAssistant,
		Content: a.content.String(),
	}
	for _, call := range a.calls {
		call.Index = nil
		if len(call.Function.Arguments) == 0 {
			call.Function.Arguments = json.RawMessage("{}")
		}
		msg.ToolCalls = append(msg.ToolCalls, call)
	}
	return msg
}
