package aisdk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func deltaChunk(delta *Message) *StreamChunk {
	return &StreamChunk{
		ID:      "chatcmpl-1",
		Model:   "test-model",
		Choices: []Choice{{Delta: delta}},
	}
}

func TestStreamAggregatorContent(t *testing.T) {
	var agg StreamAggregator
	agg.Add(deltaChunk(&Message{Role: RoleAssistant, Content: "Hel"}))
	agg.Add(deltaChunk(&Message{Content: "lo "}))
	agg.Add(deltaChunk(&Message{Content: "world"}))

	assert.Equal(t, "Hello world", agg.Content())

	msg := agg.Message()
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "Hello world", msg.Content)
	assert.Empty(t, msg.ToolCalls)
}

func TestStreamAggregatorToolCallDeltas(t *testing.T) {
	var agg StreamAggregator

	// First fragment carries id and name, arguments arrive as quoted
	// string fragments on subsequent deltas.
	agg.Add(deltaChunk(&Message{ToolCalls: []ToolCall{{
		ID:       "call_1",
		Type:     "function",
		Index:    intPtr(0),
		Function: FunctionCall{Name: "property_list", Arguments: json.RawMessage(`""`)},
	}}}))
	agg.Add(deltaChunk(&Message{ToolCalls: []ToolCall{{
		Index:    intPtr(0),
		Function: FunctionCall{Arguments: json.RawMessage(`"{\"na"`)},
	}}}))
	agg.Add(deltaChunk(&Message{ToolCalls: []ToolCall{{
		Index:    intPtr(0),
		Function: FunctionCall{Arguments: json.RawMessage(`"me\":\"x\"}"`)},
	}}}))

	msg := agg.Message()
	require.Len(t, msg.ToolCalls, 1)
	call := msg.ToolCalls[0]
	assert.Equal(t, "call_1", call.ID)
	assert.Equal(t, "property_list", call.Function.Name)
	assert.JSONEq(t, `{"name":"x"}`, string(call.Function.Arguments))
	assert.Nil(t, call.Index)
}

func TestStreamAggregatorMultipleCalls(t *testing.T) {
	var agg StreamAggregator
	agg.Add(deltaChunk(&Message{ToolCalls: []ToolCall{{
		ID: "call_a", Index: intPtr(0),
		Function: FunctionCall{Name: "guest_lookup", Arguments: json.RawMessage(`"{}"`)},
	}}}))
	agg.Add(deltaChunk(&Message{ToolCalls: []ToolCall{{
		ID: "call_b", Index: intPtr(1),
		Function: FunctionCall{Name: "property_list"},
	}}}))

	msg := agg.Message()
	require.Len(t, msg.ToolCalls, 2)
	assert.Equal(t, "call_a", msg.ToolCalls[0].ID)
	assert.Equal(t, "call_b", msg.ToolCalls[1].ID)
	// A call that never received arguments defaults to an empty object.
	assert.Equal(t, "{}", string(msg.ToolCalls[1].Function.Arguments))
}

func TestStreamAggregatorUsageChunk(t *testing.T) {
	var agg StreamAggregator
	agg.Add(deltaChunk(&Message{Content: "hi"}))
	// Usage arrives on a trailing chunk with no choices.
	agg.Add(&StreamChunk{Usage: &Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12}})

	assert.Equal(t, 12, agg.Usage.TotalTokens)
	assert.Equal(t, "hi", agg.Content())
}

func TestStreamAggregatorFinishReason(t *testing.T) {
	var agg StreamAggregator
	agg.Add(&StreamChunk{Choices: []Choice{{Delta: &Message{Content: "x"}}}})
	agg.Add(&StreamChunk{Choices: []Choice{{FinishReason: "stop"}}})

	assert.Equal(t, "stop", agg.FinishReason)
}

func TestNormalizeToolCallArguments(t *testing.T) {
	calls := []ToolCall{
		{Function: FunctionCall{Name: "a", Arguments: json.RawMessage(`"{\"k\":1}"`)}},
		{Function: FunctionCall{Name: "b", Arguments: json.RawMessage(`{"k":2}`)}},
		{Function: FunctionCall{Name: "c"}},
	}
	NormalizeToolCallArguments(calls)

	assert.JSONEq(t, `{"k":1}`, string(calls[0].Function.Arguments))
	assert.JSONEq(t, `{"k":2}`, string(calls[1].Function.Arguments))
	assert.Equal(t, "{}", string(calls[2].Function.Arguments))
}
