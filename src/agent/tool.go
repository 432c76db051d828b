// Package agent contains the tool registry and the ask/act loop that drives
// a conversation between the model and the tool executors.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	jsonschema "github.com/swaggest/jsonschema-go"

	"github.com/villaops/villaops/src/aisdk"
)

// Tool is the interface that all tools must implement.
type Tool interface {
	// GetType returns the tool type (always "function" for now)
	GetType() string

	// GetName returns the tool's name
	GetName() string

	// GetDescription returns the tool's description
	GetDescription() string

	// GetParameters returns the JSON schema for the tool's parameters
	GetParameters() *jsonschema.Schema

	// Execute runs the tool with the given parameters
	Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error)
}

// FuncTool is a tool built from an explicit schema and a raw executor, for
// cases where the schema cannot be reflected from a struct (enums, one-of
// shapes).
type FuncTool struct {
	Type     string             `json:"type"`
	Function aisdk.ToolFunction `json:"function"`
	Executor aisdk.ToolExecutor `json:"-"`
}

// GetType returns the tool type.
func (t *FuncTool) GetType() string { return t.Type }

// GetName returns the tool's name.
func (t *FuncTool) GetName() string { return t.Function.Name }

// GetDescription returns the tool's description.
func (t *FuncTool) GetDescription() string { return t.Function.Description }

// GetParameters returns the tool's parameter schema.
func (t *FuncTool) GetParameters() *jsonschema.Schema { return t.Function.Parameters }

// Execute runs the tool.
func (t *FuncTool) Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	if t.Executor == nil {
		return nil, fmt.Errorf("tool %s has no executor", t.GetName())
	}
	return t.Executor(ctx, call)
}

// MarshalJSON serializes only the declaration, never the executor.
func (t *FuncTool) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string             `json:"type"`
		Function aisdk.ToolFunction `json:"function"`
	}{
		Type:     t.Type,
		Function: t.Function,
	})
}

var _ Tool = (*FuncTool)(nil)

// ToChatTool converts a Tool to the ChatTool format for API requests.
func ToChatTool(tool Tool) *aisdk.ChatTool {
	return &aisdk.ChatTool{
		Type: tool.GetType(),
		Function: aisdk.ChatToolFunction{
			Name:        tool.GetName(),
			Description: tool.GetDescription(),
			Parameters:  tool.GetParameters(),
		},
	}
}

// ToChatTools converts a slice of Tools to ChatTools.
func ToChatTools(tools []Tool) []*aisdk.ChatTool {
	chatTools := make([]*aisdk.ChatTool, len(tools))
	for i, tool := range tools {
		chatTools[i] = ToChatTool(tool)
	}
	return chatTools
}
