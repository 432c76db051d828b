package agent

import (
	"fmt"

	"github.com/villaops/villaops/src/aisdk"
)

// Gate decides which tool calls need an explicit user decision before they
// execute. Membership is by tool name.
type Gate struct {
	gated map[string]struct{}
}

// NewGate builds a gate over the given tool names.
func NewGate(names ...string) *Gate {
	g := &Gate{gated: make(map[string]struct{}, len(names))}
	for _, n := range names {
		g.gated[n] = struct{}{}
	}
	return g
}

// Requires reports whether the named tool must be confirmed before executing.
func (g *Gate) Requires(name string) bool {
	if g == nil {
		return false
	}
	_, ok := g.gated[name]
	return ok
}

// Prompt renders the confirmation question shown to the user for a gated call.
func (g *Gate) Prompt(call *aisdk.ToolCall) string {
	return fmt.Sprintf("The assistant wants to run %s. Approve or cancel?", call.Function.Name)
}

// CancelledResponse is the tool result recorded when the user cancels a gated
// call. The model sees it as a normal tool error and can continue the turn.
func CancelledResponse() *aisdk.ToolResponse {
	return &aisdk.ToolResponse{
		Type:    "text",
		Content: []byte("Action cancelled by user"),
		IsError: true,
	}
}
