package agent

import (
	"context"
	"fmt"
	"sort"

	"github.com/villaops/villaops/src/aisdk"
)

// ToolExecutor is a function type for tool execution.
type ToolExecutor func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error)

// ToolMiddleware is a function that wraps a ToolExecutor to add functionality.
type ToolMiddleware func(next ToolExecutor) ToolExecutor

// Toolbox handles tool/function calling functionality.
type Toolbox struct {
	tools      map[string]Tool
	middleware []ToolMiddleware
}

// NewToolbox creates a new tool registry.
func NewToolbox() *Toolbox {
	return &Toolbox{
		tools: make(map[string]Tool),
	}
}

// RegisterTool registers a tool.
func (tb *Toolbox) RegisterTool(tool Tool) error {
	if tool.GetName() == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := tb.tools[tool.GetName()]; exists {
		return fmt.Errorf("tool %s is already registered", tool.GetName())
	}

	tb.tools[tool.GetName()] = tool
	return nil
}

// RegisterMiddleware registers middleware applied to all tool executions.
// Middleware is applied in registration order (first registered = outermost).
func (tb *Toolbox) RegisterMiddleware(middleware ToolMiddleware) {
	tb.middleware = append(tb.middleware, middleware)
}

// Tools returns the registered tools in name order.
func (tb *Toolbox) Tools() []Tool {
	names := make([]string, 0, len(tb.tools))
	for name := range tb.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Tool, 0, len(names))
	for _, name := range names {
		out = append(out, tb.tools[name])
	}
	return out
}

// GetTool returns a specific tool by name.
func (tb *Toolbox) GetTool(name string) (Tool, bool) {
	tool, exists := tb.tools[name]
	return tool, exists
}

// HasTool checks if a tool is available.
func (tb *Toolbox) HasTool(name string) bool {
	_, exists := tb.tools[name]
	return exists
}

// ExecuteTool executes a tool call with middleware applied.
func (tb *Toolbox) ExecuteTool(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	tool, exists := tb.tools[call.Function.Name]
	if !exists {
		return nil, fmt.Errorf("tool %s not found", call.Function.Name)
	}

	executor := ToolExecutor(tool.Execute)
	for i := len(tb.middleware) - 1; i >= 0; i-- {
		executor = tb.middleware[i](executor)
	}

	return executor(ctx, call)
}

// LoggingMiddleware logs tool execution details.
func LoggingMiddleware(logger interface {
	Info(msg string, args ...interface{})
}) ToolMiddleware {
	return func(next ToolExecutor) ToolExecutor {
		return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
			logger.Info("executing tool", "tool", call.Function.Name, "params", string(call.Function.Arguments))
			result, err := next(ctx, call)
			if err != nil {
				logger.Info("tool execution failed", "tool", call.Function.Name, "error", err)
			} else {
				logger.Info("tool execution completed", "tool", call.Function.Name)
			}
			return result, err
		}
	}
}
