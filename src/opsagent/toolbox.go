// Package opsagent assembles the concrete VillaOps agent: its system prompt,
// its tool surface over the resource services, and its destructive-tool set.
package opsagent

import (
	"log/slog"

	"github.com/villaops/villaops/src/agent"
	"github.com/villaops/villaops/src/opsagent/tools/tool_booking"
	"github.com/villaops/villaops/src/opsagent/tools/tool_guest"
	"github.com/villaops/villaops/src/opsagent/tools/tool_property"
	"github.com/villaops/villaops/src/opsagent/tools/toolsutil"
	"github.com/villaops/villaops/src/resources"
)

// NewToolbox registers the full VillaOps tool surface against store.
func NewToolbox(store resources.Store, logger *slog.Logger) (*agent.Toolbox, error) {
	if logger != nil {
		toolsutil.SetLogger(logger.With("component", "tools"))
	}

	toolbox := agent.NewToolbox()
	toolbox.RegisterMiddleware(agent.LoggingMiddleware(toolsutil.GetLogger()))

	constructors := []func() (agent.Tool, error){
		func() (agent.Tool, error) { return tool_property.ListTool(store) },
		func() (agent.Tool, error) { return tool_property.CreateTool(store), nil },
		func() (agent.Tool, error) { return tool_property.DeleteTool(store) },
		func() (agent.Tool, error) { return tool_guest.LookupTool(store) },
		func() (agent.Tool, error) { return tool_guest.CreateTool(store) },
		func() (agent.Tool, error) { return tool_guest.DeleteTool(store) },
		func() (agent.Tool, error) { return tool_booking.SearchTool(store) },
		func() (agent.Tool, error) { return tool_booking.CreateTool(store) },
	}
	for _, construct := range constructors {
		tool, err := construct()
		if err != nil {
			return nil, err
		}
		if err := toolbox.RegisterTool(tool); err != nil {
			return nil, err
		}
	}
	return toolbox, nil
}
