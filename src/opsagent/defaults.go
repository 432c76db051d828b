package opsagent

import (
	"github.com/villaops/villaops/src/opsagent/tools/tool_guest"
	"github.com/villaops/villaops/src/opsagent/tools/tool_property"
)

// DestructiveTools lists the tools that must not run without an explicit
// user decision.
func DestructiveTools() []string {
	return []string{
		tool_property.DeleteName,
		tool_guest.DeleteName,
	}
}
