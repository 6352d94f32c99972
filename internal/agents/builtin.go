// Package agents wires the builtin agent implementations into a
// factory table.
package agents

import (
	"github.com/agentry-ai/agentry/internal/agent"
	"github.com/agentry-ai/agentry/internal/agents/planner"
	"github.com/agentry-ai/agentry/internal/agents/seominer"
)

// RegisterBuiltins adds every builtin agent factory to the table.
func RegisterBuiltins(factories *agent.Factories) {
	factories.Register(seominer.AgentID, seominer.Version, func() agent.Executable { return seominer.New() })
	factories.Register(planner.AgentID, planner.Version, func() agent.Executable { return planner.New() })
}

// Builtins returns a factory table holding the builtin agents.
func Builtins() *agent.Factories {
	factories := agent.NewFactories()
	RegisterBuiltins(factories)
	return factories
}
