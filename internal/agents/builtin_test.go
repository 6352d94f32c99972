package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentry-ai/agentry/internal/agents/planner"
	"github.com/agentry-ai/agentry/internal/agents/seominer"
)

func TestBuiltins(t *testing.T) {
	factories := Builtins()
	assert.Equal(t, 2, factories.Count())
	assert.Equal(t, []string{planner.AgentID, seominer.AgentID}, factories.IDs())

	miner, ok := factories.New(seominer.AgentID, seominer.Version)
	require.True(t, ok)
	assert.Equal(t, seominer.AgentID, miner.Name())

	plannerAgent, ok := factories.New(planner.AgentID, planner.Version)
	require.True(t, ok)
	assert.Equal(t, planner.AgentID, plannerAgent.Name())
}
