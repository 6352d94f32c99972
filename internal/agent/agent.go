// Package agent defines the invocation contract for runnable agents.
package agent

import (
	"context"
	"encoding/json"

	"github.com/agentry-ai/agentry/internal/manifest"
	"github.com/agentry-ai/agentry/pkg/types"
)

// Output is the structured result every agent run produces.
type Output = types.AgentOutput

// Executable is the interface every runnable agent version implements.
type Executable interface {
	// Name returns the agent identifier.
	Name() string

	// InputSchema returns the JSON Schema for the run payload.
	InputSchema() json.RawMessage

	// Execute runs the agent with the given input.
	Execute(ctx context.Context, input json.RawMessage, meta *Meta) (*Output, error)
}

// Meta provides run context to executing agents.
type Meta struct {
	RunID   string
	AgentID string
	Version string
	Extra   map[string]any

	// Progress callback for stage transitions
	OnProgress func(stage string, fields map[string]any)
}

// Progress reports a stage transition during a run.
func (m *Meta) Progress(stage string, fields map[string]any) {
	if m != nil && m.OnProgress != nil {
		m.OnProgress(stage, fields)
	}
}

// Package binds one discovered agent version to its manifest and
// executable. Immutable after discovery.
type Package struct {
	ID         string
	Version    string
	Manifest   *manifest.Manifest
	Executable Executable
}

// BaseAgent provides a base implementation for agents.
type BaseAgent struct {
	name    string
	schema  json.RawMessage
	execute func(ctx context.Context, input json.RawMessage, meta *Meta) (*Output, error)
}

// NewBaseAgent creates a new base agent.
func NewBaseAgent(name string, schema json.RawMessage, execute func(context.Context, json.RawMessage, *Meta) (*Output, error)) *BaseAgent {
	return &BaseAgent{
		name:    name,
		schema:  schema,
		execute: execute,
	}
}

func (a *BaseAgent) Name() string                 { return a.name }
func (a *BaseAgent) InputSchema() json.RawMessage { return a.schema }

func (a *BaseAgent) Execute(ctx context.Context, input json.RawMessage, meta *Meta) (*Output, error) {
	return a.execute(ctx, input, meta)
}
