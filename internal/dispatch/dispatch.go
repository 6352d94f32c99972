// Package dispatch invokes resolved agents and normalizes their results
// into the uniform run envelope.
//
// The dispatcher sits between the transport and the agents: it resolves
// (agent_id, version) against the registry, rejects payloads that fail
// the executable's input schema before any agent code runs, and folds
// every execution outcome into an Envelope. Agent failures never
// propagate as faults; they come back as success=false envelopes so one
// broken agent cannot take down the serving process.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/agentry-ai/agentry/internal/agent"
	"github.com/agentry-ai/agentry/internal/event"
	"github.com/agentry-ai/agentry/internal/logging"
	"github.com/agentry-ai/agentry/internal/registry"
	"github.com/agentry-ai/agentry/internal/runstore"
)

// Envelope is the uniform result shape for every run, success or not.
type Envelope struct {
	Success bool          `json:"success"`
	Output  *agent.Output `json:"output,omitempty"`
	Error   string        `json:"error,omitempty"`
	AgentID string        `json:"agent_id"`
	Version string        `json:"version"`
	RunID   string        `json:"run_id"`
}

// InvalidInputError reports a payload rejected by the agent's input
// schema. The agent was never invoked.
type InvalidInputError struct {
	AgentID string
	Version string
	Err     error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid payload for %s@%s: %v", e.AgentID, e.Version, e.Err)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

// RunOptions carries optional per-dispatch settings.
type RunOptions struct {
	// RunID overrides the generated ULID when set.
	RunID string

	// Extra is passed through to the agent's run metadata.
	Extra map[string]any
}

// Dispatcher resolves agents against a registry and executes them. The
// run store is optional; nil disables run recording.
type Dispatcher struct {
	reg     *registry.Registry
	runs    *runstore.Store
	schemas *schemaCache
}

// New creates a dispatcher serving from reg, recording runs in store
// when it is non-nil.
func New(reg *registry.Registry, runs *runstore.Store) *Dispatcher {
	return &Dispatcher{reg: reg, runs: runs, schemas: newSchemaCache()}
}

// Run resolves and executes one agent. Resolution and payload errors
// return as typed errors without invoking the agent; execution errors,
// panics, and deadline expiry come back inside a success=false envelope
// with a nil error.
func (d *Dispatcher) Run(ctx context.Context, agentID, version string, payload json.RawMessage, opts *RunOptions) (*Envelope, error) {
	pkg, err := d.reg.Snapshot().Resolve(agentID, version)
	if err != nil {
		return nil, err
	}

	if err := d.schemas.validate(pkg.Executable.InputSchema(), payload); err != nil {
		return nil, &InvalidInputError{AgentID: pkg.ID, Version: pkg.Version, Err: err}
	}

	runID := ""
	var extra map[string]any
	if opts != nil {
		runID = opts.RunID
		extra = opts.Extra
	}
	if runID == "" {
		runID = newRunID()
	}

	meta := &agent.Meta{
		RunID:   runID,
		AgentID: pkg.ID,
		Version: pkg.Version,
		Extra:   extra,
		OnProgress: func(stage string, fields map[string]any) {
			event.Publish(event.Event{Type: event.RunProgress, Data: event.RunProgressData{
				RunID:   runID,
				AgentID: pkg.ID,
				Version: pkg.Version,
				Stage:   stage,
				Fields:  fields,
			}})
		},
	}

	event.Publish(event.Event{Type: event.RunStarted, Data: event.RunStartedData{
		RunID:   runID,
		AgentID: pkg.ID,
		Version: pkg.Version,
	}})

	started := time.Now()
	output, execErr := invoke(ctx, pkg.Executable, payload, meta)
	elapsed := time.Since(started)

	envelope := &Envelope{
		AgentID: pkg.ID,
		Version: pkg.Version,
		RunID:   runID,
	}
	if execErr != nil {
		envelope.Error = failureMessage(execErr)
		event.Publish(event.Event{Type: event.RunFailed, Data: event.RunFailedData{
			RunID:      runID,
			AgentID:    pkg.ID,
			Version:    pkg.Version,
			DurationMS: elapsed.Milliseconds(),
			Error:      envelope.Error,
		}})
	} else {
		if output == nil {
			output = &agent.Output{}
		}
		output.Normalize()
		envelope.Success = true
		envelope.Output = output
		event.Publish(event.Event{Type: event.RunCompleted, Data: event.RunCompletedData{
			RunID:      runID,
			AgentID:    pkg.ID,
			Version:    pkg.Version,
			DurationMS: elapsed.Milliseconds(),
			Summary:    output.Summary,
		}})
	}

	d.record(ctx, envelope, payload, elapsed)
	return envelope, nil
}

// invoke executes the agent in its own goroutine so the deadline holds
// even for executables that never check ctx. The result channel is
// buffered; an abandoned execution finishes without leaking.
func invoke(ctx context.Context, exe agent.Executable, payload json.RawMessage, meta *agent.Meta) (*agent.Output, error) {
	type result struct {
		output *agent.Output
		err    error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("agent panicked: %v", r)}
			}
		}()
		output, err := exe.Execute(ctx, payload, meta)
		done <- result{output: output, err: err}
	}()

	select {
	case res := <-done:
		return res.output, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "agent execution timed out"
	case errors.Is(err, context.Canceled):
		return "agent execution canceled"
	default:
		return err.Error()
	}
}

// record persists the run when a store is configured. Recording runs
// with the request's values detached from its cancellation; a store
// failure is logged and never fails the run.
func (d *Dispatcher) record(ctx context.Context, envelope *Envelope, payload json.RawMessage, elapsed time.Duration) {
	if d.runs == nil {
		return
	}

	run := &runstore.Run{
		ID:         envelope.RunID,
		AgentID:    envelope.AgentID,
		Version:    envelope.Version,
		Success:    envelope.Success,
		Input:      payload,
		Error:      envelope.Error,
		DurationMS: elapsed.Milliseconds(),
	}
	if envelope.Output != nil {
		if data, err := json.Marshal(envelope.Output); err == nil {
			run.Output = data
		}
	}

	if err := d.runs.Put(context.WithoutCancel(ctx), run); err != nil {
		logging.Warn().Err(err).Str("run_id", run.ID).Msg("recording run failed")
	}
}

// newRunID generates a new ULID for runs.
func newRunID() string {
	return ulid.Make().String()
}
