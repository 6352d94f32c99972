package event

// RegistryReloadedData is the data for registry.reloaded events.
type RegistryReloadedData struct {
	Agents   int   `json:"agents"`
	Packages int   `json:"packages"`
	Elapsed  int64 `json:"elapsed_ms"`
}

// RunStartedData is the data for run.started events.
type RunStartedData struct {
	RunID   string `json:"run_id"`
	AgentID string `json:"agent_id"`
	Version string `json:"version"`
}

// RunProgressData is the data for run.progress events emitted as an
// agent moves through its stages.
type RunProgressData struct {
	RunID   string         `json:"run_id"`
	AgentID string         `json:"agent_id"`
	Version string         `json:"version"`
	Stage   string         `json:"stage"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// RunCompletedData is the data for run.completed events.
type RunCompletedData struct {
	RunID      string `json:"run_id"`
	AgentID    string `json:"agent_id"`
	Version    string `json:"version"`
	DurationMS int64  `json:"duration_ms"`
	Summary    string `json:"summary"`
}

// RunFailedData is the data for run.failed events.
type RunFailedData struct {
	RunID      string `json:"run_id"`
	AgentID    string `json:"agent_id"`
	Version    string `json:"version"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error"`
}
