package types

// AgentOutput is the structured result every agent execution produces.
// Artifacts carries the structured payloads (files, links, typed results),
// Metrics holds observability values, NextActions lists suggested
// follow-ups.
type AgentOutput struct {
	Summary     string           `json:"summary"`
	Artifacts   []map[string]any `json:"artifacts"`
	Metrics     map[string]any   `json:"metrics"`
	NextActions []string         `json:"next_actions"`
}

// Normalize replaces nil collections with empty ones so the serialized
// form always carries arrays and objects.
func (o *AgentOutput) Normalize() {
	if o.Artifacts == nil {
		o.Artifacts = []map[string]any{}
	}
	if o.Metrics == nil {
		o.Metrics = map[string]any{}
	}
	if o.NextActions == nil {
		o.NextActions = []string{}
	}
}
