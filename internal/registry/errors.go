package registry

import (
	"fmt"
	"strings"
)

// UnknownAgentError reports a lookup for an agent id the registry has
// never seen. Maps to a not-found condition at the transport layer.
type UnknownAgentError struct {
	AgentID    string
	Suggestion string
}

func (e *UnknownAgentError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("agent not found: %s (did you mean %s?)", e.AgentID, e.Suggestion)
	}
	return fmt.Sprintf("agent not found: %s", e.AgentID)
}

// UnknownVersionError reports a version the agent does not provide.
// Maps to a bad-request condition at the transport layer. Available
// lists the known versions newest first.
type UnknownVersionError struct {
	AgentID   string
	Version   string
	Available []string
}

func (e *UnknownVersionError) Error() string {
	available := strings.Join(e.Available, ", ")
	if available == "" {
		available = "none"
	}
	return fmt.Sprintf("version %q not found for agent %q, available versions: %s",
		e.Version, e.AgentID, available)
}
