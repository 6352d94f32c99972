// Package manifest defines agent manifests and their validation.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Manifest is the declared metadata for one (agent_id, version) pair.
type Manifest struct {
	AgentID     string `json:"agent_id"`
	Version     string `json:"version"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	WhenToUse   string `json:"when_to_use"`

	// Inputs and Outputs map field names to human descriptions. They drive
	// dynamic form and payload builders in consumers; an empty mapping is
	// permitted, a missing one is not.
	Inputs  map[string]string `json:"inputs"`
	Outputs map[string]string `json:"outputs"`

	Owner     string `json:"owner"`
	Frequency string `json:"frequency"`
	Cost      string `json:"cost"`

	// Extra preserves unrecognized fields for forward compatibility.
	// They are carried through marshaling but never validated.
	Extra map[string]json.RawMessage `json:"-"`
}

// ValidationError reports one missing or malformed manifest field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("manifest field %q: %s", e.Field, e.Reason)
}

// knownFields are the manifest keys owned by the schema; everything else
// lands in Extra.
var knownFields = map[string]bool{
	"agent_id":    true,
	"version":     true,
	"name":        true,
	"category":    true,
	"description": true,
	"when_to_use": true,
	"inputs":      true,
	"outputs":     true,
	"owner":       true,
	"frequency":   true,
	"cost":        true,
}

// Parse decodes raw manifest data. Unknown fields are captured in Extra.
// Type mismatches surface as a *ValidationError naming the field.
func Parse(data []byte) (*Manifest, error) {
	type alias Manifest
	var m alias
	if err := json.Unmarshal(data, &m); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, &ValidationError{
				Field:  typeErr.Field,
				Reason: fmt.Sprintf("expected %s", typeErr.Type),
			}
		}
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	for key, value := range raw {
		if knownFields[key] {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]json.RawMessage)
		}
		m.Extra[key] = value
	}

	out := Manifest(m)
	return &out, nil
}

// Validate checks the required fields, returning a *ValidationError naming
// the first missing or malformed one. Validation is pure.
func (m *Manifest) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"agent_id", m.AgentID},
		{"version", m.Version},
		{"name", m.Name},
		{"category", m.Category},
		{"description", m.Description},
		{"when_to_use", m.WhenToUse},
		{"owner", m.Owner},
		{"frequency", m.Frequency},
		{"cost", m.Cost},
	}
	for _, r := range required {
		if r.value == "" {
			return &ValidationError{Field: r.field, Reason: "missing"}
		}
	}

	if m.Inputs == nil {
		return &ValidationError{Field: "inputs", Reason: "missing"}
	}
	if m.Outputs == nil {
		return &ValidationError{Field: "outputs", Reason: "missing"}
	}

	return nil
}

// MarshalJSON emits the schema fields plus any preserved extras.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	type alias Manifest
	data, err := json.Marshal((*alias)(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return data, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, value := range m.Extra {
		if !knownFields[key] {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}
