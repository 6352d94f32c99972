package manifest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validManifest = `{
	"agent_id": "seo-opportunity-miner",
	"version": "v1",
	"name": "SEO Opportunity Miner",
	"category": "seo",
	"description": "Finds the highest-impact SEO fix from search console data.",
	"when_to_use": "Weekly, after fresh search console exports land.",
	"inputs": {
		"search_console_rows": "Rows of query/page performance data",
		"site_pages": "Known site page URLs"
	},
	"outputs": {
		"recommended_fix": "The single best fix to apply"
	},
	"owner": "growth",
	"frequency": "weekly",
	"cost": "low"
}`

func TestParseValid(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	require.NoError(t, err)

	assert.Equal(t, "seo-opportunity-miner", m.AgentID)
	assert.Equal(t, "v1", m.Version)
	assert.Equal(t, "seo", m.Category)
	assert.Equal(t, "growth", m.Owner)
	assert.Len(t, m.Inputs, 2)
	assert.Len(t, m.Outputs, 1)
	assert.Empty(t, m.Extra)

	require.NoError(t, m.Validate())
}

func TestParsePreservesUnknownFields(t *testing.T) {
	data := `{
		"agent_id": "alpha",
		"version": "v1",
		"name": "Alpha",
		"category": "demo",
		"description": "d",
		"when_to_use": "w",
		"inputs": {},
		"outputs": {},
		"owner": "o",
		"frequency": "daily",
		"cost": "low",
		"experimental": true,
		"labels": ["a", "b"]
	}`

	m, err := Parse([]byte(data))
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	require.Len(t, m.Extra, 2)
	assert.JSONEq(t, "true", string(m.Extra["experimental"]))
	assert.JSONEq(t, `["a","b"]`, string(m.Extra["labels"]))

	// Round-trip keeps the extras
	out, err := json.Marshal(m)
	require.NoError(t, err)

	var roundTripped map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &roundTripped))
	assert.Contains(t, roundTripped, "experimental")
	assert.Contains(t, roundTripped, "labels")
	assert.Contains(t, roundTripped, "agent_id")
}

func TestParseTypeMismatch(t *testing.T) {
	data := `{"agent_id": "alpha", "inputs": "not-a-map"}`

	_, err := Parse([]byte(data))
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "inputs", verr.Field)
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	require.Error(t, err)
}

func TestValidateMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		strip string
	}{
		{"missing agent_id", "agent_id"},
		{"missing version", "version"},
		{"missing name", "name"},
		{"missing category", "category"},
		{"missing description", "description"},
		{"missing when_to_use", "when_to_use"},
		{"missing inputs", "inputs"},
		{"missing outputs", "outputs"},
		{"missing owner", "owner"},
		{"missing frequency", "frequency"},
		{"missing cost", "cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal([]byte(validManifest), &fields))
			delete(fields, tt.strip)
			data, err := json.Marshal(fields)
			require.NoError(t, err)

			m, err := Parse(data)
			require.NoError(t, err)

			err = m.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.strip, verr.Field, "error should name the stripped field")
		})
	}
}

func TestValidateEmptyMappingsPermitted(t *testing.T) {
	data := `{
		"agent_id": "alpha",
		"version": "v1",
		"name": "Alpha",
		"category": "demo",
		"description": "d",
		"when_to_use": "w",
		"inputs": {},
		"outputs": {},
		"owner": "o",
		"frequency": "daily",
		"cost": "low"
	}`

	m, err := Parse([]byte(data))
	require.NoError(t, err)
	assert.NoError(t, m.Validate())
	assert.NotNil(t, m.Inputs)
	assert.Empty(t, m.Inputs)
}

func TestValidateSchemaValid(t *testing.T) {
	result, err := ValidateSchema([]byte(validManifest))
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Issues)
}

func TestValidateSchemaReportsAllIssues(t *testing.T) {
	data := `{
		"agent_id": "Alpha Agent",
		"version": "v1",
		"name": "Alpha",
		"inputs": {"rows": 42},
		"outputs": {}
	}`

	result, err := ValidateSchema([]byte(data))
	require.NoError(t, err)
	require.False(t, result.Valid)
	require.NotEmpty(t, result.Issues)

	// Expect at least the pattern failure, the type failure, and the
	// missing-required failure to be reported together.
	keywords := make(map[string]bool)
	paths := make(map[string]bool)
	for _, issue := range result.Issues {
		keywords[issue.Keyword] = true
		paths[issue.Path] = true
	}
	assert.True(t, keywords["pattern"], "issues: %+v", result.Issues)
	assert.True(t, keywords["required"], "issues: %+v", result.Issues)
	assert.True(t, paths["/inputs/rows"], "issues: %+v", result.Issues)
}

func TestValidateSchemaBadJSON(t *testing.T) {
	_, err := ValidateSchema([]byte("{broken"))
	require.Error(t, err)
}
