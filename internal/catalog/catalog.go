// Package catalog renders read-only projections of a registry index.
//
// Every view is a pure function over an immutable *registry.Index
// snapshot. Presenters never mutate the index and never recompute
// registry state; they only reshape what discovery already built.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/agentry-ai/agentry/internal/manifest"
	"github.com/agentry-ai/agentry/internal/registry"
)

// Render formats for CatalogView output.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// AgentRecord is the machine view of one agent: every version it ships
// and the manifest for each.
type AgentRecord struct {
	AgentID       string                        `json:"agent_id" yaml:"agent_id"`
	LatestVersion string                        `json:"latest_version" yaml:"latest_version"`
	Versions      []string                      `json:"versions" yaml:"versions"`
	Manifests     map[string]*manifest.Manifest `json:"manifests" yaml:"manifests"`
}

// ListEntry is the lightweight legacy listing shape.
type ListEntry struct {
	AgentID       string `json:"agent_id" yaml:"agent_id"`
	LatestVersion string `json:"latest_version" yaml:"latest_version"`
	Name          string `json:"name" yaml:"name"`
	Category      string `json:"category" yaml:"category"`
}

// CatalogEntry is the human-facing description of one agent, drawn from
// its latest manifest.
type CatalogEntry struct {
	AgentID       string            `json:"agent_id" yaml:"agent_id"`
	Name          string            `json:"name" yaml:"name"`
	LatestVersion string            `json:"latest_version" yaml:"latest_version"`
	Versions      []string          `json:"versions" yaml:"versions"`
	Description   string            `json:"description" yaml:"description"`
	WhenToUse     string            `json:"when_to_use" yaml:"when_to_use"`
	Inputs        map[string]string `json:"inputs" yaml:"inputs"`
	Outputs       map[string]string `json:"outputs" yaml:"outputs"`
	Owner         string            `json:"owner" yaml:"owner"`
	Frequency     string            `json:"frequency" yaml:"frequency"`
	Cost          string            `json:"cost" yaml:"cost"`
}

// Category groups the catalog entries sharing one manifest category.
type Category struct {
	Name   string         `json:"category" yaml:"category"`
	Agents []CatalogEntry `json:"agents" yaml:"agents"`
}

// RegistryView emits every entry for machine consumption, ordered by
// agent id with versions ascending.
func RegistryView(ix *registry.Index) []AgentRecord {
	records := make([]AgentRecord, 0, ix.Len())
	for _, entry := range ix.List() {
		manifests := make(map[string]*manifest.Manifest, len(entry.Packages))
		for v, pkg := range entry.Packages {
			manifests[v] = pkg.Manifest
		}
		records = append(records, AgentRecord{
			AgentID:       entry.AgentID,
			LatestVersion: entry.LatestVersion,
			Versions:      append([]string(nil), entry.Versions...),
			Manifests:     manifests,
		})
	}
	return records
}

// ListView emits the legacy lightweight listing, ordered by agent id.
func ListView(ix *registry.Index) []ListEntry {
	entries := make([]ListEntry, 0, ix.Len())
	for _, entry := range ix.List() {
		m := entry.Latest().Manifest
		entries = append(entries, ListEntry{
			AgentID:       entry.AgentID,
			LatestVersion: entry.LatestVersion,
			Name:          m.Name,
			Category:      m.Category,
		})
	}
	return entries
}

// CatalogView groups agents by manifest category. Categories order
// alphabetically and agents within a category order by agent id.
func CatalogView(ix *registry.Index) []Category {
	grouped := make(map[string][]CatalogEntry)
	for _, entry := range ix.List() {
		m := entry.Latest().Manifest
		grouped[m.Category] = append(grouped[m.Category], CatalogEntry{
			AgentID:       entry.AgentID,
			Name:          m.Name,
			LatestVersion: entry.LatestVersion,
			Versions:      append([]string(nil), entry.Versions...),
			Description:   m.Description,
			WhenToUse:     m.WhenToUse,
			Inputs:        m.Inputs,
			Outputs:       m.Outputs,
			Owner:         m.Owner,
			Frequency:     m.Frequency,
			Cost:          m.Cost,
		})
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	categories := make([]Category, 0, len(names))
	for _, name := range names {
		categories = append(categories, Category{Name: name, Agents: grouped[name]})
	}
	return categories
}

// Render serializes a catalog view in the requested format.
func Render(categories []Category, format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return json.MarshalIndent(categories, "", "  ")
	case FormatYAML:
		return yaml.Marshal(categories)
	case FormatText:
		return RenderText(categories), nil
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
}

// RenderText renders the grouped catalog as aligned plain-text tables,
// one per category.
func RenderText(categories []Category) []byte {
	var buf bytes.Buffer
	for i, category := range categories {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "%s (%d)\n", category.Name, len(category.Agents))

		w := tabwriter.NewWriter(&buf, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "  AGENT\tLATEST\tOWNER\tNAME")
		for _, a := range category.Agents {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", a.AgentID, a.LatestVersion, a.Owner, a.Name)
		}
		w.Flush()
	}
	if buf.Len() == 0 {
		buf.WriteString("no agents discovered\n")
	}
	return buf.Bytes()
}
