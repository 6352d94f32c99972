// Package registry maintains the in-memory catalog of discovered
// agents. The index is immutable after build: a reload constructs a
// replacement off to the side and publishes it with one atomic swap,
// so readers always observe a complete catalog.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/agentry-ai/agentry/internal/agent"
	"github.com/agentry-ai/agentry/internal/version"
)

// maxSuggestionDistance bounds how far an unknown agent id may be from
// a registered one before the did-you-mean hint is dropped.
const maxSuggestionDistance = 3

// Entry groups every known version of one agent.
type Entry struct {
	AgentID       string
	LatestVersion string

	// Versions is ascending under the version order.
	Versions []string

	Packages map[string]*agent.Package
}

// Latest returns the package for the entry's latest version.
func (e *Entry) Latest() *agent.Package {
	return e.Packages[e.LatestVersion]
}

// Descending returns the entry's versions newest first.
func (e *Entry) Descending() []string {
	return version.Descending(e.Versions)
}

// Index is the immutable agent catalog built from one discovery run.
type Index struct {
	entries map[string]*Entry
	aliases map[string]string
	ids     []string
}

// NewIndex builds an index from discovered packages. Duplicate
// versions within an agent and alias collisions between distinct
// agents are hard errors.
func NewIndex(packages []*agent.Package) (*Index, error) {
	ix := &Index{
		entries: make(map[string]*Entry),
		aliases: make(map[string]string),
	}

	for _, pkg := range packages {
		entry, ok := ix.entries[pkg.ID]
		if !ok {
			entry = &Entry{
				AgentID:  pkg.ID,
				Packages: make(map[string]*agent.Package),
			}
			ix.entries[pkg.ID] = entry
			ix.ids = append(ix.ids, pkg.ID)

			for _, alias := range aliasesFor(pkg.ID) {
				if other, taken := ix.aliases[alias]; taken && other != pkg.ID {
					return nil, fmt.Errorf("agents %s and %s collide on alias %s", other, pkg.ID, alias)
				}
				ix.aliases[alias] = pkg.ID
			}
		}

		if _, dup := entry.Packages[pkg.Version]; dup {
			return nil, fmt.Errorf("duplicate version %s for agent %s", pkg.Version, pkg.ID)
		}
		entry.Packages[pkg.Version] = pkg
		entry.Versions = append(entry.Versions, pkg.Version)
	}

	for _, entry := range ix.entries {
		version.Sort(entry.Versions)
		entry.LatestVersion = entry.Versions[len(entry.Versions)-1]
	}
	sort.Strings(ix.ids)

	return ix, nil
}

// aliasesFor returns the lookup keys an agent id registers under:
// the lowercased id and its underscore spelling.
func aliasesFor(agentID string) []string {
	lowered := strings.ToLower(agentID)
	underscored := strings.ReplaceAll(lowered, "-", "_")
	if underscored == lowered {
		return []string{lowered}
	}
	return []string{lowered, underscored}
}

// Get retrieves an entry by agent id, tolerating case and
// hyphen/underscore spelling differences.
func (ix *Index) Get(agentID string) (*Entry, bool) {
	lowered := strings.ToLower(agentID)
	if canonical, ok := ix.aliases[lowered]; ok {
		return ix.entries[canonical], true
	}

	underscored := strings.ReplaceAll(lowered, "-", "_")
	if underscored != lowered {
		if canonical, ok := ix.aliases[underscored]; ok {
			return ix.entries[canonical], true
		}
	}

	return nil, false
}

// List returns every entry sorted by agent id.
func (ix *Index) List() []*Entry {
	entries := make([]*Entry, 0, len(ix.ids))
	for _, id := range ix.ids {
		entries = append(entries, ix.entries[id])
	}
	return entries
}

// Len returns the number of agents in the index.
func (ix *Index) Len() int {
	return len(ix.ids)
}

// PackageCount returns the number of (agent, version) packages.
func (ix *Index) PackageCount() int {
	count := 0
	for _, entry := range ix.entries {
		count += len(entry.Packages)
	}
	return count
}

// Resolve turns an agent id and an optional version into the concrete
// package to invoke. An empty version resolves to the latest.
func (ix *Index) Resolve(agentID, requestedVersion string) (*agent.Package, error) {
	entry, ok := ix.Get(agentID)
	if !ok {
		return nil, &UnknownAgentError{AgentID: agentID, Suggestion: ix.nearest(agentID)}
	}

	if requestedVersion == "" {
		return entry.Packages[entry.LatestVersion], nil
	}

	pkg, ok := entry.Packages[requestedVersion]
	if !ok {
		return nil, &UnknownVersionError{
			AgentID:   entry.AgentID,
			Version:   requestedVersion,
			Available: entry.Descending(),
		}
	}
	return pkg, nil
}

// nearest finds the registered agent id closest to the requested one,
// or "" when nothing is close enough to suggest.
func (ix *Index) nearest(agentID string) string {
	lowered := strings.ToLower(agentID)

	best := ""
	bestDistance := 0
	for _, id := range ix.ids {
		for _, alias := range aliasesFor(id) {
			distance := levenshtein.ComputeDistance(lowered, alias)
			if best == "" || distance < bestDistance {
				best = id
				bestDistance = distance
			}
		}
	}

	if best == "" || bestDistance > maxSuggestionDistance {
		return ""
	}
	return best
}
