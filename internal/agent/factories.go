package agent

import (
	"sort"
	"sync"

	"github.com/agentry-ai/agentry/internal/version"
)

// Factory constructs a fresh Executable for one agent version.
type Factory func() Executable

type factoryKey struct {
	id      string
	version string
}

// Factories maps (agent id, version) pairs to executable factories.
type Factories struct {
	mu        sync.RWMutex
	factories map[factoryKey]Factory
}

// NewFactories creates an empty factory table.
func NewFactories() *Factories {
	return &Factories{
		factories: make(map[factoryKey]Factory),
	}
}

// Register adds a factory for the given agent version.
func (f *Factories) Register(id, ver string, factory Factory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.factories[factoryKey{id: id, version: ver}] = factory
}

// Lookup retrieves the factory for an agent version.
func (f *Factories) Lookup(id, ver string) (Factory, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	factory, ok := f.factories[factoryKey{id: id, version: ver}]
	return factory, ok
}

// New constructs an executable for the given agent version.
func (f *Factories) New(id, ver string) (Executable, bool) {
	factory, ok := f.Lookup(id, ver)
	if !ok {
		return nil, false
	}
	return factory(), true
}

// Versions returns the registered versions for an agent, ordered
// oldest to newest.
func (f *Factories) Versions(id string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var versions []string
	for key := range f.factories {
		if key.id == id {
			versions = append(versions, key.version)
		}
	}
	version.Sort(versions)
	return versions
}

// IDs returns all agent ids with at least one registered factory.
func (f *Factories) IDs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	seen := make(map[string]bool)
	var ids []string
	for key := range f.factories {
		if !seen[key.id] {
			seen[key.id] = true
			ids = append(ids, key.id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered factories.
func (f *Factories) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.factories)
}
