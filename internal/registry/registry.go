package registry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/agentry-ai/agentry/internal/discovery"
	"github.com/agentry-ai/agentry/internal/event"
	"github.com/agentry-ai/agentry/internal/logging"
)

// Registry owns the index lifecycle: build once at startup, swap on
// reload, read many. Readers take snapshots and are never blocked by
// a rebuild.
type Registry struct {
	sources []discovery.Source
	index   atomic.Pointer[Index]
}

// New creates a registry over the given sources. The registry serves
// an empty index until the first successful Build.
func New(sources ...discovery.Source) *Registry {
	r := &Registry{sources: sources}
	empty, _ := NewIndex(nil)
	r.index.Store(empty)
	return r
}

// Build runs discovery over every source and swaps the fresh index in.
// On failure the current index keeps serving and the error reports the
// offending source. Publishes registry.reloaded after a swap.
func (r *Registry) Build(ctx context.Context) error {
	start := time.Now()

	packages, err := discovery.Run(ctx, r.sources...)
	if err != nil {
		return err
	}
	index, err := NewIndex(packages)
	if err != nil {
		return err
	}

	r.index.Store(index)

	event.Publish(event.Event{
		Type: event.RegistryReloaded,
		Data: event.RegistryReloadedData{
			Agents:   index.Len(),
			Packages: index.PackageCount(),
			Elapsed:  time.Since(start).Milliseconds(),
		},
	})
	return nil
}

// Reload rebuilds the index from the sources. Requests in flight keep
// the snapshot they started with; new requests observe the new index.
func (r *Registry) Reload(ctx context.Context) error {
	if err := r.Build(ctx); err != nil {
		logging.Warn().Err(err).Msg("registry reload failed, previous index still serving")
		return err
	}

	index := r.Snapshot()
	logging.Info().
		Int("agents", index.Len()).
		Int("packages", index.PackageCount()).
		Msg("registry reloaded")
	return nil
}

// Snapshot returns the current index.
func (r *Registry) Snapshot() *Index {
	return r.index.Load()
}
