// Package discovery builds agent packages from configured sources.
//
// A source yields validated (agent, version) packages: the directory
// source walks the on-disk agents tree, the static source registers
// packages compiled into the binary. Discovery is fail-fast: the first
// invalid manifest, identity mismatch, or missing executable aborts the
// whole run so a broken catalog never partially loads.
package discovery

import (
	"context"
	"fmt"

	"github.com/agentry-ai/agentry/internal/agent"
)

// Source yields agent packages from one registration strategy.
type Source interface {
	// Name identifies the source in error messages.
	Name() string

	// Discover returns every package the source provides.
	Discover(ctx context.Context) ([]*agent.Package, error)
}

// Run collects packages from every source in order. A duplicate
// (agent, version) pair across sources is an error naming both
// origins; the first source failure aborts the run.
func Run(ctx context.Context, sources ...Source) ([]*agent.Package, error) {
	seen := make(map[string]string)
	var all []*agent.Package

	for _, source := range sources {
		packages, err := source.Discover(ctx)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", source.Name(), err)
		}
		for _, pkg := range packages {
			key := pkg.ID + "@" + pkg.Version
			if origin, dup := seen[key]; dup {
				return nil, fmt.Errorf("duplicate agent %s provided by source %s and source %s",
					key, origin, source.Name())
			}
			seen[key] = source.Name()
			all = append(all, pkg)
		}
	}

	return all, nil
}
