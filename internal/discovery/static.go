package discovery

import (
	"context"
	"fmt"

	"github.com/agentry-ai/agentry/internal/agent"
	"github.com/agentry-ai/agentry/internal/manifest"
)

// StaticPackage declares one explicitly registered agent version.
type StaticPackage struct {
	ID       string
	Version  string
	Manifest *manifest.Manifest
	Factory  agent.Factory
}

// StaticSource provides agent packages registered in code rather than
// discovered on disk. Packages go through the same manifest validation
// and identity checks as the directory source.
type StaticSource struct {
	name     string
	packages []StaticPackage
}

// NewStaticSource creates a static source with the given packages.
func NewStaticSource(name string, packages ...StaticPackage) *StaticSource {
	return &StaticSource{name: name, packages: packages}
}

func (s *StaticSource) Name() string {
	return "static:" + s.name
}

func (s *StaticSource) Discover(ctx context.Context) ([]*agent.Package, error) {
	var packages []*agent.Package

	for _, sp := range s.packages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sp.Manifest == nil {
			return nil, fmt.Errorf("package %s@%s has no manifest", sp.ID, sp.Version)
		}
		if err := sp.Manifest.Validate(); err != nil {
			return nil, fmt.Errorf("package %s@%s: %w", sp.ID, sp.Version, err)
		}
		if sp.Manifest.AgentID != sp.ID || sp.Manifest.Version != sp.Version {
			return nil, fmt.Errorf("package %s@%s: manifest declares identity %s@%s",
				sp.ID, sp.Version, sp.Manifest.AgentID, sp.Manifest.Version)
		}
		if sp.Factory == nil {
			return nil, fmt.Errorf("no executable registered for %s@%s", sp.ID, sp.Version)
		}

		packages = append(packages, &agent.Package{
			ID:         sp.ID,
			Version:    sp.Version,
			Manifest:   sp.Manifest,
			Executable: sp.Factory(),
		})
	}

	return packages, nil
}
