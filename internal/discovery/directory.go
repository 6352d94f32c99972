package discovery

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/agentry-ai/agentry/internal/agent"
	"github.com/agentry-ai/agentry/internal/manifest"
)

// ManifestFilename is the per-version metadata file the directory
// source looks for.
const ManifestFilename = "manifest.json"

// DirectorySource discovers agents laid out as
// <root>/<agent_id>/<version>/manifest.json. Directory names are the
// package identity; the manifest must agree with them. A version
// directory without a manifest is skipped, an invalid manifest aborts
// discovery. A missing root yields no packages.
type DirectorySource struct {
	// Root is the agents directory to walk.
	Root string

	// Ignore holds glob patterns, relative to Root, for entries to
	// skip. Patterns match both "<agent_id>" and "<agent_id>/<version>".
	Ignore []string

	// Factories provides the executable for each discovered pair.
	Factories *agent.Factories
}

// NewDirectorySource creates a directory source over root.
func NewDirectorySource(root string, factories *agent.Factories, ignore ...string) *DirectorySource {
	return &DirectorySource{
		Root:      root,
		Ignore:    ignore,
		Factories: factories,
	}
}

func (s *DirectorySource) Name() string {
	return "dir:" + s.Root
}

// Discover walks the agents tree in sorted directory order.
func (s *DirectorySource) Discover(ctx context.Context) ([]*agent.Package, error) {
	agentDirs, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read agents root %s: %w", s.Root, err)
	}

	var packages []*agent.Package

	for _, agentDir := range agentDirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if skipEntry(agentDir) {
			continue
		}
		agentID := agentDir.Name()

		ignored, err := s.ignored(agentID)
		if err != nil {
			return nil, err
		}
		if ignored {
			continue
		}

		versionDirs, err := os.ReadDir(filepath.Join(s.Root, agentID))
		if err != nil {
			return nil, fmt.Errorf("read agent directory %s: %w", filepath.Join(s.Root, agentID), err)
		}

		for _, versionDir := range versionDirs {
			if skipEntry(versionDir) {
				continue
			}
			version := versionDir.Name()

			ignored, err := s.ignored(path.Join(agentID, version))
			if err != nil {
				return nil, err
			}
			if ignored {
				continue
			}

			pkg, err := s.load(agentID, version)
			if err != nil {
				return nil, err
			}
			if pkg != nil {
				packages = append(packages, pkg)
			}
		}
	}

	return packages, nil
}

// load reads one (agent, version) pair. A missing manifest returns
// (nil, nil): the pair does not participate in the registry.
func (s *DirectorySource) load(agentID, version string) (*agent.Package, error) {
	manifestPath := filepath.Join(s.Root, agentID, version, ManifestFilename)

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest %s: %w", manifestPath, err)
	}

	m, err := manifest.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", manifestPath, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", manifestPath, err)
	}
	if m.AgentID != agentID || m.Version != version {
		return nil, fmt.Errorf("manifest %s declares identity %s@%s, directory derives %s@%s",
			manifestPath, m.AgentID, m.Version, agentID, version)
	}

	executable, ok := s.Factories.New(agentID, version)
	if !ok {
		return nil, fmt.Errorf("no executable registered for %s@%s (manifest %s)",
			agentID, version, manifestPath)
	}

	return &agent.Package{
		ID:         agentID,
		Version:    version,
		Manifest:   m,
		Executable: executable,
	}, nil
}

func (s *DirectorySource) ignored(rel string) (bool, error) {
	for _, pattern := range s.Ignore {
		match, err := doublestar.Match(pattern, rel)
		if err != nil {
			return false, fmt.Errorf("bad ignore pattern %q: %w", pattern, err)
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

func skipEntry(entry os.DirEntry) bool {
	if !entry.IsDir() {
		return true
	}
	name := entry.Name()
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
