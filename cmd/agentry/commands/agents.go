package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentry-ai/agentry/internal/agents"
	"github.com/agentry-ai/agentry/internal/catalog"
	"github.com/agentry-ai/agentry/internal/config"
	"github.com/agentry-ai/agentry/internal/discovery"
	"github.com/agentry-ai/agentry/internal/dispatch"
	"github.com/agentry-ai/agentry/internal/manifest"
	"github.com/agentry-ai/agentry/internal/registry"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Inspect and run agents from the local agents directory",
}

var (
	agentsListDir    string
	agentsListRoot   string
	agentsListFormat string
)

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Discover agents and print the catalog",
	RunE:  runAgentsList,
}

var (
	agentsValidateDir string
)

var agentsValidateCmd = &cobra.Command{
	Use:   "validate [agents-root]",
	Short: "Validate every manifest under the agents directory",
	Long: `Validate every manifest under the agents directory against the
manifest schema, reporting all issues instead of stopping at the first.
Exits nonzero when any manifest is invalid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAgentsValidate,
}

var (
	agentsRunDir     string
	agentsRunRoot    string
	agentsRunVersion string
	agentsRunInput   string
	agentsRunTimeout time.Duration
)

var agentsRunCmd = &cobra.Command{
	Use:   "run <agent_id>",
	Short: "Execute one agent locally and print the run envelope",
	Long: `Execute one agent against the local agents directory, without the
HTTP server. The input payload comes from --input (a file path, or "-"
for stdin); an omitted version resolves to the latest.

The uniform run envelope goes to stdout for both agent success and
agent failure; branch on its "success" field.`,
	Args: cobra.ExactArgs(1),
	RunE: runAgentsRun,
}

func init() {
	agentsListCmd.Flags().StringVar(&agentsListDir, "directory", "", "Working directory")
	agentsListCmd.Flags().StringVar(&agentsListRoot, "agents-root", "", "Agents directory (overrides config)")
	agentsListCmd.Flags().StringVar(&agentsListFormat, "format", catalog.FormatText, "Output format (text|json|yaml)")

	agentsValidateCmd.Flags().StringVar(&agentsValidateDir, "directory", "", "Working directory")

	agentsRunCmd.Flags().StringVar(&agentsRunDir, "directory", "", "Working directory")
	agentsRunCmd.Flags().StringVar(&agentsRunRoot, "agents-root", "", "Agents directory (overrides config)")
	agentsRunCmd.Flags().StringVarP(&agentsRunVersion, "version", "v", "", "Agent version (defaults to latest)")
	agentsRunCmd.Flags().StringVarP(&agentsRunInput, "input", "i", "", "Input payload file, or - for stdin")
	agentsRunCmd.Flags().DurationVar(&agentsRunTimeout, "timeout", time.Minute, "Execution deadline (0 disables)")

	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsValidateCmd)
	agentsCmd.AddCommand(agentsRunCmd)
}

// buildLocalRegistry discovers the agents tree the same way serve does
// and returns a built registry.
func buildLocalRegistry(ctx context.Context, dir, rootOverride string) (*registry.Registry, error) {
	workDir, err := GetWorkDir(dir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(workDir)
	if err != nil {
		return nil, err
	}

	agentsRoot := resolveAgentsRoot(workDir, cfg, rootOverride)
	reg := registry.New(discovery.NewDirectorySource(agentsRoot, agents.Builtins(), cfg.AgentsIgnore()...))
	if err := reg.Build(ctx); err != nil {
		return nil, fmt.Errorf("agent discovery failed: %w", err)
	}
	return reg, nil
}

func runAgentsList(cmd *cobra.Command, args []string) error {
	reg, err := buildLocalRegistry(cmd.Context(), agentsListDir, agentsListRoot)
	if err != nil {
		return err
	}

	data, err := catalog.Render(catalog.CatalogView(reg.Snapshot()), agentsListFormat)
	if err != nil {
		return err
	}
	cmd.OutOrStdout().Write(data)
	return nil
}

func runAgentsValidate(cmd *cobra.Command, args []string) error {
	workDir, err := GetWorkDir(agentsValidateDir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(workDir)
	if err != nil {
		return err
	}

	override := ""
	if len(args) == 1 {
		override = args[0]
	}
	agentsRoot := resolveAgentsRoot(workDir, cfg, override)

	out := cmd.OutOrStdout()
	checked, issues, err := validateTree(agentsRoot, out)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d manifest(s) checked, %d issue(s)\n", checked, issues)
	if issues > 0 {
		return fmt.Errorf("%d invalid manifest(s) under %s", issues, agentsRoot)
	}
	return nil
}

// validateTree checks every manifest under root, reporting all issues
// rather than stopping at the first. Pairs without a manifest are
// listed as skipped, matching what discovery would do.
func validateTree(root string, out io.Writer) (checked, issues int, err error) {
	agentDirs, err := os.ReadDir(root)
	if err != nil {
		return 0, 0, fmt.Errorf("read agents root %s: %w", root, err)
	}

	factories := agents.Builtins()

	for _, agentDir := range agentDirs {
		if !agentDir.IsDir() || strings.HasPrefix(agentDir.Name(), ".") || strings.HasPrefix(agentDir.Name(), "_") {
			continue
		}
		agentID := agentDir.Name()

		versionDirs, err := os.ReadDir(filepath.Join(root, agentID))
		if err != nil {
			return checked, issues, err
		}
		for _, versionDir := range versionDirs {
			if !versionDir.IsDir() || strings.HasPrefix(versionDir.Name(), ".") || strings.HasPrefix(versionDir.Name(), "_") {
				continue
			}
			version := versionDir.Name()
			rel := filepath.Join(agentID, version, discovery.ManifestFilename)

			data, err := os.ReadFile(filepath.Join(root, rel))
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Fprintf(out, "SKIP  %s (no manifest)\n", filepath.Join(agentID, version))
					continue
				}
				return checked, issues, err
			}
			checked++

			var found []string

			result, err := manifest.ValidateSchema(data)
			if err != nil {
				found = append(found, err.Error())
			} else {
				for _, issue := range result.Issues {
					found = append(found, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
				}
			}

			if m, err := manifest.Parse(data); err == nil {
				if m.AgentID != agentID || m.Version != version {
					found = append(found, fmt.Sprintf("declares identity %s@%s, directory derives %s@%s",
						m.AgentID, m.Version, agentID, version))
				}
			}
			if _, ok := factories.Lookup(agentID, version); !ok {
				found = append(found, "no executable registered")
			}

			if len(found) == 0 {
				fmt.Fprintf(out, "OK    %s\n", rel)
				continue
			}
			issues += len(found)
			fmt.Fprintf(out, "FAIL  %s\n", rel)
			sort.Strings(found)
			for _, msg := range found {
				fmt.Fprintf(out, "      %s\n", msg)
			}
		}
	}

	return checked, issues, nil
}

func runAgentsRun(cmd *cobra.Command, args []string) error {
	agentID := args[0]

	payload, err := readRunPayload(agentsRunInput)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if agentsRunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, agentsRunTimeout)
		defer cancel()
	}

	reg, err := buildLocalRegistry(ctx, agentsRunDir, agentsRunRoot)
	if err != nil {
		return err
	}

	// No run store for one-shot CLI dispatches.
	envelope, err := dispatch.New(reg, nil).Run(ctx, agentID, agentsRunVersion, payload, nil)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// readRunPayload loads the run input: a file path, "-" for stdin, or an
// empty object when no input was given.
func readRunPayload(input string) (json.RawMessage, error) {
	switch input {
	case "":
		return json.RawMessage(`{}`), nil
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading payload from stdin: %w", err)
		}
		return data, nil
	default:
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, fmt.Errorf("reading payload file: %w", err)
		}
		return data, nil
	}
}
