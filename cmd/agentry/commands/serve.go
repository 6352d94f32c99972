package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentry-ai/agentry/internal/agents"
	"github.com/agentry-ai/agentry/internal/config"
	"github.com/agentry-ai/agentry/internal/discovery"
	"github.com/agentry-ai/agentry/internal/dispatch"
	"github.com/agentry-ai/agentry/internal/logging"
	"github.com/agentry-ai/agentry/internal/registry"
	"github.com/agentry-ai/agentry/internal/runstore"
	"github.com/agentry-ai/agentry/internal/server"
	"github.com/agentry-ai/agentry/internal/watch"
	"github.com/agentry-ai/agentry/pkg/types"
)

var (
	servePort     int
	serveHostname string
	serveDir      string
	serveAgents   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the agent runtime HTTP server",
	Long: `Start the agent registry and execution runtime as an HTTP service.

Discovery runs once before the server accepts traffic; an invalid
manifest aborts startup rather than serving a partial catalog. Send
SIGHUP (or POST /agents/reload) to rediscover without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveHostname, "hostname", "", "Hostname to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveDir, "directory", "", "Working directory")
	serveCmd.Flags().StringVar(&serveAgents, "agents-root", "", "Agents directory (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	workDir, err := GetWorkDir(serveDir)
	if err != nil {
		return err
	}

	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		return err
	}

	cfg, err := config.Load(workDir)
	if err != nil {
		return err
	}
	applyConfigLogging(cmd, cfg)

	agentsRoot := resolveAgentsRoot(workDir, cfg, serveAgents)

	// Build the registry before binding the listener: a broken catalog
	// refuses to start instead of serving half the agents.
	reg := registry.New(discovery.NewDirectorySource(agentsRoot, agents.Builtins(), cfg.AgentsIgnore()...))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := reg.Build(ctx); err != nil {
		return fmt.Errorf("agent discovery failed: %w", err)
	}

	index := reg.Snapshot()
	logging.Info().
		Str("root", agentsRoot).
		Int("agents", index.Len()).
		Int("packages", index.PackageCount()).
		Msg("agent registry built")

	runs, err := openRunStore(cfg, paths)
	if err != nil {
		return err
	}
	if runs != nil {
		defer runs.Close()
	}

	dispatcher := dispatch.New(reg, runs)

	serverConfig := server.DefaultConfig()
	serverConfig.Host = cfg.ServerHost()
	serverConfig.Port = cfg.ServerPort()
	serverConfig.EnableCORS = cfg.CORSEnabled()
	serverConfig.Version = Version
	if serveHostname != "" {
		serverConfig.Host = serveHostname
	}
	if servePort != 0 {
		serverConfig.Port = servePort
	}

	srv := server.New(serverConfig, reg, dispatcher, runs)

	if cfg.WatchEnabled() {
		watcher := watch.New(agentsRoot, reg)
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("watching agents root: %w", err)
		}
		defer watcher.Stop()
	}

	// SIGHUP rediscovers without a restart; a failed reload keeps the
	// current index serving.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for range hup {
			logging.Info().Msg("SIGHUP received, reloading registry")
			reg.Reload(ctx)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("host", serverConfig.Host).
			Int("port", serverConfig.Port).
			Msg("server listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("server shutdown")
	}
	return nil
}

// applyConfigLogging re-initializes logging with config values, unless
// the corresponding flag was given explicitly.
func applyConfigLogging(cmd *cobra.Command, cfg *types.Config) {
	level := logLevel
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel() != "" {
		level = cfg.LogLevel()
	}
	format := logFormat
	if !cmd.Flags().Changed("log-format") && cfg.LogFormat() != "" {
		format = cfg.LogFormat()
	}
	initLogging(level, format)
}

// resolveAgentsRoot picks the agents directory: flag wins over config,
// relative paths anchor at the working directory.
func resolveAgentsRoot(workDir string, cfg *types.Config, override string) string {
	root := override
	if root == "" {
		root = cfg.AgentsRoot()
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(workDir, root)
	}
	return root
}

// openRunStore opens run persistence per config. Unconfigured defaults
// to the XDG data path; an explicit disable returns no store.
func openRunStore(cfg *types.Config, paths *config.Paths) (*runstore.Store, error) {
	if cfg.Runs != nil && cfg.Runs.Disable {
		return nil, nil
	}
	path := cfg.RunsPath()
	if path == "" {
		path = paths.RunsDBPath()
	}
	runs, err := runstore.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening run store: %w", err)
	}
	return runs, nil
}
