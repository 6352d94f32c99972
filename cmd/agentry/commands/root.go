// Package commands provides the CLI commands for Agentry.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agentry-ai/agentry/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "agentry",
	Short: "Agentry - versioned agent registry and execution runtime",
	Long: `Agentry discovers agent packages laid out as
agents/<agent_id>/<version>/manifest.json, indexes them by version, and
executes them over HTTP or from the command line.

Run 'agentry serve' to start the HTTP runtime, or 'agentry agents list'
to inspect the registry.`,
	Version: Version,
	// If no subcommand, show help
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is fine; config interpolation and env
		// overrides pick up whatever it defines.
		godotenv.Load()
		initLogging(logLevel, logFormat)
	},
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format (json|console)")

	// Version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("agentry %s (%s)\n", Version, BuildTime))

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(agentsCmd)
}

func initLogging(level, format string) {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(level)
	cfg.Pretty = format != "json"
	logging.Init(cfg)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetWorkDir returns the working directory from flag or current directory.
func GetWorkDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}
