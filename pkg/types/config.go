// Package types defines the configuration and API types shared across the service.
package types

// Config is the root service configuration.
type Config struct {
	// Schema is the optional JSON schema reference.
	Schema string `json:"$schema,omitempty"`

	// Server configures the HTTP listener.
	Server *ServerConfig `json:"server,omitempty"`

	// Agents configures discovery of agent packages.
	Agents *AgentsConfig `json:"agents,omitempty"`

	// Runs configures run persistence.
	Runs *RunsConfig `json:"runs,omitempty"`

	// Log configures logging.
	Log *LogConfig `json:"log,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
	CORS *bool  `json:"cors,omitempty"`
}

// AgentsConfig holds agent discovery settings.
type AgentsConfig struct {
	// Root is the agents directory scanned at startup. Defaults to "agents".
	Root string `json:"root,omitempty"`
	// Ignore lists glob patterns excluded from discovery.
	Ignore []string `json:"ignore,omitempty"`
	// Watch enables automatic reload when the agents directory changes.
	Watch *bool `json:"watch,omitempty"`
}

// RunsConfig holds run persistence settings.
type RunsConfig struct {
	// Path is the SQLite database file for run records.
	Path string `json:"path,omitempty"`
	// Disable turns off run persistence entirely.
	Disable bool `json:"disable,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `json:"level,omitempty"`  // DEBUG|INFO|WARN|ERROR
	Format string `json:"format,omitempty"` // "json"|"console"
}

// Defaults applied when a section or field is absent.
const (
	DefaultHost       = "127.0.0.1"
	DefaultPort       = 8080
	DefaultAgentsRoot = "agents"
)

// ServerHost returns the configured host or the default.
func (c *Config) ServerHost() string {
	if c != nil && c.Server != nil && c.Server.Host != "" {
		return c.Server.Host
	}
	return DefaultHost
}

// ServerPort returns the configured port or the default.
func (c *Config) ServerPort() int {
	if c != nil && c.Server != nil && c.Server.Port != 0 {
		return c.Server.Port
	}
	return DefaultPort
}

// CORSEnabled reports whether CORS middleware should be installed.
// Enabled unless explicitly turned off.
func (c *Config) CORSEnabled() bool {
	if c != nil && c.Server != nil && c.Server.CORS != nil {
		return *c.Server.CORS
	}
	return true
}

// AgentsRoot returns the configured agents directory or the default.
func (c *Config) AgentsRoot() string {
	if c != nil && c.Agents != nil && c.Agents.Root != "" {
		return c.Agents.Root
	}
	return DefaultAgentsRoot
}

// AgentsIgnore returns the configured ignore globs.
func (c *Config) AgentsIgnore() []string {
	if c != nil && c.Agents != nil {
		return c.Agents.Ignore
	}
	return nil
}

// WatchEnabled reports whether the agents directory watcher is on.
// Off unless explicitly enabled.
func (c *Config) WatchEnabled() bool {
	if c != nil && c.Agents != nil && c.Agents.Watch != nil {
		return *c.Agents.Watch
	}
	return false
}

// RunsPath returns the run store path, or "" when persistence is disabled
// or unconfigured.
func (c *Config) RunsPath() string {
	if c == nil || c.Runs == nil || c.Runs.Disable {
		return ""
	}
	return c.Runs.Path
}

// LogLevel returns the configured log level string.
func (c *Config) LogLevel() string {
	if c != nil && c.Log != nil {
		return c.Log.Level
	}
	return ""
}

// LogFormat returns the configured log format string.
func (c *Config) LogFormat() string {
	if c != nil && c.Log != nil {
		return c.Log.Format
	}
	return ""
}
