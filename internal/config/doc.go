// Package config provides configuration loading, merging, and path management.
//
// # Configuration Loading
//
// The Load function searches for and merges configuration from multiple
// sources in priority order:
//
//  1. Global config (~/.agentry/)
//  2. Global config (~/.config/agentry/ - XDG compatible)
//  3. Project config (agentry.json/agentry.jsonc and .agentry/ variants)
//  4. AGENTRY_CONFIG file
//  5. AGENTRY_CONFIG_CONTENT inline JSON
//  6. Environment variables
//
// More specific configurations override more general ones; environment
// variables have the highest precedence.
//
// # Supported Formats
//
// Both JSON and JSONC (JSON with Comments) are supported:
//   - agentry.json - Standard JSON configuration
//   - agentry.jsonc - JSON with comments, processed using tidwall/jsonc
//
// # Variable Interpolation
//
// Configuration files support two types of variable interpolation:
//   - {env:VAR_NAME} - Expands to environment variable values
//   - {file:path} - Expands to file contents (properly escaped for JSON)
//
// File paths in {file:path} placeholders support absolute paths, relative
// paths (resolved against the config file directory), and ~/ expansion.
//
// Example:
//
//	{
//	  "agents": {
//	    "root": "{env:AGENTRY_AGENTS_ROOT}"
//	  },
//	  "runs": {
//	    "path": "~/.local/share/agentry/runs.db"
//	  }
//	}
//
// # Environment Variable Overrides
//
//   - AGENTRY_HOST, AGENTRY_PORT - HTTP listener
//   - AGENTRY_AGENTS_ROOT, AGENTRY_AGENTS_WATCH - discovery
//   - AGENTRY_RUNS_PATH - run store database
//   - AGENTRY_LOG_LEVEL, AGENTRY_LOG_FORMAT - logging
//   - AGENTRY_CONFIG, AGENTRY_CONFIG_CONTENT, AGENTRY_CONFIG_DIR - sources
//
// # Path Management
//
// The Paths type provides XDG Base Directory Specification compliant paths:
//   - Data: ~/.local/share/agentry (XDG_DATA_HOME)
//   - Config: ~/.config/agentry (XDG_CONFIG_HOME)
//   - Cache: ~/.cache/agentry (XDG_CACHE_HOME)
//   - State: ~/.local/state/agentry (XDG_STATE_HOME)
//
// On Windows, these paths are adapted to use APPDATA as appropriate.
package config
