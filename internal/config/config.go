package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentry-ai/agentry/pkg/types"
	"github.com/tidwall/jsonc"
)

// Load loads configuration from multiple sources (priority order):
// 1. Global config (~/.agentry/)
// 2. Global config (~/.config/agentry/ - XDG compatible)
// 3. Project config (<dir>/ and <dir>/.agentry/)
// 4. AGENTRY_CONFIG file
// 5. AGENTRY_CONFIG_CONTENT inline JSON
// 6. Environment variables
func Load(directory string) (*types.Config, error) {
	config := &types.Config{}

	// Track loaded files to avoid duplicates
	loaded := make(map[string]bool)

	loadOnce := func(path string, baseDir string) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if loaded[absPath] {
			return
		}
		if loadConfigFile(path, config, baseDir) == nil {
			loaded[absPath] = true
		}
	}

	// 1. Dotfile-style global config (~/.agentry/)
	home := os.Getenv("HOME")
	if home != "" {
		dotDir := filepath.Join(home, ".agentry")
		loadOnce(filepath.Join(dotDir, "agentry.json"), dotDir)
		loadOnce(filepath.Join(dotDir, "agentry.jsonc"), dotDir)
	}

	// 2. XDG-compatible global config (~/.config/agentry/)
	globalPath := GetPaths().Config
	loadOnce(filepath.Join(globalPath, "agentry.json"), globalPath)
	loadOnce(filepath.Join(globalPath, "agentry.jsonc"), globalPath)

	// 3. Project config
	if directory != "" {
		projectConfigDir := filepath.Join(directory, ".agentry")
		loadOnce(filepath.Join(directory, "agentry.json"), directory)
		loadOnce(filepath.Join(directory, "agentry.jsonc"), directory)
		loadOnce(filepath.Join(projectConfigDir, "agentry.json"), projectConfigDir)
		loadOnce(filepath.Join(projectConfigDir, "agentry.jsonc"), projectConfigDir)
	}

	// 4. AGENTRY_CONFIG file override
	if configPath := os.Getenv("AGENTRY_CONFIG"); configPath != "" {
		configDir := filepath.Dir(configPath)
		loadOnce(configPath, configDir)
	}

	// 5. AGENTRY_CONFIG_CONTENT inline JSON
	if configContent := os.Getenv("AGENTRY_CONFIG_CONTENT"); configContent != "" {
		var inlineConfig types.Config
		if err := json.Unmarshal([]byte(configContent), &inlineConfig); err == nil {
			mergeConfig(config, &inlineConfig)
		}
	}

	// 6. Environment variables (highest priority)
	applyEnvOverrides(config)

	return config, nil
}

// loadConfigFile loads a single config file with interpolation support.
func loadConfigFile(path string, config *types.Config, baseDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err // File doesn't exist, skip
	}

	// Strip JSONC comments using tidwall/jsonc
	data = jsonc.ToJSON(data)

	// Apply interpolation
	data = interpolate(data, baseDir)

	var fileConfig types.Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return err
	}

	mergeConfig(config, &fileConfig)
	return nil
}

// interpolate processes {env:VAR} and {file:path} placeholders.
func interpolate(data []byte, baseDir string) []byte {
	str := string(data)

	// Handle {env:VAR_NAME} placeholders
	envPattern := regexp.MustCompile(`\{env:([^}]+)\}`)
	str = envPattern.ReplaceAllStringFunc(str, func(match string) string {
		varName := envPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})

	// Handle {file:path} placeholders
	filePattern := regexp.MustCompile(`\{file:([^}]+)\}`)
	str = filePattern.ReplaceAllStringFunc(str, func(match string) string {
		filePath := filePattern.FindStringSubmatch(match)[1]

		// Resolve path
		if strings.HasPrefix(filePath, "~/") {
			home := os.Getenv("HOME")
			filePath = filepath.Join(home, filePath[2:])
		} else if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(baseDir, filePath)
		}

		content, err := os.ReadFile(filePath)
		if err != nil {
			return match // Keep original if file not found
		}

		// Escape for JSON string
		escaped := strings.ReplaceAll(string(content), "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		escaped = strings.ReplaceAll(escaped, "\n", "\\n")
		escaped = strings.ReplaceAll(escaped, "\r", "\\r")
		escaped = strings.ReplaceAll(escaped, "\t", "\\t")

		return escaped
	})

	return []byte(str)
}

// mergeConfig merges source config into target.
func mergeConfig(target, source *types.Config) {
	if source.Schema != "" {
		target.Schema = source.Schema
	}

	if source.Server != nil {
		if target.Server == nil {
			target.Server = &types.ServerConfig{}
		}
		if source.Server.Host != "" {
			target.Server.Host = source.Server.Host
		}
		if source.Server.Port != 0 {
			target.Server.Port = source.Server.Port
		}
		if source.Server.CORS != nil {
			target.Server.CORS = source.Server.CORS
		}
	}

	if source.Agents != nil {
		if target.Agents == nil {
			target.Agents = &types.AgentsConfig{}
		}
		if source.Agents.Root != "" {
			target.Agents.Root = source.Agents.Root
		}
		if len(source.Agents.Ignore) > 0 {
			target.Agents.Ignore = append(target.Agents.Ignore, source.Agents.Ignore...)
		}
		if source.Agents.Watch != nil {
			target.Agents.Watch = source.Agents.Watch
		}
	}

	if source.Runs != nil {
		if target.Runs == nil {
			target.Runs = &types.RunsConfig{}
		}
		if source.Runs.Path != "" {
			target.Runs.Path = source.Runs.Path
		}
		if source.Runs.Disable {
			target.Runs.Disable = true
		}
	}

	if source.Log != nil {
		if target.Log == nil {
			target.Log = &types.LogConfig{}
		}
		if source.Log.Level != "" {
			target.Log.Level = source.Log.Level
		}
		if source.Log.Format != "" {
			target.Log.Format = source.Log.Format
		}
	}
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(config *types.Config) {
	if host := os.Getenv("AGENTRY_HOST"); host != "" {
		if config.Server == nil {
			config.Server = &types.ServerConfig{}
		}
		config.Server.Host = host
	}

	if port := os.Getenv("AGENTRY_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			if config.Server == nil {
				config.Server = &types.ServerConfig{}
			}
			config.Server.Port = n
		}
	}

	if root := os.Getenv("AGENTRY_AGENTS_ROOT"); root != "" {
		if config.Agents == nil {
			config.Agents = &types.AgentsConfig{}
		}
		config.Agents.Root = root
	}

	if watch := os.Getenv("AGENTRY_AGENTS_WATCH"); watch != "" {
		if b, err := strconv.ParseBool(watch); err == nil {
			if config.Agents == nil {
				config.Agents = &types.AgentsConfig{}
			}
			config.Agents.Watch = &b
		}
	}

	if runsPath := os.Getenv("AGENTRY_RUNS_PATH"); runsPath != "" {
		if config.Runs == nil {
			config.Runs = &types.RunsConfig{}
		}
		config.Runs.Path = runsPath
	}

	if level := os.Getenv("AGENTRY_LOG_LEVEL"); level != "" {
		if config.Log == nil {
			config.Log = &types.LogConfig{}
		}
		config.Log.Level = level
	}

	if format := os.Getenv("AGENTRY_LOG_FORMAT"); format != "" {
		if config.Log == nil {
			config.Log = &types.LogConfig{}
		}
		config.Log.Format = format
	}
}

// Save saves the configuration to a file.
func Save(config *types.Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetConfigDir returns the config directory to use.
// Prefers AGENTRY_CONFIG_DIR, then ~/.agentry, then ~/.config/agentry.
func GetConfigDir() string {
	// Check environment variable first
	if dir := os.Getenv("AGENTRY_CONFIG_DIR"); dir != "" {
		return dir
	}

	// Check for dotfile-style location
	home := os.Getenv("HOME")
	if home != "" {
		dotDir := filepath.Join(home, ".agentry")
		if _, err := os.Stat(dotDir); err == nil {
			return dotDir
		}
	}

	// Fall back to XDG location
	return GetPaths().Config
}
