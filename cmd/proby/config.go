package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Config holds all REPL configuration options.
type Config struct {
	Prompt      string `json:"prompt,omitempty"`
	HistoryFile string `json:"history_file,omitempty"` //nolint:tagliatelle // snake_case for config file
	DumpFile    string `json:"dump_file,omitempty"`    //nolint:tagliatelle // snake_case for config file
	BulkCount   int    `json:"bulk_count,omitempty"`   //nolint:tagliatelle // snake_case for config file
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Prompt:    "proby> ",
		DumpFile:  "proby.json",
		BulkCount: 1000,
	}
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".proby.json"

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/proby/config.json if set, otherwise
// ~/.config/proby/config.json. Returns empty string if the home directory
// cannot be determined.
func getGlobalConfigPath(env []string) string {
	// Check for XDG_CONFIG_HOME in the provided env slice first
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok {
			return filepath.Join(after, "proby", "config.json")
		}
	}

	// Fall back to os.Getenv
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "proby", "config.json")
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".config", "proby", "config.json")
	}

	return ""
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config ($XDG_CONFIG_HOME/proby/config.json or ~/.config/proby/config.json)
// 3. Project config file in the working directory (.proby.json, if exists)
// 4. Explicit config file via configPath (if non-empty).
func LoadConfig(workDir, configPath string, env []string) (Config, ConfigSources, error) {
	cfg := DefaultConfig()

	var sources ConfigSources

	// Load global config if it exists
	globalCfg, globalPath, err := loadGlobalConfig(env)
	if err != nil {
		return Config{}, ConfigSources{}, err
	}

	sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	// Load project/explicit config file
	projectCfg, projectPath, err := loadProjectConfig(workDir, configPath)
	if err != nil {
		return Config{}, ConfigSources{}, err
	}

	sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	validateErr := validateConfig(cfg)
	if validateErr != nil {
		return Config{}, ConfigSources{}, validateErr
	}

	return cfg, sources, nil
}

// loadGlobalConfig loads the global user config file if it exists.
// Returns the config, the path if loaded, and any error.
func loadGlobalConfig(env []string) (Config, string, error) {
	globalCfgPath := getGlobalConfigPath(env)
	if globalCfgPath == "" {
		return Config{}, "", nil
	}

	globalCfg, loaded, err := loadConfigFile(globalCfgPath, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	return globalCfg, globalCfgPath, nil
}

// loadProjectConfig loads the project config file (.proby.json) or an
// explicit config file. Returns the config, the path if loaded, and any error.
func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	var cfgFile string

	var mustExist bool

	if configPath != "" {
		// Explicit config file - must exist
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true

		// Check existence first to provide a clear "not found" error
		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", errConfigFileNotFound, configPath)
		}
	} else {
		// Default project config file - optional
		cfgFile = filepath.Join(workDir, ConfigFileName)
		mustExist = false
	}

	fileCfg, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	return fileCfg, cfgFile, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files
// return zero config. Returns the config, whether the file was loaded, and
// any error.
func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		if mustExist {
			return Config{}, false, fmt.Errorf("%w: %s", errConfigFileRead, path)
		}

		return Config{}, false, nil
	}

	cfg, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.Prompt != "" {
		base.Prompt = overlay.Prompt
	}

	if overlay.HistoryFile != "" {
		base.HistoryFile = overlay.HistoryFile
	}

	if overlay.DumpFile != "" {
		base.DumpFile = overlay.DumpFile
	}

	if overlay.BulkCount != 0 {
		base.BulkCount = overlay.BulkCount
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.BulkCount < 1 {
		return errBulkCountInvalid
	}

	return nil
}

// FormatConfig returns the config as formatted JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}
