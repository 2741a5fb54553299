// Package config loads s3dedup's operator-facing settings — the local
// index path and the object-store endpoint — from a defaults → global
// file → project file → CLI-flag precedence chain, adapted from the
// teacher's ticket-directory config loader.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	DBPath      string `json:"db_path"`
	EndpointURL string `json:"endpoint_url,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"`
	DBPathAbs    string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string
	Project string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DBPath: "s3dedup.db",
	}
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".s3dedup.json"

// getGlobalConfigPath returns the path to the global config file. Uses
// $XDG_CONFIG_HOME/s3dedup/config.json if set, otherwise
// ~/.config/s3dedup/config.json. Returns empty string if neither is set.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "s3dedup", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "s3dedup", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride     string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath          string            // --config flag value
	DBPathOverride      string            // --db flag value; empty means no override
	EndpointURLOverride string            // --endpoint-url flag value; empty means no override
	Env                 map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest
// wins):
//  1. Defaults
//  2. Global user config (~/.config/s3dedup/config.json or
//     $XDG_CONFIG_HOME/s3dedup/config.json)
//  3. Project config file at the default location (.s3dedup.json, if it
//     exists) or an explicit --config file
//  4. CLI overrides
//
// All paths in the returned Config are resolved to absolute paths.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	globalCfg, globalPath, err := loadGlobalConfig(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	if input.DBPathOverride != "" {
		cfg.DBPath = input.DBPathOverride
	}

	if input.EndpointURLOverride != "" {
		cfg.EndpointURL = input.EndpointURLOverride
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir
	cfg.DBPathAbs = cfg.ResolveDBPath("")

	return cfg, nil
}

// ResolveDBPath returns the absolute index path, applying override if
// non-empty. Command-level --db flags are parsed after LoadConfig builds
// cfg, so commands call this to fold their flag in without re-running the
// whole precedence chain.
func (c Config) ResolveDBPath(override string) string {
	path := c.DBPath
	if override != "" {
		path = override
	}

	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(c.EffectiveCwd, path)
}

// ResolveEndpointURL returns the endpoint, applying override if non-empty.
func (c Config) ResolveEndpointURL(override string) string {
	if override != "" {
		return override
	}

	return c.EndpointURL
}

func loadGlobalConfig(env map[string]string) (Config, string, error) {
	globalCfgPath := getGlobalConfigPath(env)
	if globalCfgPath == "" {
		return Config{}, "", nil
	}

	globalCfg, explicitEmpty, loaded, err := loadConfigFile(globalCfgPath, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["db_path"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, globalCfgPath, ErrDBPathEmpty)
	}

	return globalCfg, globalCfgPath, nil
}

func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	var cfgFile string

	var mustExist bool

	if configPath != "" {
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true

		if _, err := os.Stat(cfgFile); err != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		cfgFile = filepath.Join(workDir, ConfigFileName)
		mustExist = false
	}

	fileCfg, explicitEmpty, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["db_path"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, cfgFile, ErrDBPathEmpty)
	}

	return fileCfg, cfgFile, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing
// files return a zero config and loaded=false rather than an error.
func loadConfigFile(path string, mustExist bool) (Config, map[string]bool, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, nil, false, nil
		}

		if mustExist {
			return Config{}, nil, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return Config{}, nil, false, nil
	}

	cfg, explicitEmpty, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, nil, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, explicitEmpty, true, nil
}

func parseConfig(data []byte) (Config, map[string]bool, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	explicitEmpty := make(map[string]bool)

	if val, exists := raw["db_path"]; exists {
		if str, ok := val.(string); ok && str == "" {
			explicitEmpty["db_path"] = true
		}
	}

	return cfg, explicitEmpty, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.DBPath != "" {
		base.DBPath = overlay.DBPath
	}

	if overlay.EndpointURL != "" {
		base.EndpointURL = overlay.EndpointURL
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.DBPath == "" {
		return ErrDBPathEmpty
	}

	return nil
}
