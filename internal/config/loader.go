// Package config loads pipeline configuration from YAML files layered
// over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads and merges configuration from global and project paths.
// Order of precedence (highest to lowest): project config, global
// config, defaults. Missing files are not errors; malformed YAML
// returns an error.
func Load(globalPath, projectPath string) (*Config, error) {
	cfg := DefaultConfig()

	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}

	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}

	return cfg, nil
}

// LoadDefault loads configuration from conventional paths.
// Global: ~/.ravint/config.yaml
// Project: .ravint/config.yaml (relative to cwd)
func LoadDefault() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}

	globalPath := filepath.Join(homeDir, ".ravint", "config.yaml")
	projectPath := filepath.Join(".ravint", "config.yaml")

	return Load(globalPath, projectPath)
}

// mergeConfigFile reads a YAML config file and merges it into the base
// config. Missing files are silently skipped.
func mergeConfigFile(base *Config, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if loaded.Provider != "" {
		base.Provider = loaded.Provider
	}
	if loaded.HistoryPath != "" {
		base.HistoryPath = loaded.HistoryPath
	}
	if loaded.Retry.InitialInterval != 0 {
		base.Retry.InitialInterval = loaded.Retry.InitialInterval
	}
	if loaded.Retry.MaxInterval != 0 {
		base.Retry.MaxInterval = loaded.Retry.MaxInterval
	}
	if loaded.Retry.Multiplier != 0 {
		base.Retry.Multiplier = loaded.Retry.Multiplier
	}
	if loaded.Retry.RandomizationFactor != 0 {
		base.Retry.RandomizationFactor = loaded.Retry.RandomizationFactor
	}

	for key, p := range loaded.Providers {
		base.Providers[key] = p
	}
	for key, t := range loaded.Tasks {
		base.Tasks[key] = t
	}

	return nil
}
