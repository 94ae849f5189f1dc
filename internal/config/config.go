package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete swap-worktree configuration
type Config struct {
	// Debug enables per-step progress output by default; the --debug flag
	// overrides it per invocation.
	Debug bool `yaml:"debug"`

	// StashPrefix is prepended to the message of stashes created during a
	// swap. The message is a human debugging aid and is never parsed back.
	StashPrefix string `yaml:"stash-prefix"`
}

// Manager handles configuration loading, saving, and validation
type Manager struct {
	defaultConfig *Config
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		defaultConfig: Default(),
	}
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Debug:       false,
		StashPrefix: "swap-stash",
	}
}

// Load reads the config file (absence is not an error), applies environment
// variable overrides, and validates the result.
func (m *Manager) Load() (*Config, error) {
	config := *m.defaultConfig

	path, err := configPath()
	if err == nil {
		if data, readErr := os.ReadFile(path); readErr == nil {
			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	m.applyEnvironmentOverrides(&config)

	if errs := m.Validate(&config); len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return &config, nil
}

// Save writes the configuration to the user's config file
func (m *Manager) Save(config *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate returns a list of problems with the configuration
func (m *Manager) Validate(config *Config) []string {
	var errors []string

	if strings.TrimSpace(config.StashPrefix) == "" {
		errors = append(errors, "stash-prefix must not be empty")
	}
	if strings.ContainsAny(config.StashPrefix, " \t\n") {
		errors = append(errors, "stash-prefix must not contain whitespace")
	}

	return errors
}

// applyEnvironmentOverrides applies SWAP_WORKTREE_* environment variables
func (m *Manager) applyEnvironmentOverrides(config *Config) {
	if value := os.Getenv("SWAP_WORKTREE_DEBUG"); value != "" {
		if debug, err := strconv.ParseBool(value); err == nil {
			config.Debug = debug
		}
	}
	if value := os.Getenv("SWAP_WORKTREE_STASH_PREFIX"); value != "" {
		config.StashPrefix = value
	}
}

// configPath returns the user config file location
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "swap-worktree", "config.yaml"), nil
}
