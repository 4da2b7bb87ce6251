// Package config provides configuration management for subsync.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the filename for the subsync configuration
const ConfigFile = "subsync.yaml"

// Manager handles subsync configuration rooted at a directory.
type Manager struct {
	root       string
	configPath string
}

// NewManager creates a configuration manager rooted at the given directory.
func NewManager(root string) *Manager {
	return &Manager{
		root:       root,
		configPath: filepath.Join(root, ConfigFile),
	}
}

// Load reads and validates the configuration from disk.
func (m *Manager) Load() (*Config, error) {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("subsync not initialized here. Run 'subsync init' first")
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	return &cfg, nil
}

// Save writes the configuration to disk.
func (m *Manager) Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// IsInitialized checks whether a config file exists at the root.
func (m *Manager) IsInitialized() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// Root returns the config root directory.
func (m *Manager) Root() string {
	return m.root
}

// ConfigPath returns the configuration file path.
func (m *Manager) ConfigPath() string {
	return m.configPath
}

// ResolveTarget returns the absolute path for a target.
func (m *Manager) ResolveTarget(t Target) string {
	if filepath.IsAbs(t.Path) {
		return t.Path
	}
	return filepath.Join(m.root, t.Path)
}

// FindRoot searches upward from the working directory for a subsync.yaml.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigFile)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no %s found in %s or any parent directory", ConfigFile, cwd)
}
