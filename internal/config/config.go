// Package config loads WARPOS configuration from the home directory and
// the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Applier modes selectable in configuration.
const (
	ApplierDryRun = "dry-run"
	ApplierShell  = "shell"
)

// Config holds runtime configuration.
type Config struct {
	// Home is the storage root; profiles, templates, instances, plans and
	// the audit database all live under it.
	Home string `yaml:"-"`
	// Model is the language-model identifier for step application.
	Model string `yaml:"model"`
	// Applier selects how plan items are applied: dry-run or shell.
	Applier string `yaml:"applier"`
	// WorkDir is the working directory for verification commands.
	WorkDir string `yaml:"work_dir"`
	// AnthropicAPIKey comes from the environment only, never the file.
	AnthropicAPIKey string `yaml:"-"`
}

// Default returns a configuration with defaults applied for home.
func Default(home string) *Config {
	return &Config{
		Home:    home,
		Model:   "claude-sonnet-4-20250514",
		Applier: ApplierDryRun,
	}
}

// Load reads config.yaml from the WARPOS home (if present) and applies
// environment overrides: WARPOS_HOME, WARPOS_MODEL, WARPOS_APPLIER,
// ANTHROPIC_API_KEY.
func Load() (*Config, error) {
	home := os.Getenv("WARPOS_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		home = filepath.Join(userHome, ".warpos")
	}

	cfg := Default(home)

	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config.yaml: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read config.yaml: %w", err)
	}

	if model := os.Getenv("WARPOS_MODEL"); model != "" {
		cfg.Model = model
	}
	if applier := os.Getenv("WARPOS_APPLIER"); applier != "" {
		cfg.Applier = applier
	}
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")

	if cfg.WorkDir == "" {
		cfg.WorkDir, _ = os.Getwd()
	}
	return cfg, nil
}

// ProfilesDir is the profile store root.
func (c *Config) ProfilesDir() string { return filepath.Join(c.Home, "profiles") }

// TemplatesDir is the template catalog root.
func (c *Config) TemplatesDir() string { return filepath.Join(c.Home, "templates") }

// DataDir is the root for project instances and plans.
func (c *Config) DataDir() string { return c.Home }

// AuditDBPath is the audit database location.
func (c *Config) AuditDBPath() string { return filepath.Join(c.Home, "audit.db") }
