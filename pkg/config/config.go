// Package config provides configuration file and environment support for confsync.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variables consumed by the engine.
const (
	EnvAuditDir      = "CONFSYNC_AUDIT_DIR"
	EnvConfigPath    = "CONFSYNC_CONFIG_PATH"
	EnvRetentionDays = "CONFSYNC_RETENTION_DAYS"
)

// DefaultRetentionDays is the snapshot retention period applied when no
// override is configured.
const DefaultRetentionDays = 30

// Config represents the confsync configuration.
type Config struct {
	AuditDir      string        `yaml:"audit_dir"`
	ConfigPath    string        `yaml:"-"`
	RetentionDays int           `yaml:"retention_days"`
	Logging       LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		RetentionDays: DefaultRetentionDays,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from <configPath>/confsync.yaml and applies
// environment overrides. A missing config file is OK; defaults are used.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if env := os.Getenv(EnvConfigPath); env != "" {
		configPath = env
	}
	cfg.ConfigPath = configPath

	if configPath != "" {
		data, err := os.ReadFile(filepath.Join(configPath, "confsync.yaml"))
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.RetentionDays < 0 {
		return nil, fmt.Errorf("retention_days must be non-negative, got %d", cfg.RetentionDays)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if env := os.Getenv(EnvAuditDir); env != "" {
		cfg.AuditDir = env
	}
	if env := os.Getenv(EnvRetentionDays); env != "" {
		days, err := strconv.Atoi(env)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvRetentionDays, err)
		}
		cfg.RetentionDays = days
	}
	return nil
}

// ResolveAuditDir returns the audit directory: the configured override,
// falling back to <config-path>/audit, falling back to ./audit.
func (c *Config) ResolveAuditDir() string {
	if c.AuditDir != "" {
		return c.AuditDir
	}
	if c.ConfigPath != "" {
		return filepath.Join(c.ConfigPath, "audit")
	}
	return "audit"
}

// Save writes configuration to <configPath>/confsync.yaml.
func Save(configPath string, cfg *Config) error {
	cfgPath := filepath.Join(configPath, "confsync.yaml")

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
