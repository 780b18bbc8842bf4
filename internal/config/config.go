// Package config provides configuration management for sshfan.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration structure
type Config struct {
	HostConfig     string        `mapstructure:"host-config"`     // Host alias configuration source
	Inventory      string        `mapstructure:"inventory"`       // Optional YAML host inventory
	IdentityFile   string        `mapstructure:"identity"`        // SSH private key file
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"` // Per-connection dial timeout
	LogLevel       string        `mapstructure:"log-level"`       // Log level (info, error)
	LogFormat      string        `mapstructure:"log-format"`      // Log format (json, text)
	Quiet          bool          `mapstructure:"quiet"`           // Suppress non-error logs
	ShowProgress   bool          `mapstructure:"progress"`        // Show session progress on stderr
}

// Manager defines the interface for configuration management
type Manager interface {
	// Load reads configuration from all sources (files, env vars)
	Load() (*Config, error)

	// Validate ensures configuration values are valid and consistent
	Validate(config *Config) error
}

// ViperManager implements the Manager interface using Viper
type ViperManager struct {
	v *viper.Viper
}

// NewManager creates a new configuration manager
func NewManager() Manager {
	return &ViperManager{
		v: viper.New(),
	}
}

// setDefaults establishes default configuration values
func (m *ViperManager) setDefaults() {
	hostConfig := ""
	if homeDir, err := os.UserHomeDir(); err == nil {
		hostConfig = filepath.Join(homeDir, ".ssh", "config")
	}

	m.v.SetDefault("host-config", hostConfig)
	m.v.SetDefault("inventory", "")
	m.v.SetDefault("identity", "")
	m.v.SetDefault("connect-timeout", 30*time.Second)
	m.v.SetDefault("log-level", "info")
	m.v.SetDefault("log-format", "text")
	m.v.SetDefault("quiet", false)
	m.v.SetDefault("progress", false)
}

// Load reads configuration from all sources with proper precedence
func (m *ViperManager) Load() (*Config, error) {
	m.setDefaults()

	m.v.SetConfigName("config")

	// Config paths in precedence order, current dir highest
	m.v.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		m.v.AddConfigPath(filepath.Join(homeDir, ".config", "sshfan"))
	}
	m.v.AddConfigPath("/etc/sshfan/")

	m.v.SetEnvPrefix("SSHFAN")
	m.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	m.v.AutomaticEnv()

	m.v.SetConfigType("yaml")
	if err := m.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := m.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := m.Validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// Validate ensures configuration values are valid and consistent
func (m *ViperManager) Validate(config *Config) error {
	if config.ConnectTimeout <= 0 {
		return fmt.Errorf("connect-timeout must be positive, got %v", config.ConnectTimeout)
	}

	validLogLevels := map[string]bool{
		"info":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return fmt.Errorf("invalid log level '%s': must be one of 'info' or 'error'", config.LogLevel)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[config.LogFormat] {
		return fmt.Errorf("invalid log format '%s': must be one of 'json' or 'text'", config.LogFormat)
	}

	return nil
}
