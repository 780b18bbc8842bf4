package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		HostConfig:     "/home/op/.ssh/config",
		ConnectTimeout: 30 * time.Second,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Validate(validConfig()))
}

func TestValidateRejectsBadTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.ConnectTimeout = 0

	err := NewManager().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect-timeout")
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "debug"

	err := NewManager().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.LogFormat = "xml"

	err := NewManager().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log format")
}

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := NewManager().Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.Quiet)
}
