package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "auto", cfg.Engine)
	assert.Equal(t, "", cfg.Bundle)
	assert.Equal(t, "node", cfg.Node)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.Jobs)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.LogDev)
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"OBFUSHTML_ENGINE":    "goja",
		"OBFUSHTML_BUNDLE":    "/opt/obf/index.browser.js",
		"OBFUSHTML_NODE":      "/usr/local/bin/node",
		"OBFUSHTML_NODE_DIR":  "/srv/site",
		"OBFUSHTML_TIMEOUT":   "5s",
		"OBFUSHTML_JOBS":      "4",
		"OBFUSHTML_LOG_LEVEL": "debug",
		"OBFUSHTML_LOG_DEV":   "true",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "goja", cfg.Engine)
	assert.Equal(t, "/opt/obf/index.browser.js", cfg.Bundle)
	assert.Equal(t, "/usr/local/bin/node", cfg.Node)
	assert.Equal(t, "/srv/site", cfg.NodeDir)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogDev)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("OBFUSHTML_JOBS", "many")

	_, err := Load()
	assert.Error(t, err)
}
