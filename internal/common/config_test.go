package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aira.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, LLMProviderGemini, config.LLM.DefaultProvider)
	assert.Equal(t, 10, config.Analysis.MaxSteps)
	assert.Equal(t, 6, config.Analysis.QuickMaxSteps)
	assert.True(t, config.Reflection.Enabled)
	assert.Equal(t, 0.7, config.Reflection.MinQualityScore)
	assert.Equal(t, 2, config.Reflection.MaxRetries)
	assert.Equal(t, "24h", config.Monitor.Interval)
	assert.Equal(t, 5, config.Monitor.MinArticles)
	require.NoError(t, config.Validate())
}

func TestLoadFromFilesOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
[server]
port = 9090

[llm]
default_provider = "claude"

[reflection]
enabled = false
min_quality_score = 0.8

[monitor]
interval = "6h"
min_articles = 3
`)

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, LLMProviderClaude, config.LLM.DefaultProvider)
	assert.False(t, config.Reflection.Enabled)
	assert.Equal(t, 0.8, config.Reflection.MinQualityScore)
	assert.Equal(t, "6h", config.Monitor.Interval)
	assert.Equal(t, 3, config.Monitor.MinArticles)

	// Unset sections keep defaults
	assert.Equal(t, 10, config.Analysis.MaxSteps)
}

func TestLoadFromFilesLaterFileWins(t *testing.T) {
	first := writeConfigFile(t, "[server]\nport = 9000\n")
	second := writeConfigFile(t, "[server]\nport = 9001\n")

	config, err := LoadFromFiles(first, second)
	require.NoError(t, err)
	assert.Equal(t, 9001, config.Server.Port)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "[monitor]\nmin_articles = 3\n")

	t.Setenv("AIRA_MONITOR_MIN_ARTICLES", "7")
	t.Setenv("AIRA_LLM_PROVIDER", "claude")

	config, err := LoadFromFiles(path)
	require.NoError(t, err)
	assert.Equal(t, 7, config.Monitor.MinArticles)
	assert.Equal(t, LLMProviderClaude, config.LLM.DefaultProvider)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.LLM.DefaultProvider = "openai" }},
		{"quality score above one", func(c *Config) { c.Reflection.MinQualityScore = 1.5 }},
		{"negative retries", func(c *Config) { c.Reflection.MaxRetries = -1 }},
		{"zero max steps", func(c *Config) { c.Analysis.MaxSteps = 0 }},
		{"unparseable interval", func(c *Config) { c.Monitor.Interval = "daily" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestMonitorIntervalDuration(t *testing.T) {
	config := NewDefaultConfig()
	config.Monitor.Interval = "30m"
	assert.Equal(t, "30m0s", config.MonitorIntervalDuration().String())
}
