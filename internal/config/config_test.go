package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Diagnostic)
	assert.False(t, cfg.Sandbox.Enabled)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.LogLevel = "debug"
	cfg.Diagnostic = true
	cfg.Sandbox = SandboxConfig{
		Enabled:   true,
		ReadPaths: []string{"/srv/data", "/etc/capbridge"},
	}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CAPBRIDGE_LOG_LEVEL", "error")
	t.Setenv("CAPBRIDGE_LOG_PATH", "/tmp/capbridge.log")
	t.Setenv("CAPBRIDGE_DIAGNOSTIC", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "/tmp/capbridge.log", cfg.LogPath)
	assert.True(t, cfg.Diagnostic)
}

func TestApplyEnvOverridesIgnoresEmpty(t *testing.T) {
	t.Setenv("CAPBRIDGE_LOG_LEVEL", "")
	t.Setenv("CAPBRIDGE_DIAGNOSTIC", "")

	cfg := Default()
	cfg.LogLevel = "warn"
	cfg.Diagnostic = true
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.Diagnostic)
}
