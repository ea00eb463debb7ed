// Package config loads and persists bridge configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// SandboxConfig controls optional filesystem confinement of the FileRead
// verb. Confinement is off by default: the bridge historically serves any
// path the process itself can read.
type SandboxConfig struct {
	Enabled    bool     `json:"enabled"`
	ReadPaths  []string `json:"read_paths,omitempty"`
	BestEffort bool     `json:"best_effort"`
}

// Config represents bridge configuration
type Config struct {
	LogLevel   string        `json:"log_level"` // debug, info, warn, error, none
	LogPath    string        `json:"log_path,omitempty"`
	Diagnostic bool          `json:"diagnostic"` // echo protocol traffic to the diagnostic stream
	Sandbox    SandboxConfig `json:"sandbox"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
	}
}

func defaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return filepath.Join(appData, "capbridge")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Roaming", "capbridge")
	default:
		if configHome := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); configHome != "" {
			return filepath.Join(configHome, "capbridge")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", "capbridge")
	}
}

// GetConfigPath returns the default config file location.
func GetConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.json")
}

// Load reads configuration from the given path. A missing file is not an
// error; it yields the defaults so the bridge runs with zero setup.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given path, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnvOverrides lets environment variables override file values.
// Flags parsed in cmd/capbridge win over both.
func (c *Config) ApplyEnvOverrides() {
	if level := strings.TrimSpace(os.Getenv("CAPBRIDGE_LOG_LEVEL")); level != "" {
		c.LogLevel = level
	}
	if path := strings.TrimSpace(os.Getenv("CAPBRIDGE_LOG_PATH")); path != "" {
		c.LogPath = path
	}
	if diag := strings.TrimSpace(os.Getenv("CAPBRIDGE_DIAGNOSTIC")); diag != "" {
		c.Diagnostic = diag == "1" || strings.EqualFold(diag, "true")
	}
}
