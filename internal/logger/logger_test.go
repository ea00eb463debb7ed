package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"none", LevelNone},
		{"invalid", LevelInfo}, // defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelNone, "NONE"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.expected)
			}
		})
	}
}

func TestNewLoggerFile(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "bridge.log")

	logger, err := New(LevelInfo, logPath, "bridge")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Info("test message")
	logger.Debug("should not appear")
	logger.Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	contentStr := string(content)
	if !strings.Contains(contentStr, "test message") {
		t.Errorf("Log file missing info message")
	}
	if strings.Contains(contentStr, "should not appear") {
		t.Errorf("Log file contains debug message when level is INFO")
	}
	if !strings.Contains(contentStr, "[bridge]") {
		t.Errorf("Log file missing prefix")
	}
}

func TestLoggerWithPrefix(t *testing.T) {
	logger, err := New(LevelInfo, "", "parent")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	var buf bytes.Buffer
	logger.SetOutput(&buf)

	logger.WithPrefix("child").Info("test message")

	if !strings.Contains(buf.String(), "[parent:child]") {
		t.Errorf("Missing combined prefix, got: %s", buf.String())
	}
}

func TestMessageNoFormatting(t *testing.T) {
	logger, err := New(LevelInfo, "", "")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	var buf bytes.Buffer
	logger.SetOutput(&buf)

	// Client-supplied payloads may contain printf directives; they must pass
	// through verbatim.
	logger.Message("100%d complete %s")

	if !strings.Contains(buf.String(), "100%d complete %s") {
		t.Errorf("Message mangled client payload: %s", buf.String())
	}
}

func TestLoggerDisabled(t *testing.T) {
	logger, err := New(LevelNone, "", "test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	// These should not panic or error
	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")
}

func TestSetLevel(t *testing.T) {
	logger, err := New(LevelInfo, "", "")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	var buf bytes.Buffer
	logger.SetOutput(&buf)

	logger.Info("info1")
	logger.Debug("debug1")

	logger.SetLevel(LevelDebug)
	logger.Info("info2")
	logger.Debug("debug2")

	contentStr := buf.String()
	if strings.Contains(contentStr, "debug1") {
		t.Errorf("debug1 should not appear (level was INFO)")
	}
	if !strings.Contains(contentStr, "debug2") {
		t.Errorf("debug2 should appear (level changed to DEBUG)")
	}
	if !strings.Contains(contentStr, "info1") || !strings.Contains(contentStr, "info2") {
		t.Errorf("info messages should always appear")
	}
}

func TestGlobalLogger(t *testing.T) {
	if Global() == nil {
		t.Errorf("Global() returned nil")
	}
}
