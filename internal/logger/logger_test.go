package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	err := Init(Config{Debug: false, Dir: logDir})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}

	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Info("Test info message", "slots", 3)

	data, err := os.ReadFile(filepath.Join(logDir, "dragx.log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "Test info message") {
		t.Errorf("Log file does not contain the message, got %q", string(data))
	}
}

func TestDebugFilteredOutsideDebugMode(t *testing.T) {
	logDir := t.TempDir()

	if err := Init(Config{Debug: false, Dir: logDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	Debug("hidden debug message")
	Warn("visible warning")

	data, err := os.ReadFile(filepath.Join(logDir, "dragx.log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if strings.Contains(string(data), "hidden debug message") {
		t.Error("Debug message was written outside debug mode")
	}
	if !strings.Contains(string(data), "visible warning") {
		t.Error("Warning was not written")
	}
}

func TestLogWithoutInit(t *testing.T) {
	saved := Logger
	Logger = nil
	defer func() { Logger = saved }()

	// Should not panic when the logger has not been initialized
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}
