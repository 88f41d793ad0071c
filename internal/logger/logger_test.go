package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToLogFile(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")
	if err := Init(Config{Debug: false, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	t.Cleanup(Close)

	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	// Below the warn level nothing is written.
	Debug("quiet debug")
	Info("quiet info")
	Warn("habit store warning", "habit_id", 7)
	Error("habit store error")
	Close()

	path := Path(configDir)
	if filepath.Base(path) != "routinely.log" {
		t.Errorf("log file name = %s, want routinely.log", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	out := string(data)
	for _, want := range []string{"habit store warning", "habit_id=7", "habit store error", "routinely"} {
		if !strings.Contains(out, want) {
			t.Errorf("log file missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "quiet") {
		t.Errorf("log file contains messages below warn level:\n%s", out)
	}
}

func TestInitDebugMode(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")
	if err := Init(Config{Debug: true, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	t.Cleanup(Close)

	Debug("Test debug message in debug mode")
	Close()

	data, err := os.ReadFile(Path(configDir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "Test debug message in debug mode") {
		t.Errorf("debug message not written:\n%s", data)
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Close()

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
	Close()
}

func TestInitWithInvalidDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0600); err != nil {
		t.Fatal(err)
	}
	// A regular file where the config directory should be.
	if err := Init(Config{ConfigDir: blocker}); err == nil {
		Close()
		t.Error("expected error when the config dir is a file")
	}
}
