package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew_DualOutput(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "test.log")

	logger := New(Options{
		Env:          "prod",
		ConsoleLevel: "info",
		FileLevel:    "debug",
		File:         logFile,
		App:          "test-app",
	})
	defer func() {
		if err := Close(logger); err != nil {
			t.Errorf("Error closing logger: %v", err)
		}
	}()

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	// give some time for file writes
	time.Sleep(100 * time.Millisecond)

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	fileContent := string(content)

	// file level is debug, so every message lands in the file
	for _, msg := range []string{"debug message", "info message", "warn message"} {
		if !strings.Contains(fileContent, msg) {
			t.Errorf("File should contain %q", msg)
		}
	}
	if !strings.Contains(fileContent, "test-app") {
		t.Error("File should contain the app attribute")
	}
}

func TestNew_ConsoleOnly(t *testing.T) {
	logger := New(Options{Env: "dev", App: "test-app"})
	logger.Info("console only")
	if err := Close(logger); err != nil {
		t.Errorf("Close on a file-less logger should be a no-op, got: %v", err)
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"WARN", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
		{"", "INFO"},
	}
	for _, tt := range tests {
		got := levelFromString(tt.in, levelFromString("info", 0))
		if got.String() != tt.want {
			t.Errorf("levelFromString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
