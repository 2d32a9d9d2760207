package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { Logger = nil }()

	if _, err := os.Stat(filepath.Dir(Path(configDir))); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", filepath.Dir(Path(configDir)))
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
	if Logger.GetLevel() != log.InfoLevel {
		t.Errorf("level = %v, want info", Logger.GetLevel())
	}

	Debug("Test debug message")
	Info("Week loaded", "week", "2024-01-08")
	Warn("Test warning message")
	Error("Test error message")

	data, err := os.ReadFile(Path(configDir))
	if err != nil {
		t.Fatalf("Log file not written: %v", err)
	}
	if strings.Contains(string(data), "Test debug message") {
		t.Errorf("debug record written at info level:\n%s", data)
	}
	if !strings.Contains(string(data), "week=2024-01-08") {
		t.Errorf("info record missing from log file:\n%s", data)
	}
}

func TestInitDebugMode(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: true, Quiet: true, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	defer func() { Logger = nil }()
	if Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", Logger.GetLevel())
	}
}

func TestPath(t *testing.T) {
	got := Path(filepath.Join("home", ".config", "weekgrid"))
	want := filepath.Join("home", ".config", "weekgrid", "logs", "weekgrid.log")
	if got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, log.WarnLevel)
	defer func() { Logger = nil }()

	Info("hidden")
	Warn("row skipped", "task", "Gym")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %q", out)
	}
	if !strings.Contains(out, "row skipped") || !strings.Contains(out, "task=Gym") {
		t.Errorf("unexpected output: %q", out)
	}
}
