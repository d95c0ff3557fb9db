package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := parseLevel(tc.in); got != tc.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestInit_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "info", "json")
	defer Init(os.Stderr, "info", "text")

	slog.Info("pool stats fetched", "total", 3)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "pool stats fetched" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "warn", "text")
	defer Init(os.Stderr, "info", "text")

	slog.Info("hidden")
	slog.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("expected info message to be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("expected warn message in output")
	}
}

func TestInitFile_WritesDebugLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	if err := InitFile(dir, "debug", "text"); err != nil {
		t.Fatalf("InitFile() error: %v", err)
	}

	slog.Debug("worker started", "generation", 1)
	Close()

	data, err := os.ReadFile(filepath.Join(dir, "debug.log"))
	if err != nil {
		t.Fatalf("expected debug.log: %v", err)
	}
	if !strings.Contains(string(data), "worker started") {
		t.Errorf("expected log line in file, got %q", string(data))
	}
}

func TestInitFile_EmptyDirDiscards(t *testing.T) {
	if err := InitFile("", "info", "text"); err != nil {
		t.Errorf("expected nil error for empty dir, got %v", err)
	}
	Close()
	Init(os.Stderr, "info", "text")
}
