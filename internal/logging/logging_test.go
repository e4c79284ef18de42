// ABOUTME: Tests for logger construction and level parsing.
// ABOUTME: Verifies level filtering, JSON output and file output.
package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestGetLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"DEBUG", log.DebugLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		if got := GetLevel(tt.in); got != tt.want {
			t.Errorf("GetLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Params{Level: "info", Format: "json", Output: &buf})

	logger.Debug("hidden")
	logger.Info("meal added", "calories", 500)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "meal added" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["calories"] != float64(500) {
		t.Errorf("calories = %v", entry["calories"])
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitlog.log")
	logger := New(Params{File: path})
	logger.Info("written to file")
}
