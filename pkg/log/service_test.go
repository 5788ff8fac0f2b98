package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	config "github.com/mwantia/nfosync/internal/config/server"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   Debug,
		"INFO":    Info,
		"warning": Warn,
		"Error":   Error,
		"fatal":   Fatal,
		"bogus":   Info,
		"":        Info,
	}

	for input, want := range tests {
		if got := Parse(input); got != want {
			t.Errorf("Parse(%q): expected %s, got %s", input, want, got)
		}
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerServiceWithWriter("nfosync", config.LogServerConfig{Level: "WARN"}, &buf)

	logger.Debug("hidden %d", 1)
	logger.Info("hidden %d", 2)
	logger.Warn("visible %d", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "visible 3") {
		t.Errorf("Expected warn entry, got %q", out)
	}
}

func TestNamedLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerServiceWithWriter("nfosync", config.LogServerConfig{Level: "DEBUG", JSON: true}, &buf)

	logger.Named("scanner").Info("processed %d items", 2)

	var entry logEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("Failed to decode JSON log entry: %v", err)
	}
	if entry.Service != "nfosync/scanner" {
		t.Errorf("Expected service 'nfosync/scanner', got %q", entry.Service)
	}
	if entry.Message != "processed 2 items" {
		t.Errorf("Expected message 'processed 2 items', got %q", entry.Message)
	}
	if entry.Level != "INFO" {
		t.Errorf("Expected level INFO, got %q", entry.Level)
	}
}
