package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/mwantia/fabric/pkg/container"
	config "github.com/mwantia/nfosync/internal/config/server"
)

func TestLoggerTagProcessorCanProcess(t *testing.T) {
	ltp := NewLoggerTagProcessor()

	tests := map[string]bool{
		"logger":         true,
		"LOGGER":         true,
		"logger:scanner": true,
		"Logger:http":    true,
		"inject":         false,
		"loggers":        false,
		"":               false,
	}

	for value, want := range tests {
		if got := ltp.CanProcess(value); got != want {
			t.Errorf("CanProcess(%q): expected %v, got %v", value, want, got)
		}
	}
}

func TestInjectLoggers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerServiceWithWriter("nfosync", config.LogServerConfig{Level: "DEBUG", JSON: true}, &buf)

	sc := container.NewServiceContainer()
	if err := container.Register[LoggerServiceImpl](sc,
		container.With[LoggerService](),
		container.WithInstance(logger)); err != nil {
		t.Fatalf("Failed to register logger: %v", err)
	}

	var target struct {
		Base    LoggerService `fabric:"logger"`
		Scanner LoggerService `fabric:"logger:scanner"`
		Other   LoggerService
	}
	if err := InjectLoggers(context.Background(), sc, &target); err != nil {
		t.Fatalf("InjectLoggers failed: %v", err)
	}

	if target.Base == nil || target.Scanner == nil {
		t.Fatal("Expected tagged fields to be injected")
	}
	if target.Other != nil {
		t.Error("Expected untagged field to stay nil")
	}

	target.Scanner.Info("walking")

	var entry logEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("Failed to decode JSON log entry: %v", err)
	}
	if entry.Service != "nfosync/scanner" {
		t.Errorf("Expected service 'nfosync/scanner', got %q", entry.Service)
	}
}

func TestInjectLoggersWithoutLoggerService(t *testing.T) {
	var target struct {
		Scanner LoggerService `fabric:"logger:scanner"`
	}

	err := InjectLoggers(context.Background(), container.NewServiceContainer(), &target)
	if err == nil {
		t.Fatal("Expected error when no LoggerService is registered")
	}
}

func TestInjectLoggersRejectsNonPointer(t *testing.T) {
	var target struct{}
	if err := InjectLoggers(context.Background(), container.NewServiceContainer(), target); err == nil {
		t.Error("Expected error for non-pointer target")
	}
}
