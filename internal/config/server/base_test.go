package server

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetServerDefault()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}
	if cfg.Library.SidecarExtensions[0] != ".nfo" {
		t.Errorf("Expected default sidecar extension '.nfo', got %q", cfg.Library.SidecarExtensions[0])
	}
	if cfg.Library.VideoExtensions[0] != "mp4" {
		t.Errorf("Expected mp4 to have the highest video priority, got %q", cfg.Library.VideoExtensions[0])
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *BaseServerConfig)
		want   string
	}{
		{"shutdown timeout", func(cfg *BaseServerConfig) { cfg.ShutdownTimeout = "soon" }, "shutdown_timeout"},
		{"catalog type", func(cfg *BaseServerConfig) { cfg.Catalog.Type = "postgres" }, "catalog.type"},
		{"sqlite path", func(cfg *BaseServerConfig) { cfg.Catalog.SQLite.Path = "" }, "catalog.sqlite.path"},
		{"workers", func(cfg *BaseServerConfig) { cfg.Library.Workers = 0 }, "library.workers"},
		{"sidecar extensions", func(cfg *BaseServerConfig) { cfg.Library.SidecarExtensions = nil }, "library.sidecar_extensions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetServerDefault()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
