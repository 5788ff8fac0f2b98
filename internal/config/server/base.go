package server

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type BaseServerConfig struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log     LogServerConfig     `mapstructure:"log"     yaml:"log"`
	Catalog CatalogServerConfig `mapstructure:"catalog" yaml:"catalog"`
	Library LibraryServerConfig `mapstructure:"library" yaml:"library"`
	Agent   AgentServerConfig   `mapstructure:"agent"   yaml:"agent"`
}

func LoadServerConfig() (*BaseServerConfig, error) {
	cfg := &BaseServerConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks values that viper cannot type-check on its own.
func (cfg *BaseServerConfig) Validate() error {
	if _, err := time.ParseDuration(cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown_timeout: %w", err)
	}
	if cfg.Catalog.Type != "sqlite" {
		return fmt.Errorf("catalog.type: unsupported catalog type '%s'", cfg.Catalog.Type)
	}
	if cfg.Catalog.SQLite.Path == "" {
		return fmt.Errorf("catalog.sqlite.path is required")
	}
	if cfg.Library.Workers < 1 {
		return fmt.Errorf("library.workers must be at least 1, got %d", cfg.Library.Workers)
	}
	if len(cfg.Library.SidecarExtensions) == 0 {
		return fmt.Errorf("library.sidecar_extensions must not be empty")
	}
	return nil
}
