package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	config "github.com/mwantia/nfosync/internal/config/server"
	"github.com/mwantia/nfosync/internal/engine"
	"github.com/mwantia/nfosync/pkg/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// openEngine loads the configuration and opens the catalog. When migrate is
// set, pending migrations are applied first.
func openEngine(ctx context.Context, migrate bool) (*engine.Engine, error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := log.NewLoggerService("nfosync", cfg.Log)
	eng, err := engine.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := eng.Migrate(ctx); err != nil {
			eng.Close()
			return nil, err
		}
	}

	return eng, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func addOutputFlag(cmd *cobra.Command, def string) {
	cmd.Flags().StringP("output", "o", def, "output format (yaml, json)")
}

func writeOutput(cmd *cobra.Command, v any) error {
	format, _ := cmd.Flags().GetString("output")
	return encode(cmd.OutOrStdout(), format, v)
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format '%s'", format)
	}
}
