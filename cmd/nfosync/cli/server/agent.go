package server

import (
	"context"
	"fmt"

	"github.com/mwantia/nfosync/internal/agent"
	"github.com/spf13/cobra"

	config "github.com/mwantia/nfosync/internal/config/server"
)

func NewAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start the nfosync agent",
		Long: `Start the nfosync agent.

The agent keeps the catalog open, scans the configured library roots on a
cron schedule (and optionally on startup) and serves /metrics and /healthz.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			agent := agent.NewAgent(cfg)
			if err := agent.Serve(context.Background()); err != nil {
				return err
			}

			return nil
		},
	}

	return cmd
}
