package client

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the catalog database",
		Long:  "Apply, roll back and inspect versioned catalog migrations.",
	}

	cmd.AddCommand(NewCatalogMigrateCommand())
	cmd.AddCommand(NewCatalogRollbackCommand())
	cmd.AddCommand(NewCatalogStatusCommand())

	return cmd
}

func NewCatalogMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			eng, err := openEngine(ctx, false)
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.Migrate(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Catalog is up to date")
			return nil
		},
	}
}

func NewCatalogRollbackCommand() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Roll back the last applied migration",
		Long:  "Roll back the last applied migration. Dropping tables loses catalog data, so this needs confirmation.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("rollback may drop catalog data, rerun with --confirm")
			}

			ctx, cancel := signalContext()
			defer cancel()

			eng, err := openEngine(ctx, false)
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.Catalog.Migrator().Rollback(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Rolled back last migration")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirm, "confirm", "c", false, "Confirms the rollback")

	return cmd
}

func NewCatalogStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			eng, err := openEngine(ctx, false)
			if err != nil {
				return err
			}
			defer eng.Close()

			statuses, err := eng.Catalog.Migrator().Status(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tAPPLIED\tDESCRIPTION")
			for _, s := range statuses {
				fmt.Fprintf(w, "%d\t%t\t%s\n", s.Version, s.Applied, s.Description)
			}
			return w.Flush()
		},
	}
}
