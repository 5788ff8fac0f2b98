package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewScanCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "scan [roots...]",
		Short: "Scan library roots",
		Long: `Walk the given library roots (or the configured library.roots) and
synchronize every sidecar into the catalog.

Per-item failures are listed in the report; the command only fails when
none of the roots could be walked. Interrupting the scan lets in-flight
items finish and reports the scan as cancelled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			eng, err := openEngine(ctx, true)
			if err != nil {
				return err
			}
			defer eng.Close()

			report, scanErr := eng.Scan(ctx, args)
			if report == nil {
				return scanErr
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Processed %d items (%s, %d skipped, %d conflicts, %d errors) in %v\n",
				report.Processed, report.State, report.Skipped, len(report.Conflicts), len(report.Errors), report.Duration())

			if !quiet {
				if err := writeOutput(cmd, report); err != nil {
					return err
				}
			}

			return scanErr
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the summary line")
	addOutputFlag(cmd, "yaml")

	return cmd
}
