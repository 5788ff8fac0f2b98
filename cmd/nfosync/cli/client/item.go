package client

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/mwantia/nfosync/pkg/db/store"
	"github.com/mwantia/nfosync/pkg/library"
	"github.com/spf13/cobra"
)

func NewItemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Inspect cataloged items",
		Long:  "Show, list and locate the assets of items stored in the catalog.",
	}

	cmd.AddCommand(NewItemShowCommand())
	cmd.AddCommand(NewItemListCommand())
	cmd.AddCommand(NewItemAssetCommand())

	return cmd
}

func NewItemShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <code>",
		Short: "Show full item metadata",
		Long:  "Show the cataloged item together with a fresh read of its sidecar and the resolved assets.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			eng, err := openEngine(ctx, true)
			if err != nil {
				return err
			}
			defer eng.Close()

			full, err := eng.Library.GetFullMetadata(ctx, args[0])
			if err != nil {
				return describeLookupError(args[0], err)
			}

			return writeOutput(cmd, full)
		},
	}

	addOutputFlag(cmd, "yaml")

	return cmd
}

func NewItemListCommand() *cobra.Command {
	var query store.ItemQuery

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cataloged items",
		Long:    "List one page of cataloged items, optionally filtered by code or title.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			eng, err := openEngine(ctx, true)
			if err != nil {
				return err
			}
			defer eng.Close()

			items, total, err := eng.Library.ListItems(ctx, query)
			if err != nil {
				return err
			}

			if format, _ := cmd.Flags().GetString("output"); format != "table" {
				return writeOutput(cmd, map[string]any{
					"total": total,
					"items": items,
				})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tTITLE\tVIDEO\tGENRES\tLAST SYNCED")
			for _, item := range items {
				video := "-"
				if item.HasVideo {
					video = item.VideoType
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					item.Code, item.Title, video, len(item.Genres),
					item.LastSyncedAt.Format("2006-01-02 15:04:05"))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d items\n", len(items), total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query.Query, "query", "q", "", "filter by code or title")
	cmd.Flags().IntVar(&query.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&query.PageSize, "page-size", store.DefaultPageSize, "items per page")
	cmd.Flags().StringP("output", "o", "table", "output format (table, yaml, json)")

	return cmd
}

func NewItemAssetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "asset <code> <poster|fanart|thumb>",
		Short:     "Print the path of an item asset",
		Long:      "Resolve the poster, fanart or thumbnail of an item and print its path.",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"poster", "fanart", "thumb"},
		RunE: func(cmd *cobra.Command, args []string) error {
			code, kind := args[0], args[1]

			ctx, cancel := signalContext()
			defer cancel()

			eng, err := openEngine(ctx, true)
			if err != nil {
				return err
			}
			defer eng.Close()

			var lookup func(string) (string, bool, error)
			switch kind {
			case "poster":
				lookup = func(c string) (string, bool, error) { return eng.Library.PosterPath(ctx, c) }
			case "fanart":
				lookup = func(c string) (string, bool, error) { return eng.Library.FanartPath(ctx, c) }
			case "thumb":
				lookup = func(c string) (string, bool, error) { return eng.Library.ThumbPath(ctx, c) }
			default:
				return fmt.Errorf("unknown asset kind '%s' (expected poster, fanart or thumb)", kind)
			}

			path, ok, err := lookup(code)
			if err != nil {
				return describeLookupError(code, err)
			}
			if !ok {
				return fmt.Errorf("item '%s' has no %s", code, kind)
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	return cmd
}

func describeLookupError(code string, err error) error {
	switch {
	case errors.Is(err, library.ErrItemNotFound):
		return fmt.Errorf("item '%s' not found", code)
	case errors.Is(err, library.ErrSourceMissing):
		var nerr *library.NotFoundError
		if errors.As(err, &nerr) {
			return fmt.Errorf("item '%s' not found: sidecar '%s' no longer exists", code, nerr.Path)
		}
		return fmt.Errorf("item '%s' not found: sidecar no longer exists", code)
	default:
		return err
	}
}
