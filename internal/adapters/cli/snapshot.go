package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/adapters/snapshot"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/gamedata/queries"
)

// NewSnapshotCommand creates the snapshot command with subcommands
func NewSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect exported game data",
		Long: `Inspect snapshot files and the snapshots stored in the database.

Examples:
  alchemy snapshot info game_data.json.zst
  alchemy snapshot list --limit 5`,
	}

	// Add subcommands
	cmd.AddCommand(newSnapshotInfoCommand())
	cmd.AddCommand(newSnapshotListCommand())

	return cmd
}

// newSnapshotInfoCommand creates the snapshot info subcommand
func newSnapshotInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <path>",
		Short: "Summarize a snapshot file",
		Long: `Print the load order and record counts of a snapshot file without decoding
every record.

Example:
  alchemy snapshot info game_data.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := snapshot.NewFileStore().Inspect(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Snapshot:          %s\n", args[0])
			fmt.Fprintf(out, "Ingredients:       %d (%d unnamed)\n", info.IngredientCount, info.UnnamedCount)
			fmt.Fprintf(out, "Magic effects:     %d\n", info.MagicEffectCount)
			fmt.Fprintf(out, "Load order:        %d plugins\n", len(info.LoadOrder))
			for i, name := range info.LoadOrder {
				fmt.Fprintf(out, "  %4d  %s\n", i, name)
			}
			return nil
		},
	}

	return cmd
}

// newSnapshotListCommand creates the snapshot list subcommand
func newSnapshotListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots stored in the database",
		Long: `List the snapshots saved with export-game-data --store, newest first.

Example:
  alchemy snapshot list --limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd, appOptions{withDatabase: true})
			if err != nil {
				return err
			}
			defer app.close()

			resp, err := app.mediator.Send(app.ctx, &queries.ListSnapshotsQuery{Limit: limit})
			if err != nil {
				return err
			}
			snapshots := resp.(*queries.ListSnapshotsResponse).Snapshots

			out := cmd.OutOrStdout()
			if len(snapshots) == 0 {
				fmt.Fprintln(out, "No snapshots stored.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tINGREDIENTS\tEFFECTS\tSIZE\tPLUGINS")
			for _, s := range snapshots {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
					s.ID,
					s.CreatedAt.Local().Format("2006-01-02 15:04"),
					s.IngredientCount,
					s.MagicEffectCount,
					formatBytes(s.SizeBytes),
					summarizePlugins(s.LoadOrder),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of snapshots to show (0 = all)")

	return cmd
}

// formatBytes renders a size with a binary unit
func formatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

// summarizePlugins shows the first plugins of a load order
func summarizePlugins(names []string) string {
	const shown = 3
	if len(names) <= shown {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s, +%d more", strings.Join(names[:shown], ", "), len(names)-shown)
}
