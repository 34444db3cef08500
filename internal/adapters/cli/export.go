package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/gamedata/commands"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/infrastructure/config"
)

// NewExportGameDataCommand creates the export-game-data command
func NewExportGameDataCommand() *cobra.Command {
	var (
		pluginsDir string
		loadOrder  string
		stringsDir string
		language   string
		output     string
		compress   bool
		store      bool
		label      string
	)

	cmd := &cobra.Command{
		Use:   "export-game-data",
		Short: "Export ingredients and magic effects from the load order",
		Long: `Read every active plugin, collect its ingredients and magic effects and
write them to a snapshot file that suggest-potions can query.

The implicit plugins (Skyrim.esm, Update.esm and the official DLC) are loaded first
when present, followed by the active entries of plugins.txt. Records of later plugins
override earlier ones. Ingredients referencing unknown magic effects are dropped with
a warning.

Output paths ending in .zst are zstd compressed.

Examples:
  alchemy export-game-data --plugins-dir "C:/Games/Skyrim/Data" --load-order plugins.txt
  alchemy export-game-data --output game_data.json.zst
  alchemy export-game-data --store --label modded`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd, appOptions{
				withDatabase: store,
				configure: func(cfg *config.Config) {
					if pluginsDir != "" {
						// the strings directory follows the plugins directory unless given
						cfg.Game.PluginsDir = pluginsDir
						cfg.Game.StringsDir = ""
					}
					if loadOrder != "" {
						cfg.Game.LoadOrderPath = loadOrder
					}
					if stringsDir != "" {
						cfg.Game.StringsDir = stringsDir
					}
					if language != "" {
						cfg.Game.Language = language
					}
				},
			})
			if err != nil {
				return err
			}
			defer app.close()

			if app.cfg.Game.PluginsDir == "" {
				return fmt.Errorf("no plugins directory: use --plugins-dir or set game.plugins_dir")
			}
			if output == "" {
				output = app.cfg.Snapshot.Path
			}

			resp, err := app.mediator.Send(app.ctx, &commands.ExportGameDataCommand{
				OutputPath: output,
				Compress:   compress || app.cfg.Snapshot.Compress,
				Store:      store,
				Label:      label,
			})
			if err != nil {
				return err
			}
			result := resp.(*commands.ExportGameDataResponse)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Exported %d ingredients and %d magic effects from %d plugins to %s\n",
				result.IngredientCount, result.MagicEffectCount, len(result.LoadOrder), result.OutputPath)
			if result.SnapshotID != "" {
				fmt.Fprintf(out, "Stored as snapshot %s\n", result.SnapshotID)
			}
			if len(result.Purged) > 0 {
				fmt.Fprintf(out, "Removed %d invalid ingredients\n", len(result.Purged))
			}
			if result.DecodeFailures > 0 {
				fmt.Fprintf(out, "Skipped %d records that failed to decode\n", result.DecodeFailures)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pluginsDir, "plugins-dir", "", "Game Data directory holding the plugins")
	cmd.Flags().StringVar(&loadOrder, "load-order", "", "Path to plugins.txt")
	cmd.Flags().StringVar(&stringsDir, "strings-dir", "", "Directory of localized string tables (default: <plugins-dir>/Strings)")
	cmd.Flags().StringVar(&language, "language", "", "Language of the string tables (default: English)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Snapshot file to write (default: snapshot.path)")
	cmd.Flags().BoolVar(&compress, "compress", false, "Compress the snapshot with zstd")
	cmd.Flags().BoolVar(&store, "store", false, "Also save the snapshot to the database")
	cmd.Flags().StringVar(&label, "label", "export", "Label used in the stored snapshot id")

	return cmd
}
