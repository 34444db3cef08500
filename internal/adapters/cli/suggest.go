package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/potions/queries"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/potion"
)

// NewSuggestPotionsCommand creates the suggest-potions command
func NewSuggestPotionsCommand() *cobra.Command {
	var (
		snapshotPath string
		snapshotID   string
		allowFile    string
		denyFile     string
		limit        int
		outputFormat string
		workers      int
		cache        string
		noColor      bool
	)

	cmd := &cobra.Command{
		Use:   "suggest-potions",
		Short: "Rank the most valuable potions",
		Long: `Search every combination of 2 and 3 ingredients of a snapshot and print the
most valuable potions first.

The snapshot is, in order of preference: --snapshot-id, --snapshot, the file written
by the last export, and finally snapshot.path from the config.

Restrict the ingredients with an allow list or exclude some with a deny list. A list
file has one ingredient name per line, or is a YAML sequence when it ends in .yaml
or .yml. Names are matched case-insensitively.

Examples:
  alchemy suggest-potions
  alchemy suggest-potions --limit 5 --output json
  alchemy suggest-potions --allow my_ingredients.yaml
  alchemy suggest-potions --snapshot-id latest`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}
			if outputFormat != "text" && outputFormat != "json" {
				return fmt.Errorf("unsupported output format %q: use text or json", outputFormat)
			}

			var filter queries.IngredientFilter
			var err error
			if allowFile != "" {
				if filter.Allow, err = queries.LoadNameList(allowFile); err != nil {
					return err
				}
			}
			if denyFile != "" {
				if filter.Deny, err = queries.LoadNameList(denyFile); err != nil {
					return err
				}
			}

			app, err := newApplication(cmd, appOptions{withDatabase: snapshotID != ""})
			if err != nil {
				return err
			}
			defer app.close()

			if snapshotPath == "" && snapshotID == "" {
				snapshotPath = app.defaultSnapshotPath()
			}
			if cache == "" {
				cache = app.cfg.Search.Cache
			}
			if workers == 0 {
				workers = app.cfg.Search.Workers
			}

			resp, err := app.mediator.Send(app.ctx, &queries.SuggestPotionsQuery{
				SnapshotPath:     snapshotPath,
				SnapshotID:       snapshotID,
				Filter:           filter,
				Limit:            limit,
				Workers:          workers,
				Cache:            potion.CacheKind(cache),
				CacheCapacity:    app.cfg.Search.CacheCapacity,
				ProgressInterval: app.cfg.Search.ProgressInterval,
			})
			if err != nil {
				return err
			}
			result := resp.(*queries.SuggestPotionsResponse)

			out := cmd.OutOrStdout()
			if outputFormat == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			formatter := NewPotionFormatter(!noColor && isTerminal(out))
			fmt.Fprint(out, formatter.FormatSummary(result))
			fmt.Fprint(out, formatter.FormatPotions(result.Potions))
			return nil
		},
	}

	cmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "Snapshot file to read")
	cmd.Flags().StringVar(&snapshotID, "snapshot-id", "", "Stored snapshot id, or 'latest'")
	cmd.Flags().StringVar(&allowFile, "allow", "", "Only use the ingredients listed in this file")
	cmd.Flags().StringVar(&denyFile, "deny", "", "Never use the ingredients listed in this file")
	cmd.Flags().IntVarP(&limit, "limit", "n", queries.DefaultLimit, "Number of potions to show")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text or json")
	cmd.Flags().IntVar(&workers, "workers", 0, "Search workers (default: search.workers or all CPUs)")
	cmd.Flags().StringVar(&cache, "cache", "", "Shared effects cache: sync, unsync or none (default: search.cache)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.MarkFlagsMutuallyExclusive("allow", "deny")
	cmd.MarkFlagsMutuallyExclusive("snapshot", "snapshot-id")

	return cmd
}

// defaultSnapshotPath prefers the file written by the last export
func (a *application) defaultSnapshotPath() string {
	prefs, err := a.prefs.Load()
	if err == nil && prefs.LastSnapshotPath != "" {
		if _, statErr := os.Stat(prefs.LastSnapshotPath); statErr == nil {
			return prefs.LastSnapshotPath
		}
	}
	return a.cfg.Snapshot.Path
}

// isTerminal reports whether w is a character device
func isTerminal(w interface{}) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
