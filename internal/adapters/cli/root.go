package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath      string
	preferencesPath string
	metricsOut      string
	verbosity       int
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "alchemy",
		Short: "Skyrim alchemy - find the most valuable potions you can brew",
		Long: `Skyrim alchemy reads the ingredients and magic effects of your load order
and ranks every potion that can be crafted from 2 or 3 ingredients.

Export the game data once, then query it as often as you like:

Examples:
  alchemy export-game-data --plugins-dir "C:/Games/Skyrim/Data" --load-order plugins.txt
  alchemy export-game-data --output game_data.json.zst --store --label vanilla
  alchemy suggest-potions --limit 10
  alchemy suggest-potions --deny expensive.txt --output json
  alchemy suggest-potions --snapshot-id latest
  alchemy snapshot info game_data.json
  alchemy snapshot list`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search ., ./configs and ~/.skyrim-alchemy)")
	rootCmd.PersistentFlags().StringVar(&preferencesPath, "preferences", "",
		"Path to the preferences file (default: ~/.skyrim-alchemy/preferences.json)")
	rootCmd.PersistentFlags().StringVar(&metricsOut, "metrics-out", "",
		"Write Prometheus metrics to this file on exit")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase log verbosity (-v debug, -vv debug with caller)")

	// Add commands
	rootCmd.AddCommand(NewExportGameDataCommand())
	rootCmd.AddCommand(NewSuggestPotionsCommand())
	rootCmd.AddCommand(NewSnapshotCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
