package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show configuration settings",
		Long: `Show Skyrim alchemy configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (ALCHEMY_* prefix, e.g. ALCHEMY_GAME_PLUGINS_DIR)
2. Config file (config.yaml)
3. Default values

User preferences (last export) are stored in ~/.skyrim-alchemy/preferences.json

Examples:
  alchemy config show
  alchemy config show --config ./configs/config.yaml`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Display the current configuration settings.

Shows both system configuration and user preferences.

Example:
  alchemy config show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			// Load system config
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			// Load user config
			userConfigHandler := config.NewUserConfigHandlerAt(preferencesPath)
			if preferencesPath == "" {
				if userConfigHandler, err = config.NewUserConfigHandler(); err != nil {
					return fmt.Errorf("failed to create user config handler: %w", err)
				}
			}

			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			// Display configuration
			fmt.Fprintln(out, "Skyrim Alchemy Configuration")
			fmt.Fprintln(out, "============================")

			fmt.Fprintln(out, "User Preferences:")
			fmt.Fprintf(out, "  Config file:      %s\n", userConfigHandler.GetConfigPath())
			fmt.Fprintf(out, "  Last snapshot:    %s\n", valueOrUnset(userCfg.LastSnapshotPath))
			fmt.Fprintf(out, "  Last snapshot ID: %s\n", valueOrUnset(userCfg.LastSnapshotID))
			if userCfg.LastExportAt != nil {
				fmt.Fprintf(out, "  Last export:      %s\n", userCfg.LastExportAt.Local().Format("2006-01-02 15:04:05"))
			}

			fmt.Fprintln(out, "\nGame:")
			fmt.Fprintf(out, "  Plugins dir:      %s\n", valueOrUnset(cfg.Game.PluginsDir))
			fmt.Fprintf(out, "  Load order:       %s\n", valueOrUnset(cfg.Game.LoadOrderPath))
			fmt.Fprintf(out, "  Strings dir:      %s\n", valueOrUnset(cfg.Game.StringsDir))
			fmt.Fprintf(out, "  Language:         %s\n", cfg.Game.Language)
			fmt.Fprintf(out, "  Implicit plugins: %v\n", cfg.Game.ImplicitPlugins)

			fmt.Fprintln(out, "\nSearch:")
			workers := "all CPUs"
			if cfg.Search.Workers > 0 {
				workers = fmt.Sprintf("%d", cfg.Search.Workers)
			}
			fmt.Fprintf(out, "  Workers:          %s\n", workers)
			fmt.Fprintf(out, "  Cache:            %s (capacity %d)\n", cfg.Search.Cache, cfg.Search.CacheCapacity)
			fmt.Fprintf(out, "  Progress every:   %s\n", cfg.Search.ProgressInterval)

			fmt.Fprintln(out, "\nSnapshot:")
			fmt.Fprintf(out, "  Path:             %s\n", cfg.Snapshot.Path)
			fmt.Fprintf(out, "  Compress:         %v\n", cfg.Snapshot.Compress)

			fmt.Fprintln(out, "\nDatabase:")
			fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Fprintf(out, "  Host:             %s\n", cfg.Database.Host)
				fmt.Fprintf(out, "  Port:             %d\n", cfg.Database.Port)
				fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
				fmt.Fprintf(out, "  User:             %s\n", cfg.Database.User)
				fmt.Fprintf(out, "  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)
			}

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)

			fmt.Fprintln(out, "\nMetrics:")
			fmt.Fprintf(out, "  Enabled:          %v\n", cfg.Metrics.Enabled)
			if cfg.Metrics.Enabled {
				fmt.Fprintf(out, "  Output:           %s\n", cfg.Metrics.OutputPath)
			}

			return nil
		},
	}

	return cmd
}

func valueOrUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
