package config

import (
	"path/filepath"
	"time"
)

// Defaults used when neither the config file nor the environment set a value
const (
	DefaultLanguage         = "English"
	DefaultSnapshotPath     = "game_data.json"
	DefaultCache            = "sync"
	DefaultCacheCapacity    = 500_000
	DefaultProgressInterval = 2 * time.Second
)

// DefaultImplicitPlugins are loaded by the game before anything in plugins.txt
var DefaultImplicitPlugins = []string{
	"Skyrim.esm",
	"Update.esm",
	"Dawnguard.esm",
	"HearthFires.esm",
	"Dragonborn.esm",
}

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Game defaults
	if cfg.Game.Language == "" {
		cfg.Game.Language = DefaultLanguage
	}
	if cfg.Game.StringsDir == "" && cfg.Game.PluginsDir != "" {
		cfg.Game.StringsDir = filepath.Join(cfg.Game.PluginsDir, "Strings")
	}
	if cfg.Game.ImplicitPlugins == nil {
		cfg.Game.ImplicitPlugins = append([]string(nil), DefaultImplicitPlugins...)
	}

	// Search defaults
	if cfg.Search.Cache == "" {
		cfg.Search.Cache = DefaultCache
	}
	if cfg.Search.CacheCapacity == 0 {
		cfg.Search.CacheCapacity = DefaultCacheCapacity
	}
	if cfg.Search.ProgressInterval == 0 {
		cfg.Search.ProgressInterval = DefaultProgressInterval
	}

	// Snapshot defaults
	if cfg.Snapshot.Path == "" {
		cfg.Snapshot.Path = DefaultSnapshotPath
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "alchemy.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "alchemy"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "alchemy"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}
