package config

import "time"

// SearchConfig tunes the potion search
type SearchConfig struct {
	// Worker goroutines, 0 means one per CPU
	Workers int `mapstructure:"workers" validate:"min=0"`

	// Shared effects cache flavour: sync, unsync or none
	Cache string `mapstructure:"cache" validate:"required,oneof=sync unsync none"`

	// Entries kept by the bounded sync cache
	CacheCapacity int `mapstructure:"cache_capacity" validate:"min=1"`

	// Minimum gap between progress log lines
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
}

// SnapshotConfig controls where game data snapshots are written
type SnapshotConfig struct {
	// Default snapshot file
	Path string `mapstructure:"path" validate:"required"`

	// Force zstd compression even when the path has no .zst suffix
	Compress bool `mapstructure:"compress"`
}
