package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// UserConfig represents user preferences stored in ~/.skyrim-alchemy/preferences.json
type UserConfig struct {
	// Snapshot file written by the last export
	LastSnapshotPath string `json:"last_snapshot_path,omitempty"`

	// Id of the last snapshot saved to the database
	LastSnapshotID string `json:"last_snapshot_id,omitempty"`

	// When the last export finished
	LastExportAt *time.Time `json:"last_export_at,omitempty"`
}

// UserConfigHandler manages loading and saving user configuration
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler creates a handler for the preferences file in the home directory
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".skyrim-alchemy", "preferences.json")), nil
}

// NewUserConfigHandlerAt creates a handler for the preferences file at path
func NewUserConfigHandlerAt(path string) *UserConfigHandler {
	return &UserConfigHandler{configPath: path}
}

// Load reads the user config from disk
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	// If file doesn't exist, return empty config
	if _, err := os.Stat(h.configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(h.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var config UserConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}

	return &config, nil
}

// Save writes the user config to disk
func (h *UserConfigHandler) Save(config *UserConfig) error {
	if err := os.MkdirAll(filepath.Dir(h.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(h.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}

	return nil
}

// RecordExport remembers the outcome of an export
func (h *UserConfigHandler) RecordExport(path, snapshotID string, at time.Time) error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.LastSnapshotPath = path
	if snapshotID != "" {
		config.LastSnapshotID = snapshotID
	}
	config.LastExportAt = &at
	return h.Save(config)
}

// GetConfigPath returns the path to the user config file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}
