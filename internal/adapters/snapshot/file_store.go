package snapshot

import (
	"fmt"
	"os"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
)

// FileStore reads and writes GameData snapshots on the local filesystem
type FileStore struct{}

// NewFileStore creates a FileStore
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Write saves gd to path
func (s *FileStore) Write(path string, gd *gamedata.GameData, compress bool) error {
	return WriteFile(path, FromGameData(gd), compress)
}

// Read loads and validates the snapshot at path
func (s *FileStore) Read(path string) (*gamedata.GameData, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	gd, err := doc.GameData()
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return gd, nil
}

// Inspect summarizes the snapshot at path without building GameData
func (s *FileStore) Inspect(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return Inspect(data)
}
