package common

import (
	"context"
	"time"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/plugin"
)

// GameFiles reads plugin data from a game installation
type GameFiles interface {
	LoadOrder(ctx context.Context) ([]string, error)
	ReadPlugin(ctx context.Context, name string) (*plugin.Source, error)
	StringTables(name string) (plugin.StringLookup, error)
}

// SnapshotFileStore reads and writes snapshot files
type SnapshotFileStore interface {
	Write(path string, gd *gamedata.GameData, compress bool) error
	Read(path string) (*gamedata.GameData, error)
}

// DecodeRecorder receives export statistics
type DecodeRecorder interface {
	RecordPlugin(plugin string, ingredients, magicEffects, failures int, seconds float64)
	RecordAssembly(purged, plugins int)
}

// ExportRecorder remembers where the last export went
type ExportRecorder interface {
	RecordExport(path, snapshotID string, at time.Time) error
}
