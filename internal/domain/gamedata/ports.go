package gamedata

import (
	"context"
	"errors"
	"time"
)

// ErrSnapshotNotFound is returned when no stored snapshot matches a lookup
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotInfo describes a stored snapshot without its contents
type SnapshotInfo struct {
	ID               string
	Label            string
	CreatedAt        time.Time
	LoadOrder        []string
	IngredientCount  int
	MagicEffectCount int
	SizeBytes        int
}

// SnapshotRepository stores exported GameData
type SnapshotRepository interface {
	Save(ctx context.Context, id, label string, gd *GameData) (*SnapshotInfo, error)
	Load(ctx context.Context, id string) (*GameData, *SnapshotInfo, error)
	Latest(ctx context.Context) (*SnapshotInfo, error)
	List(ctx context.Context) ([]*SnapshotInfo, error)
}
