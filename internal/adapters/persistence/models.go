package persistence

import (
	"time"
)

// SnapshotModel represents the snapshots table
type SnapshotModel struct {
	ID               string                `gorm:"column:id;primaryKey"`
	Label            string                `gorm:"column:label;not null;index"`
	CreatedAt        time.Time             `gorm:"column:created_at;not null;index"`
	IngredientCount  int                   `gorm:"column:ingredient_count;not null"`
	MagicEffectCount int                   `gorm:"column:magic_effect_count;not null"`
	SizeBytes        int                   `gorm:"column:size_bytes;not null"`
	Data             []byte                `gorm:"column:data;not null"` // zstd compressed snapshot document
	Plugins          []SnapshotPluginModel `gorm:"foreignKey:SnapshotID;references:ID;constraint:OnDelete:CASCADE"`
}

func (SnapshotModel) TableName() string {
	return "snapshots"
}

// SnapshotPluginModel represents one load order entry of a stored snapshot
type SnapshotPluginModel struct {
	SnapshotID string `gorm:"column:snapshot_id;primaryKey"`
	Position   int    `gorm:"column:position;primaryKey"`
	Name       string `gorm:"column:name;not null"`
}

func (SnapshotPluginModel) TableName() string {
	return "snapshot_plugins"
}
