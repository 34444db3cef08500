package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/adapters/snapshot"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/shared"
)

// GormSnapshotRepository implements gamedata.SnapshotRepository using GORM
type GormSnapshotRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormSnapshotRepository creates a new GORM snapshot repository
func NewGormSnapshotRepository(db *gorm.DB, clock shared.Clock) *GormSnapshotRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormSnapshotRepository{db: db, clock: clock}
}

// Save stores gd under id. An existing snapshot with the same id is replaced.
func (r *GormSnapshotRepository) Save(ctx context.Context, id, label string, gd *gamedata.GameData) (*gamedata.SnapshotInfo, error) {
	data, err := snapshot.Marshal(snapshot.FromGameData(gd), true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot %s: %w", id, err)
	}

	names := gd.LoadOrder().Names()
	model := &SnapshotModel{
		ID:               id,
		Label:            label,
		CreatedAt:        r.clock.Now(),
		IngredientCount:  gd.IngredientCount(),
		MagicEffectCount: gd.MagicEffectCount(),
		SizeBytes:        len(data),
		Data:             data,
		Plugins:          make([]SnapshotPluginModel, len(names)),
	}
	for i, name := range names {
		model.Plugins[i] = SnapshotPluginModel{SnapshotID: id, Position: i, Name: name}
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("snapshot_id = ?", id).Delete(&SnapshotPluginModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&SnapshotModel{}).Error; err != nil {
			return err
		}
		return tx.Create(model).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot %s: %w", id, err)
	}

	return modelToInfo(model), nil
}

// Load decodes the snapshot stored under id
func (r *GormSnapshotRepository) Load(ctx context.Context, id string) (*gamedata.GameData, *gamedata.SnapshotInfo, error) {
	var model SnapshotModel
	result := r.db.WithContext(ctx).
		Preload("Plugins", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("id = ?", id).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", gamedata.ErrSnapshotNotFound, id)
		}
		return nil, nil, fmt.Errorf("failed to find snapshot: %w", result.Error)
	}

	doc, err := snapshot.Unmarshal(model.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("stored snapshot %s: %w", id, err)
	}
	gd, err := doc.GameData()
	if err != nil {
		return nil, nil, fmt.Errorf("stored snapshot %s: %w", id, err)
	}
	return gd, modelToInfo(&model), nil
}

// Latest returns the most recently created snapshot
func (r *GormSnapshotRepository) Latest(ctx context.Context) (*gamedata.SnapshotInfo, error) {
	var model SnapshotModel
	result := r.db.WithContext(ctx).
		Omit("data").
		Preload("Plugins", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("created_at DESC").Order("id DESC").
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, gamedata.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to find latest snapshot: %w", result.Error)
	}
	return modelToInfo(&model), nil
}

// List returns every stored snapshot, newest first
func (r *GormSnapshotRepository) List(ctx context.Context) ([]*gamedata.SnapshotInfo, error) {
	var models []SnapshotModel
	result := r.db.WithContext(ctx).
		Omit("data").
		Preload("Plugins", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("created_at DESC").Order("id DESC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", result.Error)
	}

	infos := make([]*gamedata.SnapshotInfo, 0, len(models))
	for i := range models {
		infos = append(infos, modelToInfo(&models[i]))
	}
	return infos, nil
}

func modelToInfo(model *SnapshotModel) *gamedata.SnapshotInfo {
	names := make([]string, len(model.Plugins))
	for i, p := range model.Plugins {
		names[i] = p.Name
	}
	return &gamedata.SnapshotInfo{
		ID:               model.ID,
		Label:            model.Label,
		CreatedAt:        model.CreatedAt,
		LoadOrder:        names,
		IngredientCount:  model.IngredientCount,
		MagicEffectCount: model.MagicEffectCount,
		SizeBytes:        model.SizeBytes,
	}
}
