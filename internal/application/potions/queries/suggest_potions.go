package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/common"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/mediator"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/potion"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/shared"
)

// DefaultLimit is the number of potions suggested when no limit is given
const DefaultLimit = 20

// LatestSnapshot selects the most recently stored snapshot
const LatestSnapshot = "latest"

// SuggestPotionsQuery ranks the potions craftable from a snapshot
type SuggestPotionsQuery struct {
	// SnapshotPath names a snapshot file. Ignored when SnapshotID is set.
	SnapshotPath string
	// SnapshotID names a stored snapshot, or LatestSnapshot
	SnapshotID string

	Filter IngredientFilter
	// Limit defaults to DefaultLimit
	Limit int

	Workers          int
	Cache            potion.CacheKind
	CacheCapacity    int
	ProgressInterval time.Duration
}

// PotionDTO is a ranked potion ready for display
type PotionDTO struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	GoldValue   uint16   `json:"gold_value"`
	Ingredients []string `json:"ingredients"`
}

// SuggestPotionsResponse contains the best potions, most valuable first
type SuggestPotionsResponse struct {
	Source      string      `json:"source"`
	Ingredients int         `json:"ingredients"`
	Found       int         `json:"found"`
	Purged      int         `json:"purged"`
	Potions     []PotionDTO `json:"potions"`
}

// SuggestPotionsHandler handles the suggest potions query
type SuggestPotionsHandler struct {
	store    common.SnapshotFileStore
	repo     gamedata.SnapshotRepository
	observer potion.BuildObserver
}

// NewSuggestPotionsHandler creates a new suggest potions handler. repo and observer may be nil.
func NewSuggestPotionsHandler(
	store common.SnapshotFileStore,
	repo gamedata.SnapshotRepository,
	observer potion.BuildObserver,
) *SuggestPotionsHandler {
	return &SuggestPotionsHandler{
		store:    store,
		repo:     repo,
		observer: observer,
	}
}

// Handle executes the suggest potions query
func (h *SuggestPotionsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*SuggestPotionsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if err := query.Filter.Validate(); err != nil {
		return nil, err
	}
	limit := query.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 {
		return nil, shared.NewValidationError("limit", fmt.Sprintf("must be at least 1, got %d", limit))
	}

	logger := common.LoggerFromContext(ctx)

	gd, source, err := h.loadGameData(ctx, query)
	if err != nil {
		return nil, err
	}
	purged := gd.PurgeInvalid()
	for _, ingErr := range purged {
		logger.Log(common.LevelWarn, "Removed invalid ingredient", map[string]interface{}{
			"ingredient": ingErr.Ingredient.DisplayName(),
			"error":      ingErr.Error(),
		})
	}

	ingredients, unmatched := query.Filter.Apply(gd.Ingredients())
	for _, name := range unmatched {
		logger.Log(common.LevelWarn, "Listed ingredient not found", map[string]interface{}{"name": name})
	}
	logger.Log(common.LevelInfo, "Loaded game data", map[string]interface{}{
		"source":      source,
		"ingredients": len(ingredients),
		"purged":      len(purged),
	})

	list := potion.NewPotionsList(gd, ingredients, potion.Options{
		Workers:       query.Workers,
		Cache:         query.Cache,
		CacheCapacity: query.CacheCapacity,
		Observer:      newProgressLogger(ctx, query.ProgressInterval, h.observer),
	})
	if err := list.Build(ctx); err != nil {
		return nil, fmt.Errorf("potion search failed: %w", err)
	}

	response := &SuggestPotionsResponse{
		Source:      source,
		Ingredients: len(ingredients),
		Found:       list.Len(),
		Purged:      len(purged),
		Potions:     make([]PotionDTO, 0, min(limit, list.Len())),
	}
	for p := range list.All() {
		if len(response.Potions) == limit {
			break
		}
		response.Potions = append(response.Potions, toDTO(&p, gd))
	}
	return response, nil
}

func (h *SuggestPotionsHandler) loadGameData(ctx context.Context, query *SuggestPotionsQuery) (*gamedata.GameData, string, error) {
	if query.SnapshotID == "" {
		if query.SnapshotPath == "" {
			return nil, "", fmt.Errorf("no snapshot given")
		}
		gd, err := h.store.Read(query.SnapshotPath)
		if err != nil {
			return nil, "", err
		}
		return gd, query.SnapshotPath, nil
	}

	if h.repo == nil {
		return nil, "", fmt.Errorf("snapshot %s requested but no database is configured", query.SnapshotID)
	}
	id := query.SnapshotID
	if id == LatestSnapshot {
		latest, err := h.repo.Latest(ctx)
		if err != nil {
			if errors.Is(err, gamedata.ErrSnapshotNotFound) {
				return nil, "", fmt.Errorf("no snapshots stored: %w", err)
			}
			return nil, "", err
		}
		id = latest.ID
	}
	gd, info, err := h.repo.Load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return gd, "snapshot " + info.ID, nil
}

func toDTO(p *potion.Potion, gd *gamedata.GameData) PotionDTO {
	return PotionDTO{
		Name:        p.Name(gd),
		Type:        string(p.Type(gd)),
		Description: p.Description(gd),
		GoldValue:   p.GoldValue,
		Ingredients: p.IngredientNames(gd),
	}
}
