package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/common"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/mediator"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/formid"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/loadorder"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/plugin"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/shared"
	"github.com/mickdekkers/skyrim-alchemy-go/pkg/utils"
)

// ErrEmptyLoadOrder is returned when no plugin is active
var ErrEmptyLoadOrder = errors.New("load order is empty")

// ExportGameDataCommand scans the load order and writes a game data snapshot
type ExportGameDataCommand struct {
	OutputPath string
	Compress   bool
	// Store also saves the snapshot to the configured database
	Store bool
	Label string
}

// ExportGameDataResponse summarizes an export
type ExportGameDataResponse struct {
	OutputPath       string
	SnapshotID       string
	LoadOrder        []string
	IngredientCount  int
	MagicEffectCount int
	DecodeFailures   int
	Purged           gamedata.IngredientErrors
}

// ExportGameDataHandler handles the export game data command
type ExportGameDataHandler struct {
	files    common.GameFiles
	store    common.SnapshotFileStore
	repo     gamedata.SnapshotRepository
	recorder common.DecodeRecorder
	exports  common.ExportRecorder
	clock    shared.Clock
}

// NewExportGameDataHandler creates a new export handler. repo, recorder and exports may be nil.
func NewExportGameDataHandler(
	files common.GameFiles,
	store common.SnapshotFileStore,
	repo gamedata.SnapshotRepository,
	recorder common.DecodeRecorder,
	exports common.ExportRecorder,
	clock shared.Clock,
) *ExportGameDataHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ExportGameDataHandler{
		files:    files,
		store:    store,
		repo:     repo,
		recorder: recorder,
		exports:  exports,
		clock:    clock,
	}
}

// Handle executes the export game data command
func (h *ExportGameDataHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ExportGameDataCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.OutputPath == "" && !cmd.Store {
		return nil, fmt.Errorf("nothing to export to: no output path and store disabled")
	}
	if cmd.Store && h.repo == nil {
		return nil, fmt.Errorf("snapshot store requested but no database is configured")
	}

	gd, failures, err := h.LoadGameData(ctx)
	if err != nil {
		return nil, err
	}
	purged := PurgeInvalid(ctx, gd)
	if h.recorder != nil {
		h.recorder.RecordAssembly(len(purged), gd.LoadOrder().Len())
	}

	response := &ExportGameDataResponse{
		OutputPath:       cmd.OutputPath,
		LoadOrder:        gd.LoadOrder().Names(),
		IngredientCount:  gd.IngredientCount(),
		MagicEffectCount: gd.MagicEffectCount(),
		DecodeFailures:   failures,
		Purged:           purged,
	}

	if cmd.OutputPath != "" {
		if err := h.store.Write(cmd.OutputPath, gd, cmd.Compress); err != nil {
			return nil, err
		}
	}
	if cmd.Store {
		label := cmd.Label
		if label == "" {
			label = "export"
		}
		info, err := h.repo.Save(ctx, utils.GenerateSnapshotID(label, h.clock.Now()), label, gd)
		if err != nil {
			return nil, err
		}
		response.SnapshotID = info.ID
	}

	logger := common.LoggerFromContext(ctx)
	logger.Log(common.LevelInfo, "Exported game data", map[string]interface{}{
		"output":        cmd.OutputPath,
		"snapshot_id":   response.SnapshotID,
		"plugins":       len(response.LoadOrder),
		"ingredients":   response.IngredientCount,
		"magic_effects": response.MagicEffectCount,
	})

	if h.exports != nil {
		if err := h.exports.RecordExport(cmd.OutputPath, response.SnapshotID, h.clock.Now()); err != nil {
			logger.Log(common.LevelWarn, "Failed to remember export", map[string]interface{}{"error": err.Error()})
		}
	}

	return response, nil
}

// LoadGameData decodes every plugin of the load order into GameData. Records of a
// later plugin replace those of earlier ones with the same id. Returns the number of
// records that failed to decode.
func (h *ExportGameDataHandler) LoadGameData(ctx context.Context) (*gamedata.GameData, int, error) {
	logger := common.LoggerFromContext(ctx)

	names, err := h.files.LoadOrder(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read load order: %w", err)
	}
	lo := loadorder.New(names)
	if lo.IsEmpty() {
		return nil, 0, ErrEmptyLoadOrder
	}
	logger.Log(common.LevelInfo, "Loaded load order", map[string]interface{}{"plugins": lo.Len()})

	ingredients := make(map[formid.GlobalFormID]gamedata.Ingredient)
	magicEffects := make(map[formid.GlobalFormID]gamedata.MagicEffect)
	failures := 0

	for _, name := range lo.Names() {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		start := time.Now()
		res, err := h.decodePlugin(ctx, lo, name)
		if err != nil {
			return nil, 0, err
		}
		for _, ing := range res.Ingredients {
			ingredients[ing.GlobalFormID] = ing
		}
		for _, mgef := range res.MagicEffects {
			magicEffects[mgef.GlobalFormID] = mgef
		}
		failures += len(res.Failures)

		logger.Log(common.LevelInfo, "Decoded plugin", map[string]interface{}{
			"plugin":        name,
			"ingredients":   len(res.Ingredients),
			"magic_effects": len(res.MagicEffects),
			"skipped":       res.Skipped,
		})
		if len(res.Failures) > 0 {
			details := make([]string, len(res.Failures))
			for i, f := range res.Failures {
				details[i] = f.Error()
			}
			logger.Log(common.LevelWarn, "Failed to decode records", map[string]interface{}{
				"plugin":   name,
				"count":    len(res.Failures),
				"failures": details,
			})
		}
		if h.recorder != nil {
			h.recorder.RecordPlugin(name, len(res.Ingredients), len(res.MagicEffects), len(res.Failures), time.Since(start).Seconds())
		}
	}

	retained := RetainReferencedMagicEffects(ingredients, magicEffects)
	if dropped := len(magicEffects) - len(retained); dropped > 0 {
		logger.Log(common.LevelDebug, "Dropped unreferenced magic effects", map[string]interface{}{"count": dropped})
	}

	before := lo.Len()
	gd, err := gamedata.FromDecoded(lo, ingredients, retained)
	if err != nil {
		return nil, 0, err
	}
	logger.Log(common.LevelDebug, "Compacted load order", map[string]interface{}{
		"before": before,
		"after":  gd.LoadOrder().Len(),
	})
	return gd, failures, nil
}

func (h *ExportGameDataHandler) decodePlugin(ctx context.Context, lo *loadorder.LoadOrder, name string) (plugin.Result, error) {
	src, err := h.files.ReadPlugin(ctx, name)
	if err != nil {
		return plugin.Result{}, fmt.Errorf("failed to read plugin %s: %w", name, err)
	}

	resolve := plugin.ZStringResolver
	if src.Localized {
		tables, err := h.files.StringTables(name)
		if err != nil {
			return plugin.Result{}, err
		}
		resolve = plugin.LocalizedResolver(tables)
	}

	globalizer := formid.NewGlobalizer(name, src.Masters, lo)
	return plugin.NewDecoder(name, globalizer.Globalize, resolve).DecodeAll(src.Records), nil
}

// RetainReferencedMagicEffects keeps the magic effects used by at least one ingredient
func RetainReferencedMagicEffects(
	ingredients map[formid.GlobalFormID]gamedata.Ingredient,
	magicEffects map[formid.GlobalFormID]gamedata.MagicEffect,
) map[formid.GlobalFormID]gamedata.MagicEffect {
	referenced := make(map[formid.GlobalFormID]struct{})
	for _, ing := range ingredients {
		for _, eff := range ing.Effects {
			referenced[eff.GlobalFormID] = struct{}{}
		}
	}
	out := make(map[formid.GlobalFormID]gamedata.MagicEffect, len(referenced))
	for id, mgef := range magicEffects {
		if _, ok := referenced[id]; ok {
			out[id] = mgef
		}
	}
	return out
}

// PurgeInvalid removes invalid ingredients from gd and logs each one
func PurgeInvalid(ctx context.Context, gd *gamedata.GameData) gamedata.IngredientErrors {
	purged := gd.PurgeInvalid()
	logger := common.LoggerFromContext(ctx)
	for _, ingErr := range purged {
		unknown := make([]string, len(ingErr.Unknown))
		for i, u := range ingErr.Unknown {
			unknown[i] = u.FormID.String()
		}
		logger.Log(common.LevelWarn, "Removed invalid ingredient", map[string]interface{}{
			"ingredient":      ingErr.Ingredient.DisplayName(),
			"global_form_id":  ingErr.Ingredient.GlobalFormID.String(),
			"unknown_effects": unknown,
			"reason":          string(ingErr.Kind),
		})
	}
	return purged
}
