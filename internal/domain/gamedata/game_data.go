package gamedata

import (
	"fmt"
	"maps"
	"slices"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/formid"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/loadorder"
)

// GameData owns every ingredient and magic effect of a dataset together with the
// load order their ids refer to. It is read-only once validated and purged.
type GameData struct {
	loadOrder    *loadorder.LoadOrder
	ingredients  map[formid.GlobalFormID]*Ingredient
	magicEffects map[formid.GlobalFormID]*MagicEffect
}

// FromDecoded builds GameData from globalized records. Plugins not referenced by
// any record are dropped from the load order and every id is rewritten to the
// compacted indices.
func FromDecoded(
	lo *loadorder.LoadOrder,
	ingredients map[formid.GlobalFormID]Ingredient,
	magicEffects map[formid.GlobalFormID]MagicEffect,
) (*GameData, error) {
	used := make([]uint16, 0, len(ingredients)+len(magicEffects))
	for id, ing := range ingredients {
		used = append(used, id.LoadOrderIndex)
		for _, eff := range ing.Effects {
			used = append(used, eff.GlobalFormID.LoadOrderIndex)
		}
	}
	for id := range magicEffects {
		used = append(used, id.LoadOrderIndex)
	}
	for _, index := range used {
		if _, ok := lo.Get(index); !ok {
			return nil, fmt.Errorf("record references load order index %d but the load order has %d entries", index, lo.Len())
		}
	}

	remap, changed := lo.DrainUnused(used)

	gd := &GameData{
		loadOrder:    lo,
		ingredients:  make(map[formid.GlobalFormID]*Ingredient, len(ingredients)),
		magicEffects: make(map[formid.GlobalFormID]*MagicEffect, len(magicEffects)),
	}
	for _, ing := range ingredients {
		ing := NewIngredient(ing.GlobalFormID, ing.EditorID, ing.Name, ing.Effects)
		if changed {
			ing.remap(remap)
		}
		gd.ingredients[ing.GlobalFormID] = &ing
	}
	for _, mgef := range magicEffects {
		if changed {
			mgef.GlobalFormID = mgef.GlobalFormID.WithLoadOrderIndex(remap[mgef.GlobalFormID.LoadOrderIndex])
		}
		gd.magicEffects[mgef.GlobalFormID] = &mgef
	}
	return gd, nil
}

// FromSnapshot builds GameData from the persisted list form. Later duplicates win.
func FromSnapshot(loadOrderNames []string, ingredients []Ingredient, magicEffects []MagicEffect) (*GameData, error) {
	ingredientsByID := make(map[formid.GlobalFormID]Ingredient, len(ingredients))
	for _, ing := range ingredients {
		ingredientsByID[ing.GlobalFormID] = ing
	}
	magicEffectsByID := make(map[formid.GlobalFormID]MagicEffect, len(magicEffects))
	for _, mgef := range magicEffects {
		magicEffectsByID[mgef.GlobalFormID] = mgef
	}
	return FromDecoded(loadorder.New(loadOrderNames), ingredientsByID, magicEffectsByID)
}

// LoadOrder returns the compacted load order
func (gd *GameData) LoadOrder() *loadorder.LoadOrder {
	return gd.loadOrder
}

// Ingredient looks up an ingredient by id
func (gd *GameData) Ingredient(id formid.GlobalFormID) (*Ingredient, bool) {
	ing, ok := gd.ingredients[id]
	return ing, ok
}

// MagicEffect looks up a magic effect by id
func (gd *GameData) MagicEffect(id formid.GlobalFormID) (*MagicEffect, bool) {
	mgef, ok := gd.magicEffects[id]
	return mgef, ok
}

// Ingredients returns every ingredient sorted by id
func (gd *GameData) Ingredients() []*Ingredient {
	keys := slices.SortedFunc(maps.Keys(gd.ingredients), formid.GlobalFormID.Compare)
	out := make([]*Ingredient, len(keys))
	for i, k := range keys {
		out[i] = gd.ingredients[k]
	}
	return out
}

// MagicEffects returns every magic effect sorted by id
func (gd *GameData) MagicEffects() []*MagicEffect {
	keys := slices.SortedFunc(maps.Keys(gd.magicEffects), formid.GlobalFormID.Compare)
	out := make([]*MagicEffect, len(keys))
	for i, k := range keys {
		out[i] = gd.magicEffects[k]
	}
	return out
}

// IngredientCount returns the number of ingredients
func (gd *GameData) IngredientCount() int {
	return len(gd.ingredients)
}

// MagicEffectCount returns the number of magic effects
func (gd *GameData) MagicEffectCount() int {
	return len(gd.magicEffects)
}

// Validate checks that every ingredient effect references a known magic effect.
// All violations are returned at once as IngredientErrors, ordered by ingredient id.
func (gd *GameData) Validate() error {
	var errs IngredientErrors
	for _, ing := range gd.Ingredients() {
		var unknown []*UnknownFormIDError
		for _, eff := range ing.Effects {
			if _, ok := gd.magicEffects[eff.GlobalFormID]; !ok {
				unknown = append(unknown, NewUnknownFormIDError(eff.GlobalFormID))
			}
		}
		if len(unknown) > 0 {
			errs = append(errs, &IngredientError{
				Kind:       ReferencesUnknownMagicEffects,
				Ingredient: ing,
				Unknown:    unknown,
			})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// PurgeInvalid removes every ingredient Validate rejects and returns what was removed.
// Magic effects left unreferenced by the removal are kept.
func (gd *GameData) PurgeInvalid() IngredientErrors {
	err := gd.Validate()
	if err == nil {
		return nil
	}
	errs := err.(IngredientErrors)
	for _, ingErr := range errs {
		delete(gd.ingredients, ingErr.Ingredient.GlobalFormID)
	}
	return errs
}
