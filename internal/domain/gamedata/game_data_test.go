package gamedata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/formid"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/loadorder"
)

func strPtr(s string) *string { return &s }

func mgef(index uint16, id uint32, name string) gamedata.MagicEffect {
	return gamedata.MagicEffect{
		GlobalFormID: formid.New(index, id),
		EditorID:     "Alch" + name,
		Name:         strPtr(name),
		BaseCost:     1,
	}
}

func ingredient(index uint16, id uint32, name string, effects ...formid.GlobalFormID) gamedata.Ingredient {
	list := make([]gamedata.IngredientEffect, len(effects))
	for i, e := range effects {
		list[i] = gamedata.IngredientEffect{GlobalFormID: e, Magnitude: 1, Duration: 10}
	}
	return gamedata.NewIngredient(formid.New(index, id), "Ing"+name, strPtr(name), list)
}

func TestNewIngredient_SortsEffects(t *testing.T) {
	ing := ingredient(0, 1, "Wheat", formid.New(1, 5), formid.New(0, 9), formid.New(0, 2))

	assert.Equal(t, []formid.GlobalFormID{formid.New(0, 2), formid.New(0, 9), formid.New(1, 5)}, ing.EffectIDs())
}

func TestIngredient_SharedEffects(t *testing.T) {
	x, y, z, w := formid.New(0, 1), formid.New(0, 2), formid.New(0, 3), formid.New(0, 4)
	a := ingredient(0, 10, "A", x, y, z)
	b := ingredient(0, 11, "B", z, y, w)
	c := ingredient(0, 12, "C", w)

	assert.True(t, a.SharesEffectsWith(&b))
	assert.True(t, b.SharesEffectsWith(&a))
	assert.False(t, a.SharesEffectsWith(&c))
	assert.Equal(t, []formid.GlobalFormID{y, z}, a.SharedEffectIDs(&b))
	assert.Equal(t, []formid.GlobalFormID{y, z}, b.SharedEffectIDs(&a))
	assert.Empty(t, a.SharedEffectIDs(&c))
}

func TestIngredient_DuplicateEffectsAndDisplayName(t *testing.T) {
	x := formid.New(0, 1)
	broken := ingredient(0, 10, "Broken", x, formid.New(0, 2), x)
	fine := ingredient(0, 11, "Fine", x)
	unnamed := gamedata.NewIngredient(formid.New(0, 12), "IngUnnamed", nil, nil)

	assert.True(t, broken.HasDuplicateEffects())
	assert.False(t, fine.HasDuplicateEffects())
	assert.Equal(t, "Fine", fine.DisplayName())
	assert.Equal(t, "IngUnnamed", unnamed.DisplayName())
}

func TestGameData_Validate(t *testing.T) {
	// Arrange
	known := mgef(0, 0x100, "Restore Health")
	missingA, missingB := formid.New(0, 0x200), formid.New(0, 0x201)
	gd, err := gamedata.FromSnapshot(
		[]string{"Skyrim.esm"},
		[]gamedata.Ingredient{
			ingredient(0, 1, "Valid", known.GlobalFormID),
			ingredient(0, 2, "OneMissing", known.GlobalFormID, missingA),
			ingredient(0, 3, "TwoMissing", missingB, missingA),
		},
		[]gamedata.MagicEffect{known},
	)
	require.NoError(t, err)

	// Act
	err = gd.Validate()

	// Assert
	require.Error(t, err)
	var errs gamedata.IngredientErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 2)
	assert.Equal(t, "OneMissing", errs[0].Ingredient.DisplayName())
	assert.Equal(t, gamedata.ReferencesUnknownMagicEffects, errs[0].Kind)
	require.Len(t, errs[0].Unknown, 1)
	assert.Equal(t, missingA, errs[0].Unknown[0].FormID)
	assert.Equal(t, "TwoMissing", errs[1].Ingredient.DisplayName())
	assert.Len(t, errs[1].Unknown, 2)
	assert.Contains(t, err.Error(), "2 invalid ingredients")
}

func TestGameData_PurgeInvalidIsIdempotent(t *testing.T) {
	known := mgef(0, 0x100, "Restore Health")
	orphaned := mgef(0, 0x101, "Only Used By Broken")
	gd, err := gamedata.FromSnapshot(
		[]string{"Skyrim.esm"},
		[]gamedata.Ingredient{
			ingredient(0, 1, "Valid", known.GlobalFormID),
			ingredient(0, 2, "Broken", orphaned.GlobalFormID, formid.New(0, 0x999)),
		},
		[]gamedata.MagicEffect{known, orphaned},
	)
	require.NoError(t, err)

	removed := gd.PurgeInvalid()

	require.Len(t, removed, 1)
	assert.Equal(t, "Broken", removed[0].Ingredient.DisplayName())
	assert.Equal(t, 1, gd.IngredientCount())
	assert.Equal(t, 2, gd.MagicEffectCount(), "magic effects are not cascaded")
	assert.NoError(t, gd.Validate())
	assert.Nil(t, gd.PurgeInvalid())
}

func TestGameData_FromDecodedCompactsLoadOrder(t *testing.T) {
	// Arrange: only Dawnguard.esm (index 2) and Mod.esp (index 4) are referenced
	lo := loadorder.New([]string{"Skyrim.esm", "Update.esm", "Dawnguard.esm", "HearthFires.esm", "Mod.esp"})
	effect := mgef(2, 0x100, "Vampirism")
	ing := ingredient(4, 0x10, "Mod Root", effect.GlobalFormID)

	// Act
	gd, err := gamedata.FromDecoded(lo,
		map[formid.GlobalFormID]gamedata.Ingredient{ing.GlobalFormID: ing},
		map[formid.GlobalFormID]gamedata.MagicEffect{effect.GlobalFormID: effect},
	)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"Dawnguard.esm", "Mod.esp"}, gd.LoadOrder().Names())

	ings := gd.Ingredients()
	require.Len(t, ings, 1)
	assert.Equal(t, formid.New(1, 0x10), ings[0].GlobalFormID)
	assert.Equal(t, []formid.GlobalFormID{formid.New(0, 0x100)}, ings[0].EffectIDs())

	got, ok := gd.MagicEffect(formid.New(0, 0x100))
	require.True(t, ok)
	assert.Equal(t, "Vampirism", got.DisplayName())
	assert.NoError(t, gd.Validate())
}

func TestGameData_FromDecodedKeepsDenseLoadOrder(t *testing.T) {
	lo := loadorder.New([]string{"Skyrim.esm", "Mod.esp"})
	effect := mgef(0, 0x100, "Restore Health")
	ing := ingredient(1, 0x10, "Mod Root", effect.GlobalFormID)

	gd, err := gamedata.FromDecoded(lo,
		map[formid.GlobalFormID]gamedata.Ingredient{ing.GlobalFormID: ing},
		map[formid.GlobalFormID]gamedata.MagicEffect{effect.GlobalFormID: effect},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"Skyrim.esm", "Mod.esp"}, gd.LoadOrder().Names())
	_, ok := gd.Ingredient(ing.GlobalFormID)
	assert.True(t, ok)
}

func TestGameData_FromDecodedRejectsIndexOutsideLoadOrder(t *testing.T) {
	lo := loadorder.New([]string{"Skyrim.esm"})
	ing := ingredient(0, 0x10, "Stray", formid.New(3, 0x100))

	_, err := gamedata.FromDecoded(lo, map[formid.GlobalFormID]gamedata.Ingredient{ing.GlobalFormID: ing}, nil)

	assert.ErrorContains(t, err, "load order index 3")
}

func TestGameData_ListsAreSortedByID(t *testing.T) {
	gd, err := gamedata.FromSnapshot(
		[]string{"Skyrim.esm"},
		[]gamedata.Ingredient{ingredient(0, 9, "C"), ingredient(0, 1, "A"), ingredient(0, 5, "B")},
		[]gamedata.MagicEffect{mgef(0, 0x30, "Z"), mgef(0, 0x10, "X")},
	)
	require.NoError(t, err)

	var names []string
	for _, ing := range gd.Ingredients() {
		names = append(names, ing.DisplayName())
	}
	assert.Equal(t, []string{"A", "B", "C"}, names)
	assert.Equal(t, formid.New(0, 0x10), gd.MagicEffects()[0].GlobalFormID)
}
