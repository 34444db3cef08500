package gamedata

import (
	"slices"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/formid"
)

// Ingredient is an item that grants its effects when combined with another
// ingredient sharing at least one of them. Identity is the GlobalFormID.
type Ingredient struct {
	GlobalFormID formid.GlobalFormID `json:"global_form_id"`
	EditorID     string              `json:"editor_id"`
	Name         *string             `json:"name"`
	// Effects is sorted by GlobalFormID ascending
	Effects []IngredientEffect `json:"effects"`
}

// IngredientEffect is a magic effect granted by an ingredient at a base strength
type IngredientEffect struct {
	GlobalFormID formid.GlobalFormID `json:"global_form_id"`
	Magnitude    float32             `json:"magnitude"`
	Duration     uint32              `json:"duration"`
}

// NewIngredient creates an Ingredient, sorting its effects by id
func NewIngredient(id formid.GlobalFormID, editorID string, name *string, effects []IngredientEffect) Ingredient {
	effects = slices.Clone(effects)
	slices.SortStableFunc(effects, func(a, b IngredientEffect) int {
		return a.GlobalFormID.Compare(b.GlobalFormID)
	})
	return Ingredient{
		GlobalFormID: id,
		EditorID:     editorID,
		Name:         name,
		Effects:      effects,
	}
}

// DisplayName returns the in-game name, falling back to the editor id
func (i *Ingredient) DisplayName() string {
	if i.Name != nil {
		return *i.Name
	}
	return i.EditorID
}

// EffectIDs returns the ids of the ingredient's effects in stored order
func (i *Ingredient) EffectIDs() []formid.GlobalFormID {
	ids := make([]formid.GlobalFormID, len(i.Effects))
	for n, eff := range i.Effects {
		ids[n] = eff.GlobalFormID
	}
	return ids
}

// HasDuplicateEffects reports whether the same effect id appears more than once
func (i *Ingredient) HasDuplicateEffects() bool {
	for a := 0; a < len(i.Effects); a++ {
		for b := a + 1; b < len(i.Effects); b++ {
			if i.Effects[a].GlobalFormID == i.Effects[b].GlobalFormID {
				return true
			}
		}
	}
	return false
}

// SharesEffectsWith reports whether the two ingredients have at least one effect id
// in common and can therefore be combined
func (i *Ingredient) SharesEffectsWith(other *Ingredient) bool {
	a, b := 0, 0
	for a < len(i.Effects) && b < len(other.Effects) {
		switch c := i.Effects[a].GlobalFormID.Compare(other.Effects[b].GlobalFormID); {
		case c == 0:
			return true
		case c < 0:
			a++
		default:
			b++
		}
	}
	return false
}

// SharedEffectIDs returns the sorted, deduplicated effect ids the two ingredients have in common
func (i *Ingredient) SharedEffectIDs(other *Ingredient) []formid.GlobalFormID {
	var shared []formid.GlobalFormID
	a, b := 0, 0
	for a < len(i.Effects) && b < len(other.Effects) {
		idA, idB := i.Effects[a].GlobalFormID, other.Effects[b].GlobalFormID
		switch c := idA.Compare(idB); {
		case c == 0:
			if len(shared) == 0 || shared[len(shared)-1] != idA {
				shared = append(shared, idA)
			}
			a++
			b++
		case c < 0:
			a++
		default:
			b++
		}
	}
	return shared
}

// remap rewrites the load order index of the ingredient and its effects
func (i *Ingredient) remap(table map[uint16]uint16) {
	i.GlobalFormID = i.GlobalFormID.WithLoadOrderIndex(table[i.GlobalFormID.LoadOrderIndex])
	for n := range i.Effects {
		eff := &i.Effects[n]
		eff.GlobalFormID = eff.GlobalFormID.WithLoadOrderIndex(table[eff.GlobalFormID.LoadOrderIndex])
	}
}
