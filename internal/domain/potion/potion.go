package potion

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/formid"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
)

const (
	// MinIngredients is the minimum number of ingredients per potion
	MinIngredients = 2
	// MaxIngredients is the maximum number of ingredients per potion
	MaxIngredients = 3
	// MaxEffects is the maximum number of effects per potion
	MaxEffects = 6
	// EffectPowerFactor scales magnitude or duration when the effect's power flags are set.
	// Player skill and perks are not modelled.
	EffectPowerFactor float32 = 6.0
)

// MissingEffectName is shown when a potion's primary effect has no resolvable name
const MissingEffectName = "<MISSING_EFFECT_NAME>"

// MagicEffectLookup resolves magic effect ids. *gamedata.GameData satisfies it.
type MagicEffectLookup interface {
	MagicEffect(id formid.GlobalFormID) (*gamedata.MagicEffect, bool)
}

// Catalog resolves both ingredient and magic effect ids. *gamedata.GameData satisfies it.
type Catalog interface {
	MagicEffectLookup
	Ingredient(id formid.GlobalFormID) (*gamedata.Ingredient, bool)
}

// Type is the hostile/beneficial classification of a potion
type Type string

const (
	TypePotion Type = "Potion"
	TypePoison Type = "Poison"
)

// Effect is an active ingredient effect resolved against its magic effect
type Effect struct {
	MagicEffectID formid.GlobalFormID
	Magnitude     uint32
	Duration      uint32
	GoldValue     uint16
}

// Potion is the scored result of combining ingredients that share at least one effect.
// It holds ids only; names and descriptions are resolved through a Catalog.
type Potion struct {
	Ingredients []formid.GlobalFormID
	// Effects is sorted by gold value descending; the first entry is the primary effect
	Effects   []Effect
	GoldValue uint16
}

// FromIngredients crafts a potion from 2 or 3 distinct ingredients.
// A *CraftError is returned when the combination does not produce a potion.
func FromIngredients(ingredients []*gamedata.Ingredient, lookup MagicEffectLookup) (Potion, error) {
	if len(ingredients) < MinIngredients {
		return Potion{}, ErrNotEnoughIngredients
	}
	if len(ingredients) > MaxIngredients {
		return Potion{}, ErrTooManyIngredients
	}
	for i := range ingredients {
		for j := 0; j < i; j++ {
			if ingredients[i].GlobalFormID == ingredients[j].GlobalFormID {
				return Potion{}, duplicateIngredientError(ingredients[i])
			}
		}
	}
	for _, ing := range ingredients {
		if ing.HasDuplicateEffects() {
			return Potion{}, invalidIngredientError(ing)
		}
	}

	pooled := make([]gamedata.IngredientEffect, 0, len(ingredients)*4)
	for _, ing := range ingredients {
		pooled = append(pooled, ing.Effects...)
	}
	slices.SortStableFunc(pooled, func(a, b gamedata.IngredientEffect) int {
		return a.GlobalFormID.Compare(b.GlobalFormID)
	})

	counts := make(map[formid.GlobalFormID]int, len(pooled))
	shared := false
	for _, eff := range pooled {
		counts[eff.GlobalFormID]++
		if counts[eff.GlobalFormID] >= 2 {
			shared = true
		}
	}
	if !shared {
		return Potion{}, ErrNoSharedEffects
	}

	effects := make([]Effect, 0, MaxEffects)
	for _, igef := range pooled {
		if counts[igef.GlobalFormID] < 2 {
			continue
		}
		mgef, ok := lookup.MagicEffect(igef.GlobalFormID)
		if !ok {
			return Potion{}, gamedata.NewUnknownFormIDError(igef.GlobalFormID)
		}
		eff := NewEffect(igef, mgef)

		// pooled is sorted, so instances of the same effect are adjacent
		if n := len(effects); n > 0 && effects[n-1].MagicEffectID == eff.MagicEffectID {
			if effects[n-1].GoldValue >= eff.GoldValue {
				continue
			}
			effects[n-1] = eff
			continue
		}
		effects = append(effects, eff)
	}

	slices.SortStableFunc(effects, func(a, b Effect) int {
		return int(b.GoldValue) - int(a.GoldValue)
	})
	if len(effects) > MaxEffects {
		effects = effects[:MaxEffects]
	}

	ids := make([]formid.GlobalFormID, len(ingredients))
	for i, ing := range ingredients {
		ids[i] = ing.GlobalFormID
	}

	return Potion{
		Ingredients: ids,
		Effects:     effects,
		GoldValue:   totalGoldValue(effects),
	}, nil
}

// NewEffect resolves an ingredient effect against its magic effect
func NewEffect(igef gamedata.IngredientEffect, mgef *gamedata.MagicEffect) Effect {
	magnitude := CalcMagnitude(igef.Magnitude, mgef.Flags)
	duration := CalcDuration(igef.Duration, mgef.Flags)
	return Effect{
		MagicEffectID: mgef.GlobalFormID,
		Magnitude:     magnitude,
		Duration:      duration,
		GoldValue:     CalcGoldValue(magnitude, duration, mgef.BaseCost),
	}
}

// CalcMagnitude applies the magic effect flags to an ingredient's base magnitude
func CalcMagnitude(base float32, flags uint32) uint32 {
	if flags&gamedata.FlagNoMagnitude != 0 {
		base = 0
	}
	factor := float32(1)
	if flags&gamedata.FlagPowerAffectsMagnitude != 0 {
		factor = EffectPowerFactor
	}
	return roundToUint32(base * factor)
}

// CalcDuration applies the magic effect flags to an ingredient's base duration
func CalcDuration(base uint32, flags uint32) uint32 {
	duration := float32(base)
	if flags&gamedata.FlagNoDuration != 0 {
		duration = 0
	}
	factor := float32(1)
	if flags&gamedata.FlagPowerAffectsDuration != 0 {
		factor = EffectPowerFactor
	}
	return roundToUint32(duration * factor)
}

// goldExponent is 1.1 rounded to single precision
const goldExponent float32 = 1.1

// CalcGoldValue returns the value of a single effect. A duration of 0 counts as 10.
// Every step runs in single precision so results match the game at integer boundaries.
func CalcGoldValue(magnitude, duration uint32, baseCost float32) uint16 {
	magFactor := float32(max(magnitude, 1))
	durFactor := float32(10)
	if duration != 0 {
		durFactor = float32(duration)
	}
	durFactor = float32(durFactor / 10)
	strength := float32(math.Pow(float64(float32(magFactor*durFactor)), float64(goldExponent)))
	return saturateUint16(float64(float32(baseCost * strength)))
}

func totalGoldValue(effects []Effect) uint16 {
	var total uint32
	for _, eff := range effects {
		total += uint32(eff.GoldValue)
	}
	if total > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(total)
}

func roundToUint32(v float32) uint32 {
	r := math.Round(float64(v))
	switch {
	case r <= 0 || math.IsNaN(r):
		return 0
	case r >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(r)
}

func saturateUint16(v float64) uint16 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(v)
}

// PrimaryEffect returns the strongest effect
func (p *Potion) PrimaryEffect() Effect {
	return p.Effects[0]
}

// Type classifies the potion by its primary effect
func (p *Potion) Type(lookup MagicEffectLookup) Type {
	if mgef, ok := lookup.MagicEffect(p.PrimaryEffect().MagicEffectID); ok && mgef.IsHostile {
		return TypePoison
	}
	return TypePotion
}

// Name renders the in-game style name, e.g. "Potion of Restore Health"
func (p *Potion) Name(lookup MagicEffectLookup) string {
	name := MissingEffectName
	if mgef, ok := lookup.MagicEffect(p.PrimaryEffect().MagicEffectID); ok && mgef.Name != nil {
		name = *mgef.Name
	}
	return fmt.Sprintf("%s of %s", p.Type(lookup), name)
}

// Description joins every effect description with magnitude and duration substituted
func (p *Potion) Description(lookup MagicEffectLookup) string {
	parts := make([]string, 0, len(p.Effects))
	for _, eff := range p.Effects {
		if d := eff.Description(lookup); d != "" {
			parts = append(parts, d)
		}
	}
	return strings.Join(parts, " ")
}

// IngredientNames resolves the display names of the potion's ingredients
func (p *Potion) IngredientNames(catalog Catalog) []string {
	names := make([]string, len(p.Ingredients))
	for i, id := range p.Ingredients {
		if ing, ok := catalog.Ingredient(id); ok {
			names[i] = ing.DisplayName()
		} else {
			names[i] = id.String()
		}
	}
	return names
}

// Description substitutes <mag> and <dur> in the magic effect description
func (e Effect) Description(lookup MagicEffectLookup) string {
	mgef, ok := lookup.MagicEffect(e.MagicEffectID)
	if !ok {
		return ""
	}
	r := strings.NewReplacer(
		"<mag>", strconv.FormatUint(uint64(e.Magnitude), 10),
		"<dur>", strconv.FormatUint(uint64(e.Duration), 10),
	)
	return r.Replace(mgef.Description)
}
