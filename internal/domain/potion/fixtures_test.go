package potion_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/formid"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
)

// catalogBuilder assembles a single-plugin GameData for tests. Effects and
// ingredients are referred to by name.
type catalogBuilder struct {
	effects     map[string]gamedata.MagicEffect
	ingredients map[string]gamedata.Ingredient
	nextID      uint32
}

func newCatalogBuilder() *catalogBuilder {
	return &catalogBuilder{
		effects:     make(map[string]gamedata.MagicEffect),
		ingredients: make(map[string]gamedata.Ingredient),
		nextID:      0x800,
	}
}

func (b *catalogBuilder) allocID() formid.GlobalFormID {
	b.nextID++
	return formid.New(0, b.nextID)
}

func (b *catalogBuilder) effect(name string, baseCost float32, flags uint32, description string) *catalogBuilder {
	n := name
	b.effects[name] = gamedata.MagicEffect{
		GlobalFormID: b.allocID(),
		EditorID:     "Alch" + name,
		Name:         &n,
		Description:  description,
		Flags:        flags,
		IsHostile:    flags&gamedata.FlagHostile != 0,
		BaseCost:     baseCost,
	}
	return b
}

type effectDef struct {
	name      string
	magnitude float32
	duration  uint32
}

func (b *catalogBuilder) ingredient(name string, effects ...effectDef) *catalogBuilder {
	return b.ingredientNamed(name, name, effects...)
}

// ingredientNamed registers an ingredient under key with the given display name
func (b *catalogBuilder) ingredientNamed(key, display string, effects ...effectDef) *catalogBuilder {
	list := make([]gamedata.IngredientEffect, len(effects))
	for i, e := range effects {
		if _, ok := b.effects[e.name]; !ok {
			b.effect(e.name, 1, 0, "")
		}
		list[i] = gamedata.IngredientEffect{
			GlobalFormID: b.effects[e.name].GlobalFormID,
			Magnitude:    e.magnitude,
			Duration:     e.duration,
		}
	}
	b.ingredients[key] = gamedata.NewIngredient(b.allocID(), "Ing"+key, &display, list)
	return b
}

// simple adds an ingredient whose effects all have magnitude 1 and duration 0
func (b *catalogBuilder) simple(name string, effects ...string) *catalogBuilder {
	defs := make([]effectDef, len(effects))
	for i, e := range effects {
		defs[i] = effectDef{name: e, magnitude: 1}
	}
	return b.ingredient(name, defs...)
}

type catalog struct {
	gd *gamedata.GameData
	b  *catalogBuilder
}

func (b *catalogBuilder) build(t *testing.T) *catalog {
	t.Helper()
	ings := make([]gamedata.Ingredient, 0, len(b.ingredients))
	for _, ing := range b.ingredients {
		ings = append(ings, ing)
	}
	mgefs := make([]gamedata.MagicEffect, 0, len(b.effects))
	for _, mgef := range b.effects {
		mgefs = append(mgefs, mgef)
	}
	gd, err := gamedata.FromSnapshot([]string{"Skyrim.esm"}, ings, mgefs)
	require.NoError(t, err)
	return &catalog{gd: gd, b: b}
}

func (c *catalog) ing(t *testing.T, name string) *gamedata.Ingredient {
	t.Helper()
	ing, ok := c.gd.Ingredient(c.b.ingredients[name].GlobalFormID)
	require.True(t, ok, "ingredient %s", name)
	return ing
}

func (c *catalog) ings(t *testing.T, names ...string) []*gamedata.Ingredient {
	t.Helper()
	out := make([]*gamedata.Ingredient, len(names))
	for i, name := range names {
		out[i] = c.ing(t, name)
	}
	return out
}

func (c *catalog) effectID(name string) formid.GlobalFormID {
	return c.b.effects[name].GlobalFormID
}

// randomCatalog generates ingredients with up to four effects drawn from a small pool,
// so that many combinations share effects.
func randomCatalog(t *testing.T, seed uint64, ingredients, effects int) *catalog {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed^0x5eed))
	b := newCatalogBuilder()
	for e := 0; e < effects; e++ {
		var flags uint32
		if r.IntN(4) == 0 {
			flags |= gamedata.FlagHostile
		}
		if r.IntN(5) == 0 {
			flags |= gamedata.FlagPowerAffectsMagnitude
		}
		b.effect(fmt.Sprintf("Effect%02d", e), float32(1+r.IntN(30)), flags, "Effect <mag> for <dur>s.")
	}
	for i := 0; i < ingredients; i++ {
		picks := r.Perm(effects)[:1+r.IntN(4)]
		defs := make([]effectDef, len(picks))
		for n, p := range picks {
			defs[n] = effectDef{
				name:      fmt.Sprintf("Effect%02d", p),
				magnitude: float32(1 + r.IntN(10)),
				duration:  uint32(r.IntN(4) * 10),
			}
		}
		// every fifth ingredient reuses a display name to exercise the enumeration tie-breaks
		display := fmt.Sprintf("Ingredient%02d", i)
		if i%5 == 4 {
			display = fmt.Sprintf("Ingredient%02d", i-1)
		}
		b.ingredientNamed(fmt.Sprintf("key%02d", i), display, defs...)
	}
	return b.build(t)
}
