package potion_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/potion"
)

type craftingContext struct {
	builder *catalogBuilder
	gd      *gamedata.GameData
	potion  potion.Potion
	err     error
	list    *potion.PotionsList
}

func (ctx *craftingContext) reset() {
	ctx.builder = newCatalogBuilder()
	ctx.gd = nil
	ctx.potion = potion.Potion{}
	ctx.err = nil
	ctx.list = nil
}

func InitializeCraftingScenario(sc *godog.ScenarioContext) {
	cc := &craftingContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		cc.reset()
		return ctx, nil
	})

	sc.Step(`^the magic effects:$`, cc.theMagicEffects)
	sc.Step(`^the ingredients:$`, cc.theIngredients)
	sc.Step(`^I combine "([^"]*)"$`, cc.iCombine)
	sc.Step(`^I search for all potions$`, cc.iSearchForAllPotions)
	sc.Step(`^the potion is named "([^"]*)"$`, cc.thePotionIsNamed)
	sc.Step(`^the potion is worth (\d+) gold$`, cc.thePotionIsWorth)
	sc.Step(`^the potion has (\d+) effects$`, cc.thePotionHasEffects)
	sc.Step(`^the potion description is "([^"]*)"$`, cc.thePotionDescriptionIs)
	sc.Step(`^crafting fails with "([^"]*)"$`, cc.craftingFailsWith)
	sc.Step(`^(\d+) two-ingredient potions are found$`, cc.twoIngredientPotionsAreFound)
	sc.Step(`^(\d+) three-ingredient potions are found$`, cc.threeIngredientPotionsAreFound)
	sc.Step(`^the best potion is named "([^"]*)"$`, cc.theBestPotionIsNamed)
}

func TestCraftingFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeCraftingScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run crafting feature tests")
	}
}

func (ctx *craftingContext) theMagicEffects(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		name := cell(table, row, "name")
		cost, err := strconv.ParseFloat(cell(table, row, "base_cost"), 32)
		if err != nil {
			return fmt.Errorf("invalid base_cost for %s: %w", name, err)
		}
		var flags uint32
		if cell(table, row, "hostile") == "yes" {
			flags |= gamedata.FlagHostile
		}
		ctx.builder.effect(name, float32(cost), flags, cell(table, row, "description"))
	}
	return nil
}

// theIngredients reads effects as "Name:magnitude:duration" separated by commas
func (ctx *craftingContext) theIngredients(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		name := cell(table, row, "name")
		var defs []effectDef
		for _, raw := range strings.Split(cell(table, row, "effects"), ",") {
			parts := strings.Split(strings.TrimSpace(raw), ":")
			if len(parts) != 3 {
				return fmt.Errorf("invalid effect %q for %s", raw, name)
			}
			mag, err := strconv.ParseFloat(parts[1], 32)
			if err != nil {
				return fmt.Errorf("invalid magnitude %q for %s: %w", parts[1], name, err)
			}
			dur, err := strconv.ParseUint(parts[2], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid duration %q for %s: %w", parts[2], name, err)
			}
			defs = append(defs, effectDef{name: parts[0], magnitude: float32(mag), duration: uint32(dur)})
		}
		ctx.builder.ingredient(name, defs...)
	}
	return ctx.buildGameData()
}

func (ctx *craftingContext) buildGameData() error {
	ings := make([]gamedata.Ingredient, 0, len(ctx.builder.ingredients))
	for _, ing := range ctx.builder.ingredients {
		ings = append(ings, ing)
	}
	mgefs := make([]gamedata.MagicEffect, 0, len(ctx.builder.effects))
	for _, mgef := range ctx.builder.effects {
		mgefs = append(mgefs, mgef)
	}
	gd, err := gamedata.FromSnapshot([]string{"Skyrim.esm"}, ings, mgefs)
	if err != nil {
		return err
	}
	ctx.gd = gd
	return nil
}

func (ctx *craftingContext) iCombine(names string) error {
	var ings []*gamedata.Ingredient
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		stored, ok := ctx.builder.ingredients[name]
		if !ok {
			return fmt.Errorf("unknown ingredient %q", name)
		}
		ing, _ := ctx.gd.Ingredient(stored.GlobalFormID)
		ings = append(ings, ing)
	}
	ctx.potion, ctx.err = potion.FromIngredients(ings, ctx.gd)
	return nil
}

func (ctx *craftingContext) iSearchForAllPotions() error {
	ctx.list = potion.NewPotionsList(ctx.gd, ctx.gd.Ingredients(), potion.Options{Workers: 2, Cache: potion.CacheSync})
	return ctx.list.Build(context.Background())
}

func (ctx *craftingContext) crafted() error {
	if ctx.err != nil {
		return fmt.Errorf("expected a potion but crafting failed: %w", ctx.err)
	}
	return nil
}

func (ctx *craftingContext) thePotionIsNamed(name string) error {
	if err := ctx.crafted(); err != nil {
		return err
	}
	if got := ctx.potion.Name(ctx.gd); got != name {
		return fmt.Errorf("expected potion name %q, got %q", name, got)
	}
	return nil
}

func (ctx *craftingContext) thePotionIsWorth(gold int) error {
	if err := ctx.crafted(); err != nil {
		return err
	}
	if int(ctx.potion.GoldValue) != gold {
		return fmt.Errorf("expected %d gold, got %d", gold, ctx.potion.GoldValue)
	}
	return nil
}

func (ctx *craftingContext) thePotionHasEffects(count int) error {
	if err := ctx.crafted(); err != nil {
		return err
	}
	if len(ctx.potion.Effects) != count {
		return fmt.Errorf("expected %d effects, got %d", count, len(ctx.potion.Effects))
	}
	return nil
}

func (ctx *craftingContext) thePotionDescriptionIs(description string) error {
	if err := ctx.crafted(); err != nil {
		return err
	}
	if got := ctx.potion.Description(ctx.gd); got != description {
		return fmt.Errorf("expected description %q, got %q", description, got)
	}
	return nil
}

func (ctx *craftingContext) craftingFailsWith(reason string) error {
	var craftErr *potion.CraftError
	if !errors.As(ctx.err, &craftErr) {
		return fmt.Errorf("expected crafting to fail with %s, got %v", reason, ctx.err)
	}
	if string(craftErr.Kind) != reason {
		return fmt.Errorf("expected crafting to fail with %s, got %s", reason, craftErr.Kind)
	}
	return nil
}

func (ctx *craftingContext) twoIngredientPotionsAreFound(count int) error {
	if got := len(ctx.list.Potions2()); got != count {
		return fmt.Errorf("expected %d two-ingredient potions, got %d", count, got)
	}
	return nil
}

func (ctx *craftingContext) threeIngredientPotionsAreFound(count int) error {
	if got := len(ctx.list.Potions3()); got != count {
		return fmt.Errorf("expected %d three-ingredient potions, got %d", count, got)
	}
	return nil
}

func (ctx *craftingContext) theBestPotionIsNamed(name string) error {
	for p := range ctx.list.All() {
		if got := p.Name(ctx.gd); got != name {
			return fmt.Errorf("expected best potion %q, got %q", name, got)
		}
		return nil
	}
	return fmt.Errorf("no potions were found")
}

// cell returns the value of the named column, using the first row as the header
func cell(table *godog.Table, row *messages.PickleTableRow, column string) string {
	for i, header := range table.Rows[0].Cells {
		if header.Value == column && i < len(row.Cells) {
			return row.Cells[i].Value
		}
	}
	return ""
}
