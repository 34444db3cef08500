package potion

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/formid"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
	"github.com/mickdekkers/skyrim-alchemy-go/pkg/utils"
)

// BuildObserver receives progress from PotionsList.Build. Calls for one phase may
// arrive concurrently from several workers.
type BuildObserver interface {
	// PhaseStarted is called once per combination size with the number of candidates
	PhaseStarted(size int, candidates uint64)
	// CombinationsChecked reports a batch of candidates that have been evaluated
	CombinationsChecked(size int, checked uint64, valid int)
	// PhaseCompleted is called once the candidates of a size are crafted and sorted
	PhaseCompleted(size int, potions int, elapsed time.Duration)
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) PhaseStarted(int, uint64)               {}
func (NopObserver) CombinationsChecked(int, uint64, int)   {}
func (NopObserver) PhaseCompleted(int, int, time.Duration) {}

// Options tunes the combination search. The zero value is usable.
type Options struct {
	// Workers defaults to GOMAXPROCS
	Workers int
	// Cache defaults to CacheNone
	Cache         CacheKind
	CacheCapacity int
	Observer      BuildObserver
}

// PotionsList holds every valid 2- and 3-ingredient potion of an ingredient set,
// each list sorted by gold value descending.
type PotionsList struct {
	lookup      MagicEffectLookup
	ingredients []*gamedata.Ingredient
	opts        Options

	potions2 []Potion
	potions3 []Potion
}

// NewPotionsList prepares a search over ingredients. The ingredients are enumerated
// by display name, then editor id, then id, so results do not depend on input order.
func NewPotionsList(lookup MagicEffectLookup, ingredients []*gamedata.Ingredient, opts Options) *PotionsList {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	sorted := slices.Clone(ingredients)
	slices.SortStableFunc(sorted, compareEnumerationOrder)
	return &PotionsList{
		lookup:      lookup,
		ingredients: sorted,
		opts:        opts,
	}
}

func compareEnumerationOrder(a, b *gamedata.Ingredient) int {
	return cmp.Or(
		strings.Compare(a.DisplayName(), b.DisplayName()),
		strings.Compare(a.EditorID, b.EditorID),
		a.GlobalFormID.Compare(b.GlobalFormID),
	)
}

// Build computes every potion. It returns ctx.Err() if the context is cancelled
// before the search completes, leaving the list empty.
func (pl *PotionsList) Build(ctx context.Context) error {
	source, err := newCheckerSource(pl.opts.Cache, pl.opts.CacheCapacity)
	if err != nil {
		return err
	}

	potions2, err := pl.buildSize(ctx, 2, source)
	if err != nil {
		return err
	}
	potions3, err := pl.buildSize(ctx, 3, source)
	if err != nil {
		return err
	}
	pl.potions2 = potions2
	pl.potions3 = potions3
	return nil
}

// buildSize evaluates every combination of size k. Work is partitioned by the index
// of the first ingredient and the per-index results are concatenated in index order,
// so the output is identical for any worker count.
func (pl *PotionsList) buildSize(ctx context.Context, k int, source checkerSource) ([]Potion, error) {
	start := time.Now()
	n := len(pl.ingredients)
	pl.opts.Observer.PhaseStarted(k, utils.Binomial(n, k))

	results := make([][]Potion, n)
	errs := make([]error, n)
	jobs := make(chan int)

	numWorkers := min(pl.opts.Workers, max(n, 1))
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(checker SharedEffectsChecker) {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				results[i], errs[i] = pl.combinationsFrom(i, k, checker)
				pl.opts.Observer.CombinationsChecked(k, utils.Binomial(n-1-i, k-1), len(results[i]))
			}
		}(source())
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	potions := make([]Potion, 0, total)
	for _, r := range results {
		potions = append(potions, r...)
	}
	slices.SortStableFunc(potions, func(a, b Potion) int {
		return cmp.Compare(b.GoldValue, a.GoldValue)
	})

	pl.opts.Observer.PhaseCompleted(k, len(potions), time.Since(start))
	return potions, nil
}

// combinationsFrom crafts every valid combination of size k whose first ingredient is i
func (pl *PotionsList) combinationsFrom(i, k int, checker SharedEffectsChecker) ([]Potion, error) {
	ings := pl.ingredients
	var out []Potion
	craft := func(combo ...*gamedata.Ingredient) error {
		p, err := FromIngredients(combo, pl.lookup)
		var craftErr *CraftError
		if errors.As(err, &craftErr) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to craft %s: %w", comboString(combo), err)
		}
		out = append(out, p)
		return nil
	}

	a := ings[i]
	for j := i + 1; j < len(ings); j++ {
		b := ings[j]
		if k == 2 {
			if !IsValidPair(a, b, checker) {
				continue
			}
			if err := craft(a, b); err != nil {
				return nil, err
			}
			continue
		}
		for l := j + 1; l < len(ings); l++ {
			c := ings[l]
			if !IsValidTriple(a, b, c, checker) {
				continue
			}
			if err := craft(a, b, c); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func comboString(combo []*gamedata.Ingredient) string {
	names := make([]string, len(combo))
	for i, ing := range combo {
		names[i] = ing.DisplayName()
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// IsValidPair reports whether two ingredients can be combined
func IsValidPair(a, b *gamedata.Ingredient, checker SharedEffectsChecker) bool {
	return checker.SharesEffects(a, b)
}

// IsValidTriple reports whether three ingredients form a potion where no ingredient
// is wasted. Treating the ingredients as a triangle whose edges are shared effects,
// at least two edges must exist and their shared effect sets must not all be equal.
func IsValidTriple(a, b, c *gamedata.Ingredient, checker SharedEffectsChecker) bool {
	ab := checker.SharesEffects(a, b)
	bc := checker.SharesEffects(b, c)
	ca := checker.SharesEffects(c, a)

	switch {
	case ab && bc && ca:
		abIDs, bcIDs, caIDs := a.SharedEffectIDs(b), b.SharedEffectIDs(c), c.SharedEffectIDs(a)
		d12 := !slices.Equal(abIDs, bcIDs)
		d23 := !slices.Equal(bcIDs, caIDs)
		d31 := !slices.Equal(caIDs, abIDs)
		return (d12 && (d31 || d23)) || (d31 && d23)
	case ab && bc:
		return !slices.Equal(a.SharedEffectIDs(b), b.SharedEffectIDs(c))
	case ab && ca:
		return !slices.Equal(a.SharedEffectIDs(b), c.SharedEffectIDs(a))
	case bc && ca:
		return !slices.Equal(b.SharedEffectIDs(c), c.SharedEffectIDs(a))
	default:
		return false
	}
}

// Potions2 returns the 2-ingredient potions, strongest first
func (pl *PotionsList) Potions2() []Potion {
	return pl.potions2
}

// Potions3 returns the 3-ingredient potions, strongest first
func (pl *PotionsList) Potions3() []Potion {
	return pl.potions3
}

// Len returns the total number of potions
func (pl *PotionsList) Len() int {
	return len(pl.potions2) + len(pl.potions3)
}

// Ingredients returns the searched ingredients in enumeration order
func (pl *PotionsList) Ingredients() []*gamedata.Ingredient {
	return pl.ingredients
}

// All yields every potion by gold value descending
func (pl *PotionsList) All() iter.Seq[Potion] {
	return MergeDescending(pl.potions2, pl.potions3)
}

// MergeDescending merges two lists sorted by gold value descending. A 3-ingredient
// potion is taken only while it is strictly more valuable than the head of the
// 2-ingredient list, so on equal value the 2-ingredient potion comes first.
func MergeDescending(potions2, potions3 []Potion) iter.Seq[Potion] {
	return func(yield func(Potion) bool) {
		i, j := 0, 0
		for i < len(potions2) || j < len(potions3) {
			var next Potion
			if j < len(potions3) && (i >= len(potions2) || potions3[j].GoldValue > potions2[i].GoldValue) {
				next = potions3[j]
				j++
			} else {
				next = potions2[i]
				i++
			}
			if !yield(next) {
				return
			}
		}
	}
}

// Contains reports whether the potion uses the ingredient
func (p *Potion) Contains(id formid.GlobalFormID) bool {
	return slices.Contains(p.Ingredients, id)
}
