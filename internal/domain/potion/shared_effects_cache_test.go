package potion_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/potion"
)

func TestSharedEffectsCheckers_MatchDirectCheck(t *testing.T) {
	c := randomCatalog(t, 11, 25, 9)
	ings := c.gd.Ingredients()

	syncCache, err := potion.NewSyncCache(32)
	require.NoError(t, err)
	checkers := map[string]potion.SharedEffectsChecker{
		"sync":   syncCache,
		"unsync": potion.NewUnsyncCache(),
		"direct": potion.DirectChecker{},
	}

	r := rand.New(rand.NewPCG(11, 12))
	for name, checker := range checkers {
		t.Run(name, func(t *testing.T) {
			for round := 0; round < 3; round++ {
				for n := 0; n < 2000; n++ {
					a, b := ings[r.IntN(len(ings))], ings[r.IntN(len(ings))]

					assert.Equal(t, a.SharesEffectsWith(b), checker.SharesEffects(a, b))
					assert.Equal(t, b.SharesEffectsWith(a), checker.SharesEffects(b, a))
				}
				checker.Clear()
			}
		})
	}
}

func TestSharedEffectsCache_KeyIsUnordered(t *testing.T) {
	c := newCatalogBuilder().simple("A", "X").simple("B", "X").simple("C", "Y").build(t)
	a, b, cc := c.ing(t, "A"), c.ing(t, "B"), c.ing(t, "C")

	unsync := potion.NewUnsyncCache()
	assert.True(t, unsync.SharesEffects(a, b))
	assert.True(t, unsync.SharesEffects(b, a))
	assert.False(t, unsync.SharesEffects(cc, a))
	assert.Equal(t, 2, unsync.Len())

	unsync.Clear()
	assert.Zero(t, unsync.Len())

	syncCache, err := potion.NewSyncCache(8)
	require.NoError(t, err)
	assert.True(t, syncCache.SharesEffects(b, a))
	assert.True(t, syncCache.SharesEffects(a, b))
	assert.Equal(t, 1, syncCache.Len())

	syncCache.Clear()
	assert.Zero(t, syncCache.Len())
}

func TestSharedEffectsCache_Bounded(t *testing.T) {
	c := randomCatalog(t, 13, 20, 6)
	ings := c.gd.Ingredients()

	syncCache, err := potion.NewSyncCache(10)
	require.NoError(t, err)
	for i := range ings {
		for j := i + 1; j < len(ings); j++ {
			syncCache.SharesEffects(ings[i], ings[j])
		}
	}

	assert.Equal(t, 10, syncCache.Len())
}

func TestNewSyncCache_RejectsZeroCapacity(t *testing.T) {
	_, err := potion.NewSyncCache(0)

	assert.Error(t, err)
}
