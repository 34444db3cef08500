package potion

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/formid"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
)

// CacheKind selects the SharedEffectsChecker used by the combination search
type CacheKind string

const (
	// CacheSync is one bounded cache shared by every worker
	CacheSync CacheKind = "sync"
	// CacheUnsync is one unbounded map per worker
	CacheUnsync CacheKind = "unsync"
	// CacheNone computes every check directly
	CacheNone CacheKind = "none"
)

// DefaultCacheCapacity bounds the shared cache
const DefaultCacheCapacity = 500_000

// SharedEffectsChecker answers whether two ingredients share an effect.
// Every implementation returns exactly what Ingredient.SharesEffectsWith returns.
type SharedEffectsChecker interface {
	SharesEffects(a, b *gamedata.Ingredient) bool
	Clear()
}

// pairKey is order independent: (a,b) and (b,a) map to the same key
type pairKey struct {
	lo, hi formid.GlobalFormID
}

func newPairKey(a, b formid.GlobalFormID) pairKey {
	if b.Less(a) {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// DirectChecker does no caching
type DirectChecker struct{}

func (DirectChecker) SharesEffects(a, b *gamedata.Ingredient) bool {
	return a.SharesEffectsWith(b)
}

func (DirectChecker) Clear() {}

// SyncCache is a bounded LRU safe for concurrent use
type SyncCache struct {
	cache *lru.Cache
}

// NewSyncCache creates a SyncCache holding at most capacity pairs
func NewSyncCache(capacity int) (*SyncCache, error) {
	c, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared effects cache: %w", err)
	}
	return &SyncCache{cache: c}, nil
}

func (c *SyncCache) SharesEffects(a, b *gamedata.Ingredient) bool {
	key := newPairKey(a.GlobalFormID, b.GlobalFormID)
	if v, ok := c.cache.Get(key); ok {
		return v.(bool)
	}
	shares := a.SharesEffectsWith(b)
	c.cache.Add(key, shares)
	return shares
}

func (c *SyncCache) Clear() {
	c.cache.Purge()
}

// Len returns the number of cached pairs
func (c *SyncCache) Len() int {
	return c.cache.Len()
}

// UnsyncCache is a plain map. Not safe for concurrent use.
type UnsyncCache struct {
	entries map[pairKey]bool
}

func NewUnsyncCache() *UnsyncCache {
	return &UnsyncCache{entries: make(map[pairKey]bool)}
}

func (c *UnsyncCache) SharesEffects(a, b *gamedata.Ingredient) bool {
	key := newPairKey(a.GlobalFormID, b.GlobalFormID)
	if shares, ok := c.entries[key]; ok {
		return shares
	}
	shares := a.SharesEffectsWith(b)
	c.entries[key] = shares
	return shares
}

func (c *UnsyncCache) Clear() {
	clear(c.entries)
}

// Len returns the number of cached pairs
func (c *UnsyncCache) Len() int {
	return len(c.entries)
}

// checkerSource hands each worker its checker
type checkerSource func() SharedEffectsChecker

func newCheckerSource(kind CacheKind, capacity int) (checkerSource, error) {
	switch kind {
	case CacheSync:
		if capacity <= 0 {
			capacity = DefaultCacheCapacity
		}
		shared, err := NewSyncCache(capacity)
		if err != nil {
			return nil, err
		}
		return func() SharedEffectsChecker { return shared }, nil
	case CacheUnsync:
		return func() SharedEffectsChecker { return NewUnsyncCache() }, nil
	case CacheNone, "":
		return func() SharedEffectsChecker { return DirectChecker{} }, nil
	default:
		return nil, fmt.Errorf("unknown cache kind %q", kind)
	}
}
