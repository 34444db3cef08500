package queries

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/common"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/potion"
)

// progressLogger logs search progress at most once per interval and forwards
// every event to next
type progressLogger struct {
	ctx        context.Context
	next       potion.BuildObserver
	sometimes  *rate.Sometimes
	candidates atomic.Uint64
	checked    atomic.Uint64
}

func newProgressLogger(ctx context.Context, interval time.Duration, next potion.BuildObserver) *progressLogger {
	if next == nil {
		next = potion.NopObserver{}
	}
	return &progressLogger{
		ctx:       ctx,
		next:      next,
		sometimes: &rate.Sometimes{Interval: interval},
	}
}

func (p *progressLogger) PhaseStarted(size int, candidates uint64) {
	p.candidates.Store(candidates)
	p.checked.Store(0)
	common.LoggerFromContext(p.ctx).Log(common.LevelInfo, "Searching combinations", map[string]interface{}{
		"ingredients_per_potion": size,
		"candidates":             candidates,
	})
	p.next.PhaseStarted(size, candidates)
}

func (p *progressLogger) CombinationsChecked(size int, checked uint64, valid int) {
	total := p.checked.Add(checked)
	if p.sometimes.Interval > 0 {
		p.sometimes.Do(func() {
			candidates := p.candidates.Load()
			percent := 100.0
			if candidates > 0 {
				percent = float64(total) / float64(candidates) * 100
			}
			common.LoggerFromContext(p.ctx).Log(common.LevelDebug, "Search progress", map[string]interface{}{
				"ingredients_per_potion": size,
				"checked":                total,
				"percent":                percent,
			})
		})
	}
	p.next.CombinationsChecked(size, checked, valid)
}

func (p *progressLogger) PhaseCompleted(size int, potions int, elapsed time.Duration) {
	common.LoggerFromContext(p.ctx).Log(common.LevelInfo, "Found potions", map[string]interface{}{
		"ingredients_per_potion": size,
		"potions":                potions,
		"elapsed":                elapsed.String(),
	})
	p.next.PhaseCompleted(size, potions, elapsed)
}
