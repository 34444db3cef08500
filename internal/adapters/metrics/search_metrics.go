package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/potion"
)

// SearchMetricsCollector records potion search progress. It implements potion.BuildObserver.
type SearchMetricsCollector struct {
	candidates    *prometheus.GaugeVec
	checked       *prometheus.CounterVec
	valid         *prometheus.CounterVec
	potions       *prometheus.GaugeVec
	phaseDuration *prometheus.HistogramVec
}

var _ potion.BuildObserver = (*SearchMetricsCollector)(nil)

// NewSearchMetricsCollector creates a new search metrics collector
func NewSearchMetricsCollector() *SearchMetricsCollector {
	return &SearchMetricsCollector{
		candidates: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "candidate_combinations",
				Help:      "Ingredient combinations considered per combination size",
			},
			[]string{"size"},
		),
		checked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "combinations_checked_total",
				Help:      "Ingredient combinations evaluated",
			},
			[]string{"size"},
		),
		valid: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "combinations_valid_total",
				Help:      "Evaluated combinations that passed the validity rules",
			},
			[]string{"size"},
		),
		potions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "potions",
				Help:      "Potions found per combination size",
			},
			[]string{"size"},
		),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "phase_duration_seconds",
				Help:      "Time to enumerate, craft and sort one combination size",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"size"},
		),
	}
}

// Register registers all search metrics with the Prometheus registry
func (c *SearchMetricsCollector) Register() error {
	return register(c.candidates, c.checked, c.valid, c.potions, c.phaseDuration)
}

func (c *SearchMetricsCollector) PhaseStarted(size int, candidates uint64) {
	c.candidates.WithLabelValues(strconv.Itoa(size)).Set(float64(candidates))
}

func (c *SearchMetricsCollector) CombinationsChecked(size int, checked uint64, valid int) {
	label := strconv.Itoa(size)
	c.checked.WithLabelValues(label).Add(float64(checked))
	c.valid.WithLabelValues(label).Add(float64(valid))
}

func (c *SearchMetricsCollector) PhaseCompleted(size int, potions int, elapsed time.Duration) {
	label := strconv.Itoa(size)
	c.potions.WithLabelValues(label).Set(float64(potions))
	c.phaseDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}
