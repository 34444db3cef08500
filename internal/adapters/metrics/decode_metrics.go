package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DecodeMetricsCollector records plugin decoding and game data assembly
type DecodeMetricsCollector struct {
	recordsDecoded *prometheus.CounterVec
	decodeFailures *prometheus.CounterVec
	pluginDuration *prometheus.HistogramVec
	purged         prometheus.Counter
	loadOrderSize  prometheus.Gauge
}

// NewDecodeMetricsCollector creates a new decode metrics collector
func NewDecodeMetricsCollector() *DecodeMetricsCollector {
	return &DecodeMetricsCollector{
		recordsDecoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "export",
				Name:      "records_decoded_total",
				Help:      "Records decoded by plugin and kind",
			},
			[]string{"plugin", "kind"},
		),
		decodeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "export",
				Name:      "decode_failures_total",
				Help:      "Records that failed to decode, by plugin",
			},
			[]string{"plugin"},
		),
		pluginDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "export",
				Name:      "plugin_read_duration_seconds",
				Help:      "Time to read and decode one plugin",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"plugin"},
		),
		purged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "export",
				Name:      "ingredients_purged_total",
				Help:      "Ingredients removed for referencing unknown magic effects",
			},
		),
		loadOrderSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "export",
				Name:      "load_order_plugins",
				Help:      "Plugins left in the load order after compaction",
			},
		),
	}
}

// Register registers all decode metrics with the Prometheus registry
func (c *DecodeMetricsCollector) Register() error {
	return register(c.recordsDecoded, c.decodeFailures, c.pluginDuration, c.purged, c.loadOrderSize)
}

// RecordPlugin records the outcome of decoding one plugin
func (c *DecodeMetricsCollector) RecordPlugin(plugin string, ingredients, magicEffects, failures int, seconds float64) {
	c.recordsDecoded.WithLabelValues(plugin, "ingredient").Add(float64(ingredients))
	c.recordsDecoded.WithLabelValues(plugin, "magic_effect").Add(float64(magicEffects))
	c.decodeFailures.WithLabelValues(plugin).Add(float64(failures))
	c.pluginDuration.WithLabelValues(plugin).Observe(seconds)
}

// RecordAssembly records the purge and compaction results
func (c *DecodeMetricsCollector) RecordAssembly(purged, plugins int) {
	c.purged.Add(float64(purged))
	c.loadOrderSize.Set(float64(plugins))
}
