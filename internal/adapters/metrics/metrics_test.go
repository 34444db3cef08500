package metrics_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/adapters/metrics"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/mediator"
)

func withRegistry(t *testing.T) {
	t.Helper()
	metrics.InitRegistry()
	t.Cleanup(metrics.Reset)
}

func TestSearchMetricsCollector(t *testing.T) {
	// Arrange
	withRegistry(t)
	c := metrics.NewSearchMetricsCollector()
	require.NoError(t, c.Register())

	// Act
	c.PhaseStarted(2, 45)
	c.CombinationsChecked(2, 30, 4)
	c.CombinationsChecked(2, 15, 1)
	c.PhaseCompleted(2, 5, 20*time.Millisecond)

	// Assert
	series := gatherSeries(t)
	assert.Equal(t, 45.0, series["alchemy_search_candidate_combinations"])
	assert.Equal(t, 45.0, series["alchemy_search_combinations_checked_total"])
	assert.Equal(t, 5.0, series["alchemy_search_combinations_valid_total"])
	assert.Equal(t, 5.0, series["alchemy_search_potions"])
	assert.Equal(t, 1.0, series["alchemy_search_phase_duration_seconds"], "one observation")
}

func TestRegister_DisabledIsNoOp(t *testing.T) {
	metrics.Reset()

	assert.False(t, metrics.IsEnabled())
	assert.NoError(t, metrics.NewSearchMetricsCollector().Register())
	assert.NoError(t, metrics.NewDecodeMetricsCollector().Register())
	assert.NoError(t, metrics.WriteTextfile(filepath.Join(t.TempDir(), "never.prom")))
}

func TestRegister_Twice(t *testing.T) {
	withRegistry(t)
	require.NoError(t, metrics.NewDecodeMetricsCollector().Register())

	assert.Error(t, metrics.NewDecodeMetricsCollector().Register())
}

func TestWriteTextfile(t *testing.T) {
	// Arrange
	withRegistry(t)
	c := metrics.NewDecodeMetricsCollector()
	require.NoError(t, c.Register())
	c.RecordPlugin("Skyrim.esm", 110, 60, 2, 0.5)
	c.RecordAssembly(3, 4)
	path := filepath.Join(t.TempDir(), "out", "alchemy.prom")

	// Act
	require.NoError(t, metrics.WriteTextfile(path))

	// Assert
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `alchemy_export_records_decoded_total{kind="ingredient",plugin="Skyrim.esm"} 110`)
	assert.Contains(t, text, `alchemy_export_decode_failures_total{plugin="Skyrim.esm"} 2`)
	assert.Contains(t, text, "alchemy_export_ingredients_purged_total 3")
	assert.Contains(t, text, "alchemy_export_load_order_plugins 4")
}

// gatherSeries sums each registered family: counter and gauge values, histogram sample counts
func gatherSeries(t *testing.T) map[string]float64 {
	t.Helper()
	families, err := metrics.GetRegistry().Gather()
	require.NoError(t, err)
	out := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				out[f.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[f.GetName()] += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[f.GetName()] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

type fakeQuery struct{}

func TestPrometheusMiddleware(t *testing.T) {
	withRegistry(t)
	collector := metrics.NewCommandMetricsCollector()
	require.NoError(t, collector.Register())
	mw := metrics.PrometheusMiddleware(collector)
	ok := func(context.Context, mediator.Request) (mediator.Response, error) { return nil, nil }
	fail := func(context.Context, mediator.Request) (mediator.Response, error) { return nil, errors.New("x") }

	_, _ = mw(context.Background(), &fakeQuery{}, ok)
	_, _ = mw(context.Background(), &fakeQuery{}, ok)
	_, _ = mw(context.Background(), &fakeQuery{}, fail)

	families, err := metrics.GetRegistry().Gather()
	require.NoError(t, err)
	var total *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "alchemy_commands_total" {
			total = f
		}
	}
	require.NotNil(t, total)
	assert.Len(t, total.GetMetric(), 2, "one series per status")

	_, err = metrics.PrometheusMiddleware(nil)(context.Background(), &fakeQuery{}, ok)
	assert.NoError(t, err)
}
