package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/modaudit/internal/metrics"
	"github.com/ajitpratap0/modaudit/internal/models"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	m.ObserveLoad(models.DatasetCounts{Source: models.SourceFallback, Disallowed: 28, Permitted: 63})
	m.IncTick()
	m.IncTick()
	m.AddClassified(5)
	m.IncDetection()
	m.SetCached(4)

	assert.InDelta(t, 1, testutil.ToFloat64(m.DatasetLoads.WithLabelValues("fallback")), 0)
	assert.InDelta(t, 28, testutil.ToFloat64(m.DatasetEntries.WithLabelValues("cheats")), 0)
	assert.InDelta(t, 63, testutil.ToFloat64(m.DatasetEntries.WithLabelValues("mods")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Ticks), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(m.Classified), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Detections), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(m.CachedParticipants), 0)
}

func TestMetrics_DoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)
	_, err = metrics.New(reg)
	assert.Error(t, err)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveLoad(models.DatasetCounts{})
		m.IncTick()
		m.AddClassified(1)
		m.IncDetection()
		m.SetCached(1)
	})
}
