// Package metrics provides Prometheus collectors for the audit engine.
// All methods are safe on a nil *Metrics so components can run without a registry.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ajitpratap0/modaudit/internal/models"
)

const namespace = "modaudit"

// Metrics holds the engine's counters and gauges.
type Metrics struct {
	DatasetLoads       *prometheus.CounterVec
	DatasetEntries     *prometheus.GaugeVec
	Ticks              prometheus.Counter
	Classified         prometheus.Counter
	Detections         prometheus.Counter
	CachedParticipants prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Completed dataset loads by source (remote or fallback)",
		}, []string{"source"}),
		DatasetEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_entries",
			Help:      "Entries in the current reference tables by category",
		}, []string{"category"}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Classification passes run while in a session",
		}),
		Classified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participants_classified_total",
			Help:      "Participant classifications performed",
		}),
		Detections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Disallowed-entries notifications raised",
		}),
		CachedParticipants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cached_participants",
			Help:      "Participants currently held in the classification cache",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.DatasetLoads, m.DatasetEntries, m.Ticks, m.Classified, m.Detections, m.CachedParticipants,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveLoad records a completed dataset load.
func (m *Metrics) ObserveLoad(counts models.DatasetCounts) {
	if m == nil {
		return
	}
	m.DatasetLoads.WithLabelValues(string(counts.Source)).Inc()
	m.DatasetEntries.WithLabelValues("cheats").Set(float64(counts.Disallowed))
	m.DatasetEntries.WithLabelValues("mods").Set(float64(counts.Permitted))
}

// IncTick records one classification pass.
func (m *Metrics) IncTick() {
	if m == nil {
		return
	}
	m.Ticks.Inc()
}

// AddClassified records n participant classifications.
func (m *Metrics) AddClassified(n int) {
	if m == nil {
		return
	}
	m.Classified.Add(float64(n))
}

// IncDetection records one raised notification.
func (m *Metrics) IncDetection() {
	if m == nil {
		return
	}
	m.Detections.Inc()
}

// SetCached records the current cache size.
func (m *Metrics) SetCached(n int) {
	if m == nil {
		return
	}
	m.CachedParticipants.Set(float64(n))
}
