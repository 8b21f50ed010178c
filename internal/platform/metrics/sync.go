// Package metrics exposes sync engine and collection metrics to Prometheus.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quotes"

// SyncMetrics implements ports.SyncObserver with Prometheus collectors.
type SyncMetrics struct {
	cycles   *prometheus.CounterVec
	duration prometheus.Histogram
	records  *prometheus.CounterVec
	size     prometheus.Gauge
}

// NewSyncMetrics creates the collectors and registers them with reg.
// A nil reg registers with prometheus.DefaultRegisterer, which /-/metrics serves.
func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &SyncMetrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "cycles_total",
			Help:      "Sync cycles by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of a sync cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "records_total",
			Help:      "Remote records merged into the collection, by kind.",
		}, []string{"kind"}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_size",
			Help:      "Number of quotes in the collection.",
		}),
	}

	for _, c := range []prometheus.Collector{m.cycles, m.duration, m.records, m.size} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveCycle records one finished cycle.
func (m *SyncMetrics) ObserveCycle(_ context.Context, outcome string, duration time.Duration, added, conflicts int) {
	m.cycles.WithLabelValues(outcome).Inc()
	m.duration.Observe(duration.Seconds())
	m.records.WithLabelValues("added").Add(float64(added))
	m.records.WithLabelValues("updated").Add(float64(conflicts))
}

// ObserveCollectionSize sets the collection size gauge.
func (m *SyncMetrics) ObserveCollectionSize(size int) {
	m.size.Set(float64(size))
}
