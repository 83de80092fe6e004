package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NotationMetrics instruments both directions of the notation id cache
type NotationMetrics struct {
	registry *prometheus.Registry

	cacheHitsTotal   *prometheus.CounterVec
	cacheMissesTotal *prometheus.CounterVec
	cacheSize        *prometheus.GaugeVec

	collectors []prometheus.Collector
}

// NewNotationMetrics creates and registers notation cache metrics
func NewNotationMetrics(registry *prometheus.Registry) (*NotationMetrics, error) {
	m := &NotationMetrics{registry: registry}

	m.cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notation_cache_hits_total",
			Help: "Total number of notation cache hits",
		},
		[]string{"direction"}, // direction: forward, reverse
	)

	m.cacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notation_cache_misses_total",
			Help: "Total number of notation cache misses",
		},
		[]string{"direction"},
	)

	m.cacheSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notation_cache_entries",
			Help: "Current number of entries in the notation cache",
		},
		[]string{"direction"},
	)

	m.collectors = []prometheus.Collector{m.cacheHitsTotal, m.cacheMissesTotal, m.cacheSize}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements the Collector interface
func (m *NotationMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *NotationMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordCacheHit implements CacheRecorder
func (m *NotationMetrics) RecordCacheHit(direction string) {
	m.cacheHitsTotal.WithLabelValues(direction).Inc()
}

// RecordCacheMiss implements CacheRecorder
func (m *NotationMetrics) RecordCacheMiss(direction string) {
	m.cacheMissesTotal.WithLabelValues(direction).Inc()
}

// SetCacheSize implements CacheRecorder
func (m *NotationMetrics) SetCacheSize(direction string, size int) {
	m.cacheSize.WithLabelValues(direction).Set(float64(size))
}
