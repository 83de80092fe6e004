package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics counts record outcomes, files and commits of import runs
type ImportMetrics struct {
	registry *prometheus.Registry

	recordsTotal   *prometheus.CounterVec
	filesTotal     *prometheus.CounterVec
	commitsTotal   prometheus.Counter
	errorsTotal    *prometheus.CounterVec
	parseDuration  prometheus.Histogram
	fileDuration   prometheus.Histogram
	pliesPerRecord prometheus.Histogram

	collectors []prometheus.Collector
}

// NewImportMetrics creates and registers import metrics
func NewImportMetrics(registry *prometheus.Registry) (*ImportMetrics, error) {
	m := &ImportMetrics{registry: registry}

	m.recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_records_total",
			Help: "Total number of game records handled, by outcome",
		},
		[]string{"outcome"}, // outcome: imported, duplicate, invalid_player, invalid_eco, no_handler, invalid_pgn
	)

	m.filesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_files_total",
			Help: "Total number of archive files processed",
		},
		[]string{"status"},
	)

	m.commitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "import_commits_total",
		Help: "Total number of batch commits issued",
	})

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_errors_total",
			Help: "Total number of import errors",
		},
		[]string{"operation", "error_type"},
	)

	m.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "import_parse_duration_seconds",
		Help:    "Time taken to parse one movetext",
		Buckets: prometheus.ExponentialBuckets(BucketStart100us, BucketFactor2, BucketCount12), // 0.1ms to ~200ms
	})

	m.fileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "import_file_duration_seconds",
		Help:    "Time taken to import one archive file",
		Buckets: prometheus.ExponentialBuckets(BucketStart1s, BucketFactor2, BucketCount15), // 1s to ~4.5h
	})

	m.pliesPerRecord = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "import_record_plies",
		Help:    "Number of main line plies per imported record",
		Buckets: prometheus.LinearBuckets(10, 10, 20),
	})

	m.collectors = []prometheus.Collector{
		m.recordsTotal,
		m.filesTotal,
		m.commitsTotal,
		m.errorsTotal,
		m.parseDuration,
		m.fileDuration,
		m.pliesPerRecord,
	}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements the Collector interface
func (m *ImportMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *ImportMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordOperation implements the Recorder interface. Record operations take
// the outcome as status.
func (m *ImportMetrics) RecordOperation(operation, status string) {
	switch operation {
	case OpRecord:
		m.recordsTotal.WithLabelValues(status).Inc()
	case OpFile:
		m.filesTotal.WithLabelValues(status).Inc()
	case OpTransaction:
		m.commitsTotal.Inc()
	}
}

// RecordDuration implements the Recorder interface.
func (m *ImportMetrics) RecordDuration(operation string, seconds float64) {
	switch operation {
	case OpParse:
		m.parseDuration.Observe(seconds)
	case OpFile:
		m.fileDuration.Observe(seconds)
	}
}

// RecordError implements the Recorder interface.
func (m *ImportMetrics) RecordError(operation, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordPlies observes the main line length of an imported record
func (m *ImportMetrics) RecordPlies(plies int) {
	m.pliesPerRecord.Observe(float64(plies))
}
