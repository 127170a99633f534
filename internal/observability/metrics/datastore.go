// Package metrics provides datastore metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains Prometheus metrics for record store operations
type DatastoreMetrics struct {
	registry *prometheus.Registry

	operationsTotal      *prometheus.CounterVec
	operationDuration    *prometheus.HistogramVec
	operationErrorsTotal *prometheus.CounterVec
	recordCountGauge     prometheus.Gauge

	collectors []prometheus.Collector
}

// NewDatastoreMetrics creates and registers new datastore metrics
func NewDatastoreMetrics(registry *prometheus.Registry) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *DatastoreMetrics) initMetrics() error {
	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrregister_store_operations_total",
			Help: "Total number of record store operations",
		},
		[]string{"operation", "status"},
	)

	m.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qrregister_store_operation_duration_seconds",
			Help:    "Time taken for record store operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart100us, BucketFactor2, BucketCount15), // 0.1ms to ~1.6s
		},
		[]string{"operation"},
	)

	m.operationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrregister_store_operation_errors_total",
			Help: "Total number of record store errors by type",
		},
		[]string{"operation", "error_type"},
	)

	m.recordCountGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "qrregister_store_records",
		Help: "Number of records seen by the last full listing",
	})

	m.collectors = []prometheus.Collector{
		m.operationsTotal,
		m.operationDuration,
		m.operationErrorsTotal,
		m.recordCountGauge,
	}

	return nil
}

// Describe implements the Collector interface
func (m *DatastoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *DatastoreMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordOperation records a store operation with its status
func (m *DatastoreMetrics) RecordOperation(operation, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration records the duration of a store operation
func (m *DatastoreMetrics) RecordDuration(operation string, seconds float64) {
	m.operationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError records a store error
func (m *DatastoreMetrics) RecordError(operation, errorType string) {
	m.operationErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// UpdateRecordCount sets the record count gauge
func (m *DatastoreMetrics) UpdateRecordCount(count int) {
	m.recordCountGauge.Set(float64(count))
}

var _ Recorder = (*DatastoreMetrics)(nil)
