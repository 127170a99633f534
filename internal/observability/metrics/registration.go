package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RegistrationMetrics tracks registration outcomes, exports and capture events.
type RegistrationMetrics struct {
	registrationsTotal   *prometheus.CounterVec
	registrationDuration prometheus.Histogram
	exportsTotal         *prometheus.CounterVec
	exportRows           prometheus.Histogram
	captureEventsTotal   *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewRegistrationMetrics creates and registers registration metrics
func NewRegistrationMetrics(registry *prometheus.Registry) (*RegistrationMetrics, error) {
	m := &RegistrationMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *RegistrationMetrics) initMetrics() {
	m.registrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrregister_registrations_total",
			Help: "Registration attempts by outcome",
		},
		[]string{"outcome"}, // registered, duplicate, failed, ignored
	)

	m.registrationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "qrregister_registration_duration_seconds",
		Help:    "Time from submit to final state",
		Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12), // 1ms to ~2s
	})

	m.exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrregister_exports_total",
			Help: "CSV exports by status",
		},
		[]string{"status"},
	)

	m.exportRows = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "qrregister_export_rows",
		Help:    "Rows written per CSV export",
		Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
	})

	m.captureEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrregister_capture_events_total",
			Help: "Decoded or entered codes by origin and result",
		},
		[]string{"origin", "result"},
	)

	m.collectors = []prometheus.Collector{
		m.registrationsTotal,
		m.registrationDuration,
		m.exportsTotal,
		m.exportRows,
		m.captureEventsTotal,
	}
}

// Describe implements the Collector interface
func (m *RegistrationMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *RegistrationMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordRegistration counts one finished submission and its duration.
func (m *RegistrationMetrics) RecordRegistration(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.registrationsTotal.WithLabelValues(outcome).Inc()
	m.registrationDuration.Observe(seconds)
}

// RecordExport counts one export attempt. Rows are only observed on success.
func (m *RegistrationMetrics) RecordExport(status string, rows int) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(status).Inc()
	if status == StatusSuccess {
		m.exportRows.Observe(float64(rows))
	}
}

// RecordCaptureEvent counts a code offered to the capture surface.
func (m *RegistrationMetrics) RecordCaptureEvent(origin, result string) {
	if m == nil {
		return
	}
	m.captureEventsTotal.WithLabelValues(origin, result).Inc()
}
