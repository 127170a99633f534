// Package observability provides metrics and monitoring capabilities for qrregister.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tphakala/qrregister/internal/logger"
	"github.com/tphakala/qrregister/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry     *prometheus.Registry
	Datastore    *metrics.DatastoreMetrics
	Registration *metrics.RegistrationMetrics
}

// NewMetrics creates a new instance of Metrics on a dedicated registry.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	datastoreMetrics, err := metrics.NewDatastoreMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Datastore metrics: %w", err)
	}

	registrationMetrics, err := metrics.NewRegistrationMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Registration metrics: %w", err)
	}

	return &Metrics{
		registry:     registry,
		Datastore:    datastoreMetrics,
		Registration: registrationMetrics,
	}, nil
}

// Registry returns the registry all collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the current metric values in Prometheus text format,
// suitable for the node_exporter textfile collector. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	GetLogger().Debug("metrics written", logger.String("path", path))
	return nil
}
