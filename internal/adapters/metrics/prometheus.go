// Package metrics provides Prometheus metrics collection.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements the MetricsCollector port using Prometheus.
type Collector struct {
	registry         *prometheus.Registry
	selections       *prometheus.CounterVec
	nameSuggestions  *prometheus.CounterVec
	commands         *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	features         prometheus.Gauge
}

// NewCollector creates a new Prometheus metrics collector on its own registry.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "mapassist"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		selections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selections_total",
				Help:      "Total number of handled clicks by outcome",
			},
			[]string{"outcome"},
		),

		nameSuggestions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "name_suggestions_total",
				Help:      "Total number of name suggestions by source",
			},
			[]string{"source"},
		),

		commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total number of submitted commands",
			},
			[]string{"kind", "status"},
		),

		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Assist operation duration in seconds",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
			},
			[]string{"operation"},
		),

		features: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "features",
				Help:      "Number of polygons in the feature store",
			},
		),
	}
}

// IncSelection implements output.MetricsCollector.
func (c *Collector) IncSelection(outcome string) {
	c.selections.WithLabelValues(outcome).Inc()
}

// IncNameSuggestion implements output.MetricsCollector.
func (c *Collector) IncNameSuggestion(source string) {
	c.nameSuggestions.WithLabelValues(source).Inc()
}

// IncCommands implements output.MetricsCollector.
func (c *Collector) IncCommands(kind string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.commands.WithLabelValues(kind, status).Inc()
}

// ObserveDuration implements output.MetricsCollector.
func (c *Collector) ObserveDuration(operation string, duration time.Duration) {
	c.operationLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetFeatureCount implements output.MetricsCollector.
func (c *Collector) SetFeatureCount(count int) {
	c.features.Set(float64(count))
}

// Gatherer returns the registry holding the collector's metrics.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// WriteTextfile writes the current metrics in the text exposition format,
// suitable for the node exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
