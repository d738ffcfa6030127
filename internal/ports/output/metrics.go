package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncSelection counts a click by outcome (selected, no_match, inactive, error).
	IncSelection(outcome string)

	// IncNameSuggestion counts a name suggestion by source.
	IncNameSuggestion(source string)

	// IncCommands counts a submitted command.
	IncCommands(kind string, success bool)

	// ObserveDuration records how long an assist operation took.
	ObserveDuration(operation string, duration time.Duration)

	// SetFeatureCount sets the number of polygons in the store.
	SetFeatureCount(count int)
}

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncSelection implements MetricsCollector.
func (n *NoOpMetrics) IncSelection(_ string) {}

// IncNameSuggestion implements MetricsCollector.
func (n *NoOpMetrics) IncNameSuggestion(_ string) {}

// IncCommands implements MetricsCollector.
func (n *NoOpMetrics) IncCommands(_ string, _ bool) {}

// ObserveDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveDuration(_ string, _ time.Duration) {}

// SetFeatureCount implements MetricsCollector.
func (n *NoOpMetrics) SetFeatureCount(_ int) {}
