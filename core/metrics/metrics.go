package metrics

import (
	"github.com/kilianp07/svitlosync/core/events"
	"github.com/kilianp07/svitlosync/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddress is where /metrics is served when a prometheus sink is configured.
	PrometheusAddress string `json:"prometheus_address"`
}

// HasSink reports whether a sink of the given type is configured.
func (c Config) HasSink(typ string) bool {
	for _, s := range c.Sinks {
		if s.Type == typ {
			return true
		}
	}
	return false
}

// MetricsSink records the outcome of each pass.
type MetricsSink interface {
	RecordPass(ev events.PassFinished) error
}

// DayRecorder is implemented by sinks that also record per-day outcomes.
type DayRecorder interface {
	RecordDay(ev events.DayProcessed) error
}

// DropRecorder is implemented by sinks that count events the bus discarded
// before they could be recorded.
type DropRecorder interface {
	RecordDropped(n uint64)
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPass(events.PassFinished) error { return nil }
func (NopSink) RecordDay(events.DayProcessed) error  { return nil }

// MultiSink fans out records to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPass forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordPass(ev events.PassFinished) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordPass(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RecordDay forwards the event to sinks implementing DayRecorder.
func (m *MultiSink) RecordDay(ev events.DayProcessed) error {
	var first error
	for _, s := range m.Sinks {
		if r, ok := s.(DayRecorder); ok {
			if err := r.RecordDay(ev); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// RecordDropped forwards to sinks implementing DropRecorder.
func (m *MultiSink) RecordDropped(n uint64) {
	for _, s := range m.Sinks {
		if r, ok := s.(DropRecorder); ok {
			r.RecordDropped(n)
		}
	}
}

// Close releases every sink that holds resources.
func (m *MultiSink) Close() error { return factory.CloseAll(m.Sinks) }
