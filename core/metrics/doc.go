// Package metrics defines the sinks that record synchronisation passes.
// Sinks like PromSink and InfluxSink (package infra/metrics) register
// themselves in the factory registry; NewMetricsSink combines several
// configured sinks into a MultiSink.
package metrics
