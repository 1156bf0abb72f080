package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/svitlosync/core/events"
	coremetrics "github.com/kilianp07/svitlosync/core/metrics"
)

// PromSink records sync passes in Prometheus metrics.
type PromSink struct {
	passes      *prometheus.CounterVec
	days        *prometheus.CounterVec
	duration    prometheus.Histogram
	outage      *prometheus.GaugeVec
	lastPublish prometheus.Gauge
	dropped     prometheus.Counter
}

// NewPromSink registers sync metrics on the default Prometheus registerer.
// The Prometheus server should be started separately with StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "svitlosync_passes_total",
			Help: "Total number of sync passes by status",
		}, []string{"status"}),
		days: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "svitlosync_days_total",
			Help: "Days processed by label and outcome",
		}, []string{"label", "outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "svitlosync_pass_duration_seconds",
			Help:    "Duration of a sync pass",
			Buckets: prometheus.DefBuckets,
		}),
		outage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "svitlosync_outage_hours",
			Help: "Planned outage hours of the last fetched schedule",
		}, []string{"label"}),
		lastPublish: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "svitlosync_last_publish_timestamp_seconds",
			Help: "Unix time of the last successful publish",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "svitlosync_events_dropped_total",
			Help: "Sync events discarded before they reached the metrics collector",
		}),
	}

	var err error
	if s.passes, err = register(reg, s.passes); err != nil {
		return nil, err
	}
	if s.days, err = register(reg, s.days); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.outage, err = register(reg, s.outage); err != nil {
		return nil, err
	}
	if s.lastPublish, err = register(reg, s.lastPublish); err != nil {
		return nil, err
	}
	if s.dropped, err = register(reg, s.dropped); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPass counts the pass by status and observes its duration.
func (s *PromSink) RecordPass(ev events.PassFinished) error {
	s.passes.WithLabelValues(ev.Status()).Inc()
	s.duration.Observe(ev.Duration.Seconds())
	if ev.Published {
		s.lastPublish.Set(float64(ev.Time.Unix()))
	}
	return nil
}

// RecordDay counts the day outcome and tracks its outage hours.
func (s *PromSink) RecordDay(ev events.DayProcessed) error {
	s.days.WithLabelValues(ev.Label, ev.Outcome).Inc()
	if ev.Outcome != events.OutcomeUnavailable {
		s.outage.WithLabelValues(ev.Label).Set(ev.OutageHours)
	}
	return nil
}

// RecordDropped counts events lost on the bus.
func (s *PromSink) RecordDropped(n uint64) { s.dropped.Add(float64(n)) }
