// Package plugins links the built-in mirror and metrics sink modules so
// their factories are registered.
package plugins

import (
	coremetrics "github.com/kilianp07/svitlosync/core/metrics"
	"github.com/kilianp07/svitlosync/core/publisher"
	_ "github.com/kilianp07/svitlosync/infra/kafka"
	_ "github.com/kilianp07/svitlosync/infra/metrics"
	_ "github.com/kilianp07/svitlosync/infra/mqtt"
)

// Mirrors lists the mirror types available in config.
func Mirrors() []string { return publisher.MirrorTypes() }

// MetricsSinks lists the metrics sink types available in config.
func MetricsSinks() []string { return coremetrics.SinkTypes() }
