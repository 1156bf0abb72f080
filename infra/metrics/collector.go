package metrics

import (
	"context"

	"github.com/kilianp07/svitlosync/core/events"
	"github.com/kilianp07/svitlosync/core/logger"
	coremetrics "github.com/kilianp07/svitlosync/core/metrics"
	"github.com/kilianp07/svitlosync/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed; the returned
// channel is closed once it has. Closing the bus drains pending events first.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	var seenDropped uint64
	// reportDropped surfaces deliveries the bus discarded since the last call.
	reportDropped := func() {
		n := bus.Dropped()
		if n <= seenDropped {
			return
		}
		delta := n - seenDropped
		seenDropped = n
		if log != nil {
			log.Warnf("event bus dropped %d events (%d total); metrics are incomplete", delta, n)
		}
		if r, ok := sink.(coremetrics.DropRecorder); ok {
			r.RecordDropped(delta)
		}
	}
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		defer reportDropped()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				var err error
				switch e := ev.(type) {
				case events.PassFinished:
					err = sink.RecordPass(e)
					reportDropped()
				case events.DayProcessed:
					if r, ok := sink.(coremetrics.DayRecorder); ok {
						err = r.RecordDay(e)
					}
				}
				if err != nil && log != nil {
					log.Warnf("record metrics for pass %s: %v", ev.PassID(), err)
				}
			}
		}
	}()
	return done
}
